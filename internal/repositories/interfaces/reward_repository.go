package interfaces

import (
	"context"

	"forkly/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RewardRepository interface {
	ListActive(ctx context.Context) ([]*models.Reward, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reward, error)

	// InsertGrant creates the claim row. A duplicate (account, reward) pair
	// surfaces as utils.ErrAlreadyClaimed.
	InsertGrant(ctx context.Context, grant *models.RewardGrant) error

	GetGrant(ctx context.Context, id primitive.ObjectID) (*models.RewardGrant, error)
	ListGrants(ctx context.Context, accountID primitive.ObjectID) ([]*models.RewardGrant, error)

	// MarkUsed flips is_used exactly once for a grant owned by the account.
	// Returns false if the grant was already used.
	MarkUsed(ctx context.Context, id, accountID primitive.ObjectID) (bool, error)
}
