package interfaces

import (
	"context"

	"forkly/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TierRepository interface {
	// ListTiers returns the catalog ordered ascending by min_referrals.
	ListTiers(ctx context.Context) ([]*models.Tier, error)

	GetAssignment(ctx context.Context, accountID primitive.ObjectID) (*models.TierAssignment, error)

	// UpsertAssignment writes the assignment keyed by account. Last write
	// wins; the selection is pure so concurrent recomputes converge.
	UpsertAssignment(ctx context.Context, assignment *models.TierAssignment) error
}
