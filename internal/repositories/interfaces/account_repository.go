package interfaces

import (
	"context"

	"forkly/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	GetByReferralCode(ctx context.Context, code string) (*models.Account, error)

	// ApplyPointsDelta atomically adjusts the cached balance. A negative delta
	// is guarded so the balance can never go below zero; the guard failing
	// surfaces as utils.ErrInsufficientBalance. Callers pair this with a
	// ledger insert inside one transaction.
	ApplyPointsDelta(ctx context.Context, id primitive.ObjectID, delta int64) error

	// IncrementReviewCount bumps the cached review counter and returns the
	// new value, so callers can detect the 0 -> 1 transition.
	IncrementReviewCount(ctx context.Context, id primitive.ObjectID) (int64, error)

	TopByPoints(ctx context.Context, limit int) ([]*models.Account, error)
}
