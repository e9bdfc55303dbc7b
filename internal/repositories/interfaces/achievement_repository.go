package interfaces

import (
	"context"

	"forkly/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AchievementRepository interface {
	ListActive(ctx context.Context) ([]*models.Achievement, error)
	ListUnlocks(ctx context.Context, accountID primitive.ObjectID) ([]*models.AchievementUnlock, error)

	// InsertUnlockIfAbsent grants the achievement unless already unlocked.
	// Returns false on a duplicate; the unique (account, achievement) index
	// enforces at-most-once even under concurrent evaluation.
	InsertUnlockIfAbsent(ctx context.Context, unlock *models.AchievementUnlock) (bool, error)
}
