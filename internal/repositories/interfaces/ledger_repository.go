package interfaces

import (
	"context"

	"forkly/internal/models"
	"forkly/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LedgerRepository interface {
	// Create appends an entry. Entries are immutable once written.
	Create(ctx context.Context, entry *models.LedgerEntry) error

	GetByAccount(ctx context.Context, accountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.LedgerEntry, int64, error)
}
