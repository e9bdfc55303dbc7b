package mongodb

import (
	"context"
	"fmt"
	"time"

	"forkly/internal/models"
	"forkly/internal/repositories/interfaces"
	"forkly/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ledgerRepository struct {
	collection *mongo.Collection
}

func NewLedgerRepository(db *mongo.Database) interfaces.LedgerRepository {
	return &ledgerRepository{
		collection: db.Collection("ledger_entries"),
	}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	if entry.Meta == nil {
		entry.Meta = map[string]interface{}{}
	}

	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

func (r *ledgerRepository) GetByAccount(ctx context.Context, accountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.LedgerEntry, int64, error) {
	filter := bson.M{"account_id": accountID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, fmt.Errorf("failed to decode ledger entries: %w", err)
	}

	return entries, total, nil
}
