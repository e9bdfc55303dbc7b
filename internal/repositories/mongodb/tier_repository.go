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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type tierRepository struct {
	tiers       *mongo.Collection
	assignments *mongo.Collection
}

func NewTierRepository(db *mongo.Database) interfaces.TierRepository {
	return &tierRepository{
		tiers:       db.Collection("tiers"),
		assignments: db.Collection("tier_assignments"),
	}
}

func (r *tierRepository) ListTiers(ctx context.Context) ([]*models.Tier, error) {
	opts := options.Find().SetSort(bson.D{{Key: "min_referrals", Value: 1}})

	cursor, err := r.tiers.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}
	defer cursor.Close(ctx)

	var tiers []*models.Tier
	if err := cursor.All(ctx, &tiers); err != nil {
		return nil, fmt.Errorf("failed to decode tiers: %w", err)
	}

	return tiers, nil
}

func (r *tierRepository) GetAssignment(ctx context.Context, accountID primitive.ObjectID) (*models.TierAssignment, error) {
	var assignment models.TierAssignment
	err := r.assignments.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&assignment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.ErrTierNotFound
		}
		return nil, fmt.Errorf("failed to get tier assignment: %w", err)
	}

	return &assignment, nil
}

func (r *tierRepository) UpsertAssignment(ctx context.Context, assignment *models.TierAssignment) error {
	assignment.LastUpdated = time.Now()

	update := bson.M{
		"$set": bson.M{
			"tier_id":           assignment.TierID,
			"current_referrals": assignment.CurrentReferrals,
			"total_points":      assignment.TotalPoints,
			"last_updated":      assignment.LastUpdated,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.assignments.UpdateOne(ctx, bson.M{"account_id": assignment.AccountID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert tier assignment: %w", err)
	}

	return nil
}
