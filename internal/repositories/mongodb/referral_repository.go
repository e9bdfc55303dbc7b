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

type referralRepository struct {
	collection *mongo.Collection
}

func NewReferralRepository(db *mongo.Database) interfaces.ReferralRepository {
	return &referralRepository{
		collection: db.Collection("referral_edges"),
	}
}

func (r *referralRepository) InsertIfAbsent(ctx context.Context, edge *models.ReferralEdge) (bool, error) {
	edge.ID = primitive.NewObjectID()
	edge.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, edge)
	if err != nil {
		// The unique (account_id, peer_id) index turns a concurrent double
		// insert into a duplicate key error, which is the idempotent no-op.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create referral edge: %w", err)
	}

	return true, nil
}

func (r *referralRepository) CountReferred(ctx context.Context, inviterID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"account_id":  inviterID,
		"is_referred": true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count referred edges: %w", err)
	}

	return count, nil
}

func (r *referralRepository) LatestReferredByInvitee(ctx context.Context, inviteeID primitive.ObjectID) (*models.ReferralEdge, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var edge models.ReferralEdge
	err := r.collection.FindOne(ctx, bson.M{
		"peer_id":     inviteeID,
		"is_referred": true,
	}, opts).Decode(&edge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.ErrEdgeNotFound
		}
		return nil, fmt.Errorf("failed to get referred edge: %w", err)
	}

	return &edge, nil
}

func (r *referralRepository) MarkMilestoneCredited(ctx context.Context, edgeID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": edgeID, "milestone_credited": false},
		bson.M{"$set": bson.M{"milestone_credited": true}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark milestone credited: %w", err)
	}

	return result.ModifiedCount == 1, nil
}
