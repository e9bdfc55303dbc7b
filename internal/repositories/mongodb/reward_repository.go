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

type rewardRepository struct {
	rewards *mongo.Collection
	grants  *mongo.Collection
}

func NewRewardRepository(db *mongo.Database) interfaces.RewardRepository {
	return &rewardRepository{
		rewards: db.Collection("rewards"),
		grants:  db.Collection("reward_grants"),
	}
}

func (r *rewardRepository) ListActive(ctx context.Context) ([]*models.Reward, error) {
	opts := options.Find().SetSort(bson.D{{Key: "points_cost", Value: 1}})

	cursor, err := r.rewards.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer cursor.Close(ctx)

	var rewards []*models.Reward
	if err := cursor.All(ctx, &rewards); err != nil {
		return nil, fmt.Errorf("failed to decode rewards: %w", err)
	}

	return rewards, nil
}

func (r *rewardRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reward, error) {
	var reward models.Reward
	err := r.rewards.FindOne(ctx, bson.M{"_id": id}).Decode(&reward)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.ErrRewardNotFound
		}
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}

	return &reward, nil
}

func (r *rewardRepository) InsertGrant(ctx context.Context, grant *models.RewardGrant) error {
	grant.ID = primitive.NewObjectID()
	grant.ClaimedAt = time.Now()

	_, err := r.grants.InsertOne(ctx, grant)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.ErrAlreadyClaimed
		}
		return fmt.Errorf("failed to insert reward grant: %w", err)
	}

	return nil
}

func (r *rewardRepository) GetGrant(ctx context.Context, id primitive.ObjectID) (*models.RewardGrant, error) {
	var grant models.RewardGrant
	err := r.grants.FindOne(ctx, bson.M{"_id": id}).Decode(&grant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.ErrGrantNotFound
		}
		return nil, fmt.Errorf("failed to get reward grant: %w", err)
	}

	return &grant, nil
}

func (r *rewardRepository) ListGrants(ctx context.Context, accountID primitive.ObjectID) ([]*models.RewardGrant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "claimed_at", Value: -1}})

	cursor, err := r.grants.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward grants: %w", err)
	}
	defer cursor.Close(ctx)

	var grants []*models.RewardGrant
	if err := cursor.All(ctx, &grants); err != nil {
		return nil, fmt.Errorf("failed to decode reward grants: %w", err)
	}

	return grants, nil
}

func (r *rewardRepository) MarkUsed(ctx context.Context, id, accountID primitive.ObjectID) (bool, error) {
	now := time.Now()
	result, err := r.grants.UpdateOne(
		ctx,
		bson.M{"_id": id, "account_id": accountID, "is_used": false},
		bson.M{"$set": bson.M{"is_used": true, "used_at": now}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark reward grant used: %w", err)
	}

	return result.ModifiedCount == 1, nil
}
