package mongodb

import (
	"context"
	"fmt"
	"time"

	"forkly/internal/models"
	"forkly/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type achievementRepository struct {
	achievements *mongo.Collection
	unlocks      *mongo.Collection
}

func NewAchievementRepository(db *mongo.Database) interfaces.AchievementRepository {
	return &achievementRepository{
		achievements: db.Collection("achievements"),
		unlocks:      db.Collection("achievement_unlocks"),
	}
}

func (r *achievementRepository) ListActive(ctx context.Context) ([]*models.Achievement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "condition_value", Value: 1}})

	cursor, err := r.achievements.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer cursor.Close(ctx)

	var achievements []*models.Achievement
	if err := cursor.All(ctx, &achievements); err != nil {
		return nil, fmt.Errorf("failed to decode achievements: %w", err)
	}

	return achievements, nil
}

func (r *achievementRepository) ListUnlocks(ctx context.Context, accountID primitive.ObjectID) ([]*models.AchievementUnlock, error) {
	cursor, err := r.unlocks.Find(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to list achievement unlocks: %w", err)
	}
	defer cursor.Close(ctx)

	var unlocks []*models.AchievementUnlock
	if err := cursor.All(ctx, &unlocks); err != nil {
		return nil, fmt.Errorf("failed to decode achievement unlocks: %w", err)
	}

	return unlocks, nil
}

func (r *achievementRepository) InsertUnlockIfAbsent(ctx context.Context, unlock *models.AchievementUnlock) (bool, error) {
	unlock.ID = primitive.NewObjectID()
	unlock.UnlockedAt = time.Now()

	_, err := r.unlocks.InsertOne(ctx, unlock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert achievement unlock: %w", err)
	}

	return true, nil
}
