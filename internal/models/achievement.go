package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AchievementCondition string

const (
	AchievementConditionReferrals AchievementCondition = "referrals"
	AchievementConditionReviews   AchievementCondition = "reviews"
	AchievementConditionPoints    AchievementCondition = "points"
)

type Achievement struct {
	ID             primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name           string               `json:"name" bson:"name" validate:"required"`
	Description    string               `json:"description" bson:"description"`
	Icon           string               `json:"icon" bson:"icon" default:"emoji_events"`
	PointsReward   int64                `json:"points_reward" bson:"points_reward" default:"0"`
	ConditionType  AchievementCondition `json:"condition_type" bson:"condition_type" validate:"required"`
	ConditionValue int64                `json:"condition_value" bson:"condition_value"`
	IsActive       bool                 `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt      time.Time            `json:"created_at" bson:"created_at"`
}

// AchievementUnlock is write-once: unique per (account_id, achievement_id).
type AchievementUnlock struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AccountID     primitive.ObjectID `json:"account_id" bson:"account_id" validate:"required"`
	AchievementID primitive.ObjectID `json:"achievement_id" bson:"achievement_id" validate:"required"`
	UnlockedAt    time.Time          `json:"unlocked_at" bson:"unlocked_at"`
}

// AchievementStatus annotates a catalog entry with the caller's unlock state.
type AchievementStatus struct {
	Achievement *Achievement `json:"achievement"`
	Unlocked    bool         `json:"unlocked"`
	UnlockedAt  *time.Time   `json:"unlocked_at,omitempty"`
}

// AchievementCounters are the evaluated inputs for unlock conditions.
type AchievementCounters struct {
	Referrals int64 `json:"referrals"`
	Reviews   int64 `json:"reviews"`
	Points    int64 `json:"points"`
}

// Value returns the counter matching the given condition type.
func (c AchievementCounters) Value(condition AchievementCondition) int64 {
	switch condition {
	case AchievementConditionReferrals:
		return c.Referrals
	case AchievementConditionReviews:
		return c.Reviews
	case AchievementConditionPoints:
		return c.Points
	default:
		return 0
	}
}
