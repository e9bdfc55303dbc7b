package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RewardType string

const (
	RewardTypeDiscount       RewardType = "discount"
	RewardTypeFreeItem       RewardType = "free_item"
	RewardTypePremiumFeature RewardType = "premium_feature"
	RewardTypeBadge          RewardType = "badge"
)

type Reward struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" validate:"required"`
	Description string             `json:"description" bson:"description"`
	PointsCost  int64              `json:"points_cost" bson:"points_cost" validate:"required,gt=0"`
	RewardType  RewardType         `json:"reward_type" bson:"reward_type" validate:"required"`
	IsActive    bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// RewardGrant is unique per (account_id, reward_id) and transitions exactly
// once from claimed to used. There is no reverse transition.
type RewardGrant struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AccountID primitive.ObjectID `json:"account_id" bson:"account_id" validate:"required"`
	RewardID  primitive.ObjectID `json:"reward_id" bson:"reward_id" validate:"required"`
	ClaimedAt time.Time          `json:"claimed_at" bson:"claimed_at"`
	IsUsed    bool               `json:"is_used" bson:"is_used" default:"false"`
	UsedAt    *time.Time         `json:"used_at" bson:"used_at"`
}
