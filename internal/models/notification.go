package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string
type NotificationStatus string

const (
	NotificationTypeTierUpgraded        NotificationType = "tier_upgraded"
	NotificationTypeAchievementUnlocked NotificationType = "achievement_unlocked"
	NotificationTypeRewardClaimed       NotificationType = "reward_claimed"
	NotificationTypeGeneral             NotificationType = "general"

	NotificationStatusUnread NotificationStatus = "unread"
	NotificationStatusRead   NotificationStatus = "read"
)

type Notification struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	AccountID primitive.ObjectID     `json:"account_id" bson:"account_id" validate:"required"`
	Type      NotificationType       `json:"type" bson:"type" validate:"required"`
	Status    NotificationStatus     `json:"status" bson:"status" default:"unread"`
	Title     string                 `json:"title" bson:"title" validate:"required"`
	Message   string                 `json:"message" bson:"message"`
	Data      map[string]interface{} `json:"data" bson:"data"`
	ReadAt    *time.Time             `json:"read_at" bson:"read_at"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
}
