package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LedgerReason string

const (
	LedgerReasonInviteRegistered    LedgerReason = "invite_registered"
	LedgerReasonInviteFirstReview   LedgerReason = "invite_first_review"
	LedgerReasonAchievementUnlocked LedgerReason = "achievement_unlocked"
	LedgerReasonRewardClaimed       LedgerReason = "reward_claimed"
)

// LedgerEntry is immutable once written. The cached balance on Account must
// always equal the sum of the entry deltas for that account.
type LedgerEntry struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	AccountID primitive.ObjectID     `json:"account_id" bson:"account_id" validate:"required"`
	Reason    LedgerReason           `json:"reason" bson:"reason" validate:"required"`
	Points    int64                  `json:"points" bson:"points"`
	Meta      map[string]interface{} `json:"meta" bson:"meta"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
}
