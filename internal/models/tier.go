package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tier is a globally shared catalog entry. The catalog is seeded once and
// ordered ascending by min_referrals; min_referrals is unique per tier.
type Tier struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name" validate:"required"`
	MinReferrals int64              `json:"min_referrals" bson:"min_referrals"`
	Color        string             `json:"color" bson:"color" default:"#FFD700"`
	Icon         string             `json:"icon" bson:"icon" default:"star"`
	Benefits     []string           `json:"benefits" bson:"benefits"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// TierAssignment tracks one account's place in the tier ladder. The assigned
// tier is always the highest tier whose min_referrals does not exceed
// current_referrals, and it never moves down once reached.
type TierAssignment struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AccountID        primitive.ObjectID `json:"account_id" bson:"account_id" validate:"required"`
	TierID           primitive.ObjectID `json:"tier_id" bson:"tier_id" validate:"required"`
	CurrentReferrals int64              `json:"current_referrals" bson:"current_referrals" default:"0"`
	TotalPoints      int64              `json:"total_points" bson:"total_points" default:"0"`
	LastUpdated      time.Time          `json:"last_updated" bson:"last_updated"`
}

// TierProgress is the stats read model: the current tier plus how far the
// account is from the next rung.
type TierProgress struct {
	Tier            *Tier `json:"tier"`
	NextTier        *Tier `json:"next_tier,omitempty"`
	ReferralsToNext int64 `json:"referrals_to_next"`
}
