package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccountRole string

const (
	AccountRoleUser            AccountRole = "user"
	AccountRoleRestaurantOwner AccountRole = "restaurant_owner"
)

type Account struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username" validate:"required,min=2,max=50"`
	Email        string             `json:"email" bson:"email" validate:"omitempty,email"`
	ReferralCode string             `json:"referral_code" bson:"referral_code" validate:"required"`
	Points       int64              `json:"points" bson:"points" default:"0"`
	ReviewCount  int64              `json:"review_count" bson:"review_count" default:"0"`
	Role         AccountRole        `json:"role" bson:"role" default:"user"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
