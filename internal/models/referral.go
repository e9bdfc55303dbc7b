package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferralEdge is a directed connection between two accounts. At most one edge
// exists per ordered (account_id, peer_id) pair. Edges created through a
// referral code are marked is_referred on the inviter->invitee direction only;
// the reciprocal edge, when present, is never marked referred.
type ReferralEdge struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AccountID         primitive.ObjectID `json:"account_id" bson:"account_id" validate:"required"`
	PeerID            primitive.ObjectID `json:"peer_id" bson:"peer_id" validate:"required"`
	IsReferred        bool               `json:"is_referred" bson:"is_referred" default:"false"`
	ReferralCode      string             `json:"referral_code" bson:"referral_code"`
	MilestoneCredited bool               `json:"milestone_credited" bson:"milestone_credited" default:"false"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
}
