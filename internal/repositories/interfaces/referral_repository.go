package interfaces

import (
	"context"

	"forkly/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReferralRepository interface {
	// InsertIfAbsent creates the edge unless one already exists for the
	// ordered (account_id, peer_id) pair. Returns false without error on a
	// duplicate; the unique index makes this safe under concurrent callers.
	InsertIfAbsent(ctx context.Context, edge *models.ReferralEdge) (bool, error)

	CountReferred(ctx context.Context, inviterID primitive.ObjectID) (int64, error)

	// LatestReferredByInvitee returns the most recent referred edge where the
	// given account is the invitee (peer side).
	LatestReferredByInvitee(ctx context.Context, inviteeID primitive.ObjectID) (*models.ReferralEdge, error)

	// MarkMilestoneCredited flips the one-shot milestone flag. Returns false
	// if the flag was already set, making the first-review bonus idempotent
	// on the edge.
	MarkMilestoneCredited(ctx context.Context, edgeID primitive.ObjectID) (bool, error)
}
