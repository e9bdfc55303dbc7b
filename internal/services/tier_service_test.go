package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTierSelectionByReferralCount(t *testing.T) {
	tiers := seedTiers()
	cases := []struct {
		referrals int64
		want      string
	}{
		{0, "Iniciante"},
		{2, "Iniciante"},
		{3, "Bronze"},
		{7, "Bronze"},
		{8, "Prata"},
		{14, "Prata"},
		{15, "Ouro"},
		{29, "Ouro"},
		{30, "Diamante"},
		{500, "Diamante"},
	}

	for _, tc := range cases {
		got := selectTier(tiers, tc.referrals)
		require.Equal(t, tc.want, got.Name, "referrals=%d", tc.referrals)
	}
}

func TestTierRefreshAssignsAndUpgrades(t *testing.T) {
	repo := newMemTierRepo(seedTiers())
	svc := NewTierService(repo, noopCache{}, testLogger())
	ctx := context.Background()
	accountID := primitive.NewObjectID()

	upgraded, tier, err := svc.Refresh(ctx, accountID, 0, 0)
	require.NoError(t, err)
	require.False(t, upgraded)
	require.Equal(t, "Iniciante", tier.Name)

	upgraded, tier, err = svc.Refresh(ctx, accountID, 3, 150)
	require.NoError(t, err)
	require.True(t, upgraded)
	require.Equal(t, "Bronze", tier.Name)

	// Same count again is not an upgrade.
	upgraded, tier, err = svc.Refresh(ctx, accountID, 3, 150)
	require.NoError(t, err)
	require.False(t, upgraded)
	require.Equal(t, "Bronze", tier.Name)
}

func TestTierNeverMovesDown(t *testing.T) {
	repo := newMemTierRepo(seedTiers())
	svc := NewTierService(repo, noopCache{}, testLogger())
	ctx := context.Background()
	accountID := primitive.NewObjectID()

	_, _, err := svc.Refresh(ctx, accountID, 8, 400)
	require.NoError(t, err)

	// A lower recount keeps the stored tier.
	upgraded, tier, err := svc.Refresh(ctx, accountID, 1, 400)
	require.NoError(t, err)
	require.False(t, upgraded)
	require.Equal(t, "Prata", tier.Name)
}

func TestTierProgressReportsNextRung(t *testing.T) {
	repo := newMemTierRepo(seedTiers())
	svc := NewTierService(repo, noopCache{}, testLogger())
	ctx := context.Background()
	accountID := primitive.NewObjectID()

	_, _, err := svc.Refresh(ctx, accountID, 10, 500)
	require.NoError(t, err)

	progress, err := svc.Progress(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, "Prata", progress.Tier.Name)
	require.Equal(t, "Ouro", progress.NextTier.Name)
	require.Equal(t, int64(5), progress.ReferralsToNext)
}

func TestTierProgressAtTopHasNoNext(t *testing.T) {
	repo := newMemTierRepo(seedTiers())
	svc := NewTierService(repo, noopCache{}, testLogger())
	ctx := context.Background()
	accountID := primitive.NewObjectID()

	_, _, err := svc.Refresh(ctx, accountID, 42, 2000)
	require.NoError(t, err)

	progress, err := svc.Progress(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, "Diamante", progress.Tier.Name)
	require.Nil(t, progress.NextTier)
	require.Equal(t, int64(0), progress.ReferralsToNext)
}

func TestTierProgressForUnknownAccountIsFloor(t *testing.T) {
	repo := newMemTierRepo(seedTiers())
	svc := NewTierService(repo, noopCache{}, testLogger())

	progress, err := svc.Progress(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	require.Equal(t, "Iniciante", progress.Tier.Name)
	require.Equal(t, "Bronze", progress.NextTier.Name)
	require.Equal(t, int64(3), progress.ReferralsToNext)
}

func TestTierRefreshFailsOnEmptyCatalog(t *testing.T) {
	repo := newMemTierRepo(nil)
	svc := NewTierService(repo, noopCache{}, testLogger())

	_, _, err := svc.Refresh(context.Background(), primitive.NewObjectID(), 5, 0)
	require.Error(t, err)
}
