package services

import (
	"context"
	"sync"
	"testing"

	"forkly/internal/models"
	"forkly/internal/utils"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRewardEnv(t *testing.T, startingPoints int64, rewards []*models.Reward) (*memAccountRepo, *memLedgerRepo, RewardService, primitive.ObjectID) {
	t.Helper()
	log := testLogger()
	accounts := newMemAccountRepo()
	ledger := newMemLedgerRepo()
	rewardRepo := newMemRewardRepo(rewards)
	points := NewPointsService(fakeTxRunner{}, accounts, ledger, log)
	notifications := NewNotificationService(newMemNotificationRepo(), log)
	svc := NewRewardService(fakeTxRunner{}, rewardRepo, points, notifications, noopCache{}, log)

	account := &models.Account{Username: "alice", ReferralCode: "ALICE123", Points: startingPoints}
	require.NoError(t, accounts.Create(context.Background(), account))

	return accounts, ledger, svc, account.ID
}

func discountReward(cost int64) *models.Reward {
	return &models.Reward{
		ID:         primitive.NewObjectID(),
		Name:       "10% de desconto",
		PointsCost: cost,
		RewardType: models.RewardTypeDiscount,
		IsActive:   true,
	}
}

func TestClaimDebitsCostAndWritesLedger(t *testing.T) {
	reward := discountReward(100)
	accounts, ledger, svc, accountID := newRewardEnv(t, 250, []*models.Reward{reward})
	ctx := context.Background()

	grant, err := svc.Claim(ctx, accountID, reward.ID)
	require.NoError(t, err)
	require.Equal(t, reward.ID, grant.RewardID)
	require.False(t, grant.IsUsed)

	account, err := accounts.GetByID(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(150), account.Points)

	sum, err := ledger.SumByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(-100), sum)
}

func TestClaimWithInsufficientBalanceFails(t *testing.T) {
	reward := discountReward(100)
	accounts, _, svc, accountID := newRewardEnv(t, 99, []*models.Reward{reward})
	ctx := context.Background()

	_, err := svc.Claim(ctx, accountID, reward.ID)
	require.ErrorIs(t, err, utils.ErrInsufficientBalance)

	account, err := accounts.GetByID(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(99), account.Points)
}

func TestClaimTwiceFails(t *testing.T) {
	reward := discountReward(100)
	_, _, svc, accountID := newRewardEnv(t, 500, []*models.Reward{reward})
	ctx := context.Background()

	_, err := svc.Claim(ctx, accountID, reward.ID)
	require.NoError(t, err)

	_, err = svc.Claim(ctx, accountID, reward.ID)
	require.ErrorIs(t, err, utils.ErrAlreadyClaimed)
}

func TestClaimUnknownOrInactiveReward(t *testing.T) {
	inactive := discountReward(50)
	inactive.IsActive = false
	_, _, svc, accountID := newRewardEnv(t, 500, []*models.Reward{inactive})
	ctx := context.Background()

	_, err := svc.Claim(ctx, accountID, primitive.NewObjectID())
	require.ErrorIs(t, err, utils.ErrRewardNotFound)

	_, err = svc.Claim(ctx, accountID, inactive.ID)
	require.ErrorIs(t, err, utils.ErrRewardNotFound)
}

func TestConcurrentClaimsSettleOnOneDebit(t *testing.T) {
	reward := discountReward(100)
	accounts, ledger, svc, accountID := newRewardEnv(t, 100, []*models.Reward{reward})
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Claim(ctx, accountID, reward.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, utils.ErrAlreadyClaimed)
		}
	}
	require.Equal(t, 1, succeeded)

	account, err := accounts.GetByID(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(0), account.Points)

	sum, err := ledger.SumByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(-100), sum)
}

func TestUseTransitionsOnce(t *testing.T) {
	reward := discountReward(100)
	_, _, svc, accountID := newRewardEnv(t, 200, []*models.Reward{reward})
	ctx := context.Background()

	grant, err := svc.Claim(ctx, accountID, reward.ID)
	require.NoError(t, err)

	used, err := svc.Use(ctx, accountID, grant.ID)
	require.NoError(t, err)
	require.True(t, used.IsUsed)
	require.NotNil(t, used.UsedAt)

	_, err = svc.Use(ctx, accountID, grant.ID)
	require.ErrorIs(t, err, utils.ErrAlreadyUsed)
}

func TestUseSomeoneElsesGrantFails(t *testing.T) {
	reward := discountReward(100)
	accounts, _, svc, accountID := newRewardEnv(t, 200, []*models.Reward{reward})
	ctx := context.Background()

	grant, err := svc.Claim(ctx, accountID, reward.ID)
	require.NoError(t, err)

	other := &models.Account{Username: "mallory", ReferralCode: "MALLORY1"}
	require.NoError(t, accounts.Create(ctx, other))

	_, err = svc.Use(ctx, other.ID, grant.ID)
	require.ErrorIs(t, err, utils.ErrGrantNotFound)
}

func TestCatalogListsOnlyActive(t *testing.T) {
	active := discountReward(100)
	inactive := discountReward(50)
	inactive.Name = "Sobremesa grátis"
	inactive.IsActive = false
	_, _, svc, _ := newRewardEnv(t, 0, []*models.Reward{active, inactive})

	catalog, err := svc.Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	require.Equal(t, active.ID, catalog[0].ID)
}
