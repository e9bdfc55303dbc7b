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

func newPointsEnv(t *testing.T, startingPoints int64) (*memAccountRepo, *memLedgerRepo, PointsService, *models.Account) {
	t.Helper()
	accounts := newMemAccountRepo()
	ledger := newMemLedgerRepo()
	svc := NewPointsService(fakeTxRunner{}, accounts, ledger, testLogger())

	account := &models.Account{Username: "alice", ReferralCode: "ALICE123", Points: startingPoints}
	require.NoError(t, accounts.Create(context.Background(), account))

	return accounts, ledger, svc, account
}

func TestCreditAppendsLedgerEntry(t *testing.T) {
	accounts, ledger, svc, account := newPointsEnv(t, 0)
	ctx := context.Background()

	err := svc.Credit(ctx, account.ID, 50, models.LedgerReasonInviteRegistered, map[string]interface{}{"invitee_id": "x"})
	require.NoError(t, err)

	stored, err := accounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, int64(50), stored.Points)

	// The ledger replays to the cached balance.
	sum, err := ledger.SumByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, stored.Points, sum)

	entries, total, err := svc.History(ctx, account.ID, &utils.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, int64(50), entries[0].Points)
	require.Equal(t, models.LedgerReasonInviteRegistered, entries[0].Reason)
}

func TestDebitBelowZeroIsRejected(t *testing.T) {
	_, ledger, svc, account := newPointsEnv(t, 30)
	ctx := context.Background()

	err := svc.Debit(ctx, account.ID, 31, models.LedgerReasonRewardClaimed, nil)
	require.ErrorIs(t, err, utils.ErrInsufficientBalance)

	// A rejected debit leaves no ledger trace.
	sum, err := ledger.SumByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), sum)
}

func TestNonPositiveAmountsAreRejected(t *testing.T) {
	_, _, svc, account := newPointsEnv(t, 100)
	ctx := context.Background()

	require.Error(t, svc.Credit(ctx, account.ID, 0, models.LedgerReasonInviteRegistered, nil))
	require.Error(t, svc.Credit(ctx, account.ID, -5, models.LedgerReasonInviteRegistered, nil))
	require.Error(t, svc.Debit(ctx, account.ID, 0, models.LedgerReasonRewardClaimed, nil))
	require.Error(t, svc.Debit(ctx, account.ID, -5, models.LedgerReasonRewardClaimed, nil))
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	accounts, ledger, svc, account := newPointsEnv(t, 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Only three of these can succeed.
			_ = svc.Debit(ctx, account.ID, 30, models.LedgerReasonRewardClaimed, nil)
		}()
	}
	wg.Wait()

	stored, err := accounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	require.GreaterOrEqual(t, stored.Points, int64(0))

	sum, err := ledger.SumByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, stored.Points-int64(100), sum)
}

func TestBalanceForUnknownAccount(t *testing.T) {
	_, _, svc, _ := newPointsEnv(t, 0)

	_, err := svc.Balance(context.Background(), primitive.ObjectID{1, 2, 3})
	require.ErrorIs(t, err, utils.ErrAccountNotFound)
}
