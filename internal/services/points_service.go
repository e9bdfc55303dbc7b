package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forkly/internal/models"
	"forkly/internal/repositories/interfaces"
	"forkly/internal/utils"
	"forkly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner runs a closure inside a storage transaction. *database.MongoDB
// satisfies it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error)
}

// PointsService is the balance accumulator. Every balance change goes through
// it so the cached balance on the account and the ledger stay in lockstep:
// the delta and its ledger entry are written inside one transaction.
type PointsService interface {
	Credit(ctx context.Context, accountID primitive.ObjectID, amount int64, reason models.LedgerReason, meta map[string]interface{}) error
	Debit(ctx context.Context, accountID primitive.ObjectID, amount int64, reason models.LedgerReason, meta map[string]interface{}) error

	// CreditTx and DebitTx apply the same pair of writes inside a
	// transaction the caller already owns (sessCtx must carry the session).
	CreditTx(sessCtx mongo.SessionContext, accountID primitive.ObjectID, amount int64, reason models.LedgerReason, meta map[string]interface{}) error
	DebitTx(sessCtx mongo.SessionContext, accountID primitive.ObjectID, amount int64, reason models.LedgerReason, meta map[string]interface{}) error

	Balance(ctx context.Context, accountID primitive.ObjectID) (int64, error)
	History(ctx context.Context, accountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.LedgerEntry, int64, error)
}

type pointsService struct {
	db          TxRunner
	accountRepo interfaces.AccountRepository
	ledgerRepo  interfaces.LedgerRepository
	logger      *logger.Logger
}

func NewPointsService(
	db TxRunner,
	accountRepo interfaces.AccountRepository,
	ledgerRepo interfaces.LedgerRepository,
	log *logger.Logger,
) PointsService {
	return &pointsService{
		db:          db,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		logger:      log,
	}
}

func (s *pointsService) Credit(ctx context.Context, accountID primitive.ObjectID, amount int64, reason models.LedgerReason, meta map[string]interface{}) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return s.apply(ctx, accountID, amount, reason, meta)
}

func (s *pointsService) Debit(ctx context.Context, accountID primitive.ObjectID, amount int64, reason models.LedgerReason, meta map[string]interface{}) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	return s.apply(ctx, accountID, -amount, reason, meta)
}

func (s *pointsService) CreditTx(sessCtx mongo.SessionContext, accountID primitive.ObjectID, amount int64, reason models.LedgerReason, meta map[string]interface{}) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return s.applyTx(sessCtx, accountID, amount, reason, meta)
}

func (s *pointsService) DebitTx(sessCtx mongo.SessionContext, accountID primitive.ObjectID, amount int64, reason models.LedgerReason, meta map[string]interface{}) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	return s.applyTx(sessCtx, accountID, -amount, reason, meta)
}

func (s *pointsService) apply(ctx context.Context, accountID primitive.ObjectID, delta int64, reason models.LedgerReason, meta map[string]interface{}) error {
	_, err := s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, s.applyTx(sessCtx, accountID, delta, reason, meta)
	})
	if err != nil {
		return mapTransactionError(err)
	}

	s.logger.WithFields(map[string]interface{}{
		"account_id": accountID.Hex(),
		"reason":     string(reason),
		"points":     delta,
	}).Info("Points balance updated")

	return nil
}

// applyTx moves the cached balance and appends the matching ledger entry.
// The balance update is guarded against going negative, so a debit racing
// another debit fails with ErrInsufficientBalance instead of overdrawing.
func (s *pointsService) applyTx(sessCtx mongo.SessionContext, accountID primitive.ObjectID, delta int64, reason models.LedgerReason, meta map[string]interface{}) error {
	if err := s.accountRepo.ApplyPointsDelta(sessCtx, accountID, delta); err != nil {
		return err
	}

	entry := &models.LedgerEntry{
		AccountID: accountID,
		Reason:    reason,
		Points:    delta,
		Meta:      meta,
		CreatedAt: time.Now(),
	}
	if err := s.ledgerRepo.Create(sessCtx, entry); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// mapTransactionError turns a transient mongo transaction failure into the
// retryable sentinel; everything else passes through unchanged.
func mapTransactionError(err error) error {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.HasErrorLabel("TransientTransactionError") {
		return utils.ErrConcurrentModification
	}
	return err
}

func (s *pointsService) Balance(ctx context.Context, accountID primitive.ObjectID) (int64, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.Points, nil
}

func (s *pointsService) History(ctx context.Context, accountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.LedgerEntry, int64, error) {
	return s.ledgerRepo.GetByAccount(ctx, accountID, params)
}
