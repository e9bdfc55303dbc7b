package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forkly/internal/models"
	"forkly/internal/repositories/interfaces"
	"forkly/internal/utils"
	"forkly/internal/validators"
	"forkly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoyaltyService is the entry point for the host application's account
// lifecycle events and the aggregate read models built from them.
type LoyaltyService interface {
	// RegisterAccount creates the loyalty profile for a new account and,
	// when a valid invite code is supplied, records the referral and
	// credits the inviter's registration bonus. An unknown or self
	// referencing code is ignored, never an error.
	RegisterAccount(ctx context.Context, username, email string, role models.AccountRole, inviteCode string) (*models.Account, error)

	// OnReviewRecorded bumps the account's review counter. The first
	// review triggers the inviter's milestone bonus exactly once.
	OnReviewRecorded(ctx context.Context, accountID primitive.ObjectID) error

	// CheckAchievements re-derives the account's counters and evaluates
	// the catalog on demand, returning the achievements this call
	// unlocked. A repeat call returns an empty slice.
	CheckAchievements(ctx context.Context, accountID primitive.ObjectID) ([]*models.Achievement, error)

	GetAccount(ctx context.Context, accountID primitive.ObjectID) (*models.Account, error)
	GetStats(ctx context.Context, accountID primitive.ObjectID) (*models.AccountStats, error)
	GetLedger(ctx context.Context, accountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.LedgerEntry, int64, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type loyaltyService struct {
	accountRepo  interfaces.AccountRepository
	referralRepo interfaces.ReferralRepository
	points       PointsService
	tiers        TierService
	achievements AchievementService
	rewards      RewardService
	notifier     NotificationService
	logger       *logger.Logger
}

func NewLoyaltyService(
	accountRepo interfaces.AccountRepository,
	referralRepo interfaces.ReferralRepository,
	points PointsService,
	tiers TierService,
	achievements AchievementService,
	rewards RewardService,
	notifier NotificationService,
	log *logger.Logger,
) LoyaltyService {
	return &loyaltyService{
		accountRepo:  accountRepo,
		referralRepo: referralRepo,
		points:       points,
		tiers:        tiers,
		achievements: achievements,
		rewards:      rewards,
		notifier:     notifier,
		logger:       log,
	}
}

func (s *loyaltyService) RegisterAccount(ctx context.Context, username, email string, role models.AccountRole, inviteCode string) (*models.Account, error) {
	if role == "" {
		role = models.AccountRoleUser
	}

	account := &models.Account{
		Username:  username,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// The referral code is unique across accounts; retry a few times in
	// case the generated code collides.
	var createErr error
	for attempt := 0; attempt < 3; attempt++ {
		account.ReferralCode = utils.GenerateReferralCode()
		if createErr = s.accountRepo.Create(ctx, account); createErr == nil {
			break
		}
	}
	if createErr != nil {
		return nil, fmt.Errorf("failed to create account: %w", createErr)
	}

	if inviteCode != "" {
		if err := s.recordReferral(ctx, account, inviteCode); err != nil {
			// The account exists at this point; referral bookkeeping
			// failures must not fail the registration.
			s.logger.WithError(err).WithAccountID(account.ID).
				WithField("invite_code", inviteCode).
				Warn("Failed to record referral")
		}
	}

	return account, nil
}

func (s *loyaltyService) recordReferral(ctx context.Context, invitee *models.Account, inviteCode string) error {
	// Codes outside the generated alphabet cannot match any account.
	if !validators.IsValidReferralCode(inviteCode) {
		return utils.ErrInvalidReferralCode
	}

	inviter, err := s.accountRepo.GetByReferralCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, utils.ErrAccountNotFound) {
			s.logger.WithField("invite_code", inviteCode).Debug("Ignoring unknown invite code")
			return nil
		}
		return err
	}
	if inviter.ID == invitee.ID {
		return nil
	}

	created, err := s.referralRepo.InsertIfAbsent(ctx, &models.ReferralEdge{
		AccountID:    inviter.ID,
		PeerID:       invitee.ID,
		IsReferred:   true,
		ReferralCode: inviteCode,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to record referral edge: %w", err)
	}
	if !created {
		return nil
	}

	err = s.points.Credit(ctx, inviter.ID, utils.ReferralRegistrationBonus, models.LedgerReasonInviteRegistered, map[string]interface{}{
		"invitee_id":       invitee.ID.Hex(),
		"invitee_username": invitee.Username,
	})
	if err != nil {
		return fmt.Errorf("failed to credit registration bonus: %w", err)
	}

	_, err = s.refreshAccount(ctx, inviter.ID)
	return err
}

func (s *loyaltyService) OnReviewRecorded(ctx context.Context, accountID primitive.ObjectID) error {
	reviewCount, err := s.accountRepo.IncrementReviewCount(ctx, accountID)
	if err != nil {
		return err
	}

	if reviewCount == 1 {
		if err := s.creditFirstReviewMilestone(ctx, accountID); err != nil {
			return err
		}
	}

	_, err = s.refreshAccount(ctx, accountID)
	return err
}

// creditFirstReviewMilestone pays the inviter's milestone bonus. The
// milestone_credited flag on the edge flips exactly once, so a replayed
// first-review event cannot double pay.
func (s *loyaltyService) creditFirstReviewMilestone(ctx context.Context, inviteeID primitive.ObjectID) error {
	edge, err := s.referralRepo.LatestReferredByInvitee(ctx, inviteeID)
	if err != nil {
		if errors.Is(err, utils.ErrEdgeNotFound) {
			return nil
		}
		return err
	}

	flipped, err := s.referralRepo.MarkMilestoneCredited(ctx, edge.ID)
	if err != nil {
		return err
	}
	if !flipped {
		return nil
	}

	err = s.points.Credit(ctx, edge.AccountID, utils.ReferralFirstReviewBonus, models.LedgerReasonInviteFirstReview, map[string]interface{}{
		"invitee_id": inviteeID.Hex(),
		"edge_id":    edge.ID.Hex(),
	})
	if err != nil {
		return fmt.Errorf("failed to credit milestone bonus: %w", err)
	}

	_, err = s.refreshAccount(ctx, edge.AccountID)
	return err
}

// refreshAccount recomputes the tier and evaluates achievements from the
// account's current counters. Points credited by achievement unlocks count
// toward point conditions on the next refresh, not this one.
func (s *loyaltyService) refreshAccount(ctx context.Context, accountID primitive.ObjectID) ([]*models.Achievement, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	referrals, err := s.referralRepo.CountReferred(ctx, accountID)
	if err != nil {
		return nil, err
	}

	upgraded, tier, err := s.tiers.Refresh(ctx, accountID, referrals, account.Points)
	if err != nil {
		return nil, err
	}
	if upgraded {
		s.notifier.NotifyTierUpgrade(ctx, accountID, tier)
	}

	newlyUnlocked, err := s.achievements.Evaluate(ctx, accountID, models.AchievementCounters{
		Referrals: referrals,
		Reviews:   account.ReviewCount,
		Points:    account.Points,
	})
	if err != nil {
		return nil, err
	}
	for _, achievement := range newlyUnlocked {
		s.notifier.NotifyAchievementUnlocked(ctx, accountID, achievement)
	}

	return newlyUnlocked, nil
}

func (s *loyaltyService) CheckAchievements(ctx context.Context, accountID primitive.ObjectID) ([]*models.Achievement, error) {
	return s.refreshAccount(ctx, accountID)
}

func (s *loyaltyService) GetAccount(ctx context.Context, accountID primitive.ObjectID) (*models.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

func (s *loyaltyService) GetStats(ctx context.Context, accountID primitive.ObjectID) (*models.AccountStats, error) {
	if _, err := s.refreshAccount(ctx, accountID); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	referrals, err := s.referralRepo.CountReferred(ctx, accountID)
	if err != nil {
		return nil, err
	}

	progress, err := s.tiers.Progress(ctx, accountID)
	if err != nil {
		return nil, err
	}

	achievements, err := s.achievements.ListForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	available, err := s.rewards.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	claimed, err := s.rewards.ListGrants(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &models.AccountStats{
		AccountID:        account.ID.Hex(),
		ReferralCode:     account.ReferralCode,
		Points:           account.Points,
		Referrals:        referrals,
		Reviews:          account.ReviewCount,
		Progress:         progress,
		Achievements:     achievements,
		AvailableRewards: available,
		ClaimedRewards:   claimed,
	}, nil
}

func (s *loyaltyService) GetLedger(ctx context.Context, accountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.LedgerEntry, int64, error) {
	return s.points.History(ctx, accountID, params)
}

func (s *loyaltyService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = utils.DefaultLeaderboardSize
	}
	if limit > utils.MaxLeaderboardSize {
		limit = utils.MaxLeaderboardSize
	}

	accounts, err := s.accountRepo.TopByPoints(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(accounts))
	for _, account := range accounts {
		entry := models.LeaderboardEntry{
			AccountID: account.ID.Hex(),
			Username:  account.Username,
			Points:    account.Points,
		}
		if progress, err := s.tiers.Progress(ctx, account.ID); err == nil && progress.Tier != nil {
			entry.TierName = progress.Tier.Name
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
