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
)

// TierService assigns accounts to referral tiers. Assignments only ever move
// up the ladder; a recompute that selects a lower tier than the stored one
// keeps the stored tier.
type TierService interface {
	// Refresh updates the account's counters and recomputes its tier. It
	// returns true when the account moved to a higher tier.
	Refresh(ctx context.Context, accountID primitive.ObjectID, referrals, totalPoints int64) (bool, *models.Tier, error)

	Progress(ctx context.Context, accountID primitive.ObjectID) (*models.TierProgress, error)
	Catalog(ctx context.Context) ([]*models.Tier, error)
}

type tierService struct {
	tierRepo interfaces.TierRepository
	cache    CacheService
	logger   *logger.Logger
}

func NewTierService(tierRepo interfaces.TierRepository, cacheService CacheService, log *logger.Logger) TierService {
	return &tierService{
		tierRepo: tierRepo,
		cache:    cacheService,
		logger:   log,
	}
}

func (s *tierService) Refresh(ctx context.Context, accountID primitive.ObjectID, referrals, totalPoints int64) (bool, *models.Tier, error) {
	tiers, err := s.Catalog(ctx)
	if err != nil {
		return false, nil, err
	}
	if len(tiers) == 0 {
		return false, nil, fmt.Errorf("tier catalog is empty")
	}

	assignment, err := s.tierRepo.GetAssignment(ctx, accountID)
	if err != nil {
		if !errors.Is(err, utils.ErrTierNotFound) {
			return false, nil, err
		}
		assignment = &models.TierAssignment{AccountID: accountID}
	}

	selected := selectTier(tiers, referrals)

	// Tiers never move down: a lower selection keeps the stored tier.
	if !assignment.TierID.IsZero() {
		if stored := tierByID(tiers, assignment.TierID); stored != nil && stored.MinReferrals > selected.MinReferrals {
			selected = stored
		}
	}

	upgraded := assignment.TierID != selected.ID && !assignment.TierID.IsZero()
	assignment.TierID = selected.ID
	assignment.CurrentReferrals = referrals
	assignment.TotalPoints = totalPoints
	assignment.LastUpdated = time.Now()

	if err := s.tierRepo.UpsertAssignment(ctx, assignment); err != nil {
		return false, nil, fmt.Errorf("failed to save tier assignment: %w", err)
	}

	if upgraded {
		s.logger.WithFields(map[string]interface{}{
			"account_id": accountID.Hex(),
			"tier":       selected.Name,
			"referrals":  referrals,
		}).Info("Account tier upgraded")
	}

	return upgraded, selected, nil
}

func (s *tierService) Progress(ctx context.Context, accountID primitive.ObjectID) (*models.TierProgress, error) {
	tiers, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("tier catalog is empty")
	}

	var referrals int64
	assignment, err := s.tierRepo.GetAssignment(ctx, accountID)
	if err != nil && !errors.Is(err, utils.ErrTierNotFound) {
		return nil, err
	}
	if assignment != nil {
		referrals = assignment.CurrentReferrals
	}

	current := selectTier(tiers, referrals)
	if assignment != nil && !assignment.TierID.IsZero() {
		if stored := tierByID(tiers, assignment.TierID); stored != nil && stored.MinReferrals > current.MinReferrals {
			current = stored
		}
	}

	progress := &models.TierProgress{Tier: current}
	for _, tier := range tiers {
		if tier.MinReferrals > current.MinReferrals {
			progress.NextTier = tier
			progress.ReferralsToNext = tier.MinReferrals - referrals
			if progress.ReferralsToNext < 0 {
				progress.ReferralsToNext = 0
			}
			break
		}
	}

	return progress, nil
}

func (s *tierService) Catalog(ctx context.Context) ([]*models.Tier, error) {
	var cached []*models.Tier
	if err := s.cache.Get(ctx, utils.CacheTierCatalogKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	tiers, err := s.tierRepo.ListTiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier catalog: %w", err)
	}

	if len(tiers) > 0 {
		_ = s.cache.Set(ctx, utils.CacheTierCatalogKey, tiers, utils.CatalogCacheTTL)
	}

	return tiers, nil
}

// selectTier picks the highest tier whose threshold the referral count meets.
// Catalog order is ascending by min_referrals; with no qualifying tier the
// floor tier is used.
func selectTier(tiers []*models.Tier, referrals int64) *models.Tier {
	selected := tiers[0]
	for _, tier := range tiers {
		if tier.MinReferrals <= referrals {
			selected = tier
		}
	}
	return selected
}

func tierByID(tiers []*models.Tier, id primitive.ObjectID) *models.Tier {
	for _, tier := range tiers {
		if tier.ID == id {
			return tier
		}
	}
	return nil
}
