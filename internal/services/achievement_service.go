package services

import (
	"context"
	"fmt"
	"time"

	"forkly/internal/models"
	"forkly/internal/repositories/interfaces"
	"forkly/internal/utils"
	"forkly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AchievementService evaluates unlock conditions against an account's
// counters. Unlocks are write-once; the unique index on
// (account_id, achievement_id) makes concurrent evaluations settle on a
// single unlock and a single point credit.
type AchievementService interface {
	// Evaluate unlocks every active achievement whose condition the
	// counters satisfy and credits its point reward. Newly unlocked
	// achievements are returned; already unlocked ones are skipped.
	Evaluate(ctx context.Context, accountID primitive.ObjectID, counters models.AchievementCounters) ([]*models.Achievement, error)

	ListForAccount(ctx context.Context, accountID primitive.ObjectID) ([]models.AchievementStatus, error)
}

type achievementService struct {
	db              TxRunner
	achievementRepo interfaces.AchievementRepository
	points          PointsService
	cache           CacheService
	logger          *logger.Logger
}

func NewAchievementService(
	db TxRunner,
	achievementRepo interfaces.AchievementRepository,
	points PointsService,
	cacheService CacheService,
	log *logger.Logger,
) AchievementService {
	return &achievementService{
		db:              db,
		achievementRepo: achievementRepo,
		points:          points,
		cache:           cacheService,
		logger:          log,
	}
}

func (s *achievementService) Evaluate(ctx context.Context, accountID primitive.ObjectID, counters models.AchievementCounters) ([]*models.Achievement, error) {
	achievements, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	unlocks, err := s.achievementRepo.ListUnlocks(ctx, accountID)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[primitive.ObjectID]bool, len(unlocks))
	for _, unlock := range unlocks {
		unlocked[unlock.AchievementID] = true
	}

	var newlyUnlocked []*models.Achievement
	for _, achievement := range achievements {
		if unlocked[achievement.ID] {
			continue
		}
		if counters.Value(achievement.ConditionType) < achievement.ConditionValue {
			continue
		}

		inserted, err := s.unlock(ctx, accountID, achievement)
		if err != nil {
			return newlyUnlocked, err
		}
		if !inserted {
			// Lost the race to a concurrent evaluation; the winner
			// credited the reward.
			continue
		}

		s.logger.WithFields(map[string]interface{}{
			"account_id":  accountID.Hex(),
			"achievement": achievement.Name,
			"reward":      achievement.PointsReward,
		}).Info("Achievement unlocked")

		newlyUnlocked = append(newlyUnlocked, achievement)
	}

	return newlyUnlocked, nil
}

// unlock inserts the unlock row and credits its reward in one transaction,
// so an unlock can never exist without the credit it promised. The unique
// index keeps concurrent evaluations down to a single winner.
func (s *achievementService) unlock(ctx context.Context, accountID primitive.ObjectID, achievement *models.Achievement) (bool, error) {
	inserted := false
	_, err := s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		ok, err := s.achievementRepo.InsertUnlockIfAbsent(sessCtx, &models.AchievementUnlock{
			AccountID:     accountID,
			AchievementID: achievement.ID,
			UnlockedAt:    time.Now(),
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		inserted = true

		if achievement.PointsReward > 0 {
			err = s.points.CreditTx(sessCtx, accountID, achievement.PointsReward, models.LedgerReasonAchievementUnlocked, map[string]interface{}{
				"achievement_id":   achievement.ID.Hex(),
				"achievement_name": achievement.Name,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to credit achievement reward: %w", err)
			}
		}

		return nil, nil
	})
	if err != nil {
		return false, mapTransactionError(err)
	}

	return inserted, nil
}

func (s *achievementService) ListForAccount(ctx context.Context, accountID primitive.ObjectID) ([]models.AchievementStatus, error) {
	achievements, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	unlocks, err := s.achievementRepo.ListUnlocks(ctx, accountID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[primitive.ObjectID]time.Time, len(unlocks))
	for _, unlock := range unlocks {
		unlockedAt[unlock.AchievementID] = unlock.UnlockedAt
	}

	statuses := make([]models.AchievementStatus, 0, len(achievements))
	for _, achievement := range achievements {
		status := models.AchievementStatus{Achievement: achievement}
		if at, ok := unlockedAt[achievement.ID]; ok {
			status.Unlocked = true
			status.UnlockedAt = &at
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

func (s *achievementService) catalog(ctx context.Context) ([]*models.Achievement, error) {
	var cached []*models.Achievement
	if err := s.cache.Get(ctx, utils.CacheAchievementCatalogKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	achievements, err := s.achievementRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement catalog: %w", err)
	}

	if len(achievements) > 0 {
		_ = s.cache.Set(ctx, utils.CacheAchievementCatalogKey, achievements, utils.CatalogCacheTTL)
	}

	return achievements, nil
}
