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

// RewardService handles the reward catalog and the claim/use lifecycle. A
// claim inserts the grant and debits the cost in one transaction, so a failed
// debit never leaves an unpaid grant behind.
type RewardService interface {
	Claim(ctx context.Context, accountID, rewardID primitive.ObjectID) (*models.RewardGrant, error)
	Use(ctx context.Context, accountID, grantID primitive.ObjectID) (*models.RewardGrant, error)

	Catalog(ctx context.Context) ([]*models.Reward, error)
	ListGrants(ctx context.Context, accountID primitive.ObjectID) ([]*models.RewardGrant, error)
}

type rewardService struct {
	db            TxRunner
	rewardRepo    interfaces.RewardRepository
	points        PointsService
	notifications NotificationService
	cache         CacheService
	logger        *logger.Logger
}

func NewRewardService(
	db TxRunner,
	rewardRepo interfaces.RewardRepository,
	points PointsService,
	notifications NotificationService,
	cacheService CacheService,
	log *logger.Logger,
) RewardService {
	return &rewardService{
		db:            db,
		rewardRepo:    rewardRepo,
		points:        points,
		notifications: notifications,
		cache:         cacheService,
		logger:        log,
	}
}

func (s *rewardService) Claim(ctx context.Context, accountID, rewardID primitive.ObjectID) (*models.RewardGrant, error) {
	reward, err := s.rewardRepo.GetByID(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if !reward.IsActive {
		return nil, utils.ErrRewardNotFound
	}

	grant := &models.RewardGrant{
		AccountID: accountID,
		RewardID:  rewardID,
		ClaimedAt: time.Now(),
	}

	_, err = s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := s.rewardRepo.InsertGrant(sessCtx, grant); err != nil {
			return nil, err
		}
		err := s.points.DebitTx(sessCtx, accountID, reward.PointsCost, models.LedgerReasonRewardClaimed, map[string]interface{}{
			"reward_id":   rewardID.Hex(),
			"reward_name": reward.Name,
			"points_cost": reward.PointsCost,
		})
		if err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, mapTransactionError(err)
	}

	s.notifications.NotifyRewardClaimed(ctx, accountID, reward)

	s.logger.WithFields(map[string]interface{}{
		"account_id": accountID.Hex(),
		"reward":     reward.Name,
		"cost":       reward.PointsCost,
	}).Info("Reward claimed")

	return grant, nil
}

func (s *rewardService) Use(ctx context.Context, accountID, grantID primitive.ObjectID) (*models.RewardGrant, error) {
	grant, err := s.rewardRepo.GetGrant(ctx, grantID)
	if err != nil {
		return nil, err
	}
	if grant.AccountID != accountID {
		return nil, utils.ErrGrantNotFound
	}
	if grant.IsUsed {
		return nil, utils.ErrAlreadyUsed
	}

	marked, err := s.rewardRepo.MarkUsed(ctx, grantID, accountID)
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, utils.ErrAlreadyUsed
	}

	return s.rewardRepo.GetGrant(ctx, grantID)
}

func (s *rewardService) Catalog(ctx context.Context) ([]*models.Reward, error) {
	var cached []*models.Reward
	if err := s.cache.Get(ctx, utils.CacheRewardCatalogKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	rewards, err := s.rewardRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reward catalog: %w", err)
	}

	if len(rewards) > 0 {
		_ = s.cache.Set(ctx, utils.CacheRewardCatalogKey, rewards, utils.CatalogCacheTTL)
	}

	return rewards, nil
}

func (s *rewardService) ListGrants(ctx context.Context, accountID primitive.ObjectID) ([]*models.RewardGrant, error) {
	return s.rewardRepo.ListGrants(ctx, accountID)
}
