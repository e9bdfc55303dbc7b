package services

import (
	"context"
	"fmt"
	"time"

	"forkly/internal/models"
	"forkly/internal/repositories/interfaces"
	"forkly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService writes the in-app feed. Deliveries are best effort: a
// failed write is logged and dropped so it can never roll back the balance
// or tier change that triggered it.
type NotificationService interface {
	NotifyTierUpgrade(ctx context.Context, accountID primitive.ObjectID, tier *models.Tier)
	NotifyAchievementUnlocked(ctx context.Context, accountID primitive.ObjectID, achievement *models.Achievement)
	NotifyRewardClaimed(ctx context.Context, accountID primitive.ObjectID, reward *models.Reward)

	Feed(ctx context.Context, accountID primitive.ObjectID, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, accountID, notificationID primitive.ObjectID) error
}

type notificationService struct {
	notificationRepo interfaces.NotificationRepository
	logger           *logger.Logger
}

func NewNotificationService(notificationRepo interfaces.NotificationRepository, log *logger.Logger) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		logger:           log,
	}
}

func (s *notificationService) NotifyTierUpgrade(ctx context.Context, accountID primitive.ObjectID, tier *models.Tier) {
	s.deliver(ctx, &models.Notification{
		AccountID: accountID,
		Type:      models.NotificationTypeTierUpgraded,
		Title:     fmt.Sprintf("You reached the %s tier!", tier.Name),
		Message:   fmt.Sprintf("Your referrals moved you up to %s. Keep inviting friends to climb higher.", tier.Name),
		Data: map[string]interface{}{
			"tier_id":   tier.ID.Hex(),
			"tier_name": tier.Name,
		},
	})
}

func (s *notificationService) NotifyAchievementUnlocked(ctx context.Context, accountID primitive.ObjectID, achievement *models.Achievement) {
	s.deliver(ctx, &models.Notification{
		AccountID: accountID,
		Type:      models.NotificationTypeAchievementUnlocked,
		Title:     fmt.Sprintf("Achievement unlocked: %s", achievement.Name),
		Message:   achievement.Description,
		Data: map[string]interface{}{
			"achievement_id": achievement.ID.Hex(),
			"points_reward":  achievement.PointsReward,
		},
	})
}

func (s *notificationService) NotifyRewardClaimed(ctx context.Context, accountID primitive.ObjectID, reward *models.Reward) {
	s.deliver(ctx, &models.Notification{
		AccountID: accountID,
		Type:      models.NotificationTypeRewardClaimed,
		Title:     fmt.Sprintf("Reward claimed: %s", reward.Name),
		Message:   reward.Description,
		Data: map[string]interface{}{
			"reward_id":   reward.ID.Hex(),
			"points_cost": reward.PointsCost,
		},
	})
}

func (s *notificationService) deliver(ctx context.Context, notification *models.Notification) {
	notification.Status = models.NotificationStatusUnread
	notification.CreatedAt = time.Now()

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"account_id": notification.AccountID.Hex(),
			"type":       string(notification.Type),
		}).Warn("Failed to deliver notification")
	}
}

func (s *notificationService) Feed(ctx context.Context, accountID primitive.ObjectID, limit int) ([]*models.Notification, error) {
	return s.notificationRepo.ListByAccount(ctx, accountID, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, accountID, notificationID primitive.ObjectID) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, accountID)
}
