package interfaces

import (
	"context"

	"forkly/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByAccount(ctx context.Context, accountID primitive.ObjectID, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, accountID primitive.ObjectID) error
}
