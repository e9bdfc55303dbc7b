package interfaces

import (
	"context"

	"forkly/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalyticsRepository reads the per-restaurant activity aggregates owned and
// refreshed by the restaurant-analytics collaborator. The forecasting core
// never writes them.
type AnalyticsRepository interface {
	GetAggregate(ctx context.Context, restaurantID primitive.ObjectID) (*models.RestaurantActivityAggregate, error)
}
