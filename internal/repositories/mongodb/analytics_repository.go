package mongodb

import (
	"context"
	"fmt"

	"forkly/internal/models"
	"forkly/internal/repositories/interfaces"
	"forkly/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type analyticsRepository struct {
	collection *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) interfaces.AnalyticsRepository {
	return &analyticsRepository{
		collection: db.Collection("restaurant_analytics"),
	}
}

func (r *analyticsRepository) GetAggregate(ctx context.Context, restaurantID primitive.ObjectID) (*models.RestaurantActivityAggregate, error) {
	var aggregate models.RestaurantActivityAggregate
	err := r.collection.FindOne(ctx, bson.M{"restaurant_id": restaurantID}).Decode(&aggregate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.ErrAggregateNotFound
		}
		return nil, fmt.Errorf("failed to get restaurant aggregate: %w", err)
	}

	return &aggregate, nil
}
