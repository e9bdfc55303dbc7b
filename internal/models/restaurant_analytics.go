package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReservationWindows holds completed-reservation counts for three trailing
// 30-day windows: latest is the most recent ~30 days, prior the 30 days before
// that, oldest the 30 days before prior.
type ReservationWindows struct {
	Latest int64 `json:"latest" bson:"latest"`
	Prior  int64 `json:"prior" bson:"prior"`
	Oldest int64 `json:"oldest" bson:"oldest"`
}

// RestaurantActivityAggregate is refreshed by the restaurant-analytics
// collaborator; the forecasting core only reads it.
type RestaurantActivityAggregate struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RestaurantID     primitive.ObjectID `json:"restaurant_id" bson:"restaurant_id" validate:"required"`
	Reservations     ReservationWindows `json:"reservations" bson:"reservations"`
	AverageTicket    float64            `json:"average_ticket" bson:"average_ticket"`
	AverageRating    float64            `json:"average_rating" bson:"average_rating"`
	TotalReviews     int64              `json:"total_reviews" bson:"total_reviews"`
	TimesInLists     int64              `json:"times_in_lists" bson:"times_in_lists"`
	TimesRecommended int64              `json:"times_recommended" bson:"times_recommended"`
	LastUpdated      time.Time          `json:"last_updated" bson:"last_updated"`
}
