package services

import (
	"context"
	"time"

	"forkly/internal/models"
	"forkly/internal/repositories/interfaces"
	"forkly/pkg/forecast"
	"forkly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RevenueForecast pairs the projection with the aggregate it was derived
// from, so callers can show the inputs next to the estimate.
type RevenueForecast struct {
	RestaurantID  string                    `json:"restaurant_id"`
	Projection    *forecast.Projection      `json:"projection"`
	Reservations  models.ReservationWindows `json:"reservations"`
	AverageTicket float64                   `json:"average_ticket"`
	GeneratedAt   time.Time                 `json:"generated_at"`
}

type ForecastService interface {
	GetForecast(ctx context.Context, restaurantID primitive.ObjectID) (*RevenueForecast, error)
}

type forecastService struct {
	analyticsRepo interfaces.AnalyticsRepository
	projector     *forecast.RevenueProjector
	logger        *logger.Logger
}

func NewForecastService(analyticsRepo interfaces.AnalyticsRepository, log *logger.Logger) ForecastService {
	return &forecastService{
		analyticsRepo: analyticsRepo,
		projector:     forecast.NewRevenueProjector(),
		logger:        log,
	}
}

func (s *forecastService) GetForecast(ctx context.Context, restaurantID primitive.ObjectID) (*RevenueForecast, error) {
	aggregate, err := s.analyticsRepo.GetAggregate(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	projection := s.projector.Project(&forecast.ProjectionInput{
		CountsLatest:     aggregate.Reservations.Latest,
		CountsPrior:      aggregate.Reservations.Prior,
		CountsOldest:     aggregate.Reservations.Oldest,
		AverageTicket:    aggregate.AverageTicket,
		TimesInLists:     aggregate.TimesInLists,
		TimesRecommended: aggregate.TimesRecommended,
	})

	s.logger.WithRestaurantID(restaurantID).WithFields(map[string]interface{}{
		"direction": projection.Direction,
		"projected": projection.ProjectedRevenue,
	}).Debug("Revenue forecast generated")

	return &RevenueForecast{
		RestaurantID:  restaurantID.Hex(),
		Projection:    projection,
		Reservations:  aggregate.Reservations,
		AverageTicket: aggregate.AverageTicket,
		GeneratedAt:   time.Now(),
	}, nil
}
