package handlers

import (
	"forkly/internal/services"
	"forkly/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ForecastHandler struct {
	forecastService services.ForecastService
}

func NewForecastHandler(forecastService services.ForecastService) *ForecastHandler {
	return &ForecastHandler{
		forecastService: forecastService,
	}
}

// GetRestaurantForecast returns the next-period revenue projection for a
// restaurant, derived from its activity aggregate.
func (h *ForecastHandler) GetRestaurantForecast(c *gin.Context) {
	restaurantID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid restaurant ID")
		return
	}

	result, err := h.forecastService.GetForecast(c.Request.Context(), restaurantID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Forecast generated successfully", result)
}
