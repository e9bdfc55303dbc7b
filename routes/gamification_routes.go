package routes

import (
	handlers "forkly/internal/handlers/shared"
	"forkly/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupGamificationRoutes registers the loyalty, referral, achievement and
// reward routes.
func SetupGamificationRoutes(
	r *gin.RouterGroup,
	jwtSecret string,
	loyaltyHandler *handlers.LoyaltyHandler,
	gamificationHandler *handlers.GamificationHandler,
) {
	// Public registration hook; referral codes arrive with the signup payload.
	referrals := r.Group("/referrals")
	{
		referrals.POST("/register", loyaltyHandler.Register)
	}

	reviews := r.Group("/reviews")
	reviews.Use(middleware.AuthRequired(jwtSecret))
	{
		reviews.POST("/recorded", loyaltyHandler.ReviewRecorded)
	}

	gamification := r.Group("/gamification")
	gamification.Use(middleware.AuthRequired(jwtSecret))
	{
		gamification.GET("/stats", loyaltyHandler.GetStats)
		gamification.GET("/ledger", loyaltyHandler.GetLedger)
		gamification.GET("/leaderboard", loyaltyHandler.GetLeaderboard)
		gamification.GET("/achievements", gamificationHandler.GetAchievements)
		gamification.POST("/achievements/check", loyaltyHandler.CheckAchievements)
		gamification.GET("/rewards", gamificationHandler.GetRewards)
		gamification.POST("/rewards/claim", gamificationHandler.ClaimReward)
		gamification.POST("/rewards/use", gamificationHandler.UseReward)
	}

	invites := r.Group("/invites")
	invites.Use(middleware.AuthRequired(jwtSecret))
	{
		invites.GET("/my-link", loyaltyHandler.GetInviteLink)
	}
}

// SetupNotificationRoutes registers the in-app notification feed.
func SetupNotificationRoutes(r *gin.RouterGroup, jwtSecret string, notificationHandler *handlers.NotificationHandler) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthRequired(jwtSecret))
	{
		notifications.GET("/feed", notificationHandler.GetFeed)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
	}
}

// SetupForecastRoutes registers the restaurant revenue forecast route.
// Forecasts are restricted to restaurant owners.
func SetupForecastRoutes(r *gin.RouterGroup, jwtSecret string, forecastHandler *handlers.ForecastHandler) {
	restaurants := r.Group("/restaurants")
	restaurants.Use(middleware.AuthRequired(jwtSecret), middleware.RestaurantOwnerRequired())
	{
		restaurants.GET("/:id/forecast", forecastHandler.GetRestaurantForecast)
	}
}
