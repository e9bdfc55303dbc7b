package main

import (
	"fmt"
	"net/http"

	"forkly/internal/config"
	handlers "forkly/internal/handlers/shared"
	"forkly/internal/middleware"
	"forkly/internal/repositories/mongodb"
	"forkly/internal/services"
	"forkly/pkg/cache"
	"forkly/pkg/database"
	"forkly/pkg/logger"
	"forkly/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	db, err := database.NewMongoDB(&database.Config{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Repositories
	accountRepo := mongodb.NewAccountRepository(db.Database)
	ledgerRepo := mongodb.NewLedgerRepository(db.Database)
	referralRepo := mongodb.NewReferralRepository(db.Database)
	tierRepo := mongodb.NewTierRepository(db.Database)
	achievementRepo := mongodb.NewAchievementRepository(db.Database)
	rewardRepo := mongodb.NewRewardRepository(db.Database)
	analyticsRepo := mongodb.NewAnalyticsRepository(db.Database)
	notificationRepo := mongodb.NewNotificationRepository(db.Database)

	// Services
	cacheService := services.NewCacheService(redisCache, log)
	pointsService := services.NewPointsService(db, accountRepo, ledgerRepo, log)
	tierService := services.NewTierService(tierRepo, cacheService, log)
	achievementService := services.NewAchievementService(db, achievementRepo, pointsService, cacheService, log)
	notificationService := services.NewNotificationService(notificationRepo, log)
	rewardService := services.NewRewardService(db, rewardRepo, pointsService, notificationService, cacheService, log)
	loyaltyService := services.NewLoyaltyService(accountRepo, referralRepo, pointsService, tierService, achievementService, rewardService, notificationService, log)
	forecastService := services.NewForecastService(analyticsRepo, log)

	// Handlers
	loyaltyHandler := handlers.NewLoyaltyHandler(loyaltyService, cfg.App.BaseURL)
	gamificationHandler := handlers.NewGamificationHandler(achievementService, rewardService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	forecastHandler := handlers.NewForecastHandler(forecastService)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(log))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware(redisCache, cfg.Security.RateLimitPerMinute))
	{
		routes.SetupGamificationRoutes(v1, cfg.Security.JWTSecret, loyaltyHandler, gamificationHandler)
		routes.SetupNotificationRoutes(v1, cfg.Security.JWTSecret, notificationHandler)
		routes.SetupForecastRoutes(v1, cfg.Security.JWTSecret, forecastHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.WithField("addr", addr).Info("Starting server")
	if err := http.ListenAndServe(addr, router); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
