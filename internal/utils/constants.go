package utils

import "time"

const (
	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Referral
	ReferralCodeLength        = 8
	ReferralRegistrationBonus = int64(50)
	ReferralFirstReviewBonus  = int64(100)

	// Leaderboard
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 50

	// Notification feed
	DefaultFeedSize = 20

	// Catalog cache
	CatalogCacheTTL = 5 * time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
)

// Cache Keys
const (
	CacheTierCatalogKey        = "catalog:tiers"
	CacheAchievementCatalogKey = "catalog:achievements"
	CacheRewardCatalogKey      = "catalog:rewards"
)
