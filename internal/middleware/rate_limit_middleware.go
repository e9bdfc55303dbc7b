package middleware

import (
	"fmt"
	"net/http"
	"time"

	"forkly/pkg/cache"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware enforces a fixed window of requests per client IP per
// minute. When redis is unreachable the request is let through.
func RateLimitMiddleware(redisCache *cache.RedisCache, requestsPerMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), time.Now().Format("2006-01-02T15:04"))

		count, err := redisCache.Increment(c.Request.Context(), key)
		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			_ = redisCache.SetExpire(c.Request.Context(), key, time.Minute)
		}

		if count > int64(requestsPerMinute) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
