package middleware

import (
	"fmt"
	"net/http"
	"time"

	"copool/internal/services"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware applies a fixed-window per-client limit backed by the
// shared cache. The window key is the client IP plus the route group name so
// hot endpoints can carry their own budget.
func RateLimitMiddleware(cache services.CacheService, scope string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())

		count, err := cache.Increment(c.Request.Context(), key, window)
		if err != nil {
			// The limiter never takes the API down with it.
			c.Next()
			return
		}

		if count > limit {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
