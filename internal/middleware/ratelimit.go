package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"mescore/api/internal/config"
)

// RateLimit caps requests per client IP for a single route using INCR plus
// EXPIRE. A Redis failure fails open: losing the limiter must not take the
// login path down with it.
func RateLimit(cfg config.RateLimitConfig, client *redis.Client, log zerolog.Logger, name string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rl:%s:%s", name, c.ClientIP())

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(c.Request.Context(), key, cfg.Window)
		}

		if count > int64(limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(cfg.Window/time.Second)))
			abortError(c, http.StatusTooManyRequests, "too_many_requests")
			return
		}

		c.Next()
	}
}
