package http

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// LoginRateLimitMiddleware enforces per-address rate limiting on the login
// endpoint. Login is unauthenticated, so the limit is keyed by the caller's
// remote address rather than a client id.
//
// Returns 429 Too Many Requests with a Retry-After header when the limit is
// exceeded.
func LoginRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	registry := &limiterRegistry{
		rps:   rps,
		burst: burst,
	}

	go registry.sweep(context.Background(), limiterSweepInterval)

	return func(c *gin.Context) {
		reservation := registry.acquire(c.ClientIP()).Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			retryAfter := rejectRateLimited(c, delay, "Too many login attempts. Please retry after the specified delay.")

			logger.Debug("login rate limit exceeded",
				slog.String("remote_addr", c.ClientIP()),
				slog.Int64("retry_after", retryAfter))
			return
		}

		c.Next()
	}
}
