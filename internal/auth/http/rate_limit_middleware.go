package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/keywarden/keywarden/internal/errors"
	"github.com/keywarden/keywarden/internal/httputil"
)

const (
	// limiterSweepInterval is how often idle limiters are collected.
	limiterSweepInterval = 5 * time.Minute

	// limiterIdleTTL is how long a client may stay silent before its limiter
	// is dropped. A returning client simply gets a fresh bucket.
	limiterIdleTTL = time.Hour
)

// limiterRegistry hands out one token bucket per key. The authenticated
// middleware keys by client id, the login middleware by remote address.
type limiterRegistry struct {
	entries sync.Map // string -> *clientLimiter
	rps     float64
	burst   int
}

// clientLimiter pairs a token bucket with the last time its owner called.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// rejectRateLimited writes the 429 response with a Retry-After header rounded
// up to whole seconds, so a sub-second delay never reports zero. Returns the
// reported seconds for logging.
func rejectRateLimited(c *gin.Context, delay time.Duration, message string) int64 {
	retryAfter := int64(math.Ceil(delay.Seconds()))

	c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":   "rate_limit_exceeded",
		"message": message,
	})
	c.Abort()
	return retryAfter
}

// RateLimitMiddleware enforces per-client rate limiting on authenticated
// requests. Must run after AuthenticationMiddleware; the limit is keyed by
// the authenticated client id with a token bucket via golang.org/x/time/rate.
//
// Returns 429 Too Many Requests with a Retry-After header when the limit is
// exceeded.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	registry := &limiterRegistry{
		rps:   rps,
		burst: burst,
	}

	go registry.sweep(context.Background(), limiterSweepInterval)

	return func(c *gin.Context) {
		client, ok := GetClient(c.Request.Context())
		if !ok || client == nil {
			// Only reachable when the middleware is mounted before authentication.
			logger.Error("rate limit middleware: no authenticated client in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		limiter := registry.acquire(client.ID.String())

		// A reservation with zero delay is an immediate token. Anything else
		// is handed back to the bucket and reported as Retry-After.
		reservation := limiter.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			retryAfter := rejectRateLimited(c, delay, "Too many requests. Please retry after the specified delay.")

			logger.Debug("rate limit exceeded",
				slog.String("client_id", client.ID.String()),
				slog.Int64("retry_after", retryAfter))
			return
		}

		c.Next()
	}
}

// acquire returns the key's limiter, creating it on first sight. When two
// requests race on the first sight, both end up sharing the bucket that won
// LoadOrStore.
func (r *limiterRegistry) acquire(key string) *rate.Limiter {
	now := time.Now().UnixNano()

	if val, ok := r.entries.Load(key); ok {
		entry := val.(*clientLimiter)
		entry.lastSeen.Store(now)
		return entry.limiter
	}

	entry := &clientLimiter{limiter: rate.NewLimiter(rate.Limit(r.rps), r.burst)}
	entry.lastSeen.Store(now)

	if existing, loaded := r.entries.LoadOrStore(key, entry); loaded {
		entry = existing.(*clientLimiter)
		entry.lastSeen.Store(now)
	}
	return entry.limiter
}

// sweep periodically drops limiters for clients that stopped calling so the
// registry does not grow without bound.
func (r *limiterRegistry) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.removeIdle(time.Now().Add(-limiterIdleTTL))
		}
	}
}

// removeIdle deletes every limiter whose owner has not called since cutoff.
func (r *limiterRegistry) removeIdle(cutoff time.Time) {
	r.entries.Range(func(key, value any) bool {
		if value.(*clientLimiter).lastSeen.Load() < cutoff.UnixNano() {
			r.entries.Delete(key)
		}
		return true
	})
}
