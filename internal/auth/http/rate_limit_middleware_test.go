package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
)

// withTestClient injects an authenticated client like the authentication
// middleware would.
func withTestClient(client *authDomain.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client != nil {
			c.Request = c.Request.WithContext(WithClient(c.Request.Context(), client))
		}
		c.Next()
	}
}

func newClientRateLimitRouter(rps float64, burst int, client *authDomain.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.GET("/probe",
		withTestClient(client),
		RateLimitMiddleware(rps, burst, logger),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	return router
}

func getProbe(router *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	client := &authDomain.Client{ID: uuid.Must(uuid.NewV7()), Name: "svc", IsActive: true}

	t.Run("allows within burst", func(t *testing.T) {
		router := newClientRateLimitRouter(1, 3, client)

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, getProbe(router).Code)
		}
	})

	t.Run("rejects beyond burst with retry-after", func(t *testing.T) {
		router := newClientRateLimitRouter(0.1, 1, client)

		assert.Equal(t, http.StatusOK, getProbe(router).Code)

		w := getProbe(router)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		limiter := RateLimitMiddleware(0.1, 1, logger)

		first := &authDomain.Client{ID: uuid.Must(uuid.NewV7()), Name: "first", IsActive: true}
		second := &authDomain.Client{ID: uuid.Must(uuid.NewV7()), Name: "second", IsActive: true}

		router := gin.New()
		router.GET("/first", withTestClient(first), limiter, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		router.GET("/second", withTestClient(second), limiter, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		do := func(path string) int {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w.Code
		}

		assert.Equal(t, http.StatusOK, do("/first"))
		assert.Equal(t, http.StatusTooManyRequests, do("/first"))
		assert.Equal(t, http.StatusOK, do("/second"))
	})

	t.Run("missing client is rejected", func(t *testing.T) {
		router := newClientRateLimitRouter(1, 1, nil)
		assert.Equal(t, http.StatusUnauthorized, getProbe(router).Code)
	})
}

func TestLimiterRegistry(t *testing.T) {
	t.Run("acquire reuses the same bucket per key", func(t *testing.T) {
		registry := &limiterRegistry{rps: 1, burst: 1}
		id := uuid.Must(uuid.NewV7()).String()

		first := registry.acquire(id)
		second := registry.acquire(id)
		assert.Same(t, first, second)
	})

	t.Run("removeIdle drops silent clients and keeps active ones", func(t *testing.T) {
		registry := &limiterRegistry{rps: 1, burst: 1}
		idle := "10.9.8.7"
		active := uuid.Must(uuid.NewV7()).String()

		registry.acquire(idle)
		registry.acquire(active)

		// Backdate the idle entry past the cutoff; the active entry was just
		// touched and stays.
		cutoff := time.Now().Add(-time.Minute)
		val, ok := registry.entries.Load(idle)
		assert.True(t, ok)
		val.(*clientLimiter).lastSeen.Store(cutoff.Add(-time.Hour).UnixNano())

		registry.removeIdle(cutoff)

		_, idleRemains := registry.entries.Load(idle)
		assert.False(t, idleRemains)
		_, activeRemains := registry.entries.Load(active)
		assert.True(t, activeRemains)
	})
}
