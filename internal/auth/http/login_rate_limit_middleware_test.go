package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRateLimitTestRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.POST("/login", LoginRateLimitMiddleware(rps, burst, logger), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func postLogin(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestLoginRateLimitMiddleware(t *testing.T) {
	t.Run("allows within burst", func(t *testing.T) {
		router := newRateLimitTestRouter(1, 3)

		for i := 0; i < 3; i++ {
			w := postLogin(router, "10.0.0.1:1234")
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("rejects beyond burst with retry-after", func(t *testing.T) {
		router := newRateLimitTestRouter(0.1, 1)

		assert.Equal(t, http.StatusOK, postLogin(router, "10.0.0.2:1234").Code)

		w := postLogin(router, "10.0.0.2:1234")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("addresses are limited independently", func(t *testing.T) {
		router := newRateLimitTestRouter(0.1, 1)

		assert.Equal(t, http.StatusOK, postLogin(router, "10.0.0.3:1234").Code)
		assert.Equal(t, http.StatusTooManyRequests, postLogin(router, "10.0.0.3:1234").Code)
		assert.Equal(t, http.StatusOK, postLogin(router, "10.0.0.4:1234").Code)
	})
}
