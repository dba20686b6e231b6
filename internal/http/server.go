// Package http assembles the Gin router and runs the API server.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
	authHTTP "github.com/keywarden/keywarden/internal/auth/http"
	authService "github.com/keywarden/keywarden/internal/auth/service"
	authUseCase "github.com/keywarden/keywarden/internal/auth/usecase"
	"github.com/keywarden/keywarden/internal/config"
	cryptoHTTP "github.com/keywarden/keywarden/internal/crypto/http"
	foldersHTTP "github.com/keywarden/keywarden/internal/folders/http"
	"github.com/keywarden/keywarden/internal/metrics"
	secretsHTTP "github.com/keywarden/keywarden/internal/secrets/http"
)

// RouterDeps carries everything the router needs to register routes.
type RouterDeps struct {
	Config *config.Config
	Logger *slog.Logger

	ClientHandler *authHTTP.ClientHandler
	DekHandler    *cryptoHTTP.DekHandler
	SecretHandler *secretsHTTP.SecretHandler
	FolderHandler *foldersHTTP.FolderHandler

	// Authentication middleware dependencies.
	ClientUseCase authUseCase.ClientUseCase
	TokenSigner   authService.TokenSigner

	// MeterProvider enables HTTP request metrics when non-nil.
	MeterProvider metric.MeterProvider
}

// NewRouter builds the Gin engine with the full middleware chain and route
// table.
//
// Middleware order: recovery, request id, logging, metrics, CORS. Everything
// under /v1 except login requires a valid token; login is public and rate
// limited by remote address instead of client id. DEK management and client
// registration additionally require the admin (wildcard) role.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	logger := deps.Logger

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(RequestLoggerMiddleware(logger))

	if deps.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MeterProvider))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	v1 := router.Group("/v1")

	// Login is the only unauthenticated endpoint.
	loginHandlers := []gin.HandlerFunc{}
	if cfg.RateLimitLoginEnabled {
		loginHandlers = append(loginHandlers,
			authHTTP.LoginRateLimitMiddleware(cfg.RateLimitLoginRequestsPerSec, cfg.RateLimitLoginBurst, logger))
	}
	loginHandlers = append(loginHandlers, deps.ClientHandler.LoginHandler)
	v1.POST("/client/login", loginHandlers...)

	authenticated := v1.Group("")
	authenticated.Use(authHTTP.AuthenticationMiddleware(deps.ClientUseCase, deps.TokenSigner, logger))
	if cfg.RateLimitEnabled {
		authenticated.Use(authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger))
	}

	adminOnly := authHTTP.RequireRoles(logger, authDomain.Wildcard)

	// Client management
	authenticated.POST("/client/register", adminOnly, deps.ClientHandler.RegisterHandler)
	authenticated.GET("/client/info/:id", deps.ClientHandler.InfoHandler)
	authenticated.DELETE("/client/:id/revoke", deps.ClientHandler.RevokeHandler)

	// DEK management, admin only
	dek := authenticated.Group("/dek", adminOnly)
	dek.POST("", deps.DekHandler.CreateHandler)
	dek.GET("", deps.DekHandler.ListHandler)
	dek.GET("/:id", deps.DekHandler.GetHandler)
	dek.DELETE("/:id", deps.DekHandler.DeleteHandler)
	dek.POST("/rotate-kek", deps.DekHandler.RotateKekHandler)

	// Secrets
	authenticated.POST("/secret", deps.SecretHandler.CreateHandler)
	authenticated.GET("/secret", deps.SecretHandler.ListHandler)
	authenticated.GET("/secret/:id", deps.SecretHandler.GetHandler)
	authenticated.PUT("/secret/:id", deps.SecretHandler.UpdateHandler)
	authenticated.DELETE("/secret/:id", deps.SecretHandler.DeleteHandler)

	// Folders
	authenticated.POST("/folder", deps.FolderHandler.CreateHandler)
	authenticated.GET("/folder", deps.FolderHandler.ListHandler)
	authenticated.GET("/folder/:id", deps.FolderHandler.GetHandler)
	authenticated.PUT("/folder/:id", deps.FolderHandler.UpdateHandler)
	authenticated.DELETE("/folder/:id", deps.FolderHandler.DeleteHandler)

	return router
}

// Timeouts shared by the API and metrics listeners. Secrets are small
// payloads; anything holding a connection longer than this is a stuck client.
const (
	serverReadTimeout  = 15 * time.Second
	serverWriteTimeout = 15 * time.Second
	serverIdleTimeout  = 60 * time.Second
)

// newHTTPServer builds an http.Server with the shared timeouts.
func newHTTPServer(host string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Handler:      handler,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}
}

// Server runs the API over an http.Server with sane timeouts.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the API server around a prepared router.
func NewServer(host string, port int, router *gin.Engine, logger *slog.Logger) *Server {
	return &Server{
		logger: logger,
		server: newHTTPServer(host, port, router),
	}
}

// GetHandler exposes the underlying handler for tests that drive requests directly.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
