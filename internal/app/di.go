// Package app provides the dependency injection container assembling all
// application components. Components are created lazily on first access and
// shared afterwards.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/keywarden/keywarden/internal/config"
	"github.com/keywarden/keywarden/internal/database"
	"github.com/keywarden/keywarden/internal/http"
	"github.com/keywarden/keywarden/internal/metrics"
)

// Container holds all application dependencies and provides methods to access
// them. It follows the lazy initialization pattern - components are created on
// first access.
type Container struct {
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Module components, initialized in di_crypto.go, di_auth.go,
	// di_secrets.go and di_folders.go.
	crypto  cryptoComponents
	auth    authComponents
	secrets secretsComponents
	folders foldersComponents

	mu         sync.Mutex
	once       map[string]*sync.Once
	initErrors map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		once:       make(map[string]*sync.Once),
		initErrors: make(map[string]error),
	}
}

// Config exposes the loaded configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// initOnce runs fn exactly once under the given key and remembers its error.
func (c *Container) initOnce(key string, fn func() error) error {
	c.mu.Lock()
	once, ok := c.once[key]
	if !ok {
		once = new(sync.Once)
		c.once[key] = once
	}
	c.mu.Unlock()

	once.Do(func() {
		if err := fn(); err != nil {
			c.mu.Lock()
			c.initErrors[key] = err
			c.mu.Unlock()
		}
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[key]
}

// Logger returns the process-wide logger.
func (c *Container) Logger() *slog.Logger {
	_ = c.initOnce("logger", func() error {
		c.logger = c.initLogger()
		return nil
	})
	return c.logger
}

// DB returns the lazily opened connection pool.
func (c *Container) DB() (*sql.DB, error) {
	err := c.initOnce("db", func() error {
		db, err := database.Connect(database.PoolConfig{
			Driver:           c.config.DBDriver,
			ConnectionString: c.config.DBConnectionString,
			MaxOpenConns:     c.config.DBMaxOpenConnections,
			MaxIdleConns:     c.config.DBMaxIdleConnections,
			ConnMaxLifetime:  c.config.DBConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.db = db
		return nil
	})
	return c.db, err
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	err := c.initOnce("txManager", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		c.txManager = database.NewTxManager(db)
		return nil
	})
	return c.txManager, err
}

// MetricsProvider returns the metrics provider, or nil when metrics are
// disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	err := c.initOnce("metricsProvider", func() error {
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create metrics provider: %w", err)
		}
		c.metricsProvider = provider
		return nil
	})
	return c.metricsProvider, err
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder is
// returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	err := c.initOnce("businessMetrics", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return nil
		}
		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider())
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		return nil
	})
	return c.businessMetrics, err
}

// HTTPServer returns the API server with the full route table wired. The
// context is used to create the KMS client on first initialization.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	err := c.initOnce("httpServer", func() error {
		clientHandler, err := c.ClientHandler()
		if err != nil {
			return fmt.Errorf("failed to get client handler for http server: %w", err)
		}
		dekHandler, err := c.DekHandler(ctx)
		if err != nil {
			return fmt.Errorf("failed to get dek handler for http server: %w", err)
		}
		secretHandler, err := c.SecretHandler()
		if err != nil {
			return fmt.Errorf("failed to get secret handler for http server: %w", err)
		}
		folderHandler, err := c.FolderHandler()
		if err != nil {
			return fmt.Errorf("failed to get folder handler for http server: %w", err)
		}
		clientUseCase, err := c.ClientUseCase()
		if err != nil {
			return fmt.Errorf("failed to get client use case for http server: %w", err)
		}
		tokenSigner, err := c.TokenSigner()
		if err != nil {
			return fmt.Errorf("failed to get token signer for http server: %w", err)
		}

		deps := http.RouterDeps{
			Config:        c.config,
			Logger:        c.Logger(),
			ClientHandler: clientHandler,
			DekHandler:    dekHandler,
			SecretHandler: secretHandler,
			FolderHandler: folderHandler,
			ClientUseCase: clientUseCase,
			TokenSigner:   tokenSigner,
		}

		if provider, err := c.MetricsProvider(); err != nil {
			return err
		} else if provider != nil {
			deps.MeterProvider = provider.MeterProvider()
		}

		router := http.NewRouter(deps)
		c.httpServer = http.NewServer(c.config.ServerHost, c.config.ServerPort, router, c.Logger())
		return nil
	})
	return c.httpServer, err
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	err := c.initOnce("metricsServer", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
		return nil
	})
	return c.metricsServer, err
}

// Shutdown performs cleanup of all initialized resources. The rotator is
// drained before the database connection closes so queued re-encryptions
// finish or drop cleanly.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	rotator := c.secrets.rotator
	kmsCloser := c.crypto.kmsCloser
	keyring := c.crypto.keyring
	provider := c.metricsProvider
	db := c.db
	c.mu.Unlock()

	var shutdownErrors []error

	if rotator != nil {
		rotator.Close()
	}

	if kmsCloser != nil {
		if err := kmsCloser.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms adapter close: %w", err))
		}
	}

	if keyring != nil {
		keyring.Close()
	}

	if provider != nil {
		if err := provider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if db != nil {
		if err := db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates a structured JSON logger based on the configured level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
