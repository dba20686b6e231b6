package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/keywarden/keywarden/internal/app"
	"github.com/keywarden/keywarden/internal/config"
	appHTTP "github.com/keywarden/keywarden/internal/http"
)

// RunServer starts the API with graceful shutdown support.
//
// Startup is strictly ordered: configuration is validated, the container
// opens the database and the KMS adapter, every persisted DEK is unwrapped
// into the keyring, a first DEK and the admin client are seeded when missing,
// and only then do the servers accept traffic. Any failure before that point
// exits non-zero; serving without a loaded keyring would turn every read into
// an apparent decryption failure.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	// Initializes the full dependency graph, including database and KMS.
	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	if err := prepareKeyMaterial(ctx, container, logger); err != nil {
		return err
	}

	clientUseCase, err := container.ClientUseCase()
	if err != nil {
		return fmt.Errorf("failed to get client use case: %w", err)
	}
	if err := clientUseCase.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap admin client: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 2)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErr <- fmt.Errorf("api server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return shutdownServers(cfg, server, metricsServer, nil)
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		return shutdownServers(cfg, server, metricsServer, err)
	}
}

// prepareKeyMaterial loads every persisted DEK into the keyring and seeds a
// first DEK on an empty installation.
func prepareKeyMaterial(ctx context.Context, container *app.Container, logger *slog.Logger) error {
	dekUseCase, err := container.DekUseCase(ctx)
	if err != nil {
		return fmt.Errorf("failed to get dek use case: %w", err)
	}

	if err := dekUseCase.LoadKeyring(ctx); err != nil {
		return fmt.Errorf("failed to load keyring: %w", err)
	}

	deks, err := dekUseCase.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list deks: %w", err)
	}
	if len(deks) == 0 {
		dek, err := dekUseCase.Create(ctx, "primary")
		if err != nil {
			return fmt.Errorf("failed to create initial dek: %w", err)
		}
		logger.Info("created initial dek", slog.Any("dek_id", dek.ID))
	}

	return nil
}

// shutdownServers gracefully stops both servers within the configured drain
// window, joining any errors with the triggering one.
func shutdownServers(
	cfg *config.Config,
	server *appHTTP.Server,
	metricsServer *appHTTP.MetricsServer,
	cause error,
) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()

	var shutdownErrors []error
	if cause != nil {
		shutdownErrors = append(shutdownErrors, cause)
	}

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
		}
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return errors.Join(shutdownErrors...)
	}
	return nil
}
