package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/keywarden/keywarden/internal/app"
	"github.com/keywarden/keywarden/internal/config"
)

// migrationSource returns the file:// source for the configured driver. Each
// driver keeps its own directory because the SQL dialects differ.
func migrationSource(driver string) string {
	if driver == "mysql" {
		return "file://migrations/mysql"
	}
	return "file://migrations/postgresql"
}

// RunMigrations applies all pending database migrations for the configured
// driver and logs the schema version the database ended up at. Running with
// nothing to apply is not an error.
func RunMigrations() error {
	cfg := config.Load()

	// The container is only used for its logger; migrate manages its own
	// database connection.
	container := app.NewContainer(cfg)
	logger := container.Logger()

	source := migrationSource(cfg.DBDriver)
	logger.Info("running database migrations",
		slog.String("driver", cfg.DBDriver),
		slog.String("source", source),
	)

	m, err := migrate.New(source, cfg.DBConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("migrations completed",
		slog.Uint64("schema_version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}
