// Package database provides connection management and transaction plumbing
// shared by every repository.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// defaultPingTimeout bounds the reachability check in Connect.
const defaultPingTimeout = 5 * time.Second

// PoolConfig holds connection pool settings for one of the supported
// drivers. Field names mirror the database/sql setters they feed.
type PoolConfig struct {
	Driver           string
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	// PingTimeout bounds the startup reachability check; zero selects the
	// default of five seconds.
	PingTimeout time.Duration
}

// Connect opens a connection pool and verifies the database is reachable.
// Startup must fail here rather than on the first query: the keyring cannot
// load without the store, so an unreachable database means no service.
func Connect(cfg PoolConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
