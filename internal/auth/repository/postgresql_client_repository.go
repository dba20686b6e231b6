// Package repository implements data persistence for authentication clients.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16).
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
	"github.com/keywarden/keywarden/internal/database"
	apperrors "github.com/keywarden/keywarden/internal/errors"
)

// PostgreSQLClientRepository implements Client persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLClientRepository struct {
	db *sql.DB
}

// Create inserts a new Client into the PostgreSQL database.
func (p *PostgreSQLClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	rolesJSON, err := json.Marshal(client.Roles)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client roles")
	}

	permissionsJSON, err := json.Marshal(client.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client permissions")
	}

	query := `INSERT INTO clients (id, name, secret, is_active, roles, permissions, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		client.ID,
		client.Name,
		client.HashedSecret,
		client.IsActive,
		rolesJSON,
		permissionsJSON,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create client")
	}
	return nil
}

// Get retrieves a Client by ID from the PostgreSQL database.
func (p *PostgreSQLClientRepository) Get(
	ctx context.Context,
	clientID uuid.UUID,
) (*authDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, secret, is_active, roles, permissions, created_at, updated_at, last_used_at
			  FROM clients WHERE id = $1`

	return p.scanClient(querier.QueryRowContext(ctx, query, clientID))
}

// GetByName retrieves a Client by its unique name from the PostgreSQL database.
func (p *PostgreSQLClientRepository) GetByName(
	ctx context.Context,
	name string,
) (*authDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, secret, is_active, roles, permissions, created_at, updated_at, last_used_at
			  FROM clients WHERE name = $1`

	return p.scanClient(querier.QueryRowContext(ctx, query, name))
}

// UpdateLastUsed records a successful login timestamp for the client.
func (p *PostgreSQLClientRepository) UpdateLastUsed(
	ctx context.Context,
	clientID uuid.UUID,
	lastUsedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clients SET last_used_at = $1 WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, lastUsedAt, clientID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update client last used")
	}
	return nil
}

// Deactivate marks a client as inactive, revoking its ability to log in.
func (p *PostgreSQLClientRepository) Deactivate(ctx context.Context, clientID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clients SET is_active = false, updated_at = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, time.Now(), clientID)
	if err != nil {
		return apperrors.Wrap(err, "failed to deactivate client")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return authDomain.ErrClientNotFound
	}
	return nil
}

// Count returns the total number of clients.
func (p *PostgreSQLClientRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count clients")
	}
	return count, nil
}

func (p *PostgreSQLClientRepository) scanClient(row *sql.Row) (*authDomain.Client, error) {
	var client authDomain.Client
	var rolesJSON, permissionsJSON []byte

	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.HashedSecret,
		&client.IsActive,
		&rolesJSON,
		&permissionsJSON,
		&client.CreatedAt,
		&client.UpdatedAt,
		&client.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrClientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get client")
	}

	if err := json.Unmarshal(rolesJSON, &client.Roles); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client roles")
	}
	if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client permissions")
	}

	return &client, nil
}

// NewPostgreSQLClientRepository creates a new PostgreSQL Client repository.
func NewPostgreSQLClientRepository(db *sql.DB) *PostgreSQLClientRepository {
	return &PostgreSQLClientRepository{db: db}
}
