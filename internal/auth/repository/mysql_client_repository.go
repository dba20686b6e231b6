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

// MySQLClientRepository implements Client persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLClientRepository struct {
	db *sql.DB
}

// Create inserts a new Client into the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	querier := database.GetTx(ctx, m.db)

	rolesJSON, err := json.Marshal(client.Roles)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client roles")
	}

	permissionsJSON, err := json.Marshal(client.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client permissions")
	}

	id, err := client.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `INSERT INTO clients (id, name, secret, is_active, roles, permissions, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

// Get retrieves a Client by ID from the MySQL database.
func (m *MySQLClientRepository) Get(
	ctx context.Context,
	clientID uuid.UUID,
) (*authDomain.Client, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := clientID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `SELECT id, name, secret, is_active, roles, permissions, created_at, updated_at, last_used_at
			  FROM clients WHERE id = ?`

	return m.scanClient(querier.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a Client by its unique name from the MySQL database.
func (m *MySQLClientRepository) GetByName(
	ctx context.Context,
	name string,
) (*authDomain.Client, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, secret, is_active, roles, permissions, created_at, updated_at, last_used_at
			  FROM clients WHERE name = ?`

	return m.scanClient(querier.QueryRowContext(ctx, query, name))
}

// UpdateLastUsed records a successful login timestamp for the client.
func (m *MySQLClientRepository) UpdateLastUsed(
	ctx context.Context,
	clientID uuid.UUID,
	lastUsedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := clientID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `UPDATE clients SET last_used_at = ? WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, lastUsedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update client last used")
	}
	return nil
}

// Deactivate marks a client as inactive, revoking its ability to log in.
func (m *MySQLClientRepository) Deactivate(ctx context.Context, clientID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := clientID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `UPDATE clients SET is_active = false, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, time.Now(), id)
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
func (m *MySQLClientRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count clients")
	}
	return count, nil
}

func (m *MySQLClientRepository) scanClient(row *sql.Row) (*authDomain.Client, error) {
	var client authDomain.Client
	var idBytes []byte
	var rolesJSON, permissionsJSON []byte

	err := row.Scan(
		&idBytes,
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

	if err := client.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client id")
	}
	if err := json.Unmarshal(rolesJSON, &client.Roles); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client roles")
	}
	if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client permissions")
	}

	return &client, nil
}

// NewMySQLClientRepository creates a new MySQL Client repository.
func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}
