// Package repository implements data persistence for secret management.
// Repositories support both PostgreSQL and MySQL with transaction support
// via database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/keywarden/keywarden/internal/database"
	apperrors "github.com/keywarden/keywarden/internal/errors"
	secretsDomain "github.com/keywarden/keywarden/internal/secrets/domain"
)

// PostgreSQLSecretRepository implements Secret persistence for PostgreSQL.
type PostgreSQLSecretRepository struct {
	db *sql.DB
}

// Create inserts a new secret into the PostgreSQL database.
func (p *PostgreSQLSecretRepository) Create(ctx context.Context, secret *secretsDomain.Secret) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secrets (id, name, data, dek_id, folder_id, last_rotation, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		secret.ID,
		secret.Name,
		secret.Data,
		secret.DekID,
		secret.FolderID,
		secret.LastRotation,
		secret.CreatedAt,
		secret.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Get retrieves a secret by ID.
func (p *PostgreSQLSecretRepository) Get(
	ctx context.Context,
	secretID uuid.UUID,
) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, data, dek_id, folder_id, last_rotation, created_at, updated_at
			  FROM secrets WHERE id = $1`

	return p.scanSecret(querier.QueryRowContext(ctx, query, secretID))
}

// GetByName retrieves a secret by its unique name.
func (p *PostgreSQLSecretRepository) GetByName(
	ctx context.Context,
	name string,
) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, data, dek_id, folder_id, last_rotation, created_at, updated_at
			  FROM secrets WHERE name = $1`

	return p.scanSecret(querier.QueryRowContext(ctx, query, name))
}

// List retrieves secrets ordered by name with pagination. The encrypted data
// column is not loaded; listing never touches key material.
func (p *PostgreSQLSecretRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, dek_id, folder_id, last_rotation, created_at, updated_at
			  FROM secrets
			  ORDER BY name ASC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets")
	}
	defer func() {
		_ = rows.Close()
	}()

	secrets := make([]*secretsDomain.Secret, 0)
	for rows.Next() {
		var secret secretsDomain.Secret
		err := rows.Scan(
			&secret.ID,
			&secret.Name,
			&secret.DekID,
			&secret.FolderID,
			&secret.LastRotation,
			&secret.CreatedAt,
			&secret.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan secret row")
		}
		secrets = append(secrets, &secret)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating secret rows")
	}

	return secrets, nil
}

// Update persists a changed secret (data, dek_id, folder_id, last_rotation).
func (p *PostgreSQLSecretRepository) Update(ctx context.Context, secret *secretsDomain.Secret) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secrets
			  SET data = $1,
			  	  dek_id = $2,
				  folder_id = $3,
				  last_rotation = $4,
				  updated_at = $5
			  WHERE id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		secret.Data,
		secret.DekID,
		secret.FolderID,
		secret.LastRotation,
		secret.UpdatedAt,
		secret.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update secret")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return secretsDomain.ErrSecretNotFound
	}
	return nil
}

// Delete removes a secret by ID.
func (p *PostgreSQLSecretRepository) Delete(ctx context.Context, secretID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM secrets WHERE id = $1`, secretID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete secret")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return secretsDomain.ErrSecretNotFound
	}
	return nil
}

// CountByDekID returns the number of secrets sealed under the given DEK.
// Used to refuse deleting a DEK that secrets still reference.
func (p *PostgreSQLSecretRepository) CountByDekID(ctx context.Context, dekID uint32) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM secrets WHERE dek_id = $1`, dekID).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count secrets by dek")
	}
	return count, nil
}

func (p *PostgreSQLSecretRepository) scanSecret(row *sql.Row) (*secretsDomain.Secret, error) {
	var secret secretsDomain.Secret

	err := row.Scan(
		&secret.ID,
		&secret.Name,
		&secret.Data,
		&secret.DekID,
		&secret.FolderID,
		&secret.LastRotation,
		&secret.CreatedAt,
		&secret.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, secretsDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret")
	}

	return &secret, nil
}

// NewPostgreSQLSecretRepository creates a new PostgreSQL Secret repository.
func NewPostgreSQLSecretRepository(db *sql.DB) *PostgreSQLSecretRepository {
	return &PostgreSQLSecretRepository{db: db}
}
