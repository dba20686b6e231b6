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

// MySQLSecretRepository implements Secret persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLSecretRepository struct {
	db *sql.DB
}

// marshalOptionalUUID converts a nullable UUID to its BINARY(16) form.
func marshalOptionalUUID(id *uuid.UUID) ([]byte, error) {
	if id == nil {
		return nil, nil
	}
	return id.MarshalBinary()
}

// unmarshalOptionalUUID converts nullable BINARY(16) bytes back to a UUID.
func unmarshalOptionalUUID(data []byte) (*uuid.UUID, error) {
	if data == nil {
		return nil, nil
	}
	var id uuid.UUID
	if err := id.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &id, nil
}

// Create inserts a new secret into the MySQL database.
func (m *MySQLSecretRepository) Create(ctx context.Context, secret *secretsDomain.Secret) error {
	querier := database.GetTx(ctx, m.db)

	id, err := secret.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal secret id")
	}

	folderID, err := marshalOptionalUUID(secret.FolderID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal folder id")
	}

	query := `INSERT INTO secrets (id, name, data, dek_id, folder_id, last_rotation, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		secret.Name,
		secret.Data,
		secret.DekID,
		folderID,
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
func (m *MySQLSecretRepository) Get(
	ctx context.Context,
	secretID uuid.UUID,
) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := secretID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal secret id")
	}

	query := `SELECT id, name, data, dek_id, folder_id, last_rotation, created_at, updated_at
			  FROM secrets WHERE id = ?`

	return m.scanSecret(querier.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a secret by its unique name.
func (m *MySQLSecretRepository) GetByName(
	ctx context.Context,
	name string,
) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, data, dek_id, folder_id, last_rotation, created_at, updated_at
			  FROM secrets WHERE name = ?`

	return m.scanSecret(querier.QueryRowContext(ctx, query, name))
}

// List retrieves secrets ordered by name with pagination. The encrypted data
// column is not loaded; listing never touches key material.
func (m *MySQLSecretRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, dek_id, folder_id, last_rotation, created_at, updated_at
			  FROM secrets
			  ORDER BY name ASC
			  LIMIT ? OFFSET ?`

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
		var idBytes, folderIDBytes []byte

		err := rows.Scan(
			&idBytes,
			&secret.Name,
			&secret.DekID,
			&folderIDBytes,
			&secret.LastRotation,
			&secret.CreatedAt,
			&secret.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan secret row")
		}

		if err := secret.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal secret id")
		}
		if secret.FolderID, err = unmarshalOptionalUUID(folderIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal folder id")
		}

		secrets = append(secrets, &secret)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating secret rows")
	}

	return secrets, nil
}

// Update persists a changed secret (data, dek_id, folder_id, last_rotation).
func (m *MySQLSecretRepository) Update(ctx context.Context, secret *secretsDomain.Secret) error {
	querier := database.GetTx(ctx, m.db)

	id, err := secret.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal secret id")
	}

	folderID, err := marshalOptionalUUID(secret.FolderID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal folder id")
	}

	query := `UPDATE secrets
			  SET data = ?,
			  	  dek_id = ?,
				  folder_id = ?,
				  last_rotation = ?,
				  updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		secret.Data,
		secret.DekID,
		folderID,
		secret.LastRotation,
		secret.UpdatedAt,
		id,
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
func (m *MySQLSecretRepository) Delete(ctx context.Context, secretID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := secretID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal secret id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM secrets WHERE id = ?`, id)
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
func (m *MySQLSecretRepository) CountByDekID(ctx context.Context, dekID uint32) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM secrets WHERE dek_id = ?`, dekID).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count secrets by dek")
	}
	return count, nil
}

func (m *MySQLSecretRepository) scanSecret(row *sql.Row) (*secretsDomain.Secret, error) {
	var secret secretsDomain.Secret
	var idBytes, folderIDBytes []byte

	err := row.Scan(
		&idBytes,
		&secret.Name,
		&secret.Data,
		&secret.DekID,
		&folderIDBytes,
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

	if err := secret.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal secret id")
	}
	if secret.FolderID, err = unmarshalOptionalUUID(folderIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal folder id")
	}

	return &secret, nil
}

// NewMySQLSecretRepository creates a new MySQL Secret repository.
func NewMySQLSecretRepository(db *sql.DB) *MySQLSecretRepository {
	return &MySQLSecretRepository{db: db}
}
