package repository

import (
	"context"
	"database/sql"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
	"github.com/keywarden/keywarden/internal/database"
	apperrors "github.com/keywarden/keywarden/internal/errors"
)

// MySQLDekRepository implements DEK persistence for MySQL.
// Uses AUTO_INCREMENT ids and BLOB wrapped keys with transaction support.
type MySQLDekRepository struct {
	db *sql.DB
}

// Create inserts a new DEK and fills in its generated id.
func (m *MySQLDekRepository) Create(ctx context.Context, dek *cryptoDomain.Dek) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO deks (name, wrapped_key, kek_id, version, is_active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		dek.Name,
		dek.WrappedKey,
		dek.KekID,
		dek.Version,
		dek.IsActive,
		dek.CreatedAt,
		dek.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create dek")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, "failed to read dek id")
	}
	dek.ID = uint32(id)

	return nil
}

// Get retrieves a DEK by its id.
func (m *MySQLDekRepository) Get(ctx context.Context, dekID uint32) (*cryptoDomain.Dek, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, wrapped_key, kek_id, version, is_active, created_at, updated_at
			  FROM deks
			  WHERE id = ?`

	var dek cryptoDomain.Dek
	err := querier.QueryRowContext(ctx, query, dekID).Scan(
		&dek.ID,
		&dek.Name,
		&dek.WrappedKey,
		&dek.KekID,
		&dek.Version,
		&dek.IsActive,
		&dek.CreatedAt,
		&dek.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrDekNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get dek")
	}

	return &dek, nil
}

// GetByName retrieves a DEK by its unique name.
func (m *MySQLDekRepository) GetByName(ctx context.Context, name string) (*cryptoDomain.Dek, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, wrapped_key, kek_id, version, is_active, created_at, updated_at
			  FROM deks
			  WHERE name = ?`

	var dek cryptoDomain.Dek
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&dek.ID,
		&dek.Name,
		&dek.WrappedKey,
		&dek.KekID,
		&dek.Version,
		&dek.IsActive,
		&dek.CreatedAt,
		&dek.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrDekNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get dek by name")
	}

	return &dek, nil
}

// List retrieves all DEKs ordered by id ascending.
func (m *MySQLDekRepository) List(ctx context.Context) ([]*cryptoDomain.Dek, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, wrapped_key, kek_id, version, is_active, created_at, updated_at
			  FROM deks
			  ORDER BY id ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list deks")
	}
	defer func() { _ = rows.Close() }()

	var deks []*cryptoDomain.Dek
	for rows.Next() {
		var dek cryptoDomain.Dek
		err := rows.Scan(
			&dek.ID,
			&dek.Name,
			&dek.WrappedKey,
			&dek.KekID,
			&dek.Version,
			&dek.IsActive,
			&dek.CreatedAt,
			&dek.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan dek")
		}
		deks = append(deks, &dek)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate deks")
	}

	return deks, nil
}

// Update modifies the wrapped key material, KEK reference and version of an
// existing DEK.
func (m *MySQLDekRepository) Update(ctx context.Context, dek *cryptoDomain.Dek) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE deks
			  SET wrapped_key = ?,
			  	  kek_id = ?,
				  version = ?,
				  is_active = ?,
				  updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		dek.WrappedKey,
		dek.KekID,
		dek.Version,
		dek.IsActive,
		dek.UpdatedAt,
		dek.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update dek")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check dek update")
	}
	if rows == 0 {
		return cryptoDomain.ErrDekNotFound
	}

	return nil
}

// Delete removes a DEK by its id.
func (m *MySQLDekRepository) Delete(ctx context.Context, dekID uint32) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM deks WHERE id = ?`, dekID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete dek")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check dek delete")
	}
	if rows == 0 {
		return cryptoDomain.ErrDekNotFound
	}

	return nil
}

// NewMySQLDekRepository creates a new MySQL DEK repository.
func NewMySQLDekRepository(db *sql.DB) *MySQLDekRepository {
	return &MySQLDekRepository{db: db}
}
