// Package repository implements data persistence for folder organization.
// Sibling name uniqueness is backed by partial unique indexes on PostgreSQL;
// on MySQL the root level is enforced by the use case inside a transaction
// because MySQL unique indexes treat NULLs as distinct.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/keywarden/keywarden/internal/database"
	apperrors "github.com/keywarden/keywarden/internal/errors"
	foldersDomain "github.com/keywarden/keywarden/internal/folders/domain"
)

// PostgreSQLFolderRepository implements Folder persistence for PostgreSQL.
type PostgreSQLFolderRepository struct {
	db *sql.DB
}

// Create inserts a new folder into the PostgreSQL database.
func (p *PostgreSQLFolderRepository) Create(ctx context.Context, folder *foldersDomain.Folder) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO folders (id, name, parent_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		folder.ID,
		folder.Name,
		folder.ParentID,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create folder")
	}
	return nil
}

// Get retrieves a folder by ID.
func (p *PostgreSQLFolderRepository) Get(
	ctx context.Context,
	folderID uuid.UUID,
) (*foldersDomain.Folder, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, parent_id, created_at, updated_at FROM folders WHERE id = $1`

	var folder foldersDomain.Folder
	err := querier.QueryRowContext(ctx, query, folderID).Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, foldersDomain.ErrFolderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get folder")
	}

	return &folder, nil
}

// GetByNameAndParent retrieves a folder by name under the given parent
// (nil parent means the root level).
func (p *PostgreSQLFolderRepository) GetByNameAndParent(
	ctx context.Context,
	name string,
	parentID *uuid.UUID,
) (*foldersDomain.Folder, error) {
	querier := database.GetTx(ctx, p.db)

	var row *sql.Row
	if parentID == nil {
		query := `SELECT id, name, parent_id, created_at, updated_at
				  FROM folders WHERE name = $1 AND parent_id IS NULL`
		row = querier.QueryRowContext(ctx, query, name)
	} else {
		query := `SELECT id, name, parent_id, created_at, updated_at
				  FROM folders WHERE name = $1 AND parent_id = $2`
		row = querier.QueryRowContext(ctx, query, name, *parentID)
	}

	var folder foldersDomain.Folder
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, foldersDomain.ErrFolderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get folder by name")
	}

	return &folder, nil
}

// List retrieves folders ordered by name with pagination.
func (p *PostgreSQLFolderRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*foldersDomain.Folder, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, parent_id, created_at, updated_at
			  FROM folders
			  ORDER BY name ASC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list folders")
	}
	defer func() {
		_ = rows.Close()
	}()

	folders := make([]*foldersDomain.Folder, 0)
	for rows.Next() {
		var folder foldersDomain.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.ParentID,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan folder row")
		}
		folders = append(folders, &folder)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating folder rows")
	}

	return folders, nil
}

// Update persists a changed folder (name and placement).
func (p *PostgreSQLFolderRepository) Update(ctx context.Context, folder *foldersDomain.Folder) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE folders
			  SET name = $1,
			  	  parent_id = $2,
				  updated_at = $3
			  WHERE id = $4`

	result, err := querier.ExecContext(
		ctx,
		query,
		folder.Name,
		folder.ParentID,
		folder.UpdatedAt,
		folder.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update folder")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return foldersDomain.ErrFolderNotFound
	}
	return nil
}

// Delete removes a folder by ID. Child folders and contained secrets are
// removed by the database's cascade rules.
func (p *PostgreSQLFolderRepository) Delete(ctx context.Context, folderID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, folderID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete folder")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return foldersDomain.ErrFolderNotFound
	}
	return nil
}

// Exists reports whether a folder with the given ID exists.
func (p *PostgreSQLFolderRepository) Exists(ctx context.Context, folderID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	var exists bool
	err := querier.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM folders WHERE id = $1)`, folderID).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check folder existence")
	}
	return exists, nil
}

// NewPostgreSQLFolderRepository creates a new PostgreSQL Folder repository.
func NewPostgreSQLFolderRepository(db *sql.DB) *PostgreSQLFolderRepository {
	return &PostgreSQLFolderRepository{db: db}
}
