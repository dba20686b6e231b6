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

// MySQLFolderRepository implements Folder persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLFolderRepository struct {
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

// Create inserts a new folder into the MySQL database.
func (m *MySQLFolderRepository) Create(ctx context.Context, folder *foldersDomain.Folder) error {
	querier := database.GetTx(ctx, m.db)

	id, err := folder.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal folder id")
	}

	parentID, err := marshalOptionalUUID(folder.ParentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal parent id")
	}

	query := `INSERT INTO folders (id, name, parent_id, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		folder.Name,
		parentID,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create folder")
	}
	return nil
}

// Get retrieves a folder by ID.
func (m *MySQLFolderRepository) Get(
	ctx context.Context,
	folderID uuid.UUID,
) (*foldersDomain.Folder, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := folderID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal folder id")
	}

	query := `SELECT id, name, parent_id, created_at, updated_at FROM folders WHERE id = ?`

	return m.scanFolder(querier.QueryRowContext(ctx, query, id))
}

// GetByNameAndParent retrieves a folder by name under the given parent
// (nil parent means the root level).
func (m *MySQLFolderRepository) GetByNameAndParent(
	ctx context.Context,
	name string,
	parentID *uuid.UUID,
) (*foldersDomain.Folder, error) {
	querier := database.GetTx(ctx, m.db)

	var row *sql.Row
	if parentID == nil {
		query := `SELECT id, name, parent_id, created_at, updated_at
				  FROM folders WHERE name = ? AND parent_id IS NULL`
		row = querier.QueryRowContext(ctx, query, name)
	} else {
		parent, err := parentID.MarshalBinary()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal parent id")
		}
		query := `SELECT id, name, parent_id, created_at, updated_at
				  FROM folders WHERE name = ? AND parent_id = ?`
		row = querier.QueryRowContext(ctx, query, name, parent)
	}

	return m.scanFolder(row)
}

// List retrieves folders ordered by name with pagination.
func (m *MySQLFolderRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*foldersDomain.Folder, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, parent_id, created_at, updated_at
			  FROM folders
			  ORDER BY name ASC
			  LIMIT ? OFFSET ?`

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
		var idBytes, parentIDBytes []byte

		err := rows.Scan(
			&idBytes,
			&folder.Name,
			&parentIDBytes,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan folder row")
		}

		if err := folder.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal folder id")
		}
		if folder.ParentID, err = unmarshalOptionalUUID(parentIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal parent id")
		}

		folders = append(folders, &folder)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating folder rows")
	}

	return folders, nil
}

// Update persists a changed folder (name and placement).
func (m *MySQLFolderRepository) Update(ctx context.Context, folder *foldersDomain.Folder) error {
	querier := database.GetTx(ctx, m.db)

	id, err := folder.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal folder id")
	}

	parentID, err := marshalOptionalUUID(folder.ParentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal parent id")
	}

	query := `UPDATE folders
			  SET name = ?,
			  	  parent_id = ?,
				  updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		folder.Name,
		parentID,
		folder.UpdatedAt,
		id,
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
func (m *MySQLFolderRepository) Delete(ctx context.Context, folderID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := folderID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal folder id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
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
func (m *MySQLFolderRepository) Exists(ctx context.Context, folderID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := folderID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal folder id")
	}

	var exists bool
	err = querier.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM folders WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check folder existence")
	}
	return exists, nil
}

func (m *MySQLFolderRepository) scanFolder(row *sql.Row) (*foldersDomain.Folder, error) {
	var folder foldersDomain.Folder
	var idBytes, parentIDBytes []byte

	err := row.Scan(
		&idBytes,
		&folder.Name,
		&parentIDBytes,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, foldersDomain.ErrFolderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get folder")
	}

	if err := folder.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal folder id")
	}
	if folder.ParentID, err = unmarshalOptionalUUID(parentIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal parent id")
	}

	return &folder, nil
}

// NewMySQLFolderRepository creates a new MySQL Folder repository.
func NewMySQLFolderRepository(db *sql.DB) *MySQLFolderRepository {
	return &MySQLFolderRepository{db: db}
}
