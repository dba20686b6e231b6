package domain

import (
	"github.com/keywarden/keywarden/internal/errors"
)

// Folder management errors.
var (
	// ErrFolderNotFound indicates the requested folder does not exist.
	ErrFolderNotFound = errors.Wrap(errors.ErrNotFound, "folder not found")

	// ErrFolderNameTaken indicates a sibling folder already carries the name.
	ErrFolderNameTaken = errors.Wrap(errors.ErrConflict, "folder name already exists under this parent")
)
