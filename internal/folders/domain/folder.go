// Package domain defines the core domain models for folder organization.
// Folders form a forest of trees; secrets may reference a folder for
// grouping.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Folder represents a node in the folder tree.
type Folder struct {
	// ID is the unique identifier for this folder.
	ID uuid.UUID
	// Name is unique among siblings (same ParentID), including the root level.
	Name string
	// ParentID is nil for root-level folders.
	ParentID *uuid.UUID
	// CreatedAt is the UTC timestamp when the folder was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last change.
	UpdatedAt time.Time
}
