// Package dto provides data transfer objects for folder management endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/keywarden/keywarden/internal/validation"
)

// CreateFolderRequest contains the parameters for creating a new folder.
// ParentID, when present, must be a canonical UUID; the handler parses it.
type CreateFolderRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parentId"`
}

// Validate checks if the create folder request is valid.
func (r *CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.FolderName),
	)
}

// UpdateFolderRequest contains the parameters for renaming or moving a folder.
type UpdateFolderRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parentId"`
}

// Validate checks if the update folder request is valid.
func (r *UpdateFolderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.FolderName),
	)
}
