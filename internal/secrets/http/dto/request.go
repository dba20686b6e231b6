// Package dto provides data transfer objects for secret management endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/keywarden/keywarden/internal/validation"
)

// CreateSecretRequest contains the parameters for creating a new secret.
// FolderID, when present, must be a canonical UUID; the handler parses it.
type CreateSecretRequest struct {
	Name     string  `json:"name" binding:"required"`
	Value    string  `json:"value" binding:"required"`
	FolderID *string `json:"folderId"`
}

// Validate checks if the create secret request is valid.
func (r *CreateSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.SecretName),
		validation.Field(&r.Value, validation.Required, customValidation.SecretValue),
	)
}

// UpdateSecretRequest contains the parameters for updating a secret's value
// and placement.
type UpdateSecretRequest struct {
	Value    string  `json:"value" binding:"required"`
	FolderID *string `json:"folderId"`
}

// Validate checks if the update secret request is valid.
func (r *UpdateSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value, validation.Required, customValidation.SecretValue),
	)
}
