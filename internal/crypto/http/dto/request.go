// Package dto provides data transfer objects for DEK management endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/keywarden/keywarden/internal/validation"
)

// CreateDekRequest contains the parameters for creating a new DEK.
type CreateDekRequest struct {
	Name string `json:"name" binding:"required"`
}

// Validate checks if the create DEK request is valid.
func (r *CreateDekRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.DekName),
	)
}

// RotateKekRequest contains the parameters for a KEK rotation batch.
// OldKekID is optional; when set, only DEKs currently wrapped under it are
// rewrapped.
type RotateKekRequest struct {
	NewKekID string `json:"newKekId" binding:"required"`
	OldKekID string `json:"oldKekId"`
}

// Validate checks if the rotate KEK request is valid.
func (r *RotateKekRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.NewKekID, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.OldKekID, validation.Length(0, 500)),
	)
}
