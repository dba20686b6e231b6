// Package dto provides data transfer objects for authentication endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/keywarden/keywarden/internal/validation"
)

// RegisterClientRequest contains the parameters for registering a new client.
type RegisterClientRequest struct {
	Name        string   `json:"name" binding:"required"`
	Secret      string   `json:"secret" binding:"required"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Validate checks if the register client request is valid.
func (r *RegisterClientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.ClientName),
		validation.Field(&r.Secret, validation.Required, validation.Length(4, 500)),
		validation.Field(&r.Roles, validation.Each(validation.Length(1, 100))),
		validation.Field(&r.Permissions, validation.Each(validation.Length(1, 100))),
	)
}

// LoginRequest contains the credentials for a client login.
type LoginRequest struct {
	Name   string `json:"name" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Secret, validation.Required),
	)
}
