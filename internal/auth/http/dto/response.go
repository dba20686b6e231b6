package dto

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
)

// ClientResponse is the client representation returned by the API.
// The hashed secret is never exposed.
type ClientResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	IsActive    bool       `json:"isActive"`
	Roles       []string   `json:"roles"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
}

// MapClientToResponse converts a domain Client to its API representation.
func MapClientToResponse(client *authDomain.Client) *ClientResponse {
	return &ClientResponse{
		ID:          client.ID,
		Name:        client.Name,
		IsActive:    client.IsActive,
		Roles:       client.Roles,
		Permissions: client.Permissions,
		CreatedAt:   client.CreatedAt,
		UpdatedAt:   client.UpdatedAt,
		LastUsedAt:  client.LastUsedAt,
	}
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int64  `json:"expiresIn"`
}

// MapLoginToResponse converts a login result to its API representation.
func MapLoginToResponse(out *authDomain.LoginOutput) *LoginResponse {
	return &LoginResponse{
		Token:     out.Token,
		TokenType: "Bearer",
		ExpiresIn: out.ExpiresIn,
	}
}
