package dto

import (
	"time"

	"github.com/google/uuid"

	secretsDomain "github.com/keywarden/keywarden/internal/secrets/domain"
)

// SecretResponse is the secret representation returned by the API.
// Data carries the decrypted value and is only set on single-secret reads;
// list responses never include it.
type SecretResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Data         string     `json:"data,omitempty"`
	DekID        uint32     `json:"dekId"`
	FolderID     *uuid.UUID `json:"folderId,omitempty"`
	LastRotation *time.Time `json:"lastRotation,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// MapSecretToResponse converts a domain Secret to its API representation,
// including the decrypted value when present.
func MapSecretToResponse(secret *secretsDomain.Secret) *SecretResponse {
	return &SecretResponse{
		ID:           secret.ID,
		Name:         secret.Name,
		Data:         string(secret.Plaintext),
		DekID:        secret.DekID,
		FolderID:     secret.FolderID,
		LastRotation: secret.LastRotation,
		CreatedAt:    secret.CreatedAt,
		UpdatedAt:    secret.UpdatedAt,
	}
}

// MapSecretToMetadataResponse converts a domain Secret to its API
// representation without any value material.
func MapSecretToMetadataResponse(secret *secretsDomain.Secret) *SecretResponse {
	return &SecretResponse{
		ID:           secret.ID,
		Name:         secret.Name,
		DekID:        secret.DekID,
		FolderID:     secret.FolderID,
		LastRotation: secret.LastRotation,
		CreatedAt:    secret.CreatedAt,
		UpdatedAt:    secret.UpdatedAt,
	}
}

// ListSecretsResponse wraps a page of secret metadata.
type ListSecretsResponse struct {
	Secrets []*SecretResponse `json:"secrets"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
}

// MapSecretsToListResponse converts domain Secrets to a paginated metadata
// list.
func MapSecretsToListResponse(secrets []*secretsDomain.Secret, offset, limit int) *ListSecretsResponse {
	responses := make([]*SecretResponse, 0, len(secrets))
	for _, secret := range secrets {
		responses = append(responses, MapSecretToMetadataResponse(secret))
	}
	return &ListSecretsResponse{
		Secrets: responses,
		Offset:  offset,
		Limit:   limit,
	}
}
