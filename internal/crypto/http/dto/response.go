package dto

import (
	"time"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
)

// DekResponse represents a DEK in API responses. Only metadata is exposed;
// the wrapped key material never leaves the service.
type DekResponse struct {
	ID        uint32    `json:"id"`
	Name      string    `json:"name"`
	KekID     string    `json:"kekId"`
	Version   uint      `json:"version"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MapDekToResponse converts a domain DEK to an API response.
func MapDekToResponse(dek *cryptoDomain.Dek) DekResponse {
	return DekResponse{
		ID:        dek.ID,
		Name:      dek.Name,
		KekID:     dek.KekID,
		Version:   dek.Version,
		IsActive:  dek.IsActive,
		CreatedAt: dek.CreatedAt,
		UpdatedAt: dek.UpdatedAt,
	}
}

// ListDeksResponse wraps a list of DEKs.
type ListDeksResponse struct {
	Deks []DekResponse `json:"deks"`
}

// MapDeksToListResponse converts domain DEKs to an API list response.
func MapDeksToListResponse(deks []*cryptoDomain.Dek) ListDeksResponse {
	response := ListDeksResponse{Deks: []DekResponse{}}
	for _, dek := range deks {
		response.Deks = append(response.Deks, MapDekToResponse(dek))
	}
	return response
}
