package domain

import (
	"github.com/google/uuid"
)

// TokenClaims is the payload carried by a signed access token. The store is
// not consulted for roles and permissions during request handling; the token
// is the source of truth until it expires.
type TokenClaims struct {
	ClientID    uuid.UUID
	Roles       []string
	Permissions []string
}
