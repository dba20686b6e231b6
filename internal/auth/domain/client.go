// Package domain defines authentication and authorization domain models and business logic.
//
// Clients authenticate with a name and secret and receive a signed token
// carrying their roles and permissions. Authorization is role- and
// permission-based with a `*` wildcard granting everything.
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Wildcard grants every role or permission when present in the respective set.
const Wildcard = "*"

// Client represents an authentication client.
// Clients are used to authenticate API requests and enforce access control.
type Client struct {
	ID           uuid.UUID  // Unique identifier (UUIDv7)
	Name         string     // Unique human-readable client name
	HashedSecret string     //nolint:gosec // argon2id hash, never the plaintext
	IsActive     bool       // Whether the client can authenticate
	Roles        []string   // Coarse grouping, checked by role guards
	Permissions  []string   // Fine-grained actions, checked by permission guards
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastUsedAt   *time.Time // Last successful login (nil if never)
}

// HasAnyRole reports whether the client holds at least one of the required
// roles. A client holding the `*` wildcard passes any role check. An empty
// requirement always passes.
func (c *Client) HasAnyRole(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	if slices.Contains(c.Roles, Wildcard) {
		return true
	}
	for _, role := range required {
		if slices.Contains(c.Roles, role) {
			return true
		}
	}
	return false
}

// HasPermissions reports whether the client holds the required permissions.
// With requireAll unset, any single match passes; with requireAll set, every
// required permission must be present. A client holding the `*` wildcard
// passes either mode. An empty requirement always passes.
func (c *Client) HasPermissions(required []string, requireAll bool) bool {
	if len(required) == 0 {
		return true
	}
	if slices.Contains(c.Permissions, Wildcard) {
		return true
	}

	for _, permission := range required {
		has := slices.Contains(c.Permissions, permission)
		if requireAll && !has {
			return false
		}
		if !requireAll && has {
			return true
		}
	}
	return requireAll
}
