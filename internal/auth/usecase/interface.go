// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
)

// ClientRepository defines the interface for Client persistence operations.
type ClientRepository interface {
	// Create inserts a new Client into the database.
	Create(ctx context.Context, client *authDomain.Client) error

	// Get retrieves a Client by ID.
	// Returns ErrClientNotFound if the client doesn't exist.
	Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error)

	// GetByName retrieves a Client by its unique name.
	// Returns ErrClientNotFound if the client doesn't exist.
	GetByName(ctx context.Context, name string) (*authDomain.Client, error)

	// UpdateLastUsed records a successful login timestamp for the client.
	UpdateLastUsed(ctx context.Context, clientID uuid.UUID, lastUsedAt time.Time) error

	// Deactivate marks a client as inactive, revoking its ability to log in.
	// Returns ErrClientNotFound if the client doesn't exist.
	Deactivate(ctx context.Context, clientID uuid.UUID) error

	// Count returns the total number of clients.
	Count(ctx context.Context) (int64, error)
}

// ClientUseCase defines the interface for client lifecycle and authentication
// business logic.
type ClientUseCase interface {
	// Register creates a new client with a hashed secret. Returns ErrConflict
	// if a client with the same name already exists.
	Register(ctx context.Context, input *authDomain.RegisterClientInput) (*authDomain.Client, error)

	// Login authenticates a client by name and secret and issues a signed
	// access token. Every failure (unknown name, inactive client, wrong
	// secret) returns ErrInvalidCredentials.
	Login(ctx context.Context, name, secret string) (*authDomain.LoginOutput, error)

	// Get retrieves a client by ID.
	Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error)

	// Revoke deactivates a client, invalidating future logins. Tokens already
	// issued remain valid until they expire.
	Revoke(ctx context.Context, clientID uuid.UUID) error

	// Bootstrap seeds the admin client when the client table is empty.
	// It is a no-op when any client already exists.
	Bootstrap(ctx context.Context) error
}
