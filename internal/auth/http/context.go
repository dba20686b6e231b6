// Package http provides HTTP middleware and handlers for authentication.
package http

import (
	"context"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
)

// clientKey is the context key under which the authenticated client travels.
// An unexported struct type cannot collide with keys from other packages.
type clientKey struct{}

// WithClient returns a context carrying the authenticated client. The
// authentication middleware calls this once per request after token
// validation.
func WithClient(ctx context.Context, client *authDomain.Client) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

// GetClient returns the authenticated client, or false when the request never
// passed authentication.
func GetClient(ctx context.Context) (*authDomain.Client, bool) {
	client, ok := ctx.Value(clientKey{}).(*authDomain.Client)
	return client, ok
}
