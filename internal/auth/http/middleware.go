package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
	authService "github.com/keywarden/keywarden/internal/auth/service"
	authUseCase "github.com/keywarden/keywarden/internal/auth/usecase"
	apperrors "github.com/keywarden/keywarden/internal/errors"
	"github.com/keywarden/keywarden/internal/httputil"
)

// AuthenticationMiddleware authenticates requests via a Bearer token in the
// Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Verifies the token signature and expiry via the token signer
// 3. Looks up the client and rejects inactive or missing clients
// 4. Stores the authenticated client in the request context for GetClient()
//
// Every failure results in 401 Unauthorized. Revoked clients are rejected here
// even when their token has not yet expired.
func AuthenticationMiddleware(
	clientUseCase authUseCase.ClientUseCase,
	tokenSigner authService.TokenSigner,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token := authHeader[len(bearerPrefix):]
		if token == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		claims, err := tokenSigner.Verify(token)
		if err != nil {
			logger.Debug("authentication failed: invalid token",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		client, err := clientUseCase.Get(c.Request.Context(), claims.ClientID)
		if err != nil || !client.IsActive {
			logger.Debug("authentication failed: unknown or inactive client",
				slog.String("client_id", claims.ClientID.String()))
			httputil.HandleErrorGin(c, authDomain.ErrInvalidToken, logger)
			c.Abort()
			return
		}

		ctx := WithClient(c.Request.Context(), client)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRoles authorizes the authenticated client against the given roles.
// The client passes when it holds any of the required roles or the wildcard
// role. Must run after AuthenticationMiddleware.
func RequireRoles(logger *slog.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := GetClient(c.Request.Context())
		if !ok || client == nil {
			logger.Debug("authorization failed: no authenticated client in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !client.HasAnyRole(roles...) {
			logger.Debug("authorization failed: missing required role",
				slog.String("client_id", client.ID.String()),
				slog.Any("required_roles", roles))
			httputil.HandleErrorGin(c,
				apperrors.Wrap(apperrors.ErrForbidden,
					"requires one of roles: "+strings.Join(roles, ", ")), logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePermissions authorizes the authenticated client against the given
// permissions. With requireAll false any single match passes, with requireAll
// true the client must hold every listed permission. The wildcard permission
// always passes. Must run after AuthenticationMiddleware.
func RequirePermissions(logger *slog.Logger, requireAll bool, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := GetClient(c.Request.Context())
		if !ok || client == nil {
			logger.Debug("authorization failed: no authenticated client in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !client.HasPermissions(permissions, requireAll) {
			logger.Debug("authorization failed: missing required permissions",
				slog.String("client_id", client.ID.String()),
				slog.Any("required_permissions", permissions))
			quantifier := "one of"
			if requireAll {
				quantifier = "all of"
			}
			httputil.HandleErrorGin(c,
				apperrors.Wrap(apperrors.ErrForbidden,
					"requires "+quantifier+" permissions: "+strings.Join(permissions, ", ")), logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
