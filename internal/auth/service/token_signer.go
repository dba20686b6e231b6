package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
	apperrors "github.com/keywarden/keywarden/internal/errors"
)

// tokenClaims is the JWT representation of authDomain.TokenClaims.
type tokenClaims struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// tokenSigner implements TokenSigner with HMAC-SHA256 signed JWTs.
type tokenSigner struct {
	signingKey []byte
	lifetime   time.Duration
}

// Sign issues an HS256 token carrying the client id as subject plus its roles
// and permissions, expiring after the configured lifetime.
func (s *tokenSigner) Sign(claims authDomain.TokenClaims) (string, error) {
	now := time.Now()

	jwtClaims := tokenClaims{
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.ClientID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify parses and validates a token string. Any failure (bad signature,
// expired, missing expiry, unexpected signing algorithm, malformed client id)
// maps to ErrInvalidToken.
func (s *tokenSigner) Verify(token string) (*authDomain.TokenClaims, error) {
	var claims tokenClaims

	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) {
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, authDomain.ErrInvalidToken
	}

	clientID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	return &authDomain.TokenClaims{
		ClientID:    clientID,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
	}, nil
}

// NewTokenSigner creates a TokenSigner that issues HS256 JWTs with the given
// signing key and token lifetime.
func NewTokenSigner(signingKey []byte, lifetime time.Duration) TokenSigner {
	return &tokenSigner{
		signingKey: signingKey,
		lifetime:   lifetime,
	}
}
