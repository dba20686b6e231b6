package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
	authService "github.com/keywarden/keywarden/internal/auth/service"
	apperrors "github.com/keywarden/keywarden/internal/errors"
)

// BootstrapAdminName is the name of the client seeded on first startup.
const BootstrapAdminName = "admin"

// clientUseCase implements ClientUseCase for managing client authentication.
type clientUseCase struct {
	clientRepo      ClientRepository
	secretService   authService.SecretService
	tokenSigner     authService.TokenSigner
	tokenLifetime   time.Duration
	bootstrapSecret string
	logger          *slog.Logger
}

// Register creates a new client with a hashed secret.
func (c *clientUseCase) Register(
	ctx context.Context,
	input *authDomain.RegisterClientInput,
) (*authDomain.Client, error) {
	// Reject duplicate names up front for a clean conflict error
	if _, err := c.clientRepo.GetByName(ctx, input.Name); err == nil {
		return nil, apperrors.Wrap(apperrors.ErrConflict, "client name already exists")
	} else if !errors.Is(err, authDomain.ErrClientNotFound) {
		return nil, err
	}

	hashedSecret, err := c.secretService.HashSecret(input.Secret)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	client := &authDomain.Client{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         input.Name,
		HashedSecret: hashedSecret,
		IsActive:     true,
		Roles:        input.Roles,
		Permissions:  input.Permissions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// Login authenticates a client and issues a signed access token. Unknown name,
// inactive client and wrong secret all collapse into ErrInvalidCredentials so
// a caller cannot probe which names exist.
func (c *clientUseCase) Login(
	ctx context.Context,
	name, secret string,
) (*authDomain.LoginOutput, error) {
	client, err := c.clientRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, authDomain.ErrClientNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !client.IsActive {
		return nil, authDomain.ErrInvalidCredentials
	}

	if !c.secretService.CompareSecret(secret, client.HashedSecret) {
		return nil, authDomain.ErrInvalidCredentials
	}

	if err := c.clientRepo.UpdateLastUsed(ctx, client.ID, time.Now().UTC()); err != nil {
		return nil, err
	}

	token, err := c.tokenSigner.Sign(authDomain.TokenClaims{
		ClientID:    client.ID,
		Roles:       client.Roles,
		Permissions: client.Permissions,
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.LoginOutput{
		Token:     token,
		ExpiresIn: int64(c.tokenLifetime.Seconds()),
	}, nil
}

// Get retrieves a client by ID.
func (c *clientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	return c.clientRepo.Get(ctx, clientID)
}

// Revoke deactivates a client. Already-issued tokens stay valid until expiry.
func (c *clientUseCase) Revoke(ctx context.Context, clientID uuid.UUID) error {
	return c.clientRepo.Deactivate(ctx, clientID)
}

// Bootstrap seeds the admin client with full access when the client table is
// empty. The bootstrap secret comes from configuration and should be rotated
// right after the first login.
func (c *clientUseCase) Bootstrap(ctx context.Context) error {
	count, err := c.clientRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedSecret, err := c.secretService.HashSecret(c.bootstrapSecret)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &authDomain.Client{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         BootstrapAdminName,
		HashedSecret: hashedSecret,
		IsActive:     true,
		Roles:        []string{authDomain.Wildcard},
		Permissions:  []string{authDomain.Wildcard},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.clientRepo.Create(ctx, admin); err != nil {
		return err
	}

	c.logger.Warn(
		"seeded bootstrap admin client, rotate its secret after first login",
		slog.String("client_id", admin.ID.String()),
		slog.String("name", admin.Name),
	)
	return nil
}

// NewClientUseCase creates a new ClientUseCase with the provided dependencies.
func NewClientUseCase(
	clientRepo ClientRepository,
	secretService authService.SecretService,
	tokenSigner authService.TokenSigner,
	tokenLifetime time.Duration,
	bootstrapSecret string,
	logger *slog.Logger,
) ClientUseCase {
	return &clientUseCase{
		clientRepo:      clientRepo,
		secretService:   secretService,
		tokenSigner:     tokenSigner,
		tokenLifetime:   tokenLifetime,
		bootstrapSecret: bootstrapSecret,
		logger:          logger,
	}
}
