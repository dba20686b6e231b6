package app

import (
	"fmt"

	authHTTP "github.com/keywarden/keywarden/internal/auth/http"
	authRepository "github.com/keywarden/keywarden/internal/auth/repository"
	authService "github.com/keywarden/keywarden/internal/auth/service"
	authUseCase "github.com/keywarden/keywarden/internal/auth/usecase"
)

// authComponents holds the auth module dependencies.
type authComponents struct {
	repository    authUseCase.ClientRepository
	secretService authService.SecretService
	tokenSigner   authService.TokenSigner
	useCase       authUseCase.ClientUseCase
	handler       *authHTTP.ClientHandler
}

// ClientRepository returns the client repository for the configured driver.
func (c *Container) ClientRepository() (authUseCase.ClientRepository, error) {
	err := c.initOnce("clientRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for client repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			c.auth.repository = authRepository.NewPostgreSQLClientRepository(db)
		case "mysql":
			c.auth.repository = authRepository.NewMySQLClientRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	return c.auth.repository, err
}

// SecretService returns the client secret hashing service.
func (c *Container) SecretService() authService.SecretService {
	_ = c.initOnce("secretService", func() error {
		c.auth.secretService = authService.NewSecretService()
		return nil
	})
	return c.auth.secretService
}

// TokenSigner returns the HMAC token signer.
func (c *Container) TokenSigner() (authService.TokenSigner, error) {
	err := c.initOnce("tokenSigner", func() error {
		signingKey, err := c.config.AuthSigningKey()
		if err != nil {
			return fmt.Errorf("failed to decode token signing key: %w", err)
		}
		c.auth.tokenSigner = authService.NewTokenSigner(signingKey, c.config.AuthTokenExpiration)
		return nil
	})
	return c.auth.tokenSigner, err
}

// ClientUseCase returns the client use case, wrapped with metrics when
// enabled.
func (c *Container) ClientUseCase() (authUseCase.ClientUseCase, error) {
	err := c.initOnce("clientUseCase", func() error {
		clientRepo, err := c.ClientRepository()
		if err != nil {
			return fmt.Errorf("failed to get client repository for client use case: %w", err)
		}
		tokenSigner, err := c.TokenSigner()
		if err != nil {
			return fmt.Errorf("failed to get token signer for client use case: %w", err)
		}

		useCase := authUseCase.NewClientUseCase(
			clientRepo,
			c.SecretService(),
			tokenSigner,
			c.config.AuthTokenExpiration,
			c.config.BootstrapAdminSecret,
			c.Logger(),
		)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for client use case: %w", err)
			}
			useCase = authUseCase.NewClientUseCaseWithMetrics(useCase, businessMetrics)
		}

		c.auth.useCase = useCase
		return nil
	})
	return c.auth.useCase, err
}

// ClientHandler returns the client HTTP handler.
func (c *Container) ClientHandler() (*authHTTP.ClientHandler, error) {
	err := c.initOnce("clientHandler", func() error {
		useCase, err := c.ClientUseCase()
		if err != nil {
			return fmt.Errorf("failed to get client use case for handler: %w", err)
		}
		c.auth.handler = authHTTP.NewClientHandler(useCase, c.Logger())
		return nil
	})
	return c.auth.handler, err
}
