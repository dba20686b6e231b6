package app

import (
	"fmt"

	secretsHTTP "github.com/keywarden/keywarden/internal/secrets/http"
	secretsRepository "github.com/keywarden/keywarden/internal/secrets/repository"
	secretsUseCase "github.com/keywarden/keywarden/internal/secrets/usecase"
)

// secretsComponents holds the secrets module dependencies.
type secretsComponents struct {
	repository secretsUseCase.SecretRepository
	rotator    *secretsUseCase.Rotator
	useCase    secretsUseCase.SecretUseCase
	handler    *secretsHTTP.SecretHandler
}

// SecretRepository returns the secret repository for the configured driver.
// The same instance also serves the DEK module as its secret counter.
func (c *Container) SecretRepository() (secretsUseCase.SecretRepository, error) {
	err := c.initOnce("secretRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for secret repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			c.secrets.repository = secretsRepository.NewPostgreSQLSecretRepository(db)
		case "mysql":
			c.secrets.repository = secretsRepository.NewMySQLSecretRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	return c.secrets.repository, err
}

// Rotator returns the background re-encryption worker pool.
func (c *Container) Rotator() (*secretsUseCase.Rotator, error) {
	err := c.initOnce("rotator", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for rotator: %w", err)
		}
		secretRepo, err := c.SecretRepository()
		if err != nil {
			return fmt.Errorf("failed to get secret repository for rotator: %w", err)
		}
		c.secrets.rotator = secretsUseCase.NewRotator(
			txManager,
			secretRepo,
			c.Envelope(),
			c.Keyring(),
			c.config.RotationWorkers,
			c.config.RotationQueueSize,
			c.Logger(),
		)
		return nil
	})
	return c.secrets.rotator, err
}

// SecretUseCase returns the secret use case, wrapped with metrics when
// enabled.
func (c *Container) SecretUseCase() (secretsUseCase.SecretUseCase, error) {
	err := c.initOnce("secretUseCase", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for secret use case: %w", err)
		}
		secretRepo, err := c.SecretRepository()
		if err != nil {
			return fmt.Errorf("failed to get secret repository for secret use case: %w", err)
		}
		folderRepo, err := c.FolderRepository()
		if err != nil {
			return fmt.Errorf("failed to get folder repository for secret use case: %w", err)
		}
		rotator, err := c.Rotator()
		if err != nil {
			return fmt.Errorf("failed to get rotator for secret use case: %w", err)
		}

		useCase := secretsUseCase.NewSecretUseCase(
			txManager,
			secretRepo,
			folderRepo,
			c.Envelope(),
			c.Keyring(),
			rotator,
		)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for secret use case: %w", err)
			}
			useCase = secretsUseCase.NewSecretUseCaseWithMetrics(useCase, businessMetrics)
		}

		c.secrets.useCase = useCase
		return nil
	})
	return c.secrets.useCase, err
}

// SecretHandler returns the secret HTTP handler.
func (c *Container) SecretHandler() (*secretsHTTP.SecretHandler, error) {
	err := c.initOnce("secretHandler", func() error {
		useCase, err := c.SecretUseCase()
		if err != nil {
			return fmt.Errorf("failed to get secret use case for handler: %w", err)
		}
		c.secrets.handler = secretsHTTP.NewSecretHandler(useCase, c.Logger())
		return nil
	})
	return c.secrets.handler, err
}
