package app

import (
	"context"
	"fmt"
	"io"

	"github.com/keywarden/keywarden/internal/config"
	cryptoHTTP "github.com/keywarden/keywarden/internal/crypto/http"
	cryptoRepository "github.com/keywarden/keywarden/internal/crypto/repository"
	cryptoService "github.com/keywarden/keywarden/internal/crypto/service"
	cryptoUseCase "github.com/keywarden/keywarden/internal/crypto/usecase"
)

// cryptoComponents holds the crypto module dependencies.
type cryptoComponents struct {
	keyring    *cryptoService.Keyring
	kmsAdapter cryptoService.KmsAdapter
	// kmsCloser is set when the adapter owns network resources (Cloud KMS
	// client, gocloud keepers) that must be released on shutdown.
	kmsCloser  io.Closer
	envelope   *cryptoService.EnvelopeService
	repository cryptoUseCase.DekRepository
	useCase    cryptoUseCase.DekUseCase
	handler    *cryptoHTTP.DekHandler
}

// Keyring returns the in-memory plaintext DEK keyring.
func (c *Container) Keyring() *cryptoService.Keyring {
	_ = c.initOnce("keyring", func() error {
		c.crypto.keyring = cryptoService.NewKeyring()
		return nil
	})
	return c.crypto.keyring
}

// KmsAdapter returns the KMS adapter selected by KMS_PROVIDER.
func (c *Container) KmsAdapter(ctx context.Context) (cryptoService.KmsAdapter, error) {
	err := c.initOnce("kmsAdapter", func() error {
		switch c.config.KMSProvider {
		case config.KMSProviderGCP:
			adapter, err := cryptoService.NewGCPKmsAdapter(
				ctx,
				c.config.KMSProjectID,
				c.config.KMSLocation,
				c.config.KMSKeyRing,
				c.config.KMSKeyID,
				c.config.KMSTimeout,
			)
			if err != nil {
				return fmt.Errorf("failed to create gcp kms adapter: %w", err)
			}
			c.crypto.kmsAdapter = adapter
			c.crypto.kmsCloser = adapter
		case config.KMSProviderKeeper:
			adapter := cryptoService.NewKeeperKmsAdapter(c.config.KMSKeyURI, c.config.KMSTimeout)
			c.crypto.kmsAdapter = adapter
			c.crypto.kmsCloser = adapter
		case config.KMSProviderLocal:
			kek, err := c.config.DevKEK()
			if err != nil {
				return fmt.Errorf("failed to decode development kek: %w", err)
			}
			adapter, err := cryptoService.NewLocalKmsAdapter(kek, "local-dev")
			if err != nil {
				return fmt.Errorf("failed to create local kms adapter: %w", err)
			}
			c.crypto.kmsAdapter = adapter
		default:
			return fmt.Errorf("unknown kms provider: %s", c.config.KMSProvider)
		}
		return nil
	})
	return c.crypto.kmsAdapter, err
}

// Envelope returns the envelope encryption service.
func (c *Container) Envelope() *cryptoService.EnvelopeService {
	_ = c.initOnce("envelope", func() error {
		c.crypto.envelope = cryptoService.NewEnvelope(c.Keyring(), cryptoService.NewAEADManager())
		return nil
	})
	return c.crypto.envelope
}

// DekRepository returns the DEK repository for the configured driver.
func (c *Container) DekRepository() (cryptoUseCase.DekRepository, error) {
	err := c.initOnce("dekRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for dek repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			c.crypto.repository = cryptoRepository.NewPostgreSQLDekRepository(db)
		case "mysql":
			c.crypto.repository = cryptoRepository.NewMySQLDekRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	return c.crypto.repository, err
}

// DekUseCase returns the DEK use case, wrapped with metrics when enabled.
func (c *Container) DekUseCase(ctx context.Context) (cryptoUseCase.DekUseCase, error) {
	err := c.initOnce("dekUseCase", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for dek use case: %w", err)
		}
		dekRepo, err := c.DekRepository()
		if err != nil {
			return fmt.Errorf("failed to get dek repository for dek use case: %w", err)
		}
		secretRepo, err := c.SecretRepository()
		if err != nil {
			return fmt.Errorf("failed to get secret repository for dek use case: %w", err)
		}
		kmsAdapter, err := c.KmsAdapter(ctx)
		if err != nil {
			return fmt.Errorf("failed to get kms adapter for dek use case: %w", err)
		}

		useCase := cryptoUseCase.NewDekUseCase(txManager, dekRepo, secretRepo, kmsAdapter, c.Keyring())

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for dek use case: %w", err)
			}
			useCase = cryptoUseCase.NewDekUseCaseWithMetrics(useCase, businessMetrics)
		}

		c.crypto.useCase = useCase
		return nil
	})
	return c.crypto.useCase, err
}

// DekHandler returns the DEK HTTP handler.
func (c *Container) DekHandler(ctx context.Context) (*cryptoHTTP.DekHandler, error) {
	err := c.initOnce("dekHandler", func() error {
		useCase, err := c.DekUseCase(ctx)
		if err != nil {
			return fmt.Errorf("failed to get dek use case for handler: %w", err)
		}
		c.crypto.handler = cryptoHTTP.NewDekHandler(useCase, c.Logger())
		return nil
	})
	return c.crypto.handler, err
}
