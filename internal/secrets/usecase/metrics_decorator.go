package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/keywarden/keywarden/internal/metrics"
	secretsDomain "github.com/keywarden/keywarden/internal/secrets/domain"
)

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *secretUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.OutcomeStatus(err)
	s.metrics.RecordOperation(ctx, "secrets", operation, status)
	s.metrics.RecordDuration(ctx, "secrets", operation, time.Since(start), status)
}

// Create records metrics for secret creation operations.
func (s *secretUseCaseWithMetrics) Create(
	ctx context.Context,
	input *CreateSecretInput,
) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Create(ctx, input)
	s.record(ctx, "secret_create", start, err)
	return secret, err
}

// Get records metrics for secret retrieval operations.
func (s *secretUseCaseWithMetrics) Get(ctx context.Context, idOrName string) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Get(ctx, idOrName)
	s.record(ctx, "secret_get", start, err)
	return secret, err
}

// List records metrics for secret listing operations.
func (s *secretUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*secretsDomain.Secret, error) {
	start := time.Now()
	secrets, err := s.next.List(ctx, offset, limit)
	s.record(ctx, "secret_list", start, err)
	return secrets, err
}

// Update records metrics for secret update operations.
func (s *secretUseCaseWithMetrics) Update(
	ctx context.Context,
	secretID uuid.UUID,
	input *UpdateSecretInput,
) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Update(ctx, secretID, input)
	s.record(ctx, "secret_update", start, err)
	return secret, err
}

// Delete records metrics for secret deletion operations.
func (s *secretUseCaseWithMetrics) Delete(ctx context.Context, secretID uuid.UUID) error {
	start := time.Now()
	err := s.next.Delete(ctx, secretID)
	s.record(ctx, "secret_delete", start, err)
	return err
}
