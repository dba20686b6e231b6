package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
	"github.com/keywarden/keywarden/internal/metrics"
)

// clientUseCaseWithMetrics decorates ClientUseCase with metrics instrumentation.
type clientUseCaseWithMetrics struct {
	next    ClientUseCase
	metrics metrics.BusinessMetrics
}

// NewClientUseCaseWithMetrics wraps a ClientUseCase with metrics recording.
func NewClientUseCaseWithMetrics(useCase ClientUseCase, m metrics.BusinessMetrics) ClientUseCase {
	return &clientUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *clientUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.OutcomeStatus(err)
	c.metrics.RecordOperation(ctx, "auth", operation, status)
	c.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// Register records metrics for client registration operations.
func (c *clientUseCaseWithMetrics) Register(
	ctx context.Context,
	input *authDomain.RegisterClientInput,
) (*authDomain.Client, error) {
	start := time.Now()
	client, err := c.next.Register(ctx, input)
	c.record(ctx, "client_register", start, err)
	return client, err
}

// Login records metrics for login operations.
func (c *clientUseCaseWithMetrics) Login(ctx context.Context, name, secret string) (*authDomain.LoginOutput, error) {
	start := time.Now()
	output, err := c.next.Login(ctx, name, secret)
	c.record(ctx, "client_login", start, err)
	return output, err
}

// Get records metrics for client retrieval operations.
func (c *clientUseCaseWithMetrics) Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	start := time.Now()
	client, err := c.next.Get(ctx, clientID)
	c.record(ctx, "client_get", start, err)
	return client, err
}

// Revoke records metrics for client revocation operations.
func (c *clientUseCaseWithMetrics) Revoke(ctx context.Context, clientID uuid.UUID) error {
	start := time.Now()
	err := c.next.Revoke(ctx, clientID)
	c.record(ctx, "client_revoke", start, err)
	return err
}

// Bootstrap records metrics for bootstrap runs.
func (c *clientUseCaseWithMetrics) Bootstrap(ctx context.Context) error {
	start := time.Now()
	err := c.next.Bootstrap(ctx)
	c.record(ctx, "client_bootstrap", start, err)
	return err
}
