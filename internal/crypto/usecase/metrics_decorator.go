package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
	"github.com/keywarden/keywarden/internal/metrics"
)

// dekUseCaseWithMetrics decorates DekUseCase with metrics instrumentation.
type dekUseCaseWithMetrics struct {
	next    DekUseCase
	metrics metrics.BusinessMetrics
}

// NewDekUseCaseWithMetrics wraps a DekUseCase with metrics recording.
func NewDekUseCaseWithMetrics(useCase DekUseCase, m metrics.BusinessMetrics) DekUseCase {
	return &dekUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (d *dekUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.OutcomeStatus(err)
	d.metrics.RecordOperation(ctx, "deks", operation, status)
	d.metrics.RecordDuration(ctx, "deks", operation, time.Since(start), status)
}

// LoadKeyring records metrics for keyring loading.
func (d *dekUseCaseWithMetrics) LoadKeyring(ctx context.Context) error {
	start := time.Now()
	err := d.next.LoadKeyring(ctx)
	d.record(ctx, "keyring_load", start, err)
	return err
}

// Create records metrics for DEK creation operations.
func (d *dekUseCaseWithMetrics) Create(ctx context.Context, name string) (*cryptoDomain.Dek, error) {
	start := time.Now()
	dek, err := d.next.Create(ctx, name)
	d.record(ctx, "dek_create", start, err)
	return dek, err
}

// Get records metrics for DEK retrieval operations.
func (d *dekUseCaseWithMetrics) Get(ctx context.Context, dekID uint32) (*cryptoDomain.Dek, error) {
	start := time.Now()
	dek, err := d.next.Get(ctx, dekID)
	d.record(ctx, "dek_get", start, err)
	return dek, err
}

// List records metrics for DEK listing operations.
func (d *dekUseCaseWithMetrics) List(ctx context.Context) ([]*cryptoDomain.Dek, error) {
	start := time.Now()
	deks, err := d.next.List(ctx)
	d.record(ctx, "dek_list", start, err)
	return deks, err
}

// Delete records metrics for DEK deletion operations.
func (d *dekUseCaseWithMetrics) Delete(ctx context.Context, dekID uint32) error {
	start := time.Now()
	err := d.next.Delete(ctx, dekID)
	d.record(ctx, "dek_delete", start, err)
	return err
}

// RotateKek records metrics for KEK rotation batches.
func (d *dekUseCaseWithMetrics) RotateKek(
	ctx context.Context,
	newKekID, oldKekID string,
) (*cryptoDomain.RotationResult, error) {
	start := time.Now()
	result, err := d.next.RotateKek(ctx, newKekID, oldKekID)
	d.record(ctx, "kek_rotate", start, err)
	return result, err
}
