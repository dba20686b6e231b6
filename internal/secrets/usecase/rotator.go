package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
	cryptoService "github.com/keywarden/keywarden/internal/crypto/service"
	"github.com/keywarden/keywarden/internal/database"
)

// Rotator re-encrypts secrets under the current default DEK in the background.
//
// Reads that hit a secret sealed under an older DEK enqueue it here and return
// immediately. Workers pick ids off a bounded queue; concurrent enqueues of
// the same secret coalesce, a full queue drops the request (the next read
// re-triggers it), and failures are logged but never retried.
type Rotator struct {
	txManager  database.TxManager
	secretRepo SecretRepository
	envelope   *cryptoService.EnvelopeService
	keyring    *cryptoService.Keyring
	logger     *slog.Logger

	queue chan uuid.UUID
	group *errgroup.Group

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}

	closeOnce sync.Once
}

// Enqueue schedules a secret for re-encryption without blocking the caller.
func (r *Rotator) Enqueue(secretID uuid.UUID) {
	r.mu.Lock()
	if _, busy := r.inflight[secretID]; busy {
		r.mu.Unlock()
		return
	}
	r.inflight[secretID] = struct{}{}
	r.mu.Unlock()

	select {
	case r.queue <- secretID:
	default:
		// Queue full: drop. The secret stays readable and the next read
		// enqueues it again.
		r.forget(secretID)
		r.logger.Debug("rotation queue full, dropping secret",
			slog.String("secret_id", secretID.String()))
	}
}

// Close stops accepting work, drains the queue and waits for the workers.
func (r *Rotator) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
		_ = r.group.Wait()
	})
}

func (r *Rotator) forget(secretID uuid.UUID) {
	r.mu.Lock()
	delete(r.inflight, secretID)
	r.mu.Unlock()
}

func (r *Rotator) worker() error {
	for secretID := range r.queue {
		if err := r.rotate(context.Background(), secretID); err != nil {
			r.logger.Error("secret rotation failed",
				slog.String("secret_id", secretID.String()),
				slog.String("error", err.Error()))
		}
		r.forget(secretID)
	}
	return nil
}

// rotate reseals one secret under the current default DEK inside a
// transaction. A secret already under the default DEK is a no-op (the default
// may have changed again between enqueue and execution).
func (r *Rotator) rotate(ctx context.Context, secretID uuid.UUID) error {
	defaultDekID := r.keyring.DefaultDekID()

	return r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		secret, err := r.secretRepo.Get(txCtx, secretID)
		if err != nil {
			return err
		}
		if secret.DekID == defaultDekID {
			return nil
		}

		plaintext, _, err := r.envelope.Open(secret.Data, &secret.DekID)
		if err != nil {
			return err
		}
		defer cryptoDomain.Zero(plaintext)

		sealed, err := r.envelope.Seal(plaintext, defaultDekID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		secret.Data = sealed
		secret.DekID = defaultDekID
		secret.LastRotation = &now
		secret.UpdatedAt = now

		return r.secretRepo.Update(txCtx, secret)
	})
}

// NewRotator creates a rotator with the given worker count and queue size and
// starts its workers.
func NewRotator(
	txManager database.TxManager,
	secretRepo SecretRepository,
	envelope *cryptoService.EnvelopeService,
	keyring *cryptoService.Keyring,
	workers, queueSize int,
	logger *slog.Logger,
) *Rotator {
	r := &Rotator{
		txManager:  txManager,
		secretRepo: secretRepo,
		envelope:   envelope,
		keyring:    keyring,
		logger:     logger,
		queue:      make(chan uuid.UUID, queueSize),
		group:      new(errgroup.Group),
		inflight:   make(map[uuid.UUID]struct{}),
	}

	for i := 0; i < workers; i++ {
		r.group.Go(r.worker)
	}

	return r
}
