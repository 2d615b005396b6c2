package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"fraud-risk-engine/internal/domain/transaction"
)

// Settings controls when the breaker opens
type Settings struct {
	Name         string
	MinRequests  uint32        // requests in a window before the failure ratio counts
	FailureRatio float64       // ratio of failures that trips the breaker
	OpenTimeout  time.Duration // how long the breaker stays open before probing
	Interval     time.Duration // window after which closed-state counts reset
}

// DefaultSettings returns breaker settings suited to a remote transaction store
func DefaultSettings(name string) Settings {
	return Settings{
		Name:         name,
		MinRequests:  10,
		FailureRatio: 0.6,
		OpenTimeout:  30 * time.Second,
		Interval:     time.Minute,
	}
}

// Repository decorates a transaction.Repository with a circuit breaker.
// While open, calls fail fast with transaction.ErrStoreUnavailable.
type Repository struct {
	next transaction.Repository
	cb   *gobreaker.CircuitBreaker
}

// NewRepository wraps next with a circuit breaker
func NewRepository(next transaction.Repository, settings Settings, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     settings.Name,
		Interval: settings.Interval,
		Timeout:  settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= settings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("transaction store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// caller cancellations say nothing about store health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Repository{next: next, cb: cb}
}

// State reports the breaker state, for readiness checks
func (r *Repository) State() gobreaker.State {
	return r.cb.State()
}

func (r *Repository) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := r.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", transaction.ErrStoreUnavailable, err)
	}
	return res, err
}

// Create stores a new transaction
func (r *Repository) Create(ctx context.Context, tx *transaction.Transaction) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.next.Create(ctx, tx)
	})
	return err
}

// ListByUserID retrieves a user's transactions, oldest first
func (r *Repository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	res, err := r.execute(func() (interface{}, error) {
		return r.next.ListByUserID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*transaction.Transaction), nil
}

// CountByUserIDAndTimeRange counts transactions with start < timestamp <= end
func (r *Repository) CountByUserIDAndTimeRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (int64, error) {
	res, err := r.execute(func() (interface{}, error) {
		return r.next.CountByUserIDAndTimeRange(ctx, userID, start, end)
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// DeleteAll removes every stored transaction
func (r *Repository) DeleteAll(ctx context.Context) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.next.DeleteAll(ctx)
	})
	return err
}

// Ping bypasses the breaker so health checks always reach the store
func (r *Repository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
