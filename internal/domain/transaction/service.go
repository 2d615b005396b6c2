package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VelocityWindow is the trailing window the caller-supplied velocity count covers
const VelocityWindow = 24 * time.Hour

// Service handles transaction store access for the scoring pipeline
type Service struct {
	repo Repository
}

// NewService creates a new transaction service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordTransaction validates and persists a scored transaction
func (s *Service) RecordTransaction(ctx context.Context, tx *Transaction) error {
	if tx == nil {
		return ErrNilTransaction
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// ListUserTransactions retrieves a user's transactions in chronological order
func (s *Service) ListUserTransactions(ctx context.Context, userID uuid.UUID) ([]*Transaction, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListByUserID(ctx, userID)
}

// History reads a user's transactions as one consistent snapshot
func (s *Service) History(ctx context.Context, userID uuid.UUID) (History, error) {
	txs, err := s.ListUserTransactions(ctx, userID)
	if err != nil {
		return History{}, err
	}
	return NewHistory(txs), nil
}

// CountTransactionsInWindow counts a user's transactions in the window ending at end
func (s *Service) CountTransactionsInWindow(ctx context.Context, userID uuid.UUID, end time.Time, window time.Duration) (int64, error) {
	return s.repo.CountByUserIDAndTimeRange(ctx, userID, end.Add(-window), end)
}

// ClearAll removes every stored transaction
func (s *Service) ClearAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

// Ping checks the underlying store
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
