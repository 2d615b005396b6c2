package transaction

import "errors"

// Validation failures. A transaction failing these is rejected before it
// reaches the store.
var (
	ErrNilTransaction  = errors.New("transaction is required")
	ErrInvalidUserID   = errors.New("invalid user ID")
	ErrNegativeAmount  = errors.New("transaction amount cannot be negative")
	ErrZeroAmount      = errors.New("transaction amount cannot be zero")
	ErrInvalidCategory = errors.New("invalid transaction category")
)

// ErrStoreUnavailable is returned when the transaction store cannot be
// reached or its circuit breaker is open. Callers may retry later.
var ErrStoreUnavailable = errors.New("transaction store unavailable")
