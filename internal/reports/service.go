// internal/reports/service.go
package reports

import (
	"context"
	"errors"
	"time"
)

// ErrNegativeFineRate is returned for a negative per-day fine rate.
var ErrNegativeFineRate = errors.New("fine rate must not be negative")

// Service derives the overdue report from current ledger state. It is a pure
// read side: an empty report is a valid result, not an error.
type Service interface {
	ComputeOverdue(ctx context.Context, finePerDay float64, asOf time.Time) ([]OverdueEntry, error)
}
