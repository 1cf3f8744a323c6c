// internal/reports/implementation.go
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"biblioteka/internal/storage"
)

// service implements the Service interface.
type service struct {
	loans storage.LoanStore
	log   *zap.Logger
}

// NewService creates a reporter over the loan ledger.
func NewService(loans storage.LoanStore, log *zap.Logger) Service {
	return &service{loans: loans, log: log}
}

// ComputeOverdue lists every active loan past due as of the given instant,
// longest overdue first. Days overdue are whole elapsed days (floor, clamped
// to zero); the fine is daysOverdue * finePerDay rounded to two decimals,
// half away from zero.
func (s *service) ComputeOverdue(ctx context.Context, finePerDay float64, asOf time.Time) ([]OverdueEntry, error) {
	if finePerDay < 0 {
		return nil, ErrNegativeFineRate
	}

	details, err := s.loans.OverdueLoans(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("load overdue loans: %w", err)
	}

	rate := decimal.NewFromFloat(finePerDay)
	entries := make([]OverdueEntry, 0, len(details))
	for _, d := range details {
		days := daysOverdue(d.DueDate, asOf)
		fine, _ := rate.Mul(decimal.NewFromInt(int64(days))).Round(2).Float64()

		entries = append(entries, OverdueEntry{
			LoanID:      d.ID,
			Member:      d.Member,
			Book:        d.Book,
			LoanDate:    d.LoanDate,
			DueDate:     d.DueDate,
			DaysOverdue: days,
			Fine:        fine,
		})
	}

	s.log.Debug("overdue report computed",
		zap.Int("entries", len(entries)),
		zap.Float64("fine_per_day", finePerDay))

	return entries, nil
}

// daysOverdue is the number of whole days between the due date and asOf.
func daysOverdue(dueDate, asOf time.Time) int {
	if !dueDate.Before(asOf) {
		return 0
	}
	return int(asOf.Sub(dueDate) / (24 * time.Hour))
}
