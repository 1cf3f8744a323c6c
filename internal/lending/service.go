// internal/lending/service.go
package lending

import (
	"context"

	"github.com/google/uuid"
)

// Service is the allocation and settlement engine. Borrow decides admission
// against the book's copy pool and commits the decision atomically; Return
// settles a loan exactly once.
type Service interface {
	// Borrow creates a loan for the member and book. days selects the loan
	// duration; zero means the configured default. A request that cannot be
	// satisfied fails immediately, it never waits for a copy to free up.
	Borrow(ctx context.Context, memberID, bookID uuid.UUID, days int) (*Loan, error)

	// Return settles the loan, setting its return date.
	Return(ctx context.Context, loanID uuid.UUID) (*Loan, error)

	// ListLoans returns the full ledger with member and book summaries.
	ListLoans(ctx context.Context) ([]LoanDetail, error)
}
