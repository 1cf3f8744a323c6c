// internal/storage/storage.go
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Book is a catalog record. Copies is the total number of physical units;
// Available is derived from the loan ledger on every read and is never stored.
type Book struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Copies    int       `json:"copies"`
	Available int       `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is a registered reader. Email is unique across all members.
type Member struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Loan is one ledger entry. A nil ReturnDate means the loan is active;
// a set ReturnDate is terminal. Loans are appended and settled, never deleted.
type Loan struct {
	ID         uuid.UUID  `json:"id"`
	BookID     uuid.UUID  `json:"book_id"`
	MemberID   uuid.UUID  `json:"member_id"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

// Returned reports whether the loan has been settled.
func (l Loan) Returned() bool {
	return l.ReturnDate != nil
}

// MemberSummary is the member projection embedded in joined loan reads.
type MemberSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// BookSummary is the book projection embedded in joined loan reads.
type BookSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// LoanDetail is a loan joined with its member and book summaries.
type LoanDetail struct {
	Loan
	Member MemberSummary `json:"member"`
	Book   BookSummary   `json:"book"`
}

// CatalogStore holds books. Copy counts are mutated only through catalog
// management; the lending engine reads them.
type CatalogStore interface {
	AddBook(ctx context.Context, book Book) error
	GetBook(ctx context.Context, id uuid.UUID) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
}

// MemberStore holds members.
type MemberStore interface {
	AddMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, id uuid.UUID) (Member, error)
	ListMembers(ctx context.Context) ([]Member, error)
}

// LoanStore is the loan ledger.
//
// CreateLoan is the atomic admission step: it verifies the book exists,
// counts active loans for that book and inserts the new loan only when the
// active count is below the book's copy count. The check and the insert are
// indivisible per book, so for every book the number of active loans never
// exceeds its copies, no matter how many callers race. Contention that aborts
// the step surfaces as ErrConflict and is safe to retry.
//
// SettleLoan sets the return date exactly once; settling an already settled
// loan is ErrAlreadyReturned, not a no-op.
type LoanStore interface {
	CreateLoan(ctx context.Context, loan Loan) error
	SettleLoan(ctx context.Context, id uuid.UUID, returnedAt time.Time) (Loan, error)
	GetLoan(ctx context.Context, id uuid.UUID) (Loan, error)
	ListLoans(ctx context.Context) ([]LoanDetail, error)
	OverdueLoans(ctx context.Context, asOf time.Time) ([]LoanDetail, error)
}

// Store bundles the three contracts; both the embedded and the Postgres
// ledgers implement all of them over the same underlying state.
type Store interface {
	CatalogStore
	MemberStore
	LoanStore
}
