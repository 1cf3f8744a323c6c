// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"biblioteka/internal/storage"
)

// Postgres error codes that matter here.
const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// Store is the durable loan ledger backed by PostgreSQL. Borrow admission
// runs in a serializable transaction that locks the book row, so the
// count-then-insert is indivisible per book; aborts caused by contention
// surface as storage.ErrConflict for the caller to retry.
type Store struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewStore creates a ledger on top of an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:     db,
		tracer: otel.Tracer("biblioteka/storage/postgres"),
	}
}

var _ storage.Store = (*Store)(nil)

// AddBook inserts a book record.
func (s *Store) AddBook(ctx context.Context, book storage.Book) error {
	query := `
		INSERT INTO books (id, title, author, copies, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query, book.ID, book.Title, book.Author, book.Copies, book.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// GetBook returns a book with availability derived from the ledger.
func (s *Store) GetBook(ctx context.Context, id uuid.UUID) (storage.Book, error) {
	query := `
		SELECT b.id, b.title, b.author, b.copies, b.created_at,
		       (SELECT COUNT(*) FROM loans l WHERE l.book_id = b.id AND l.return_date IS NULL)
		FROM books b
		WHERE b.id = $1
	`
	var book storage.Book
	var active int
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&book.ID, &book.Title, &book.Author, &book.Copies, &book.CreatedAt, &active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Book{}, storage.ErrBookNotFound
	}
	if err != nil {
		return storage.Book{}, fmt.Errorf("query book: %w", err)
	}
	book.Available = clampAvailable(book.Copies, active)
	return book, nil
}

// ListBooks returns all books, oldest first, with derived availability.
func (s *Store) ListBooks(ctx context.Context) ([]storage.Book, error) {
	query := `
		SELECT b.id, b.title, b.author, b.copies, b.created_at,
		       (SELECT COUNT(*) FROM loans l WHERE l.book_id = b.id AND l.return_date IS NULL)
		FROM books b
		ORDER BY b.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []storage.Book
	for rows.Next() {
		var book storage.Book
		var active int
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Copies, &book.CreatedAt, &active); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		book.Available = clampAvailable(book.Copies, active)
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

// AddMember inserts a member; a duplicate email maps to ErrEmailTaken.
func (s *Store) AddMember(ctx context.Context, member storage.Member) error {
	query := `
		INSERT INTO members (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, member.ID, member.Name, member.Email, member.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// GetMember returns a member by id.
func (s *Store) GetMember(ctx context.Context, id uuid.UUID) (storage.Member, error) {
	query := `
		SELECT id, name, email, created_at
		FROM members
		WHERE id = $1
	`
	var member storage.Member
	err := s.db.QueryRowContext(ctx, query, id).Scan(&member.ID, &member.Name, &member.Email, &member.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Member{}, storage.ErrMemberNotFound
	}
	if err != nil {
		return storage.Member{}, fmt.Errorf("query member: %w", err)
	}
	return member, nil
}

// ListMembers returns all members, oldest first.
func (s *Store) ListMembers(ctx context.Context) ([]storage.Member, error) {
	query := `
		SELECT id, name, email, created_at
		FROM members
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []storage.Member
	for rows.Next() {
		var member storage.Member
		if err := rows.Scan(&member.ID, &member.Name, &member.Email, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// CreateLoan admits a borrow inside a serializable transaction. The book row
// is locked for the duration of the count-then-insert, which keeps the active
// loan count for a book from ever exceeding its copy count. Either the whole
// step commits or none of it does.
func (s *Store) CreateLoan(ctx context.Context, loan storage.Loan) error {
	ctx, span := s.tracer.Start(ctx, "ledger.create_loan",
		trace.WithAttributes(
			attribute.String("book.id", loan.BookID.String()),
			attribute.String("member.id", loan.MemberID.String()),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var copies int
	err = tx.QueryRowContext(ctx, `
		SELECT copies
		FROM books
		WHERE id = $1
		FOR UPDATE
	`, loan.BookID).Scan(&copies)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("lock book row: %w", mapConflict(err))
	}

	var active int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM loans
		WHERE book_id = $1 AND return_date IS NULL
	`, loan.BookID).Scan(&active)
	if err != nil {
		return fmt.Errorf("count active loans: %w", mapConflict(err))
	}

	if active >= copies {
		span.SetAttributes(attribute.Bool("loan.rejected", true))
		return storage.ErrNoCopiesAvailable
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loans (id, book_id, member_id, loan_date, due_date)
		VALUES ($1, $2, $3, $4, $5)
	`, loan.ID, loan.BookID, loan.MemberID, loan.LoanDate, loan.DueDate)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return storage.ErrMemberNotFound
		}
		return fmt.Errorf("insert loan: %w", mapConflict(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapConflict(err))
	}

	span.SetAttributes(attribute.String("loan.id", loan.ID.String()))
	return nil
}

// SettleLoan sets the return date on an active loan. The guarded UPDATE is
// the per-loan atomic step; a second settlement matches zero rows.
func (s *Store) SettleLoan(ctx context.Context, id uuid.UUID, returnedAt time.Time) (storage.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.settle_loan",
		trace.WithAttributes(attribute.String("loan.id", id.String())),
	)
	defer span.End()

	query := `
		UPDATE loans
		SET return_date = $2
		WHERE id = $1 AND return_date IS NULL
		RETURNING id, book_id, member_id, loan_date, due_date, return_date
	`
	var loan storage.Loan
	err := s.db.QueryRowContext(ctx, query, id, returnedAt).Scan(
		&loan.ID, &loan.BookID, &loan.MemberID, &loan.LoanDate, &loan.DueDate, &loan.ReturnDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Zero rows means either an unknown loan or one already settled.
		if _, getErr := s.GetLoan(ctx, id); getErr != nil {
			return storage.Loan{}, getErr
		}
		return storage.Loan{}, storage.ErrAlreadyReturned
	}
	if err != nil {
		return storage.Loan{}, fmt.Errorf("settle loan: %w", err)
	}
	return loan, nil
}

// GetLoan returns a loan by id.
func (s *Store) GetLoan(ctx context.Context, id uuid.UUID) (storage.Loan, error) {
	query := `
		SELECT id, book_id, member_id, loan_date, due_date, return_date
		FROM loans
		WHERE id = $1
	`
	var loan storage.Loan
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&loan.ID, &loan.BookID, &loan.MemberID, &loan.LoanDate, &loan.DueDate, &loan.ReturnDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Loan{}, storage.ErrLoanNotFound
	}
	if err != nil {
		return storage.Loan{}, fmt.Errorf("query loan: %w", err)
	}
	return loan, nil
}

// ListLoans returns all loans with member and book summaries, most recent
// loan date first.
func (s *Store) ListLoans(ctx context.Context) ([]storage.LoanDetail, error) {
	query := `
		SELECT l.id, l.book_id, l.member_id, l.loan_date, l.due_date, l.return_date,
		       m.id, m.name, m.email,
		       b.id, b.title
		FROM loans l
		JOIN members m ON m.id = l.member_id
		JOIN books b ON b.id = l.book_id
		ORDER BY l.loan_date DESC
	`
	return s.queryLoanDetails(ctx, query)
}

// OverdueLoans returns active loans past due as of the given instant,
// longest overdue first.
func (s *Store) OverdueLoans(ctx context.Context, asOf time.Time) ([]storage.LoanDetail, error) {
	query := `
		SELECT l.id, l.book_id, l.member_id, l.loan_date, l.due_date, l.return_date,
		       m.id, m.name, m.email,
		       b.id, b.title
		FROM loans l
		JOIN members m ON m.id = l.member_id
		JOIN books b ON b.id = l.book_id
		WHERE l.return_date IS NULL AND l.due_date < $1
		ORDER BY l.due_date ASC
	`
	return s.queryLoanDetails(ctx, query, asOf)
}

func (s *Store) queryLoanDetails(ctx context.Context, query string, args ...any) ([]storage.LoanDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var details []storage.LoanDetail
	for rows.Next() {
		var d storage.LoanDetail
		err := rows.Scan(
			&d.ID, &d.BookID, &d.MemberID, &d.LoanDate, &d.DueDate, &d.ReturnDate,
			&d.Member.ID, &d.Member.Name, &d.Member.Email,
			&d.Book.ID, &d.Book.Title,
		)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}
	return details, nil
}

// mapConflict translates transaction aborts caused by contention into the
// retryable storage.ErrConflict; everything else passes through.
func mapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqSerializationFailure, pqDeadlockDetected:
			return storage.ErrConflict
		}
	}
	return err
}

func clampAvailable(copies, active int) int {
	if active >= copies {
		return 0
	}
	return copies - active
}
