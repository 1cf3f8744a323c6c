// internal/lending/implementation.go
package lending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"biblioteka/internal/storage"
)

// service implements the Service interface.
type service struct {
	loans       storage.LoanStore
	members     storage.MemberStore
	defaultDays int
	log         *zap.Logger
	tracer      trace.Tracer
}

// NewService creates the engine on top of a loan ledger and a member store.
// defaultDays is the loan duration applied when a borrow names none; zero
// selects DefaultLoanDays.
func NewService(loans storage.LoanStore, members storage.MemberStore, defaultDays int, log *zap.Logger) Service {
	if defaultDays <= 0 {
		defaultDays = DefaultLoanDays
	}
	return &service{
		loans:       loans,
		members:     members,
		defaultDays: defaultDays,
		log:         log,
		tracer:      otel.Tracer("biblioteka/lending"),
	}
}

// Borrow admits a borrow request. The member is validated first, then the
// check-then-insert runs as one indivisible step in the ledger; contention
// aborts are retried a bounded number of times since nothing has committed
// yet. Admission rejections are never retried, the caller decides what to do
// with them.
func (s *service) Borrow(ctx context.Context, memberID, bookID uuid.UUID, days int) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, "lending.borrow",
		trace.WithAttributes(
			attribute.String("book.id", bookID.String()),
			attribute.String("member.id", memberID.String()),
		),
	)
	defer span.End()

	if days < 0 {
		return nil, ErrInvalidDuration
	}
	if days == 0 {
		days = s.defaultDays
	}

	if _, err := s.members.GetMember(ctx, memberID); err != nil {
		return nil, fmt.Errorf("validate member: %w", err)
	}

	now := time.Now().UTC()
	loan := Loan{
		ID:       uuid.New(),
		BookID:   bookID,
		MemberID: memberID,
		LoanDate: now,
		DueDate:  now.AddDate(0, 0, days),
	}

	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return s.loans.CreateLoan(ctx, loan)
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			s.log.Warn("borrow aborted after retries",
				zap.Stringer("book_id", bookID),
				zap.Stringer("member_id", memberID),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("create loan: %w", err)
	}

	s.log.Info("loan created",
		zap.Stringer("loan_id", loan.ID),
		zap.Stringer("book_id", bookID),
		zap.Stringer("member_id", memberID),
		zap.Time("due_date", loan.DueDate))
	span.SetAttributes(attribute.String("loan.id", loan.ID.String()))

	return &loan, nil
}

// Return settles a loan. Settlement needs only per-loan atomicity, which the
// ledger's guarded update provides, so there is no retry here.
func (s *service) Return(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, "lending.return",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())),
	)
	defer span.End()

	loan, err := s.loans.SettleLoan(ctx, loanID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("settle loan: %w", err)
	}

	s.log.Info("loan settled",
		zap.Stringer("loan_id", loan.ID),
		zap.Stringer("book_id", loan.BookID))

	return &loan, nil
}

// ListLoans returns the ledger, most recent first.
func (s *service) ListLoans(ctx context.Context) ([]LoanDetail, error) {
	details, err := s.loans.ListLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return details, nil
}
