// internal/storage/errors.go
package storage

import "errors"

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrLoanNotFound   = errors.New("loan not found")

	// ErrEmailTaken is returned when registering a member with an email that
	// is already on file.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNoCopiesAvailable is returned by CreateLoan when every copy of the
	// book is already lent out.
	ErrNoCopiesAvailable = errors.New("no copies available")

	// ErrAlreadyReturned is returned by SettleLoan for a loan whose return
	// date is already set.
	ErrAlreadyReturned = errors.New("loan already returned")

	// ErrConflict signals that the atomic check-then-insert was aborted by
	// concurrent access (e.g. a serialization failure). The step has not
	// committed and may be retried.
	ErrConflict = errors.New("storage conflict")
)
