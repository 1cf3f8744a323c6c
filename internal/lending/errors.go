// internal/lending/errors.go
package lending

import "errors"

var (
	// ErrInvalidDuration is returned for a negative loan duration.
	ErrInvalidDuration = errors.New("loan duration must be positive")

	// ErrUnavailable is returned when the atomic borrow step kept aborting
	// under contention and the bounded retries were exhausted. The request
	// did not commit; the caller may try again.
	ErrUnavailable = errors.New("lending temporarily unavailable")
)
