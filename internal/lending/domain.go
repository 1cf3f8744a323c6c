// internal/lending/domain.go
package lending

import "biblioteka/internal/storage"

// DefaultLoanDays is the loan duration used when a borrow request does not
// name one. It can be overridden through configuration.
const DefaultLoanDays = 14

// Loan is one ledger entry: book, member, loan date, due date and an
// optional return date. A loan is Active until its return date is set, then
// Returned; the transition is one-way and happens exactly once.
type Loan = storage.Loan

// LoanDetail is a loan joined with member and book summaries for listings.
type LoanDetail = storage.LoanDetail
