// internal/storage/memory/memory.go
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"biblioteka/internal/storage"
)

// Store is an in-process loan ledger. It serializes borrow admission with a
// mutex per book, so two concurrent borrows against the last free copy cannot
// both observe it as free. State maps are guarded by a separate store mutex
// that is held only for short reads and writes.
type Store struct {
	mu      sync.RWMutex
	books   map[uuid.UUID]storage.Book
	members map[uuid.UUID]storage.Member
	loans   map[uuid.UUID]storage.Loan

	locksMu   sync.Mutex
	bookLocks map[uuid.UUID]*sync.Mutex
}

// NewStore creates an empty in-process store.
func NewStore() *Store {
	return &Store{
		books:     make(map[uuid.UUID]storage.Book),
		members:   make(map[uuid.UUID]storage.Member),
		loans:     make(map[uuid.UUID]storage.Loan),
		bookLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

var _ storage.Store = (*Store)(nil)

// bookLock returns the admission mutex for a book, creating it on first use.
func (s *Store) bookLock(bookID uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.bookLocks[bookID]
	if !ok {
		lock = &sync.Mutex{}
		s.bookLocks[bookID] = lock
	}
	return lock
}

// AddBook stores a new book record.
func (s *Store) AddBook(_ context.Context, book storage.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books[book.ID] = book
	return nil
}

// GetBook returns a book with its availability derived from the ledger.
func (s *Store) GetBook(_ context.Context, id uuid.UUID) (storage.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return storage.Book{}, storage.ErrBookNotFound
	}
	book.Available = available(book.Copies, s.activeLoanCount(id))
	return book, nil
}

// ListBooks returns all books, oldest first, with derived availability.
func (s *Store) ListBooks(_ context.Context) ([]storage.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]storage.Book, 0, len(s.books))
	for _, book := range s.books {
		book.Available = available(book.Copies, s.activeLoanCount(book.ID))
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].CreatedAt.Before(books[j].CreatedAt)
	})
	return books, nil
}

// AddMember stores a new member, rejecting duplicate emails.
func (s *Store) AddMember(_ context.Context, member storage.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.members {
		if strings.EqualFold(existing.Email, member.Email) {
			return storage.ErrEmailTaken
		}
	}
	s.members[member.ID] = member
	return nil
}

// GetMember returns a member by id.
func (s *Store) GetMember(_ context.Context, id uuid.UUID) (storage.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, ok := s.members[id]
	if !ok {
		return storage.Member{}, storage.ErrMemberNotFound
	}
	return member, nil
}

// ListMembers returns all members, oldest first.
func (s *Store) ListMembers(_ context.Context) ([]storage.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]storage.Member, 0, len(s.members))
	for _, member := range s.members {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members, nil
}

// CreateLoan admits a borrow. The per-book lock makes the count-then-insert
// indivisible with respect to other borrows of the same book; borrows of
// unrelated books do not contend on it.
func (s *Store) CreateLoan(ctx context.Context, loan storage.Loan) error {
	lock := s.bookLock(loan.BookID)
	lock.Lock()
	defer lock.Unlock()

	// A caller that gave up while queued on the lock must leave no trace.
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	book, bookOK := s.books[loan.BookID]
	_, memberOK := s.members[loan.MemberID]
	active := s.activeLoanCount(loan.BookID)
	s.mu.RUnlock()

	if !bookOK {
		return storage.ErrBookNotFound
	}
	if !memberOK {
		return storage.ErrMemberNotFound
	}
	if active >= book.Copies {
		return storage.ErrNoCopiesAvailable
	}

	// The admission lock is still held: no other borrow of this book can run
	// between the count above and the insert below. A settlement may land in
	// between, but that only frees a copy.
	s.mu.Lock()
	s.loans[loan.ID] = loan
	s.mu.Unlock()
	return nil
}

// SettleLoan sets the return date on an active loan.
func (s *Store) SettleLoan(_ context.Context, id uuid.UUID, returnedAt time.Time) (storage.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[id]
	if !ok {
		return storage.Loan{}, storage.ErrLoanNotFound
	}
	if loan.Returned() {
		return storage.Loan{}, storage.ErrAlreadyReturned
	}

	loan.ReturnDate = &returnedAt
	s.loans[id] = loan
	return loan, nil
}

// GetLoan returns a loan by id.
func (s *Store) GetLoan(_ context.Context, id uuid.UUID) (storage.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loan, ok := s.loans[id]
	if !ok {
		return storage.Loan{}, storage.ErrLoanNotFound
	}
	return loan, nil
}

// ListLoans returns all loans joined with member and book summaries, most
// recent loan date first.
func (s *Store) ListLoans(_ context.Context) ([]storage.LoanDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	details := make([]storage.LoanDetail, 0, len(s.loans))
	for _, loan := range s.loans {
		details = append(details, s.detail(loan))
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].LoanDate.After(details[j].LoanDate)
	})
	return details, nil
}

// OverdueLoans returns active loans past due as of the given instant,
// longest overdue first.
func (s *Store) OverdueLoans(_ context.Context, asOf time.Time) ([]storage.LoanDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var details []storage.LoanDetail
	for _, loan := range s.loans {
		if loan.Returned() || !loan.DueDate.Before(asOf) {
			continue
		}
		details = append(details, s.detail(loan))
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].DueDate.Before(details[j].DueDate)
	})
	return details, nil
}

func (s *Store) detail(loan storage.Loan) storage.LoanDetail {
	member := s.members[loan.MemberID]
	book := s.books[loan.BookID]
	return storage.LoanDetail{
		Loan:   loan,
		Member: storage.MemberSummary{ID: member.ID, Name: member.Name, Email: member.Email},
		Book:   storage.BookSummary{ID: book.ID, Title: book.Title},
	}
}

// activeLoanCount counts unreturned loans for a book. Callers hold s.mu in
// at least read mode.
func (s *Store) activeLoanCount(bookID uuid.UUID) int {
	count := 0
	for _, loan := range s.loans {
		if loan.BookID == bookID && !loan.Returned() {
			count++
		}
	}
	return count
}

func available(copies, active int) int {
	if active >= copies {
		return 0
	}
	return copies - active
}
