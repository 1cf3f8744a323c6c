// internal/lending/implementation_test.go
package lending

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biblioteka/internal/storage"
	"biblioteka/internal/storage/memory"
)

type fixture struct {
	store  *memory.Store
	engine Service
	book   storage.Book
	member storage.Member
}

func setup(t *testing.T, copies int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	book := storage.Book{
		ID:        uuid.New(),
		Title:     "Solaris",
		Author:    "Stanisław Lem",
		Copies:    copies,
		CreatedAt: time.Now().UTC(),
	}
	member := storage.Member{
		ID:        uuid.New(),
		Name:      "Jan Kowalski",
		Email:     "jan@example.com",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.AddBook(ctx, book))
	require.NoError(t, store.AddMember(ctx, member))

	return &fixture{
		store:  store,
		engine: NewService(store, store, 0, zap.NewNop()),
		book:   book,
		member: member,
	}
}

func TestBorrowAppliesDefaultDuration(t *testing.T) {
	f := setup(t, 1)

	before := time.Now().UTC()
	loan, err := f.engine.Borrow(context.Background(), f.member.ID, f.book.ID, 0)
	require.NoError(t, err)

	wantDue := before.AddDate(0, 0, DefaultLoanDays)
	assert.WithinDuration(t, wantDue, loan.DueDate, 5*time.Second)
	assert.Nil(t, loan.ReturnDate)
}

func TestBorrowHonorsRequestedDuration(t *testing.T) {
	f := setup(t, 1)

	loan, err := f.engine.Borrow(context.Background(), f.member.ID, f.book.ID, 7)
	require.NoError(t, err)

	assert.WithinDuration(t, loan.LoanDate.AddDate(0, 0, 7), loan.DueDate, time.Second)
}

func TestBorrowRejectsNegativeDuration(t *testing.T) {
	f := setup(t, 1)

	_, err := f.engine.Borrow(context.Background(), f.member.ID, f.book.ID, -3)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestBorrowUnknownBook(t *testing.T) {
	f := setup(t, 1)

	_, err := f.engine.Borrow(context.Background(), f.member.ID, uuid.New(), 0)
	assert.ErrorIs(t, err, storage.ErrBookNotFound)

	loans, listErr := f.store.ListLoans(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, loans, "a rejected borrow must create no loan")
}

func TestBorrowUnknownMember(t *testing.T) {
	f := setup(t, 1)

	_, err := f.engine.Borrow(context.Background(), uuid.New(), f.book.ID, 0)
	assert.ErrorIs(t, err, storage.ErrMemberNotFound)
}

func TestBorrowRejectsWhenPoolExhausted(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()

	_, err := f.engine.Borrow(ctx, f.member.ID, f.book.ID, 0)
	require.NoError(t, err)

	_, err = f.engine.Borrow(ctx, f.member.ID, f.book.ID, 0)
	assert.ErrorIs(t, err, storage.ErrNoCopiesAvailable)
}

// TestBorrowConcurrentSingleCopy fires many concurrent borrows at a book with
// one copy: exactly one may win, everyone else must be turned away.
func TestBorrowConcurrentSingleCopy(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()

	const callers = 16
	results := make(chan error, callers)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < callers; i++ {
		go func() {
			start.Wait()
			_, err := f.engine.Borrow(ctx, f.member.ID, f.book.ID, 0)
			results <- err
		}()
	}
	start.Done()

	var wins, rejections int
	for i := 0; i < callers; i++ {
		err := <-results
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, storage.ErrNoCopiesAvailable)
			rejections++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, rejections)

	book, err := f.store.GetBook(ctx, f.book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, book.Available)
}

func TestReturnSettlesOnce(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()

	loan, err := f.engine.Borrow(ctx, f.member.ID, f.book.ID, 0)
	require.NoError(t, err)

	settled, err := f.engine.Return(ctx, loan.ID)
	require.NoError(t, err)
	require.NotNil(t, settled.ReturnDate)

	_, err = f.engine.Return(ctx, loan.ID)
	assert.ErrorIs(t, err, storage.ErrAlreadyReturned)
}

func TestReturnUnknownLoan(t *testing.T) {
	f := setup(t, 1)

	_, err := f.engine.Return(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrLoanNotFound)
}

// TestBorrowReturnRoundTrip checks that a borrow followed by a return leaves
// the book's availability exactly where it started.
func TestBorrowReturnRoundTrip(t *testing.T) {
	f := setup(t, 3)
	ctx := context.Background()

	before, err := f.store.GetBook(ctx, f.book.ID)
	require.NoError(t, err)

	loan, err := f.engine.Borrow(ctx, f.member.ID, f.book.ID, 0)
	require.NoError(t, err)

	during, err := f.store.GetBook(ctx, f.book.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Available-1, during.Available)

	_, err = f.engine.Return(ctx, loan.ID)
	require.NoError(t, err)

	after, err := f.store.GetBook(ctx, f.book.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Available, after.Available)
}

func TestListLoans(t *testing.T) {
	f := setup(t, 2)
	ctx := context.Background()

	_, err := f.engine.Borrow(ctx, f.member.ID, f.book.ID, 0)
	require.NoError(t, err)
	_, err = f.engine.Borrow(ctx, f.member.ID, f.book.ID, 0)
	require.NoError(t, err)

	details, err := f.engine.ListLoans(ctx)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, f.book.Title, details[0].Book.Title)
	assert.Equal(t, f.member.Email, details[0].Member.Email)
}
