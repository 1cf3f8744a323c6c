// internal/lending/property_test.go
package lending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"biblioteka/internal/storage"
	"biblioteka/internal/storage/memory"
)

// TestCapacityInvariantProperty drives the engine with random interleavings
// of borrows and returns over a handful of books and checks, after every
// step, that no book ever has more active loans than copies.
func TestCapacityInvariantProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		store := memory.NewStore()
		engine := NewService(store, store, 0, zap.NewNop())

		member := storage.Member{ID: uuid.New(), Name: "Jan", Email: "jan@example.com", CreatedAt: time.Now().UTC()}
		require.NoError(t, store.AddMember(ctx, member))

		bookCount := rapid.IntRange(1, 4).Draw(rt, "books")
		books := make([]storage.Book, bookCount)
		for i := range books {
			books[i] = storage.Book{
				ID:        uuid.New(),
				Title:     "Book",
				Author:    "Author",
				Copies:    rapid.IntRange(0, 3).Draw(rt, "copies"),
				CreatedAt: time.Now().UTC(),
			}
			require.NoError(t, store.AddBook(ctx, books[i]))
		}

		var active []uuid.UUID

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for step := 0; step < steps; step++ {
			borrow := len(active) == 0 || rapid.Bool().Draw(rt, "borrow")

			if borrow {
				book := books[rapid.IntRange(0, bookCount-1).Draw(rt, "book")]
				loan, err := engine.Borrow(ctx, member.ID, book.ID, 0)
				if err != nil {
					require.ErrorIs(rt, err, storage.ErrNoCopiesAvailable)
				} else {
					active = append(active, loan.ID)
				}
			} else {
				idx := rapid.IntRange(0, len(active)-1).Draw(rt, "loan")
				_, err := engine.Return(ctx, active[idx])
				require.False(rt, errors.Is(err, storage.ErrAlreadyReturned), "active loans settle once")
				require.NoError(rt, err)
				active = append(active[:idx], active[idx+1:]...)
			}

			loans, err := store.ListLoans(ctx)
			require.NoError(rt, err)
			activeByBook := make(map[uuid.UUID]int)
			for _, loan := range loans {
				if !loan.Returned() {
					activeByBook[loan.BookID]++
				}
			}
			for _, book := range books {
				require.LessOrEqual(rt, activeByBook[book.ID], book.Copies,
					"active loans never exceed copies")
			}
		}
	})
}
