// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"biblioteka/internal/storage"
)

var (
	// ErrInvalidBook is returned when a book is missing a title or author.
	ErrInvalidBook = errors.New("title and author are required")

	// ErrInvalidCopies is returned for a negative copy count.
	ErrInvalidCopies = errors.New("copies must not be negative")
)

// service implements the Service interface.
type service struct {
	store storage.CatalogStore
	log   *zap.Logger
}

// NewService creates a new catalog service instance.
func NewService(store storage.CatalogStore, log *zap.Logger) Service {
	return &service{store: store, log: log}
}

// AddBook creates a new book in the catalog.
func (s *service) AddBook(ctx context.Context, title, author string, copies int) (*Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" || author == "" {
		return nil, ErrInvalidBook
	}
	if copies < 0 {
		return nil, ErrInvalidCopies
	}

	book := Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    author,
		Copies:    copies,
		Available: copies,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddBook(ctx, book); err != nil {
		return nil, fmt.Errorf("add book: %w", err)
	}

	s.log.Info("book added",
		zap.Stringer("book_id", book.ID),
		zap.String("title", book.Title),
		zap.Int("copies", book.Copies))

	return &book, nil
}

// GetBook retrieves a book by its ID, with derived availability.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// ListBooks returns all books in the catalog.
func (s *service) ListBooks(ctx context.Context) ([]Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}
