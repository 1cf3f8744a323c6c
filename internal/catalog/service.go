// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the catalog service. The lending engine
// only reads from the catalog; copy counts are managed here.
type Service interface {
	AddBook(ctx context.Context, title, author string, copies int) (*Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
}
