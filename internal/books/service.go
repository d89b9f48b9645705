// internal/books/service.go
package books

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the books service.
type Service interface {
	List(ctx context.Context, page int) (*Page, error)
	Get(ctx context.Context, id uuid.UUID) (*Book, error)
	Create(ctx context.Context, in Input) (*Book, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
