// internal/books/domain.go
package books

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no book matches the identifier.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicateISBN indicates another book already holds the ISBN.
	ErrDuplicateISBN = errors.New("isbn already taken")
)

// Book represents a catalogued book.
type Book struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Summary   string    `json:"summary"`
	ISBN      string    `json:"isbn"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input carries proposed book fields. Nil means the caller did not supply the
// field, which matters for partial updates.
type Input struct {
	Title   *string `json:"title"`
	Author  *string `json:"author"`
	Summary *string `json:"summary"`
	ISBN    *string `json:"isbn"`
}

// Page is one page of the catalogue with pagination metadata.
type Page struct {
	Data []Book `json:"data"`
	Meta Meta   `json:"meta"`
}

// Meta describes the position of a page within the full result set.
type Meta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Repository defines persistence for books.
type Repository interface {
	Create(ctx context.Context, book *Book) error
	ByID(ctx context.Context, id uuid.UUID) (*Book, error)
	Update(ctx context.Context, book *Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, offset, limit int) ([]Book, int, error)
	ISBNTaken(ctx context.Context, isbn string, exclude uuid.UUID) (bool, error)
}
