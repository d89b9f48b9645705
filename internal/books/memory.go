// internal/books/memory.go
package books

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory implements Repository in process, for development and tests.
type Memory struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Book
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[uuid.UUID]*Book),
	}
}

var _ Repository = (*Memory)(nil)

// Create inserts a new book.
func (m *Memory) Create(ctx context.Context, book *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.items {
		if b.ISBN == book.ISBN {
			return ErrDuplicateISBN
		}
	}

	stored := *book
	m.items[book.ID] = &stored
	return nil
}

// ByID retrieves a book by identifier.
func (m *Memory) ByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *book
	return &copied, nil
}

// Update persists all fields of an existing book.
func (m *Memory) Update(ctx context.Context, book *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[book.ID]; !ok {
		return ErrNotFound
	}
	for _, b := range m.items {
		if b.ID != book.ID && b.ISBN == book.ISBN {
			return ErrDuplicateISBN
		}
	}

	stored := *book
	m.items[book.ID] = &stored
	return nil
}

// Delete removes a book by identifier.
func (m *Memory) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// List returns one identifier-ordered slice of books plus the total count.
func (m *Memory) List(ctx context.Context, offset, limit int) ([]Book, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]Book, 0, len(m.items))
	for _, b := range m.items {
		all = append(all, *b)
	}
	sort.Slice(all, func(i, j int) bool {
		return strings.Compare(all[i].ID.String(), all[j].ID.String()) < 0
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// ISBNTaken reports whether a different book already holds the ISBN.
func (m *Memory) ISBNTaken(ctx context.Context, isbn string, exclude uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.items {
		if b.ISBN == isbn && b.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}
