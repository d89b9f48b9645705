// internal/books/implementation.go
package books

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"bookvault/internal/cache"
	"bookvault/internal/validate"
)

// perPage is the fixed page size of the catalogue listing.
const perPage = 2

// cacheTTL bounds how long a cached book may serve reads before it must be
// refreshed from the repository.
const cacheTTL = 3600 * time.Second

var bookRules = map[string]validate.Rule{
	"title":   {MinLen: 3, MaxLen: 255},
	"author":  {MinLen: 3, MaxLen: 100},
	"summary": {MinLen: 10, MaxLen: 500},
	"isbn":    {ExactLen: 13},
}

// service implements the Service interface.
type service struct {
	repo  Repository
	cache cache.Cache
}

// NewService creates a new books service instance. Lookups are memoized in
// the given cache; mutations invalidate the affected entry.
func NewService(repo Repository, c cache.Cache) Service {
	return &service{
		repo:  repo,
		cache: c,
	}
}

func cacheKey(id uuid.UUID) string {
	return "book:" + id.String()
}

// List returns one identifier-ordered page of the catalogue.
func (s *service) List(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	items, total, err := s.repo.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if items == nil {
		items = []Book{}
	}

	return &Page{
		Data: items,
		Meta: Meta{
			CurrentPage: page,
			PerPage:     perPage,
			Total:       total,
		},
	}, nil
}

// Get returns a single book, serving from the cache when a fresh entry
// exists. Failed lookups are never cached.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Book, error) {
	key := cacheKey(id)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("book cache get %s: %v", id, err)
	} else if ok {
		book := &Book{}
		if err := json.Unmarshal(data, book); err == nil {
			return book, nil
		}
		// An undecodable entry is dropped and reloaded.
		_ = s.cache.Invalidate(ctx, key)
	}

	book, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(book); err == nil {
		if err := s.cache.Set(ctx, key, data, cacheTTL); err != nil {
			log.Printf("book cache set %s: %v", id, err)
		}
	}

	return book, nil
}

// Create validates the proposed fields and persists a new book. The cache is
// populated lazily by the next Get.
func (s *service) Create(ctx context.Context, in Input) (*Book, error) {
	violations := validate.Violations{}
	violations.Merge(validate.Check(in.fields(), bookRules, validate.Create))

	if in.ISBN != nil && *in.ISBN != "" {
		if err := s.checkISBN(ctx, *in.ISBN, uuid.Nil, violations); err != nil {
			return nil, err
		}
	}
	if len(violations) > 0 {
		return nil, violations
	}

	now := time.Now().UTC()
	book := &Book{
		ID:        uuid.New(),
		Title:     *in.Title,
		Author:    *in.Author,
		Summary:   *in.Summary,
		ISBN:      *in.ISBN,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		if err == ErrDuplicateISBN {
			return nil, validate.Violations{"isbn": {"the isbn has already been taken"}}
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	return book, nil
}

// Update merges the provided fields onto the stored record, persists it, then
// invalidates the cached entry. ISBN uniqueness excludes the record itself.
func (s *service) Update(ctx context.Context, id uuid.UUID, in Input) (*Book, error) {
	violations := validate.Violations{}
	violations.Merge(validate.Check(in.fields(), bookRules, validate.Update))

	if in.ISBN != nil && *in.ISBN != "" {
		if err := s.checkISBN(ctx, *in.ISBN, id, violations); err != nil {
			return nil, err
		}
	}
	if len(violations) > 0 {
		return nil, violations
	}

	book, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		book.Title = *in.Title
	}
	if in.Author != nil {
		book.Author = *in.Author
	}
	if in.Summary != nil {
		book.Summary = *in.Summary
	}
	if in.ISBN != nil {
		book.ISBN = *in.ISBN
	}
	book.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, book); err != nil {
		if err == ErrDuplicateISBN {
			return nil, validate.Violations{"isbn": {"the isbn has already been taken"}}
		}
		return nil, err
	}

	// Invalidation is sequenced after the persistence write. A concurrent
	// read between the write and this call may repopulate the cache with
	// pre-mutation state for up to one TTL.
	if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
		log.Printf("book cache invalidate %s: %v", id, err)
	}

	return book, nil
}

// Delete invalidates the cached entry, then removes the record.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
		log.Printf("book cache invalidate %s: %v", id, err)
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) checkISBN(ctx context.Context, isbn string, exclude uuid.UUID, violations validate.Violations) error {
	taken, err := s.repo.ISBNTaken(ctx, isbn, exclude)
	if err != nil {
		return fmt.Errorf("check isbn: %w", err)
	}
	if taken {
		violations.Add("isbn", "the isbn has already been taken")
	}
	return nil
}

func (in Input) fields() map[string]validate.Field {
	fields := make(map[string]validate.Field, 4)
	set := func(name string, value *string) {
		if value != nil {
			fields[name] = validate.Field{Value: *value, Present: true}
		}
	}
	set("title", in.Title)
	set("author", in.Author)
	set("summary", in.Summary)
	set("isbn", in.ISBN)
	return fields
}
