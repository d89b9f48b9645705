// internal/books/postgres.go
package books

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Postgres implements Repository over database/sql.
type Postgres struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgres creates a Postgres-backed book repository.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		db:     db,
		tracer: otel.Tracer("bookvault/books"),
	}
}

var _ Repository = (*Postgres)(nil)

// Create inserts a new book. A unique-violation on the isbn column maps to
// ErrDuplicateISBN.
func (r *Postgres) Create(ctx context.Context, book *Book) error {
	ctx, span := r.tracer.Start(ctx, "books.create",
		trace.WithAttributes(attribute.String("book.id", book.ID.String())),
	)
	defer span.End()

	query := `
		INSERT INTO books (id, title, author, summary, isbn, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		book.ID, book.Title, book.Author, book.Summary, book.ISBN, book.CreatedAt, book.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// ByID retrieves a book by identifier.
func (r *Postgres) ByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	ctx, span := r.tracer.Start(ctx, "books.by_id",
		trace.WithAttributes(attribute.String("book.id", id.String())),
	)
	defer span.End()

	query := `
		SELECT id, title, author, summary, isbn, created_at, updated_at
		FROM books
		WHERE id = $1
	`
	book := &Book{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Summary,
		&book.ISBN,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// Update persists all fields of an existing book.
func (r *Postgres) Update(ctx context.Context, book *Book) error {
	ctx, span := r.tracer.Start(ctx, "books.update",
		trace.WithAttributes(attribute.String("book.id", book.ID.String())),
	)
	defer span.End()

	query := `
		UPDATE books
		SET title = $1, author = $2, summary = $3, isbn = $4, updated_at = $5
		WHERE id = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		book.Title, book.Author, book.Summary, book.ISBN, book.UpdatedAt, book.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("update book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a book by identifier.
func (r *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "books.delete",
		trace.WithAttributes(attribute.String("book.id", id.String())),
	)
	defer span.End()

	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one identifier-ordered slice of books plus the total count.
func (r *Postgres) List(ctx context.Context, offset, limit int) ([]Book, int, error) {
	ctx, span := r.tracer.Start(ctx, "books.list",
		trace.WithAttributes(
			attribute.Int("list.offset", offset),
			attribute.Int("list.limit", limit),
		),
	)
	defer span.End()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	query := `
		SELECT id, title, author, summary, isbn, created_at, updated_at
		FROM books
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var items []Book
	for rows.Next() {
		var book Book
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Summary,
			&book.ISBN,
			&book.CreatedAt,
			&book.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan book: %w", err)
		}
		items = append(items, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate books: %w", err)
	}

	span.SetAttributes(attribute.Int("list.returned", len(items)))
	return items, total, nil
}

// ISBNTaken reports whether a different book already holds the ISBN.
func (r *Postgres) ISBNTaken(ctx context.Context, isbn string, exclude uuid.UUID) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "books.isbn_taken")
	defer span.End()

	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1 AND id <> $2)`,
		isbn, exclude).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check isbn: %w", err)
	}
	return taken, nil
}
