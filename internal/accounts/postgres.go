// internal/accounts/postgres.go
package accounts

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

// PostgresUsers implements UserRepository over database/sql.
type PostgresUsers struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgresUsers creates a Postgres-backed user repository.
func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{
		db:     db,
		tracer: otel.Tracer("bookvault/accounts"),
	}
}

var _ UserRepository = (*PostgresUsers)(nil)

// Create inserts a new user. A unique-violation on the email column maps to
// ErrDuplicateEmail.
func (r *PostgresUsers) Create(ctx context.Context, user *User) error {
	ctx, span := r.tracer.Start(ctx, "users.create",
		trace.WithAttributes(attribute.String("user.id", user.ID.String())),
	)
	defer span.End()

	query := `
		INSERT INTO users (id, name, email, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Salt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// ByID retrieves a user by identifier.
func (r *PostgresUsers) ByID(ctx context.Context, id uuid.UUID) (*User, error) {
	ctx, span := r.tracer.Start(ctx, "users.by_id",
		trace.WithAttributes(attribute.String("user.id", id.String())),
	)
	defer span.End()

	query := `
		SELECT id, name, email, password_hash, salt, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// ByEmail retrieves a user by email.
func (r *PostgresUsers) ByEmail(ctx context.Context, email string) (*User, error) {
	ctx, span := r.tracer.Start(ctx, "users.by_email")
	defer span.End()

	query := `
		SELECT id, name, email, password_hash, salt, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// EmailTaken reports whether any user already holds the email.
func (r *PostgresUsers) EmailTaken(ctx context.Context, email string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "users.email_taken")
	defer span.End()

	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return taken, nil
}

func (r *PostgresUsers) scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// PostgresTokens implements TokenRepository over database/sql.
type PostgresTokens struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgresTokens creates a Postgres-backed token repository.
func NewPostgresTokens(db *sql.DB) *PostgresTokens {
	return &PostgresTokens{
		db:     db,
		tracer: otel.Tracer("bookvault/accounts"),
	}
}

var _ TokenRepository = (*PostgresTokens)(nil)

// Create stores an issued token for a user.
func (r *PostgresTokens) Create(ctx context.Context, token string, userID uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "tokens.create",
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
	defer span.End()

	query := `
		INSERT INTO tokens (token, user_id, created_at)
		VALUES ($1, $2, NOW())
	`
	if _, err := r.db.ExecContext(ctx, query, token, userID); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// UserIDByToken resolves a stored token to its user identifier.
func (r *PostgresTokens) UserIDByToken(ctx context.Context, token string) (uuid.UUID, error) {
	ctx, span := r.tracer.Start(ctx, "tokens.lookup")
	defer span.End()

	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM tokens WHERE token = $1`, token).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, ErrTokenNotFound
		}
		return uuid.Nil, fmt.Errorf("lookup token: %w", err)
	}
	return userID, nil
}

// Delete removes exactly one stored token.
func (r *PostgresTokens) Delete(ctx context.Context, token string) error {
	ctx, span := r.tracer.Start(ctx, "tokens.delete")
	defer span.End()

	res, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if affected == 0 {
		return ErrTokenNotFound
	}
	return nil
}
