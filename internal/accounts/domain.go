// internal/accounts/domain.go
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already taken")
	// ErrInvalidCredentials indicates the email/password pair did not match.
	// It deliberately does not distinguish an unknown email from a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates the presented token is absent or unknown.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserNotFound indicates no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenNotFound indicates no stored token matches the lookup.
	ErrTokenNotFound = errors.New("token not found")
)

// User represents a registered account. The password hash and salt never
// appear in API output.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// freeMailProviders are the consumer domains that do not count as
// professional addresses.
var freeMailProviders = []string{
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"free.fr",
	"laposte.net",
}

// UsesProfessionalEmail reports whether the account's email domain is outside
// the known free-consumer providers. The comparison is case-sensitive against
// the stored address.
func (u *User) UsesProfessionalEmail() bool {
	at := strings.LastIndex(u.Email, "@")
	if at < 0 {
		return true
	}
	domain := u.Email[at+1:]

	for _, provider := range freeMailProviders {
		if domain == provider {
			return false
		}
	}
	return true
}

// Token associates one issued bearer string with a user. A user may hold any
// number of concurrent tokens.
type Token struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	ByID(ctx context.Context, id uuid.UUID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

// TokenRepository defines persistence for issued bearer tokens.
type TokenRepository interface {
	Create(ctx context.Context, token string, userID uuid.UUID) error
	UserIDByToken(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}
