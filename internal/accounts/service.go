// internal/accounts/service.go
package accounts

import (
	"context"
)

// Service defines the interface for the accounts service.
type Service interface {
	Register(ctx context.Context, name, email, password string) (*User, string, error)
	Authenticate(ctx context.Context, email, password string) (*User, string, error)
	Revoke(ctx context.Context, token string) error
	UserByToken(ctx context.Context, token string) (*User, error)
}
