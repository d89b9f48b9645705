// internal/accounts/implementation.go
package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookvault/internal/validate"
)

var registerRules = map[string]validate.Rule{
	"name":     {MaxLen: 255},
	"email":    {MaxLen: 255},
	"password": {MinLen: 8},
}

var loginRules = map[string]validate.Rule{
	"email":    {},
	"password": {},
}

// service implements the Service interface.
type service struct {
	users  UserRepository
	tokens TokenRepository
}

// NewService creates a new accounts service instance.
func NewService(users UserRepository, tokens TokenRepository) Service {
	return &service{
		users:  users,
		tokens: tokens,
	}
}

// Register creates a user with a hashed password and issues a fresh token.
// Field violations and duplicate emails are reported together as a
// validate.Violations error.
func (s *service) Register(ctx context.Context, name, email, password string) (*User, string, error) {
	fields := map[string]validate.Field{
		"name":     {Value: name, Present: true},
		"email":    {Value: email, Present: true},
		"password": {Value: password, Present: true},
	}

	violations := validate.Violations{}
	violations.Merge(validate.Check(fields, registerRules, validate.Create))

	if email != "" && !validate.Email(email) {
		violations.Add("email", "the email must be a valid email address")
	} else if email != "" {
		taken, err := s.users.EmailTaken(ctx, email)
		if err != nil {
			return nil, "", fmt.Errorf("check email: %w", err)
		}
		if taken {
			violations.Add("email", "the email has already been taken")
		}
	}

	if len(violations) > 0 {
		return nil, "", violations
	}

	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if err == ErrDuplicateEmail {
			// Lost a race with a concurrent registration.
			return nil, "", validate.Violations{"email": {"the email has already been taken"}}
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Authenticate verifies the email/password pair and issues a fresh token.
// Any lookup or verification failure surfaces as ErrInvalidCredentials.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	fields := map[string]validate.Field{
		"email":    {Value: email, Present: true},
		"password": {Value: password, Present: true},
	}

	violations := validate.Violations{}
	violations.Merge(validate.Check(fields, loginRules, validate.Create))
	if email != "" && !validate.Email(email) {
		violations.Add("email", "the email must be a valid email address")
	}
	if len(violations) > 0 {
		return nil, "", violations
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, "", ErrInvalidCredentials
	}

	ok, err := verifyPassword(password, user.Salt, user.PasswordHash)
	if err != nil || !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Revoke deletes exactly the presented token. Other tokens held by the same
// user stay valid.
func (s *service) Revoke(ctx context.Context, token string) error {
	if err := s.tokens.Delete(ctx, token); err != nil {
		if err == ErrTokenNotFound {
			return ErrUnauthenticated
		}
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// UserByToken resolves a bearer token to its user, or ErrUnauthenticated.
func (s *service) UserByToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	userID, err := s.tokens.UserIDByToken(ctx, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil || user == nil {
		return nil, ErrUnauthenticated
	}

	return user, nil
}

func (s *service) issueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := s.tokens.Create(ctx, token, userID); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}
