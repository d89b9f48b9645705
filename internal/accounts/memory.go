// internal/accounts/memory.go
package accounts

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory implements the account repositories in process, for development and
// tests.
type Memory struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*User
	tokens map[string]uuid.UUID
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:  make(map[uuid.UUID]*User),
		tokens: make(map[string]uuid.UUID),
	}
}

var _ UserRepository = (*Memory)(nil)
var _ TokenRepository = (*MemoryTokens)(nil)

// Create inserts a new user.
func (m *Memory) Create(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	stored := *user
	m.users[user.ID] = &stored
	return nil
}

// ByID retrieves a user by identifier.
func (m *Memory) ByID(ctx context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// ByEmail retrieves a user by email.
func (m *Memory) ByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

// EmailTaken reports whether any user already holds the email.
func (m *Memory) EmailTaken(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// MemoryTokens implements TokenRepository over the same store.
type MemoryTokens struct {
	m *Memory
}

// TokenRepo returns the token repository view of the store.
func (m *Memory) TokenRepo() *MemoryTokens {
	return &MemoryTokens{m: m}
}

// Create stores an issued token for a user.
func (t *MemoryTokens) Create(ctx context.Context, token string, userID uuid.UUID) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	t.m.tokens[token] = userID
	return nil
}

// UserIDByToken resolves a stored token to its user identifier.
func (t *MemoryTokens) UserIDByToken(ctx context.Context, token string) (uuid.UUID, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	userID, ok := t.m.tokens[token]
	if !ok {
		return uuid.Nil, ErrTokenNotFound
	}
	return userID, nil
}

// Delete removes exactly one stored token.
func (t *MemoryTokens) Delete(ctx context.Context, token string) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if _, ok := t.m.tokens[token]; !ok {
		return ErrTokenNotFound
	}
	delete(t.m.tokens, token)
	return nil
}
