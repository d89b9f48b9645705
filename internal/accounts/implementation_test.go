// internal/accounts/implementation_test.go
package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookvault/internal/validate"
)

func newTestService() (Service, *Memory) {
	store := NewMemory()
	return NewService(store, store.TokenRepo()), store
}

func TestRegisterIssuesToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	user, token, err := svc.Register(ctx, "Ana", "ana@co.io", "longpass1")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "ana@co.io", user.Email)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "longpass1", user.PasswordHash, "password must never be stored in clear")

	// The token authenticates follow-up requests.
	got, err := svc.UserByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, _, err := svc.Register(ctx, "", "not-an-email", "short")
	require.Error(t, err)

	var violations validate.Violations
	require.True(t, errors.As(err, &violations))
	assert.Contains(t, violations, "name")
	assert.Contains(t, violations, "email")
	assert.Contains(t, violations, "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, _, err := svc.Register(ctx, "Ana", "ana@co.io", "longpass1")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Other", "ana@co.io", "longpass2")
	require.Error(t, err)

	var violations validate.Violations
	require.True(t, errors.As(err, &violations))
	require.Contains(t, violations, "email")
	assert.Contains(t, violations["email"][0], "already been taken")
}

func TestAuthenticateScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, registerToken, err := svc.Register(ctx, "Ana", "ana@co.io", "longpass1")
	require.NoError(t, err)

	user, loginToken, err := svc.Authenticate(ctx, "ana@co.io", "longpass1")
	require.NoError(t, err)
	assert.Equal(t, "ana@co.io", user.Email)
	assert.NotEmpty(t, loginToken)
	assert.NotEqual(t, registerToken, loginToken, "each login issues a distinct token")

	_, _, err = svc.Authenticate(ctx, "ana@co.io", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmailIsIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, _, err := svc.Register(ctx, "Ana", "ana@co.io", "longpass1")
	require.NoError(t, err)

	_, _, badUser := svc.Authenticate(ctx, "nobody@co.io", "longpass1")
	_, _, badPass := svc.Authenticate(ctx, "ana@co.io", "wrong")

	assert.ErrorIs(t, badUser, ErrInvalidCredentials)
	assert.ErrorIs(t, badPass, ErrInvalidCredentials)
	assert.Equal(t, badUser.Error(), badPass.Error())
}

func TestRevokeOnlyPresentedToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, first, err := svc.Register(ctx, "Ana", "ana@co.io", "longpass1")
	require.NoError(t, err)
	_, second, err := svc.Authenticate(ctx, "ana@co.io", "longpass1")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, first))

	_, err = svc.UserByToken(ctx, first)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// The user's other token survives the logout.
	_, err = svc.UserByToken(ctx, second)
	assert.NoError(t, err)
}

func TestRevokeUnknownToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	err := svc.Revoke(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserByTokenEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.UserByToken(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, salt, err := hashPassword("longpass1")
	require.NoError(t, err)

	ok, err := verifyPassword("longpass1", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("different", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUsesProfessionalEmail(t *testing.T) {
	pro := &User{Email: "john@entreprise.com"}
	assert.True(t, pro.UsesProfessionalEmail())

	free := &User{Email: "john@gmail.com"}
	assert.False(t, free.UsesProfessionalEmail())

	// The domain comparison is case-sensitive against the stored address.
	upper := &User{Email: "john@GMAIL.com"}
	assert.True(t, upper.UsesProfessionalEmail())
}
