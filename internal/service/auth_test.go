package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadirh/cannalog/internal/apperror"
	"github.com/nadirh/cannalog/internal/auth"
	"github.com/nadirh/cannalog/internal/repository/memory"
)

func newTestAuthService(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.New()
	tokens, err := auth.NewTokenService("test-secret-at-least-16", time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	return NewAuthService(store, tokens, passwords, discardLogger()), store
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	result, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.Token)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"missing username", "", "a@example.com", "pw"},
		{"whitespace username", "   ", "a@example.com", "pw"},
		{"missing email", "alice", "", "pw"},
		{"missing password", "alice", "a@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestAuthServiceRegisterConflict(t *testing.T) {
	svc, store := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "fresh@example.com", "pw")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.Register(ctx, "bob", "alice@example.com", "pw")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// The original account is untouched.
	user, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	// Wrong password and unknown username fail identically.
	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, ghostErr := svc.Login(ctx, "ghost", "hunter22")
	assert.ErrorIs(t, ghostErr, apperror.ErrUnauthorized)
	assert.Equal(t, err.Error(), ghostErr.Error())
}

func TestAuthServiceLoginTokenRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)

	tokens, err := auth.NewTokenService("test-secret-at-least-16", time.Hour)
	require.NoError(t, err)
	gotID, err := tokens.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotID)
}

func TestAuthServiceUpdateProfile(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{
		Email: strPtr("new@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "new@example.com", updated.Email)

	_, err = svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Username: strPtr("  ")})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAuthServiceUpdateProfileConflict(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	bob, err := svc.Register(ctx, "bob", "bob@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, bob.ID, ProfileUpdate{Username: strPtr("alice")})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestAuthServiceDeleteAccountCascades(t *testing.T) {
	authSvc, store := newTestAuthService(t)
	entrySvc := NewEntryService(store, discardLogger())
	ctx := context.Background()

	user, err := authSvc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	entry, err := entrySvc.Create(ctx, user.ID, EntryInput{Date: "2026-08-30", Time: "10:00"})
	require.NoError(t, err)

	require.NoError(t, authSvc.DeleteAccount(ctx, user.ID))

	_, err = authSvc.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = entrySvc.Get(ctx, user.ID, entry.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
