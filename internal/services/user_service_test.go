package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register_Success(t *testing.T) {
	f := newFixture(t)

	user, err := f.userSvc.Register(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash, "returned user must not carry the hash")

	stored, err := f.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestUserService_Register_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.userSvc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	_, err = f.userSvc.Register(ctx, "alice", "another-pass")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserService_Register_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "secret123"},
		{"blank username", "    ", "secret123"},
		{"short username", "bob", "secret123"},
		{"empty password", "alice", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.userSvc.Register(ctx, tc.username, tc.password)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_Login_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.userSvc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	user, token, err := f.userSvc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
	require.NotNil(t, user.LastLogin)

	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	stored, err := f.users.FindByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.userSvc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	for _, pw := range []string{"secret124", "Secret123", "secret12", "secret1234"} {
		_, _, err := f.userSvc.Login(ctx, "alice", pw)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "password %q", pw)
	}
}

func TestUserService_Login_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.userSvc.Login(context.Background(), "ghost", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Login_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.userSvc.Login(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrValidation)
}
