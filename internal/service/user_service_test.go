package service

import (
	"context"
	"testing"

	"go-wiki-store/internal/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	_, users, _ := newTestServices(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)
	assert.NotEqual(t, "secret1", alice.Secret)
	assert.NotEmpty(t, alice.Token())

	got, err := users.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, alice.Token(), got.Token())

	_, wrongSecret := users.Authenticate(ctx, "alice", "wrong")
	_, unknownUser := users.Authenticate(ctx, "mallory", "secret1")
	assert.ErrorIs(t, wrongSecret, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongSecret.Error(), unknownUser.Error())
}

func TestUserService_RegisterValidation(t *testing.T) {
	_, users, _ := newTestServices(t)
	ctx := context.Background()

	_, err := users.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	dup, err := users.Register(ctx, "alice", "other")
	require.ErrorIs(t, err, data.ErrValidationFailed)
	assert.True(t, dup.Errors.Has("username"))

	noSecret, err := users.Register(ctx, "bob", "")
	require.ErrorIs(t, err, data.ErrValidationFailed)
	assert.True(t, noSecret.Errors.Has("password"))
}

func TestUserService_IssueToken(t *testing.T) {
	_, users, store := newTestServices(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	first := alice.Token()

	token, err := users.IssueToken(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, first, token, "tokens are not rotated")

	// A user whose token was cleared gets a fresh one, persisted.
	_, err = store.Exec(ctx, "users", "UPDATE users SET session_token = NULL WHERE id = ?", alice.ID)
	require.NoError(t, err)
	reloaded, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, reloaded.Token())

	token, err = users.IssueToken(ctx, reloaded)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, first, token)

	found, err := users.LookupByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = users.IssueToken(ctx, &data.User{Username: "ghost"})
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestUserService_LookupByToken(t *testing.T) {
	_, users, _ := newTestServices(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	found, err := users.LookupByToken(ctx, alice.Token())
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	_, err = users.LookupByToken(ctx, "no-such-token")
	assert.ErrorIs(t, err, data.ErrNotFound)
	_, err = users.LookupByToken(ctx, "")
	assert.ErrorIs(t, err, data.ErrNotFound)
}
