package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterStoresHashOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "password-alice", user.HashedPassword)
	assert.True(t, env.auth.hasher.Verify("password-alice", user.HashedPassword))
}

func TestRegisterConflicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice")

	_, err := env.auth.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "username already registered", Reason(err))

	_, err = env.auth.Register(ctx, RegisterInput{Username: "alicia", Email: "alice@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "email already registered", Reason(err))

	// Username is checked first.
	_, err = env.auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	assert.Equal(t, "username already registered", Reason(err))
}

func TestLoginAndAuthorize(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.register(t, "bob")

	token, err := env.auth.Login(ctx, "bob", "password-bob")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)

	resolved, err := env.auth.Authorize(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "bob")

	_, wrongPassword := env.auth.Login(ctx, "bob", "nope")
	_, unknownUser := env.auth.Login(ctx, "nobody", "nope")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestAuthorizeRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.register(t, "carol")

	_, err := env.auth.Authorize(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.auth.Authorize(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ghost, err := env.tokens.Issue("ghost", 0)
	require.NoError(t, err)
	_, err = env.auth.Authorize(ctx, ghost)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	token, err := env.tokens.Issue(user.Username, 0)
	require.NoError(t, err)
	require.NoError(t, env.userRepo.Updates(ctx, user, map[string]interface{}{"is_active": false}))
	_, err = env.auth.Authorize(ctx, token)
	assert.ErrorIs(t, err, ErrForbidden)
}
