package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/kanban-api/internal/errors"
	"github.com/yukikurage/kanban-api/internal/policy"
)

func strPtr(s string) *string { return &s }

func TestAuthService_RegisterLoginAuthenticate(t *testing.T) {
	env := newTestServices(t, policy.PurgeAny)
	ctx := context.Background()

	registered, err := env.auth.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "  Alice@Example.com ",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.Token)

	loggedIn, err := env.auth.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	user, err := env.auth.Authenticate(ctx, loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, user.ID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestServices(t, policy.PurgeAny)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = env.auth.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, RegisterInput{Name: "Other", Email: "ALICE@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, apierrors.KindConflict, apierrors.KindOf(err))
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestServices(t, policy.PurgeAny)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "right"})
	require.NoError(t, err)

	_, wrongPassword := env.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	_, unknownEmail := env.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "right"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginInput{Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginInput{Password: "right"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_AuthenticateRejects(t *testing.T) {
	env := newTestServices(t, policy.PurgeAny)
	ctx := context.Background()

	_, err := env.auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, apierrors.KindAuthentication, apierrors.KindOf(err))

	token, err := env.auth.tokens.Issue(404, "ghost@example.com")
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	env := newTestServices(t, policy.PurgeAny)
	ctx := context.Background()

	alice, err := env.auth.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "old"})
	require.NoError(t, err)
	_, err = env.auth.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = env.auth.UpdateProfile(ctx, alice.User.ID, UpdateProfileInput{Email: strPtr("BOB@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	updated, err := env.auth.UpdateProfile(ctx, alice.User.ID, UpdateProfileInput{
		Name:     strPtr("Alice Smith"),
		Email:    strPtr("alice@example.com"),
		Password: strPtr("new"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)

	_, err = env.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "old"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "new"})
	assert.NoError(t, err)

	_, err = env.auth.UpdateProfile(ctx, 999, UpdateProfileInput{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrUserNotFound)

	me, err := env.auth.Authenticate(ctx, alice.Token)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", me.Name)
}

func TestAuthService_PasswordTooLong(t *testing.T) {
	env := newTestServices(t, policy.PurgeAny)
	ctx := context.Background()
	tooLong := strings.Repeat("p", 73)

	_, err := env.auth.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: tooLong})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))

	registered, err := env.auth.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: strings.Repeat("p", 72)})
	require.NoError(t, err)

	_, err = env.auth.UpdateProfile(ctx, registered.User.ID, UpdateProfileInput{Password: &tooLong})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))
}
