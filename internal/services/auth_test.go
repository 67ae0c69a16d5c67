package services

import (
	"context"
	"testing"
	"time"

	"photo-gallery-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestEnv() (*AuthService, *fakeUserStore) {
	users := newFakeUserStore()
	return NewAuthService(users, "test-secret", time.Hour), users
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthTestEnv()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "pass123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "pass123", user.PasswordHash, "password must be hashed")
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthTestEnv()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "pass123")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.Register(ctx, "alice", "")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestRegisterDuplicateLogin(t *testing.T) {
	svc, _ := newAuthTestEnv()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pass123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthTestEnv()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "pass123")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "alice", "pass123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	require.NotEmpty(t, token)

	ident, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, ident.UserID)
	assert.Equal(t, "alice", ident.Login)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newAuthTestEnv()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pass123")
	require.NoError(t, err)

	// wrong password and unknown login produce the same error kind
	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))
	wrongPassMsg := apperr.Message(err)

	_, _, err = svc.Login(ctx, "nobody", "pass123")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))
	assert.Equal(t, wrongPassMsg, apperr.Message(err))
}

func TestValidateJWTRejectsTampering(t *testing.T) {
	svc, _ := newAuthTestEnv()

	token, err := svc.GenerateJWT("u1", "alice")
	require.NoError(t, err)

	_, err = svc.ValidateJWT(token + "x")
	assert.Error(t, err)

	other := NewAuthService(newFakeUserStore(), "other-secret", time.Hour)
	_, err = other.ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret", -time.Minute)

	token, err := svc.GenerateJWT("u1", "alice")
	require.NoError(t, err)

	_, err = svc.ValidateJWT(token)
	assert.Error(t, err)
}
