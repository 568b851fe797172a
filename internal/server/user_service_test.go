package server

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rizzrioo06/careermate/internal/config"
	"github.com/rizzrioo06/careermate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (*UserService, *memStore) {
	store := newMemStore()
	return NewUserService(store, &config.PasswordConfig{BcryptCost: 4, Pepper: "pepper"}), store
}

func TestUserService_Register(t *testing.T) {
	svc, store := newTestUserService()
	ctx := t.Context()

	user, err := svc.Register(ctx, &types.CreateUserRequest{Name: " Ada ", Email: "Ada@Example.COM", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)

	stored, err := store.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, svc.passwordConfig.VerifyPassword("correct-horse", stored.PasswordHash))

	_, err = svc.Register(ctx, &types.CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "correct-horse"})
	var taken *ErrEmailAlreadyExists
	assert.True(t, errors.As(err, &taken))
}

func TestUserService_RegisterPasswordTooLong(t *testing.T) {
	svc, _ := newTestUserService()

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	_, err := svc.Register(t.Context(), &types.CreateUserRequest{Name: "A", Email: "a@b.com", Password: string(long)})
	var validation *ErrValidation
	require.True(t, errors.As(err, &validation), "got %v", err)
	assert.Equal(t, "password", validation.Field)
}

func TestUserService_LoginWithoutPassword(t *testing.T) {
	svc, store := newTestUserService()
	ctx := t.Context()

	// Accounts created without a password cannot log in.
	_, err := store.CreateUserWithPassword(ctx, "Legacy", "legacy@example.com", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, &types.LoginRequest{Email: "legacy@example.com", Password: ""})
	var badCreds *ErrInvalidCredentials
	assert.True(t, errors.As(err, &badCreds))
}

func TestUserService_GetUserAndUpdatePassword_NotFound(t *testing.T) {
	svc, _ := newTestUserService()
	missing := uuid.New()

	_, err := svc.GetUser(t.Context(), missing)
	var notFound *ErrUserNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, missing, notFound.UserID)

	err = svc.UpdatePassword(t.Context(), missing, "a", "b")
	assert.True(t, errors.As(err, &notFound))
}
