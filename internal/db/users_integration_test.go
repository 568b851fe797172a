package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_UserCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	name := "Test User"
	email := "test-" + uuid.New().String() + "@example.com"
	id, err := db.CreateUser(ctx, name, email)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	u, err := db.GetUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, name, u.Name)
	assert.Equal(t, email, u.Email)
	assert.False(t, u.PasswordSet) // New users have password_set = FALSE by default

	err = db.DeleteUser(ctx, id)
	require.NoError(t, err)

	u, err = db.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestIntegration_CreateUserWithPassword(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	email := "test-pw-" + uuid.New().String() + "@example.com"
	id, err := db.CreateUserWithPassword(ctx, "Pw User", email, "$2a$12$hash")
	require.NoError(t, err)
	defer db.DeleteUser(ctx, id)

	u, err := db.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "$2a$12$hash", u.PasswordHash)
	assert.True(t, u.PasswordSet)

	// Duplicate email violates the unique constraint
	_, err = db.CreateUserWithPassword(ctx, "Dup", email, "x")
	assert.Error(t, err)
}

func TestIntegration_GetUserByEmail_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	u, err := db.GetUserByEmail(ctx, "nonexistent-"+uuid.New().String()+"@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = db.GetUserByEmail(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestIntegration_UpdatePassword(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	userID, err := db.CreateUser(ctx, "Test User Password", "test-password-"+uuid.New().String()+"@example.com")
	require.NoError(t, err)
	defer db.DeleteUser(ctx, userID)

	before, err := db.GetUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, before)

	time.Sleep(10 * time.Millisecond)

	newHash := "$2a$12$testhashedpassword"
	require.NoError(t, db.UpdatePassword(ctx, userID, newHash))

	after, err := db.GetUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, newHash, after.PasswordHash)
	assert.True(t, after.PasswordSet)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt), "updated_at should be updated")

	err = db.UpdatePassword(ctx, uuid.New(), newHash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
}

func TestIntegration_CheckEmailExists(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	email := "test-exists-" + uuid.New().String() + "@example.com"
	userID, err := db.CreateUser(ctx, "Test User Exists", email)
	require.NoError(t, err)
	defer db.DeleteUser(ctx, userID)

	exists, err := db.CheckEmailExists(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = db.CheckEmailExists(ctx, "nonexistent-"+uuid.New().String()+"@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = db.CheckEmailExists(ctx, "")
	require.NoError(t, err)
	assert.False(t, exists)
}
