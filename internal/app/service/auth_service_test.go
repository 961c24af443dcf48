package service

import (
	"context"
	"testing"
	"time"

	"github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) (AuthService, *gorm.DB) {
	t.Helper()

	database, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(database)
	})

	svc := NewAuthService(
		repository.NewUserRepository(database),
		repository.NewAccountRepository(database),
		database,
		config.JWTConfig{
			Secret:             "test-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	)
	return svc, database
}

func TestRegisterSeedsAccountBalance(t *testing.T) {
	svc, database := setupAuthService(t)

	user, tokens, err := svc.Register("new@example.com", "password123", "New User")
	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	require.NotNil(t, user.Account)
	assert.InDelta(t, 1000.00, user.Account.Balance, 0.0001)

	var account model.Account
	require.NoError(t, database.Where("user_id = ?", user.ID).First(&account).Error)
	assert.InDelta(t, 1000.00, account.Balance, 0.0001)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, _, err := svc.Register("dup@example.com", "password123", "First")
	require.NoError(t, err)

	_, _, err = svc.Register("dup@example.com", "password456", "Second")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, _, err := svc.Register("login@example.com", "password123", "Login User")
	require.NoError(t, err)

	user, tokens, err := svc.Login("login@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, _, err := svc.Register("login2@example.com", "password123", "Login User")
	require.NoError(t, err)

	_, _, err = svc.Login("login2@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, _, err := svc.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutWithGarbageToken(t *testing.T) {
	svc, _ := setupAuthService(t)

	// nothing to revoke, never an error
	assert.NoError(t, svc.Logout(context.Background(), "not-a-token"))
}

func TestGetProfile(t *testing.T) {
	svc, _ := setupAuthService(t)

	registered, _, err := svc.Register("profile@example.com", "password123", "Profile User")
	require.NoError(t, err)

	user, err := svc.GetProfile(registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "profile@example.com", user.Email)
	require.NotNil(t, user.Account)
	assert.InDelta(t, 1000.00, user.Account.Balance, 0.0001)
}

func TestGetProfileNotFound(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.GetProfile(999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
