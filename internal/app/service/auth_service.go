package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"github.com/printtts/shiplabel-backend/pkg/redis"
	"github.com/printtts/shiplabel-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService interface {
	Register(email, password, name string) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(userID uint) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	accountRepo repository.AccountRepository
	db          *gorm.DB
	jwtCfg      config.JWTConfig
}

func NewAuthService(
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	db *gorm.DB,
	jwtCfg config.JWTConfig,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		db:          db,
		jwtCfg:      jwtCfg,
	}
}

// Register creates a user and seeds their postage account.
func (s *authService) Register(email, password, name string) (*model.User, *util.TokenPair, error) {
	logger.Info("Registering user", map[string]interface{}{
		"email": email,
	})

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		logger.Warn("Registration rejected: email already in use", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	hashed, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, nil)
		return nil, nil, err
	}

	user := model.User{
		Email:    email,
		Password: hashed,
		Name:     name,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during registration, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"email": email,
			})
		}
	}()

	if err := s.userRepo.Create(tx, &user); err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	account := model.Account{
		UserID:  user.ID,
		Balance: model.DefaultBalance,
	}
	if err := s.accountRepo.Create(tx, &account); err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit registration transaction", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}
	user.Account = &account

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, s.jwtCfg.Secret, s.jwtCfg.AccessTokenExpiry, s.jwtCfg.RefreshTokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token pair", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"balance": account.Balance,
	})
	return &user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("User login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.Password, password) {
		logger.Warn("Login rejected: wrong password", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, s.jwtCfg.Secret, s.jwtCfg.AccessTokenExpiry, s.jwtCfg.RefreshTokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token pair", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

// Logout revokes the refresh token for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := util.ValidateToken(refreshToken, s.jwtCfg.Secret)
	if err != nil {
		// an expired or malformed token needs no revocation
		logger.Debug("Logout with unusable refresh token", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	if err := redis.BlacklistToken(ctx, refreshToken, claims.RemainingLifetime()); err != nil {
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
