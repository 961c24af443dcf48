package repository

import (
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(tx *gorm.DB, account *model.Account) error
	FindByUserID(userID uint) (*model.Account, error)
	UpdateBalance(tx *gorm.DB, accountID uint, balance float64) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(tx *gorm.DB, account *model.Account) error {
	if tx == nil {
		tx = r.db
	}

	logger.Debug("Creating account in database", map[string]interface{}{
		"user_id": account.UserID,
		"balance": account.Balance,
	})

	if err := tx.Create(account).Error; err != nil {
		logger.Error("Failed to create account in database", err, map[string]interface{}{
			"user_id": account.UserID,
		})
		return err
	}

	return nil
}

func (r *accountRepository) FindByUserID(userID uint) (*model.Account, error) {
	logger.Debug("Finding account by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var account model.Account
	if err := r.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		logger.Error("Failed to find account by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) UpdateBalance(tx *gorm.DB, accountID uint, balance float64) error {
	if tx == nil {
		tx = r.db
	}

	logger.Debug("Updating account balance in database", map[string]interface{}{
		"account_id": accountID,
		"balance":    balance,
	})

	if err := tx.Model(&model.Account{}).Where("id = ?", accountID).
		Update("balance", balance).Error; err != nil {
		logger.Error("Failed to update account balance in database", err, map[string]interface{}{
			"account_id": accountID,
		})
		return err
	}

	return nil
}
