package repository

import (
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(tx *gorm.DB, receipt *model.PurchaseReceipt) error
	FindByOwner(owner model.OwnerRef) ([]model.PurchaseReceipt, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(tx *gorm.DB, receipt *model.PurchaseReceipt) error {
	if tx == nil {
		tx = r.db
	}

	logger.Debug("Creating purchase receipt in database", map[string]interface{}{
		"count": receipt.Count,
		"total": receipt.Total,
	})

	if err := tx.Create(receipt).Error; err != nil {
		logger.Error("Failed to create purchase receipt in database", err, map[string]interface{}{
			"count": receipt.Count,
		})
		return err
	}

	return nil
}

func (r *purchaseRepository) FindByOwner(owner model.OwnerRef) ([]model.PurchaseReceipt, error) {
	logger.Debug("Finding purchase receipts by owner in database", map[string]interface{}{
		"is_user": owner.IsUser(),
	})

	var receipts []model.PurchaseReceipt
	query := r.db
	if owner.IsUser() {
		query = query.Where("user_id = ?", *owner.UserID)
	} else {
		query = query.Where("session_id = ? AND user_id IS NULL", owner.SessionToken)
	}

	if err := query.Order("created_at DESC, id DESC").Find(&receipts).Error; err != nil {
		logger.Error("Failed to find purchase receipts by owner in database", err, nil)
		return nil, err
	}

	return receipts, nil
}
