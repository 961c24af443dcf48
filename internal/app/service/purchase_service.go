package service

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrAccountNotFound = errors.New("account not found")

// InsufficientBalanceError rejects a purchase whose total exceeds the
// account balance. Nothing is mutated.
type InsufficientBalanceError struct {
	Required  float64
	Available float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %.2f, available %.2f", e.Required, e.Available)
}

// PurchaseResult reports one completed purchase. NewBalance is nil for
// anonymous-session purchases, which carry no balance.
type PurchaseResult struct {
	Total      float64  `json:"total"`
	Count      int      `json:"count"`
	NewBalance *float64 `json:"new_balance,omitempty"`
}

type PurchaseService interface {
	Purchase(owner model.OwnerRef, ids []uint, labelFormat string) (*PurchaseResult, error)
	ListReceipts(owner model.OwnerRef) ([]model.PurchaseReceipt, error)
}

type purchaseService struct {
	shipmentRepo repository.ShipmentRepository
	accountRepo  repository.AccountRepository
	purchaseRepo repository.PurchaseRepository
	db           *gorm.DB
}

func NewPurchaseService(
	shipmentRepo repository.ShipmentRepository,
	accountRepo repository.AccountRepository,
	purchaseRepo repository.PurchaseRepository,
	db *gorm.DB,
) PurchaseService {
	return &purchaseService{
		shipmentRepo: shipmentRepo,
		accountRepo:  accountRepo,
		purchaseRepo: purchaseRepo,
		db:           db,
	}
}

// Purchase marks the selected records processed. Account owners are
// balance-gated; anonymous sessions purchase unconditionally.
func (s *purchaseService) Purchase(owner model.OwnerRef, ids []uint, labelFormat string) (*PurchaseResult, error) {
	logger.Info("Processing postage purchase", map[string]interface{}{
		"record_count": len(ids),
		"label_format": labelFormat,
		"is_user":      owner.IsUser(),
	})

	if len(ids) == 0 {
		return nil, ErrNoRecordIDs
	}

	records, err := s.shipmentRepo.FindByIDsAndOwner(ids, owner)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoShipmentsFound
	}

	var total float64
	recordIDs := make(pq.Int64Array, 0, len(records))
	resolved := make([]uint, 0, len(records))
	for _, record := range records {
		total += record.ShippingPrice
		recordIDs = append(recordIDs, int64(record.ID))
		resolved = append(resolved, record.ID)
	}

	receipt := model.PurchaseReceipt{
		UserID:      owner.UserID,
		SessionID:   owner.SessionToken,
		RecordIDs:   recordIDs,
		Count:       len(records),
		Total:       total,
		LabelFormat: labelFormat,
	}

	var account *model.Account
	if owner.IsUser() {
		account, err = s.accountRepo.FindByUserID(*owner.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}

		if total > account.Balance {
			logger.Warn("Purchase rejected: insufficient balance", map[string]interface{}{
				"required":  total,
				"available": account.Balance,
			})
			return nil, &InsufficientBalanceError{
				Required:  total,
				Available: account.Balance,
			}
		}
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during purchase, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"record_count": len(ids),
			})
		}
	}()

	if account != nil {
		newBalance := account.Balance - total
		if err := s.accountRepo.UpdateBalance(tx, account.ID, newBalance); err != nil {
			tx.Rollback()
			return nil, err
		}
		receipt.NewBalance = &newBalance
	}

	if err := s.shipmentRepo.UpdateStatus(tx, resolved, owner, model.ShipmentStatusProcessed); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.purchaseRepo.Create(tx, &receipt); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit purchase transaction", err, map[string]interface{}{
			"record_count": len(ids),
		})
		return nil, err
	}

	logger.Info("Postage purchase completed", map[string]interface{}{
		"count": receipt.Count,
		"total": receipt.Total,
	})

	return &PurchaseResult{
		Total:      total,
		Count:      len(records),
		NewBalance: receipt.NewBalance,
	}, nil
}

func (s *purchaseService) ListReceipts(owner model.OwnerRef) ([]model.PurchaseReceipt, error) {
	return s.purchaseRepo.FindByOwner(owner)
}
