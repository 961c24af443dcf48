package model

import (
	"time"

	"github.com/lib/pq"
)

// PurchaseReceipt records one postage purchase. NewBalance is only set for
// account-backed purchases; anonymous-session purchases carry no balance.
type PurchaseReceipt struct {
	ID          uint          `gorm:"primarykey" json:"id"`
	UserID      *uint         `gorm:"index" json:"user_id,omitempty"`
	SessionID   string        `gorm:"type:varchar(64);index" json:"-"`
	RecordIDs   pq.Int64Array `gorm:"type:bigint[]" json:"record_ids"`
	Count       int           `gorm:"not null" json:"count"`
	Total       float64       `gorm:"not null" json:"total"`
	LabelFormat string        `gorm:"type:varchar(30)" json:"label_format"`
	NewBalance  *float64      `json:"new_balance,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (PurchaseReceipt) TableName() string {
	return "purchase_receipts"
}
