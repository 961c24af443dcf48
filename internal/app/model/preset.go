package model

import (
	"time"

	"gorm.io/gorm"
)

// SavedAddress is a named sender-address preset used to prefill forms.
// Name is unique per user.
type SavedAddress struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	UserID    uint   `gorm:"not null;index;uniqueIndex:idx_saved_addresses_user_name" json:"user_id"`
	Name      string `gorm:"type:varchar(50);not null;uniqueIndex:idx_saved_addresses_user_name" json:"name"`
	FirstName string `gorm:"type:varchar(50)" json:"first_name"`
	LastName  string `gorm:"type:varchar(50)" json:"last_name"`
	Address   string `gorm:"type:varchar(100)" json:"address"`
	Address2  string `gorm:"type:varchar(100)" json:"address2"`
	City      string `gorm:"type:varchar(50)" json:"city"`
	State     string `gorm:"type:varchar(50)" json:"state"`
	Zip       string `gorm:"type:varchar(20)" json:"zip"`
	Phone     string `gorm:"type:varchar(20)" json:"phone"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SavedAddress) TableName() string {
	return "saved_addresses"
}

// SavedPackage is a named package-dimension preset. Name is unique per user.
type SavedPackage struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	UserID    uint    `gorm:"not null;index;uniqueIndex:idx_saved_packages_user_name" json:"user_id"`
	Name      string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_saved_packages_user_name" json:"name"`
	WeightLbs int     `gorm:"not null;default:0" json:"weight_lbs"`
	WeightOz  int     `gorm:"not null;default:0" json:"weight_oz"`
	Length    float64 `gorm:"not null;default:0" json:"length"`
	Width     float64 `gorm:"not null;default:0" json:"width"`
	Height    float64 `gorm:"not null;default:0" json:"height"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SavedPackage) TableName() string {
	return "saved_packages"
}
