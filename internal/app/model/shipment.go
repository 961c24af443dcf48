package model

import (
	"fmt"
	"strings"
	"time"
)

type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"   // awaiting purchase
	ShipmentStatusProcessed ShipmentStatus = "processed" // postage purchased
	ShipmentStatusError     ShipmentStatus = "error"     // flagged by the user
)

// ValidShipmentStatus reports whether s is one of the enumerated statuses.
func ValidShipmentStatus(s string) bool {
	switch ShipmentStatus(s) {
	case ShipmentStatusPending, ShipmentStatusProcessed, ShipmentStatusError:
		return true
	}
	return false
}

const (
	ShippingServiceGround   = "ground"
	ShippingServicePriority = "priority"
)

// ShipmentRecord is one shipping label's worth of data. Owned either by a
// user (UserID set) or an anonymous session (SessionID set).
type ShipmentRecord struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	UserID    *uint  `gorm:"index" json:"user_id,omitempty"`
	SessionID string `gorm:"type:varchar(64);index" json:"-"`

	FromFirstName string `gorm:"type:varchar(50)" json:"from_first_name"`
	FromLastName  string `gorm:"type:varchar(50)" json:"from_last_name"`
	FromAddress   string `gorm:"type:varchar(100)" json:"from_address"`
	FromAddress2  string `gorm:"type:varchar(100)" json:"from_address2"`
	FromCity      string `gorm:"type:varchar(50)" json:"from_city"`
	FromZip       string `gorm:"type:varchar(20)" json:"from_zip"`
	FromState     string `gorm:"type:varchar(50)" json:"from_state"`

	ToFirstName string `gorm:"type:varchar(50)" json:"to_first_name"`
	ToLastName  string `gorm:"type:varchar(50)" json:"to_last_name"`
	ToAddress   string `gorm:"type:varchar(100)" json:"to_address"`
	ToAddress2  string `gorm:"type:varchar(100)" json:"to_address2"`
	ToCity      string `gorm:"type:varchar(50)" json:"to_city"`
	ToZip       string `gorm:"type:varchar(20)" json:"to_zip"`
	ToState     string `gorm:"type:varchar(50)" json:"to_state"`

	WeightLbs int     `gorm:"not null;default:0" json:"weight_lbs"`
	WeightOz  int     `gorm:"not null;default:0" json:"weight_oz"`
	Length    float64 `gorm:"not null;default:0" json:"length"`
	Width     float64 `gorm:"not null;default:0" json:"width"`
	Height    float64 `gorm:"not null;default:0" json:"height"`

	PhoneNum1 string `gorm:"type:varchar(20)" json:"phone_num1"`
	PhoneNum2 string `gorm:"type:varchar(20)" json:"phone_num2"`

	OrderNo         string         `gorm:"type:varchar(30)" json:"order_no"`
	ItemSKU         string         `gorm:"type:varchar(30)" json:"item_sku"`
	ShippingService string         `gorm:"type:varchar(30);default:'ground'" json:"shipping_service"`
	ShippingPrice   float64        `gorm:"not null;default:0" json:"shipping_price"`
	Status          ShipmentStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShipmentRecord) TableName() string {
	return "shipment_records"
}

// CalculateShippingPrice prices the record from its own weight and service.
// Priority is the only tag with its own rate; everything else prices as ground.
func (r *ShipmentRecord) CalculateShippingPrice() float64 {
	totalOz := r.WeightLbs*16 + r.WeightOz
	if r.ShippingService == ShippingServicePriority {
		return 5.00 + 0.10*float64(totalOz)
	}
	return 2.50 + 0.05*float64(totalOz)
}

// FormattedFromAddress renders the sender address as a single display line.
func (r *ShipmentRecord) FormattedFromAddress() string {
	return formatAddress(
		r.FromFirstName, r.FromLastName,
		r.FromAddress, r.FromAddress2,
		r.FromCity, r.FromState, r.FromZip,
	)
}

// FormattedToAddress renders the recipient address as a single display line.
func (r *ShipmentRecord) FormattedToAddress() string {
	return formatAddress(
		r.ToFirstName, r.ToLastName,
		r.ToAddress, r.ToAddress2,
		r.ToCity, r.ToState, r.ToZip,
	)
}

// PackageDetails renders weight and dimensions for list views.
func (r *ShipmentRecord) PackageDetails() string {
	return fmt.Sprintf("%d lbs %d oz, %g x %g x %g", r.WeightLbs, r.WeightOz, r.Length, r.Width, r.Height)
}

func formatAddress(firstName, lastName, address, address2, city, state, zip string) string {
	var parts []string

	name := strings.TrimSpace(firstName + " " + lastName)
	if name != "" {
		parts = append(parts, name)
	}
	if address != "" {
		parts = append(parts, address)
	}
	if address2 != "" {
		parts = append(parts, address2)
	}

	locality := strings.TrimSpace(city + " " + state + " " + zip)
	if locality != "" {
		parts = append(parts, strings.Join(strings.Fields(locality), " "))
	}

	return strings.Join(parts, ", ")
}

// ShipmentResponse is the JSON form returned by the API, adding the
// formatted display fields to the raw record.
type ShipmentResponse struct {
	ShipmentRecord
	FromAddressDisplay string `json:"from_address_display"`
	ToAddressDisplay   string `json:"to_address_display"`
	PackageDisplay     string `json:"package_display"`
}

func (r *ShipmentRecord) ToResponse() ShipmentResponse {
	return ShipmentResponse{
		ShipmentRecord:     *r,
		FromAddressDisplay: r.FormattedFromAddress(),
		ToAddressDisplay:   r.FormattedToAddress(),
		PackageDisplay:     r.PackageDetails(),
	}
}

// ToResponses converts a slice of records for list endpoints.
func ToResponses(records []ShipmentRecord) []ShipmentResponse {
	responses := make([]ShipmentResponse, 0, len(records))
	for i := range records {
		responses = append(responses, records[i].ToResponse())
	}
	return responses
}
