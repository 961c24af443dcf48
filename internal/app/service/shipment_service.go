package service

import (
	"errors"
	"fmt"

	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrShipmentNotFound = errors.New("shipment record not found")
	ErrNoRecordIDs      = errors.New("no record IDs provided")
	ErrNoShipmentsFound = errors.New("no shipment records found for the given IDs")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrInvalidStatus    = errors.New("invalid shipment status")
)

// InvalidIDsError rejects a bulk operation whose ID list includes records
// that do not exist or belong to another owner. The whole batch is refused.
type InvalidIDsError struct {
	IDs []uint
}

func (e *InvalidIDsError) Error() string {
	return fmt.Sprintf("invalid record IDs: %v", e.IDs)
}

// ShipmentPatch is a sparse field update. Nil means "not provided";
// blank-string coercion happens at the request boundary, not here.
type ShipmentPatch struct {
	FromFirstName *string
	FromLastName  *string
	FromAddress   *string
	FromAddress2  *string
	FromCity      *string
	FromZip       *string
	FromState     *string

	ToFirstName *string
	ToLastName  *string
	ToAddress   *string
	ToAddress2  *string
	ToCity      *string
	ToZip       *string
	ToState     *string

	WeightLbs *int
	WeightOz  *int
	Length    *float64
	Width     *float64
	Height    *float64

	PhoneNum1 *string
	PhoneNum2 *string

	OrderNo         *string
	ItemSKU         *string
	ShippingService *string
	ShippingPrice   *float64
	Status          *string
}

// simpleFields returns the broadcastable column values, excluding the
// special-cased shipping_service, shipping_price, and status.
func (p *ShipmentPatch) simpleFields() map[string]interface{} {
	fields := map[string]interface{}{}

	setString := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	setString("from_first_name", p.FromFirstName)
	setString("from_last_name", p.FromLastName)
	setString("from_address", p.FromAddress)
	setString("from_address2", p.FromAddress2)
	setString("from_city", p.FromCity)
	setString("from_zip", p.FromZip)
	setString("from_state", p.FromState)
	setString("to_first_name", p.ToFirstName)
	setString("to_last_name", p.ToLastName)
	setString("to_address", p.ToAddress)
	setString("to_address2", p.ToAddress2)
	setString("to_city", p.ToCity)
	setString("to_zip", p.ToZip)
	setString("to_state", p.ToState)
	setString("phone_num1", p.PhoneNum1)
	setString("phone_num2", p.PhoneNum2)
	setString("order_no", p.OrderNo)
	setString("item_sku", p.ItemSKU)

	if p.WeightLbs != nil {
		fields["weight_lbs"] = *p.WeightLbs
	}
	if p.WeightOz != nil {
		fields["weight_oz"] = *p.WeightOz
	}
	if p.Length != nil {
		fields["length"] = *p.Length
	}
	if p.Width != nil {
		fields["width"] = *p.Width
	}
	if p.Height != nil {
		fields["height"] = *p.Height
	}

	return fields
}

func (p *ShipmentPatch) isEmpty() bool {
	return p.ShippingService == nil && p.ShippingPrice == nil && p.Status == nil && len(p.simpleFields()) == 0
}

type ShipmentService interface {
	ListShipments(owner model.OwnerRef) ([]model.ShipmentRecord, error)
	CreateShipment(owner model.OwnerRef, record *model.ShipmentRecord) error
	UpdateShipment(owner model.OwnerRef, id uint, patch ShipmentPatch) (*model.ShipmentRecord, error)
	DeleteShipment(owner model.OwnerRef, id uint) error
	DeleteAllShipments(owner model.OwnerRef) (int64, error)
	BulkUpdate(owner model.OwnerRef, ids []uint, patch ShipmentPatch) ([]model.ShipmentRecord, error)
	BulkDelete(owner model.OwnerRef, ids []uint) (int64, error)
}

type shipmentService struct {
	shipmentRepo repository.ShipmentRepository
	db           *gorm.DB
}

func NewShipmentService(shipmentRepo repository.ShipmentRepository, db *gorm.DB) ShipmentService {
	return &shipmentService{
		shipmentRepo: shipmentRepo,
		db:           db,
	}
}

func (s *shipmentService) ListShipments(owner model.OwnerRef) ([]model.ShipmentRecord, error) {
	return s.shipmentRepo.FindByOwner(owner)
}

func (s *shipmentService) CreateShipment(owner model.OwnerRef, record *model.ShipmentRecord) error {
	record.UserID = owner.UserID
	record.SessionID = owner.SessionToken

	if record.ShippingService == "" {
		record.ShippingService = model.ShippingServiceGround
	}
	if record.Status == "" {
		record.Status = model.ShipmentStatusPending
	}
	if !model.ValidShipmentStatus(string(record.Status)) {
		logger.Warn("Rejecting shipment create with invalid status", map[string]interface{}{
			"status": record.Status,
		})
		return ErrInvalidStatus
	}
	record.ShippingPrice = record.CalculateShippingPrice()

	return s.shipmentRepo.Create(record)
}

func (s *shipmentService) UpdateShipment(owner model.OwnerRef, id uint, patch ShipmentPatch) (*model.ShipmentRecord, error) {
	logger.Info("Updating shipment record", map[string]interface{}{
		"record_id": id,
	})

	record, err := s.shipmentRepo.FindByIDAndOwner(id, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}

	if patch.isEmpty() {
		return nil, ErrNoFieldsToUpdate
	}
	if patch.Status != nil && !model.ValidShipmentStatus(*patch.Status) {
		return nil, ErrInvalidStatus
	}

	applyPatch(record, patch)

	// service change derives a fresh price from the record's weight and
	// wins over a manual price in the same request
	if patch.ShippingService != nil {
		record.ShippingPrice = record.CalculateShippingPrice()
	} else if patch.ShippingPrice != nil {
		record.ShippingPrice = *patch.ShippingPrice
	}

	if err := s.shipmentRepo.Update(record); err != nil {
		return nil, err
	}

	return record, nil
}

func applyPatch(record *model.ShipmentRecord, patch ShipmentPatch) {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&record.FromFirstName, patch.FromFirstName)
	setString(&record.FromLastName, patch.FromLastName)
	setString(&record.FromAddress, patch.FromAddress)
	setString(&record.FromAddress2, patch.FromAddress2)
	setString(&record.FromCity, patch.FromCity)
	setString(&record.FromZip, patch.FromZip)
	setString(&record.FromState, patch.FromState)
	setString(&record.ToFirstName, patch.ToFirstName)
	setString(&record.ToLastName, patch.ToLastName)
	setString(&record.ToAddress, patch.ToAddress)
	setString(&record.ToAddress2, patch.ToAddress2)
	setString(&record.ToCity, patch.ToCity)
	setString(&record.ToZip, patch.ToZip)
	setString(&record.ToState, patch.ToState)
	setString(&record.PhoneNum1, patch.PhoneNum1)
	setString(&record.PhoneNum2, patch.PhoneNum2)
	setString(&record.OrderNo, patch.OrderNo)
	setString(&record.ItemSKU, patch.ItemSKU)

	if patch.WeightLbs != nil {
		record.WeightLbs = *patch.WeightLbs
	}
	if patch.WeightOz != nil {
		record.WeightOz = *patch.WeightOz
	}
	if patch.Length != nil {
		record.Length = *patch.Length
	}
	if patch.Width != nil {
		record.Width = *patch.Width
	}
	if patch.Height != nil {
		record.Height = *patch.Height
	}
	if patch.ShippingService != nil {
		record.ShippingService = *patch.ShippingService
	}
	if patch.Status != nil {
		record.Status = model.ShipmentStatus(*patch.Status)
	}
}

func (s *shipmentService) DeleteShipment(owner model.OwnerRef, id uint) error {
	logger.Info("Deleting shipment record", map[string]interface{}{
		"record_id": id,
	})

	deleted, err := s.shipmentRepo.DeleteByIDAndOwner(id, owner)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrShipmentNotFound
	}
	return nil
}

func (s *shipmentService) DeleteAllShipments(owner model.OwnerRef) (int64, error) {
	logger.Info("Deleting all shipment records for owner", map[string]interface{}{
		"is_user": owner.IsUser(),
	})

	return s.shipmentRepo.DeleteForOwner(nil, owner)
}

// validateBulkIDs resolves the requested IDs under the caller's ownership.
// The whole batch is rejected when any ID fails to resolve.
func (s *shipmentService) validateBulkIDs(owner model.OwnerRef, ids []uint) ([]model.ShipmentRecord, error) {
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

	if len(records) != len(ids) {
		found := make(map[uint]bool, len(records))
		for _, record := range records {
			found[record.ID] = true
		}
		var invalid []uint
		for _, id := range ids {
			if !found[id] {
				invalid = append(invalid, id)
			}
		}
		if len(invalid) > 0 {
			logger.Warn("Bulk operation rejected: invalid record IDs", map[string]interface{}{
				"invalid_ids": invalid,
			})
			return nil, &InvalidIDsError{IDs: invalid}
		}
	}

	return records, nil
}

func (s *shipmentService) BulkUpdate(owner model.OwnerRef, ids []uint, patch ShipmentPatch) ([]model.ShipmentRecord, error) {
	logger.Info("Bulk updating shipment records", map[string]interface{}{
		"record_count": len(ids),
	})

	records, err := s.validateBulkIDs(owner, ids)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && !model.ValidShipmentStatus(*patch.Status) {
		return nil, ErrInvalidStatus
	}

	fields := patch.simpleFields()
	if patch.ShippingService == nil && patch.ShippingPrice == nil && patch.Status == nil && len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during bulk update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"record_count": len(ids),
			})
		}
	}()

	if patch.ShippingService != nil {
		// per-record repricing from that record's own weight; a manual
		// price in the same request is ignored
		for i := range records {
			records[i].ShippingService = *patch.ShippingService
			price := records[i].CalculateShippingPrice()
			if err := s.shipmentRepo.UpdateFields(tx, []uint{records[i].ID}, owner, map[string]interface{}{
				"shipping_service": *patch.ShippingService,
				"shipping_price":   price,
			}); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	} else if patch.ShippingPrice != nil {
		if err := s.shipmentRepo.UpdateFields(tx, ids, owner, map[string]interface{}{
			"shipping_price": *patch.ShippingPrice,
		}); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if patch.Status != nil {
		if err := s.shipmentRepo.UpdateStatus(tx, ids, owner, model.ShipmentStatus(*patch.Status)); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if len(fields) > 0 {
		if err := s.shipmentRepo.UpdateFields(tx, ids, owner, fields); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit bulk update transaction", err, map[string]interface{}{
			"record_count": len(ids),
		})
		return nil, err
	}

	updated, err := s.shipmentRepo.FindByIDsAndOwner(ids, owner)
	if err != nil {
		return nil, err
	}

	logger.Info("Bulk update completed", map[string]interface{}{
		"record_count": len(updated),
	})
	return updated, nil
}

func (s *shipmentService) BulkDelete(owner model.OwnerRef, ids []uint) (int64, error) {
	logger.Info("Bulk deleting shipment records", map[string]interface{}{
		"record_count": len(ids),
	})

	if _, err := s.validateBulkIDs(owner, ids); err != nil {
		return 0, err
	}

	deleted, err := s.shipmentRepo.DeleteByIDsAndOwner(nil, ids, owner)
	if err != nil {
		return 0, err
	}

	logger.Info("Bulk delete completed", map[string]interface{}{
		"deleted": deleted,
	})
	return deleted, nil
}
