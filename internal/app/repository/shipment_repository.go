package repository

import (
	"time"

	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"gorm.io/gorm"
)

type ShipmentRepository interface {
	Create(record *model.ShipmentRecord) error
	Update(record *model.ShipmentRecord) error
	FindByOwner(owner model.OwnerRef) ([]model.ShipmentRecord, error)
	FindByIDAndOwner(id uint, owner model.OwnerRef) (*model.ShipmentRecord, error)
	FindByIDsAndOwner(ids []uint, owner model.OwnerRef) ([]model.ShipmentRecord, error)
	InsertBatch(tx *gorm.DB, records []model.ShipmentRecord) error
	DeleteForOwner(tx *gorm.DB, owner model.OwnerRef) (int64, error)
	UpdateFields(tx *gorm.DB, ids []uint, owner model.OwnerRef, fields map[string]interface{}) error
	SaveRecord(tx *gorm.DB, record *model.ShipmentRecord) error
	UpdateStatus(tx *gorm.DB, ids []uint, owner model.OwnerRef, status model.ShipmentStatus) error
	DeleteByIDAndOwner(id uint, owner model.OwnerRef) (int64, error)
	DeleteByIDsAndOwner(tx *gorm.DB, ids []uint, owner model.OwnerRef) (int64, error)
	DeleteStaleSessionRecords(cutoff time.Time) (int64, error)
}

type shipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepository{db: db}
}

// ownerScope restricts a query to records belonging to the given owner.
func ownerScope(q *gorm.DB, owner model.OwnerRef) *gorm.DB {
	if owner.IsUser() {
		return q.Where("user_id = ?", *owner.UserID)
	}
	return q.Where("session_id = ? AND user_id IS NULL", owner.SessionToken)
}

func (r *shipmentRepository) Create(record *model.ShipmentRecord) error {
	logger.Debug("Creating shipment record in database", map[string]interface{}{
		"order_no": record.OrderNo,
	})

	if err := r.db.Create(record).Error; err != nil {
		logger.Error("Failed to create shipment record in database", err, map[string]interface{}{
			"order_no": record.OrderNo,
		})
		return err
	}

	logger.Debug("Shipment record created in database", map[string]interface{}{
		"record_id": record.ID,
		"order_no":  record.OrderNo,
	})
	return nil
}

func (r *shipmentRepository) Update(record *model.ShipmentRecord) error {
	logger.Debug("Updating shipment record in database", map[string]interface{}{
		"record_id": record.ID,
	})

	if err := r.db.Save(record).Error; err != nil {
		logger.Error("Failed to update shipment record in database", err, map[string]interface{}{
			"record_id": record.ID,
		})
		return err
	}

	return nil
}

func (r *shipmentRepository) FindByOwner(owner model.OwnerRef) ([]model.ShipmentRecord, error) {
	logger.Debug("Finding shipment records by owner in database", map[string]interface{}{
		"is_user": owner.IsUser(),
	})

	var records []model.ShipmentRecord
	if err := ownerScope(r.db, owner).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		logger.Error("Failed to find shipment records by owner in database", err, nil)
		return nil, err
	}

	logger.Debug("Shipment records found by owner in database", map[string]interface{}{
		"count": len(records),
	})
	return records, nil
}

func (r *shipmentRepository) FindByIDAndOwner(id uint, owner model.OwnerRef) (*model.ShipmentRecord, error) {
	logger.Debug("Finding shipment record by ID in database", map[string]interface{}{
		"record_id": id,
	})

	var record model.ShipmentRecord
	if err := ownerScope(r.db, owner).Where("id = ?", id).First(&record).Error; err != nil {
		logger.Debug("Shipment record not found by ID in database", map[string]interface{}{
			"record_id": id,
		})
		return nil, err
	}

	return &record, nil
}

func (r *shipmentRepository) FindByIDsAndOwner(ids []uint, owner model.OwnerRef) ([]model.ShipmentRecord, error) {
	logger.Debug("Finding shipment records by IDs in database", map[string]interface{}{
		"requested": len(ids),
	})

	var records []model.ShipmentRecord
	if err := ownerScope(r.db, owner).Where("id IN ?", ids).Find(&records).Error; err != nil {
		logger.Error("Failed to find shipment records by IDs in database", err, map[string]interface{}{
			"requested": len(ids),
		})
		return nil, err
	}

	logger.Debug("Shipment records found by IDs in database", map[string]interface{}{
		"requested": len(ids),
		"found":     len(records),
	})
	return records, nil
}

func (r *shipmentRepository) InsertBatch(tx *gorm.DB, records []model.ShipmentRecord) error {
	if tx == nil {
		tx = r.db
	}
	if len(records) == 0 {
		return nil
	}

	logger.Debug("Inserting shipment record batch in database", map[string]interface{}{
		"count": len(records),
	})

	if err := tx.Create(&records).Error; err != nil {
		logger.Error("Failed to insert shipment record batch in database", err, map[string]interface{}{
			"count": len(records),
		})
		return err
	}

	return nil
}

func (r *shipmentRepository) DeleteForOwner(tx *gorm.DB, owner model.OwnerRef) (int64, error) {
	if tx == nil {
		tx = r.db
	}

	logger.Debug("Deleting all shipment records for owner in database", map[string]interface{}{
		"is_user": owner.IsUser(),
	})

	result := ownerScope(tx, owner).Delete(&model.ShipmentRecord{})
	if result.Error != nil {
		logger.Error("Failed to delete shipment records for owner in database", result.Error, nil)
		return 0, result.Error
	}

	logger.Debug("Shipment records deleted for owner in database", map[string]interface{}{
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *shipmentRepository) UpdateFields(tx *gorm.DB, ids []uint, owner model.OwnerRef, fields map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	if len(fields) == 0 {
		return nil
	}

	logger.Debug("Updating shipment record fields in database", map[string]interface{}{
		"record_count": len(ids),
		"field_count":  len(fields),
	})

	if err := ownerScope(tx.Model(&model.ShipmentRecord{}), owner).
		Where("id IN ?", ids).
		Updates(fields).Error; err != nil {
		logger.Error("Failed to update shipment record fields in database", err, map[string]interface{}{
			"record_count": len(ids),
		})
		return err
	}

	return nil
}

func (r *shipmentRepository) SaveRecord(tx *gorm.DB, record *model.ShipmentRecord) error {
	if tx == nil {
		tx = r.db
	}

	if err := tx.Save(record).Error; err != nil {
		logger.Error("Failed to save shipment record in database", err, map[string]interface{}{
			"record_id": record.ID,
		})
		return err
	}

	return nil
}

func (r *shipmentRepository) UpdateStatus(tx *gorm.DB, ids []uint, owner model.OwnerRef, status model.ShipmentStatus) error {
	if tx == nil {
		tx = r.db
	}

	logger.Debug("Updating shipment record status in database", map[string]interface{}{
		"record_count": len(ids),
		"status":       status,
	})

	if err := ownerScope(tx.Model(&model.ShipmentRecord{}), owner).
		Where("id IN ?", ids).
		Update("status", status).Error; err != nil {
		logger.Error("Failed to update shipment record status in database", err, map[string]interface{}{
			"record_count": len(ids),
			"status":       status,
		})
		return err
	}

	return nil
}

func (r *shipmentRepository) DeleteByIDAndOwner(id uint, owner model.OwnerRef) (int64, error) {
	logger.Debug("Deleting shipment record in database", map[string]interface{}{
		"record_id": id,
	})

	result := ownerScope(r.db, owner).Where("id = ?", id).Delete(&model.ShipmentRecord{})
	if result.Error != nil {
		logger.Error("Failed to delete shipment record in database", result.Error, map[string]interface{}{
			"record_id": id,
		})
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *shipmentRepository) DeleteByIDsAndOwner(tx *gorm.DB, ids []uint, owner model.OwnerRef) (int64, error) {
	if tx == nil {
		tx = r.db
	}

	logger.Debug("Deleting shipment records by IDs in database", map[string]interface{}{
		"record_count": len(ids),
	})

	result := ownerScope(tx, owner).Where("id IN ?", ids).Delete(&model.ShipmentRecord{})
	if result.Error != nil {
		logger.Error("Failed to delete shipment records by IDs in database", result.Error, map[string]interface{}{
			"record_count": len(ids),
		})
		return 0, result.Error
	}

	logger.Debug("Shipment records deleted by IDs in database", map[string]interface{}{
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *shipmentRepository) DeleteStaleSessionRecords(cutoff time.Time) (int64, error) {
	logger.Debug("Deleting stale session shipment records in database", map[string]interface{}{
		"cutoff": cutoff,
	})

	result := r.db.Where("user_id IS NULL AND session_id <> '' AND created_at < ?", cutoff).
		Delete(&model.ShipmentRecord{})
	if result.Error != nil {
		logger.Error("Failed to delete stale session shipment records in database", result.Error, nil)
		return 0, result.Error
	}

	logger.Debug("Stale session shipment records deleted in database", map[string]interface{}{
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
