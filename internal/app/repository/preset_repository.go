package repository

import (
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"gorm.io/gorm"
)

type AddressRepository interface {
	FindByUserID(userID uint) ([]model.SavedAddress, error)
	FindByIDAndUserID(id, userID uint) (*model.SavedAddress, error)
	ExistsByName(userID uint, name string, excludeID uint) (bool, error)
	Create(address *model.SavedAddress) error
	Update(address *model.SavedAddress) error
	Delete(id, userID uint) (int64, error)
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) FindByUserID(userID uint) ([]model.SavedAddress, error) {
	logger.Debug("Finding saved addresses by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var addresses []model.SavedAddress
	if err := r.db.Where("user_id = ?", userID).
		Order("name ASC").
		Find(&addresses).Error; err != nil {
		logger.Error("Failed to find saved addresses in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return addresses, nil
}

func (r *addressRepository) FindByIDAndUserID(id, userID uint) (*model.SavedAddress, error) {
	var address model.SavedAddress
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		logger.Debug("Saved address not found in database", map[string]interface{}{
			"address_id": id,
			"user_id":    userID,
		})
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) ExistsByName(userID uint, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.SavedAddress{}).Where("user_id = ? AND name = ?", userID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to check saved address name in database", err, map[string]interface{}{
			"user_id": userID,
			"name":    name,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *addressRepository) Create(address *model.SavedAddress) error {
	logger.Debug("Creating saved address in database", map[string]interface{}{
		"user_id": address.UserID,
		"name":    address.Name,
	})

	if err := r.db.Create(address).Error; err != nil {
		logger.Error("Failed to create saved address in database", err, map[string]interface{}{
			"user_id": address.UserID,
			"name":    address.Name,
		})
		return err
	}

	return nil
}

func (r *addressRepository) Update(address *model.SavedAddress) error {
	if err := r.db.Save(address).Error; err != nil {
		logger.Error("Failed to update saved address in database", err, map[string]interface{}{
			"address_id": address.ID,
		})
		return err
	}
	return nil
}

func (r *addressRepository) Delete(id, userID uint) (int64, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.SavedAddress{})
	if result.Error != nil {
		logger.Error("Failed to delete saved address in database", result.Error, map[string]interface{}{
			"address_id": id,
			"user_id":    userID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

type PackageRepository interface {
	FindByUserID(userID uint) ([]model.SavedPackage, error)
	FindByIDAndUserID(id, userID uint) (*model.SavedPackage, error)
	ExistsByName(userID uint, name string, excludeID uint) (bool, error)
	Create(pkg *model.SavedPackage) error
	Update(pkg *model.SavedPackage) error
	Delete(id, userID uint) (int64, error)
	InsertBatch(pkgs []model.SavedPackage) error
}

type packageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) FindByUserID(userID uint) ([]model.SavedPackage, error) {
	logger.Debug("Finding saved packages by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var pkgs []model.SavedPackage
	if err := r.db.Where("user_id = ?", userID).
		Order("name ASC").
		Find(&pkgs).Error; err != nil {
		logger.Error("Failed to find saved packages in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return pkgs, nil
}

func (r *packageRepository) FindByIDAndUserID(id, userID uint) (*model.SavedPackage, error) {
	var pkg model.SavedPackage
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&pkg).Error; err != nil {
		logger.Debug("Saved package not found in database", map[string]interface{}{
			"package_id": id,
			"user_id":    userID,
		})
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) ExistsByName(userID uint, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.SavedPackage{}).Where("user_id = ? AND name = ?", userID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to check saved package name in database", err, map[string]interface{}{
			"user_id": userID,
			"name":    name,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *packageRepository) Create(pkg *model.SavedPackage) error {
	logger.Debug("Creating saved package in database", map[string]interface{}{
		"user_id": pkg.UserID,
		"name":    pkg.Name,
	})

	if err := r.db.Create(pkg).Error; err != nil {
		logger.Error("Failed to create saved package in database", err, map[string]interface{}{
			"user_id": pkg.UserID,
			"name":    pkg.Name,
		})
		return err
	}

	return nil
}

func (r *packageRepository) Update(pkg *model.SavedPackage) error {
	if err := r.db.Save(pkg).Error; err != nil {
		logger.Error("Failed to update saved package in database", err, map[string]interface{}{
			"package_id": pkg.ID,
		})
		return err
	}
	return nil
}

func (r *packageRepository) Delete(id, userID uint) (int64, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.SavedPackage{})
	if result.Error != nil {
		logger.Error("Failed to delete saved package in database", result.Error, map[string]interface{}{
			"package_id": id,
			"user_id":    userID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *packageRepository) InsertBatch(pkgs []model.SavedPackage) error {
	if len(pkgs) == 0 {
		return nil
	}
	if err := r.db.Create(&pkgs).Error; err != nil {
		logger.Error("Failed to insert saved package batch in database", err, map[string]interface{}{
			"count": len(pkgs),
		})
		return err
	}
	return nil
}
