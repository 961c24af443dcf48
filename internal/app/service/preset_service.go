package service

import (
	"errors"

	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrPresetNotFound   = errors.New("preset not found")
	ErrPresetNameExists = errors.New("a preset with this name already exists")
	ErrPresetNameEmpty  = errors.New("preset name is required")
)

type PresetService interface {
	ListAddresses(userID uint) ([]model.SavedAddress, error)
	CreateAddress(userID uint, address *model.SavedAddress) error
	UpdateAddress(userID, id uint, address *model.SavedAddress) (*model.SavedAddress, error)
	DeleteAddress(userID, id uint) error

	ListPackages(userID uint) ([]model.SavedPackage, error)
	CreatePackage(userID uint, pkg *model.SavedPackage) error
	UpdatePackage(userID, id uint, pkg *model.SavedPackage) (*model.SavedPackage, error)
	DeletePackage(userID, id uint) error
}

type presetService struct {
	addressRepo repository.AddressRepository
	packageRepo repository.PackageRepository
}

func NewPresetService(addressRepo repository.AddressRepository, packageRepo repository.PackageRepository) PresetService {
	return &presetService{
		addressRepo: addressRepo,
		packageRepo: packageRepo,
	}
}

func (s *presetService) ListAddresses(userID uint) ([]model.SavedAddress, error) {
	return s.addressRepo.FindByUserID(userID)
}

func (s *presetService) CreateAddress(userID uint, address *model.SavedAddress) error {
	if address.Name == "" {
		return ErrPresetNameEmpty
	}

	exists, err := s.addressRepo.ExistsByName(userID, address.Name, 0)
	if err != nil {
		return err
	}
	if exists {
		logger.Warn("Saved address name already in use", map[string]interface{}{
			"user_id": userID,
			"name":    address.Name,
		})
		return ErrPresetNameExists
	}

	address.UserID = userID
	return s.addressRepo.Create(address)
}

func (s *presetService) UpdateAddress(userID, id uint, address *model.SavedAddress) (*model.SavedAddress, error) {
	existing, err := s.addressRepo.FindByIDAndUserID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresetNotFound
		}
		return nil, err
	}

	if address.Name == "" {
		return nil, ErrPresetNameEmpty
	}

	exists, err := s.addressRepo.ExistsByName(userID, address.Name, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPresetNameExists
	}

	existing.Name = address.Name
	existing.FirstName = address.FirstName
	existing.LastName = address.LastName
	existing.Address = address.Address
	existing.Address2 = address.Address2
	existing.City = address.City
	existing.State = address.State
	existing.Zip = address.Zip
	existing.Phone = address.Phone

	if err := s.addressRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *presetService) DeleteAddress(userID, id uint) error {
	deleted, err := s.addressRepo.Delete(id, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrPresetNotFound
	}
	return nil
}

func (s *presetService) ListPackages(userID uint) ([]model.SavedPackage, error) {
	return s.packageRepo.FindByUserID(userID)
}

func (s *presetService) CreatePackage(userID uint, pkg *model.SavedPackage) error {
	if pkg.Name == "" {
		return ErrPresetNameEmpty
	}

	exists, err := s.packageRepo.ExistsByName(userID, pkg.Name, 0)
	if err != nil {
		return err
	}
	if exists {
		logger.Warn("Saved package name already in use", map[string]interface{}{
			"user_id": userID,
			"name":    pkg.Name,
		})
		return ErrPresetNameExists
	}

	pkg.UserID = userID
	return s.packageRepo.Create(pkg)
}

func (s *presetService) UpdatePackage(userID, id uint, pkg *model.SavedPackage) (*model.SavedPackage, error) {
	existing, err := s.packageRepo.FindByIDAndUserID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresetNotFound
		}
		return nil, err
	}

	if pkg.Name == "" {
		return nil, ErrPresetNameEmpty
	}

	exists, err := s.packageRepo.ExistsByName(userID, pkg.Name, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPresetNameExists
	}

	existing.Name = pkg.Name
	existing.WeightLbs = pkg.WeightLbs
	existing.WeightOz = pkg.WeightOz
	existing.Length = pkg.Length
	existing.Width = pkg.Width
	existing.Height = pkg.Height

	if err := s.packageRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *presetService) DeletePackage(userID, id uint) error {
	deleted, err := s.packageRepo.Delete(id, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrPresetNotFound
	}
	return nil
}
