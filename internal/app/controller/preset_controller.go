package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/service"
	apperrors "github.com/printtts/shiplabel-backend/internal/errors"
	"github.com/printtts/shiplabel-backend/internal/middleware"
)

type PresetController struct {
	presetService service.PresetService
}

func NewPresetController(presetService service.PresetService) *PresetController {
	return &PresetController{
		presetService: presetService,
	}
}

type addressRequest struct {
	Name      string `json:"name" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Phone     string `json:"phone"`
}

type packageRequest struct {
	Name      string  `json:"name" binding:"required"`
	WeightLbs int     `json:"weight_lbs"`
	WeightOz  int     `json:"weight_oz"`
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

func (r *addressRequest) toModel() model.SavedAddress {
	return model.SavedAddress{
		Name:      r.Name,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Address:   r.Address,
		Address2:  r.Address2,
		City:      r.City,
		State:     r.State,
		Zip:       r.Zip,
		Phone:     r.Phone,
	}
}

func (r *packageRequest) toModel() model.SavedPackage {
	return model.SavedPackage{
		Name:      r.Name,
		WeightLbs: r.WeightLbs,
		WeightOz:  r.WeightOz,
		Length:    r.Length,
		Width:     r.Width,
		Height:    r.Height,
	}
}

// respondPresetError maps the shared preset failure modes.
func respondPresetError(c *gin.Context, err error, what string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrPresetNotFound):
		apperrors.NotFound(c, apperrors.PresetNotFound, what+" not found")
	case errors.Is(err, service.ErrPresetNameExists):
		apperrors.Conflict(c, apperrors.ResourceAlreadyExists, "A "+what+" with this name already exists")
	case errors.Is(err, service.ErrPresetNameEmpty):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Name is required")
	default:
		log.Error("Preset operation failed", err, nil)
		apperrors.InternalError(c, "")
	}
}

// ListAddresses returns the user's saved addresses
// GET /api/addresses
func (ctrl *PresetController) ListAddresses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	addresses, err := ctrl.presetService.ListAddresses(userID)
	if err != nil {
		log.Error("Failed to fetch saved addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// CreateAddress saves a new address preset
// POST /api/addresses
func (ctrl *PresetController) CreateAddress(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Name is required")
		return
	}

	address := req.toModel()
	if err := ctrl.presetService.CreateAddress(userID, &address); err != nil {
		respondPresetError(c, err, "saved address")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"address": address,
	})
}

// UpdateAddress replaces an address preset's fields
// PUT /api/addresses/:id
func (ctrl *PresetController) UpdateAddress(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := parseID(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid address ID")
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Name is required")
		return
	}

	address := req.toModel()
	updated, err := ctrl.presetService.UpdateAddress(userID, id, &address)
	if err != nil {
		respondPresetError(c, err, "saved address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": updated,
	})
}

// DeleteAddress removes an address preset
// DELETE /api/addresses/:id
func (ctrl *PresetController) DeleteAddress(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := parseID(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid address ID")
		return
	}

	if err := ctrl.presetService.DeleteAddress(userID, id); err != nil {
		respondPresetError(c, err, "saved address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address deleted",
	})
}

// ListPackages returns the user's saved packages
// GET /api/packages
func (ctrl *PresetController) ListPackages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	pkgs, err := ctrl.presetService.ListPackages(userID)
	if err != nil {
		log.Error("Failed to fetch saved packages", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch packages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"packages": pkgs,
		"count":    len(pkgs),
	})
}

// CreatePackage saves a new package preset
// POST /api/packages
func (ctrl *PresetController) CreatePackage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req packageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Name is required")
		return
	}

	pkg := req.toModel()
	if err := ctrl.presetService.CreatePackage(userID, &pkg); err != nil {
		respondPresetError(c, err, "saved package")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"package": pkg,
	})
}

// UpdatePackage replaces a package preset's fields
// PUT /api/packages/:id
func (ctrl *PresetController) UpdatePackage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := parseID(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid package ID")
		return
	}

	var req packageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Name is required")
		return
	}

	pkg := req.toModel()
	updated, err := ctrl.presetService.UpdatePackage(userID, id, &pkg)
	if err != nil {
		respondPresetError(c, err, "saved package")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"package": updated,
	})
}

// DeletePackage removes a package preset
// DELETE /api/packages/:id
func (ctrl *PresetController) DeletePackage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := parseID(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid package ID")
		return
	}

	if err := ctrl.presetService.DeletePackage(userID, id); err != nil {
		respondPresetError(c, err, "saved package")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Package deleted",
	})
}
