package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/service"
	apperrors "github.com/printtts/shiplabel-backend/internal/errors"
	"github.com/printtts/shiplabel-backend/internal/middleware"
)

type ShipmentController struct {
	shipmentService service.ShipmentService
}

func NewShipmentController(shipmentService service.ShipmentService) *ShipmentController {
	return &ShipmentController{
		shipmentService: shipmentService,
	}
}

// shipmentFields is the sparse update payload. Blank strings mean
// "not provided" and are stripped before reaching the service.
type shipmentFields struct {
	FromFirstName *string `json:"from_first_name"`
	FromLastName  *string `json:"from_last_name"`
	FromAddress   *string `json:"from_address"`
	FromAddress2  *string `json:"from_address2"`
	FromCity      *string `json:"from_city"`
	FromZip       *string `json:"from_zip"`
	FromState     *string `json:"from_state"`

	ToFirstName *string `json:"to_first_name"`
	ToLastName  *string `json:"to_last_name"`
	ToAddress   *string `json:"to_address"`
	ToAddress2  *string `json:"to_address2"`
	ToCity      *string `json:"to_city"`
	ToZip       *string `json:"to_zip"`
	ToState     *string `json:"to_state"`

	WeightLbs *int     `json:"weight_lbs"`
	WeightOz  *int     `json:"weight_oz"`
	Length    *float64 `json:"length"`
	Width     *float64 `json:"width"`
	Height    *float64 `json:"height"`

	PhoneNum1 *string `json:"phone_num1"`
	PhoneNum2 *string `json:"phone_num2"`

	OrderNo         *string  `json:"order_no"`
	ItemSKU         *string  `json:"item_sku"`
	ShippingService *string  `json:"shipping_service"`
	ShippingPrice   *float64 `json:"shipping_price"`
	Status          *string  `json:"status"`
}

// blankToNil treats submitted empty strings as absent, not as "clear".
func blankToNil(v *string) *string {
	if v != nil && *v == "" {
		return nil
	}
	return v
}

func (f *shipmentFields) toPatch() service.ShipmentPatch {
	return service.ShipmentPatch{
		FromFirstName: blankToNil(f.FromFirstName),
		FromLastName:  blankToNil(f.FromLastName),
		FromAddress:   blankToNil(f.FromAddress),
		FromAddress2:  blankToNil(f.FromAddress2),
		FromCity:      blankToNil(f.FromCity),
		FromZip:       blankToNil(f.FromZip),
		FromState:     blankToNil(f.FromState),

		ToFirstName: blankToNil(f.ToFirstName),
		ToLastName:  blankToNil(f.ToLastName),
		ToAddress:   blankToNil(f.ToAddress),
		ToAddress2:  blankToNil(f.ToAddress2),
		ToCity:      blankToNil(f.ToCity),
		ToZip:       blankToNil(f.ToZip),
		ToState:     blankToNil(f.ToState),

		WeightLbs: f.WeightLbs,
		WeightOz:  f.WeightOz,
		Length:    f.Length,
		Width:     f.Width,
		Height:    f.Height,

		PhoneNum1: blankToNil(f.PhoneNum1),
		PhoneNum2: blankToNil(f.PhoneNum2),

		OrderNo:         blankToNil(f.OrderNo),
		ItemSKU:         blankToNil(f.ItemSKU),
		ShippingService: blankToNil(f.ShippingService),
		ShippingPrice:   f.ShippingPrice,
		Status:          blankToNil(f.Status),
	}
}

type createShipmentRequest struct {
	FromFirstName string `json:"from_first_name"`
	FromLastName  string `json:"from_last_name"`
	FromAddress   string `json:"from_address"`
	FromAddress2  string `json:"from_address2"`
	FromCity      string `json:"from_city"`
	FromZip       string `json:"from_zip"`
	FromState     string `json:"from_state"`

	ToFirstName string `json:"to_first_name" binding:"required"`
	ToLastName  string `json:"to_last_name"`
	ToAddress   string `json:"to_address" binding:"required"`
	ToAddress2  string `json:"to_address2"`
	ToCity      string `json:"to_city"`
	ToZip       string `json:"to_zip"`
	ToState     string `json:"to_state"`

	WeightLbs int     `json:"weight_lbs"`
	WeightOz  int     `json:"weight_oz"`
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`

	PhoneNum1 string `json:"phone_num1"`
	PhoneNum2 string `json:"phone_num2"`

	OrderNo         string `json:"order_no"`
	ItemSKU         string `json:"item_sku"`
	ShippingService string `json:"shipping_service"`
}

type bulkUpdateRequest struct {
	RecordIDs []uint `json:"record_ids"`
	shipmentFields
}

type bulkDeleteRequest struct {
	RecordIDs []uint `json:"record_ids"`
}

// GetShipments returns the caller's shipment records
// GET /api/shipments
func (ctrl *ShipmentController) GetShipments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := middleware.GetOwner(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	records, err := ctrl.shipmentService.ListShipments(owner)
	if err != nil {
		log.Error("Failed to fetch shipment records", err, nil)
		apperrors.InternalError(c, "Failed to fetch shipments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": model.ToResponses(records),
		"count":   len(records),
	})
}

// CreateShipment creates a single shipment record
// POST /api/shipments
func (ctrl *ShipmentController) CreateShipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := middleware.GetOwner(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req createShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid shipment create request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Recipient name and address are required")
		return
	}

	record := model.ShipmentRecord{
		FromFirstName:   req.FromFirstName,
		FromLastName:    req.FromLastName,
		FromAddress:     req.FromAddress,
		FromAddress2:    req.FromAddress2,
		FromCity:        req.FromCity,
		FromZip:         req.FromZip,
		FromState:       req.FromState,
		ToFirstName:     req.ToFirstName,
		ToLastName:      req.ToLastName,
		ToAddress:       req.ToAddress,
		ToAddress2:      req.ToAddress2,
		ToCity:          req.ToCity,
		ToZip:           req.ToZip,
		ToState:         req.ToState,
		WeightLbs:       req.WeightLbs,
		WeightOz:        req.WeightOz,
		Length:          req.Length,
		Width:           req.Width,
		Height:          req.Height,
		PhoneNum1:       req.PhoneNum1,
		PhoneNum2:       req.PhoneNum2,
		OrderNo:         req.OrderNo,
		ItemSKU:         req.ItemSKU,
		ShippingService: req.ShippingService,
	}

	if err := ctrl.shipmentService.CreateShipment(owner, &record); err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid shipment status")
			return
		}
		log.Error("Failed to create shipment record", err, nil)
		apperrors.InternalError(c, "Failed to create shipment")
		return
	}

	log.Info("Shipment record created", map[string]interface{}{
		"record_id": record.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"record": record.ToResponse(),
	})
}

// UpdateShipment partially updates a single record
// PUT /api/shipments/:id
func (ctrl *ShipmentController) UpdateShipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := middleware.GetOwner(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := parseID(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid shipment ID")
		return
	}

	var req shipmentFields
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	record, err := ctrl.shipmentService.UpdateShipment(owner, id, req.toPatch())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShipmentNotFound):
			apperrors.NotFound(c, apperrors.ShipmentNotFound, "Shipment not found")
		case errors.Is(err, service.ErrNoFieldsToUpdate):
			apperrors.BadRequest(c, apperrors.ShipmentNoFields, "No fields to update")
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid shipment status")
		default:
			log.Error("Failed to update shipment record", err, map[string]interface{}{
				"record_id": id,
			})
			apperrors.InternalError(c, "Failed to update shipment")
		}
		return
	}

	log.Info("Shipment record updated", map[string]interface{}{
		"record_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"record": record.ToResponse(),
	})
}

// DeleteShipment removes one record
// DELETE /api/shipments/:id
func (ctrl *ShipmentController) DeleteShipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := middleware.GetOwner(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := parseID(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid shipment ID")
		return
	}

	if err := ctrl.shipmentService.DeleteShipment(owner, id); err != nil {
		if errors.Is(err, service.ErrShipmentNotFound) {
			apperrors.NotFound(c, apperrors.ShipmentNotFound, "Shipment not found")
			return
		}
		log.Error("Failed to delete shipment record", err, map[string]interface{}{
			"record_id": id,
		})
		apperrors.InternalError(c, "Failed to delete shipment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipment deleted",
	})
}

// DeleteAllShipments removes every record belonging to the caller
// DELETE /api/shipments/delete-all
func (ctrl *ShipmentController) DeleteAllShipments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := middleware.GetOwner(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	deleted, err := ctrl.shipmentService.DeleteAllShipments(owner)
	if err != nil {
		log.Error("Failed to delete all shipment records", err, nil)
		apperrors.InternalError(c, "Failed to delete shipments")
		return
	}

	log.Info("All shipment records deleted for owner", map[string]interface{}{
		"deleted": deleted,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "All shipments deleted",
		"deleted": deleted,
	})
}

// BulkUpdate applies a sparse field update to a set of records
// PATCH /api/shipments/bulk/update (POST alias)
func (ctrl *ShipmentController) BulkUpdate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := middleware.GetOwner(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	records, err := ctrl.shipmentService.BulkUpdate(owner, req.RecordIDs, req.toPatch())
	if err != nil {
		ctrl.respondBulkError(c, err)
		return
	}

	log.Info("Bulk update applied", map[string]interface{}{
		"record_count": len(records),
	})

	c.JSON(http.StatusOK, gin.H{
		"records": model.ToResponses(records),
		"count":   len(records),
	})
}

// BulkDelete removes a set of records after strict ID validation
// POST /api/shipments/bulk/delete
func (ctrl *ShipmentController) BulkDelete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := middleware.GetOwner(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	deleted, err := ctrl.shipmentService.BulkDelete(owner, req.RecordIDs)
	if err != nil {
		ctrl.respondBulkError(c, err)
		return
	}

	log.Info("Bulk delete applied", map[string]interface{}{
		"deleted": deleted,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipments deleted",
		"deleted": deleted,
	})
}

// respondBulkError maps the distinct bulk failure modes onto the API.
func (ctrl *ShipmentController) respondBulkError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	var invalidErr *service.InvalidIDsError
	switch {
	case errors.Is(err, service.ErrNoRecordIDs):
		apperrors.BadRequest(c, apperrors.ShipmentNoRecordIDs, "No record IDs provided")
	case errors.Is(err, service.ErrNoShipmentsFound):
		apperrors.NotFound(c, apperrors.ShipmentNoneFound, "No shipments found for the given IDs")
	case errors.As(err, &invalidErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       apperrors.ShipmentInvalidIDs,
			"message":     "Some record IDs are invalid or not yours",
			"invalid_ids": invalidErr.IDs,
		})
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		apperrors.BadRequest(c, apperrors.ShipmentNoFields, "No fields to update")
	case errors.Is(err, service.ErrInvalidStatus):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid shipment status")
	default:
		log.Error("Bulk shipment operation failed", err, nil)
		apperrors.InternalError(c, "Bulk operation failed")
	}
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
