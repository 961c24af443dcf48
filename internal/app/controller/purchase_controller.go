package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printtts/shiplabel-backend/internal/app/service"
	apperrors "github.com/printtts/shiplabel-backend/internal/errors"
	"github.com/printtts/shiplabel-backend/internal/middleware"
)

type PurchaseController struct {
	purchaseService service.PurchaseService
}

func NewPurchaseController(purchaseService service.PurchaseService) *PurchaseController {
	return &PurchaseController{
		purchaseService: purchaseService,
	}
}

type purchaseRequest struct {
	RecordIDs   []uint `json:"record_ids"`
	LabelFormat string `json:"label_format"`
}

// Purchase buys postage for the selected records
// POST /api/purchase
func (ctrl *PurchaseController) Purchase(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := middleware.GetOwner(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	result, err := ctrl.purchaseService.Purchase(owner, req.RecordIDs, req.LabelFormat)
	if err != nil {
		var balanceErr *service.InsufficientBalanceError
		switch {
		case errors.Is(err, service.ErrNoRecordIDs):
			apperrors.BadRequest(c, apperrors.ShipmentNoRecordIDs, "No record IDs provided")
		case errors.Is(err, service.ErrNoShipmentsFound):
			apperrors.NotFound(c, apperrors.ShipmentNoneFound, "No shipments found for the given IDs")
		case errors.As(err, &balanceErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     apperrors.PurchaseInsufficientBalance,
				"message":   "Insufficient balance",
				"required":  balanceErr.Required,
				"available": balanceErr.Available,
			})
		case errors.Is(err, service.ErrAccountNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Account not found")
		default:
			log.Error("Purchase failed", err, nil)
			apperrors.InternalError(c, "Failed to process purchase")
		}
		return
	}

	log.Info("Purchase completed", map[string]interface{}{
		"count": result.Count,
		"total": result.Total,
	})

	response := gin.H{
		"message": "Purchase completed",
		"count":   result.Count,
		"total":   result.Total,
	}
	if result.NewBalance != nil {
		response["new_balance"] = *result.NewBalance
	}

	c.JSON(http.StatusOK, response)
}

// ListPurchases returns the caller's purchase receipts
// GET /api/purchases
func (ctrl *PurchaseController) ListPurchases(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := middleware.GetOwner(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	receipts, err := ctrl.purchaseService.ListReceipts(owner)
	if err != nil {
		log.Error("Failed to fetch purchase receipts", err, nil)
		apperrors.InternalError(c, "Failed to fetch purchases")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"purchases": receipts,
		"count":     len(receipts),
	})
}
