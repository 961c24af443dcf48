package controller

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/service"
	apperrors "github.com/printtts/shiplabel-backend/internal/errors"
	"github.com/printtts/shiplabel-backend/internal/middleware"
	"github.com/printtts/shiplabel-backend/internal/storage"
)

// maxUploadSize caps uploaded shipment files at 10 MiB.
const maxUploadSize = 10 << 20

// templateCSV is the downloadable import template: a category row, the
// column header row, and one sample data row.
const templateCSV = `Sender,,,,,,,Recipient,,,,,,,Package,,,,,Contact,,Order,
from_first_name,from_last_name,from_address,from_address2,from_city,from_zip,from_state,to_first_name,to_last_name,to_address,to_address2,to_city,to_zip,to_state,weight_lbs,weight_oz,length,width,height,phone1,phone2,order_no,item_sku
Jane,Doe,100 Main St,,Portland,97201,OR,John,Smith,200 Oak Ave,Apt 4,Seattle,98101,WA,1,4,10,6,4,5035551234,,ORDER-1001,SKU-42
`

type UploadController struct {
	importService service.ImportService
	archiver      storage.UploadArchiver
}

func NewUploadController(importService service.ImportService, archiver storage.UploadArchiver) *UploadController {
	return &UploadController{
		importService: importService,
		archiver:      archiver,
	}
}

// Upload imports a CSV or XLSX of shipment rows
// POST /api/upload
func (ctrl *UploadController) Upload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := middleware.GetOwner(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warn("Upload without file part", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.UploadMissingFile, "No file provided")
		return
	}

	if fileHeader.Size > maxUploadSize {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "File exceeds the 10 MB limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only .csv and .xlsx files are accepted")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err, map[string]interface{}{
			"filename": fileHeader.Filename,
		})
		apperrors.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := ctrl.importService.Import(owner, fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, service.ErrUnreadableFile) {
			apperrors.BadRequest(c, apperrors.ImportParseFailed, err.Error())
			return
		}
		log.Error("Import failed", err, map[string]interface{}{
			"filename": fileHeader.Filename,
		})
		apperrors.InternalError(c, "Failed to import file")
		return
	}

	ctrl.archive(c, fileHeader.Filename)

	log.Info("File imported", map[string]interface{}{
		"filename": fileHeader.Filename,
		"imported": result.Imported,
		"errors":   len(result.Errors),
	})

	response := gin.H{
		"message":  "Import completed",
		"imported": result.Imported,
		"records":  model.ToResponses(result.Records),
		"errors":   rowErrors(result.Errors),
	}
	if !owner.IsUser() {
		response["session_id"] = owner.SessionToken
	}

	c.JSON(http.StatusOK, response)
}

// archive stores the raw upload in S3 when configured. Best effort only.
func (ctrl *UploadController) archive(c *gin.Context, filename string) {
	if ctrl.archiver == nil {
		return
	}
	log := middleware.GetLoggerFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := ctrl.archiver.ArchiveUpload(c.Request.Context(), filename, contentType, file)
	if err != nil {
		log.Warn("Failed to archive upload", map[string]interface{}{
			"filename": filename,
			"error":    err.Error(),
		})
		return
	}

	log.Debug("Upload archived", map[string]interface{}{
		"url": url,
	})
}

// rowErrors keeps the errors field a JSON array, never null.
func rowErrors(errs []service.RowError) []service.RowError {
	if errs == nil {
		return []service.RowError{}
	}
	return errs
}

// Template serves the static 3-row import template
// GET /api/template
func (ctrl *UploadController) Template(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="shipping_template.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(templateCSV))
}
