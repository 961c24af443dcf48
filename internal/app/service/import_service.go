package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var ErrUnreadableFile = errors.New("file could not be parsed as tabular data")

// Fixed column layout of uploaded shipment files.
const (
	colFromFirstName = iota
	colFromLastName
	colFromAddress
	colFromAddress2
	colFromCity
	colFromZip
	colFromState
	colToFirstName
	colToLastName
	colToAddress
	colToAddress2
	colToCity
	colToZip
	colToState
	colWeightLbs
	colWeightOz
	colLength
	colWidth
	colHeight
	colPhone1
	colPhone2
	colOrderNo
	colItemSKU
)

// RowError reports one unparseable data row. Row numbers are 1-based and
// count the skipped header lines.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Imported int
	Records  []model.ShipmentRecord
	Errors   []RowError
}

type ImportService interface {
	Import(owner model.OwnerRef, filename string, file io.Reader) (*ImportResult, error)
}

type importService struct {
	shipmentRepo repository.ShipmentRepository
	db           *gorm.DB
	cfg          config.ImportConfig
}

func NewImportService(shipmentRepo repository.ShipmentRepository, db *gorm.DB, cfg config.ImportConfig) ImportService {
	if cfg.HeaderRows <= 0 {
		cfg.HeaderRows = 2
	}
	if cfg.Policy == "" {
		cfg.Policy = config.ImportPolicyAuto
	}
	return &importService{
		shipmentRepo: shipmentRepo,
		db:           db,
		cfg:          cfg,
	}
}

func (s *importService) Import(owner model.OwnerRef, filename string, file io.Reader) (*ImportResult, error) {
	logger.Info("Importing shipment file", map[string]interface{}{
		"filename":    filename,
		"is_user":     owner.IsUser(),
		"header_rows": s.cfg.HeaderRows,
	})

	var (
		rows    [][]string
		rowErrs []RowError
		err     error
	)
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		rows, err = readWorkbookRows(file)
	} else {
		rows, rowErrs, err = readCSVRows(file, s.cfg.HeaderRows)
	}
	if err != nil {
		logger.Warn("Uploaded file is unreadable", map[string]interface{}{
			"filename": filename,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	records, buildErrs := s.buildRecords(owner, rows)
	rowErrs = append(rowErrs, buildErrs...)

	policy := s.resolvePolicy(owner)

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during import, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"filename": filename,
			})
		}
	}()

	if policy == config.ImportPolicyReplace {
		if _, err := s.shipmentRepo.DeleteForOwner(tx, owner); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := s.shipmentRepo.InsertBatch(tx, records); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit import transaction", err, map[string]interface{}{
			"filename": filename,
		})
		return nil, err
	}

	all, err := s.shipmentRepo.FindByOwner(owner)
	if err != nil {
		return nil, err
	}

	logger.Info("Shipment file imported", map[string]interface{}{
		"filename": filename,
		"imported": len(records),
		"errors":   len(rowErrs),
		"policy":   policy,
	})

	return &ImportResult{
		Imported: len(records),
		Records:  all,
		Errors:   rowErrs,
	}, nil
}

// resolvePolicy maps the auto policy onto the owner type: account owners
// accumulate records across uploads, anonymous sessions are replaced.
func (s *importService) resolvePolicy(owner model.OwnerRef) config.ImportPolicy {
	if s.cfg.Policy != config.ImportPolicyAuto {
		return s.cfg.Policy
	}
	if owner.IsUser() {
		return config.ImportPolicyAppend
	}
	return config.ImportPolicyReplace
}

// buildRecords converts data rows into records, skipping the configured
// header rows. Rows with both recipient names blank are dropped silently.
func (s *importService) buildRecords(owner model.OwnerRef, rows [][]string) ([]model.ShipmentRecord, []RowError) {
	var (
		records []model.ShipmentRecord
		rowErrs []RowError
	)

	if len(rows) <= s.cfg.HeaderRows {
		return records, rowErrs
	}

	for i, row := range rows[s.cfg.HeaderRows:] {
		if cell(row, colToFirstName) == "" && cell(row, colToLastName) == "" {
			continue
		}

		record := model.ShipmentRecord{
			UserID:    owner.UserID,
			SessionID: owner.SessionToken,

			FromFirstName: truncate(cell(row, colFromFirstName), 50),
			FromLastName:  truncate(cell(row, colFromLastName), 50),
			FromAddress:   truncate(cell(row, colFromAddress), 100),
			FromAddress2:  truncate(cell(row, colFromAddress2), 100),
			FromCity:      truncate(cell(row, colFromCity), 50),
			FromZip:       truncate(cell(row, colFromZip), 20),
			FromState:     truncate(cell(row, colFromState), 50),

			ToFirstName: truncate(cell(row, colToFirstName), 50),
			ToLastName:  truncate(cell(row, colToLastName), 50),
			ToAddress:   truncate(cell(row, colToAddress), 100),
			ToAddress2:  truncate(cell(row, colToAddress2), 100),
			ToCity:      truncate(cell(row, colToCity), 50),
			ToZip:       truncate(cell(row, colToZip), 20),
			ToState:     truncate(cell(row, colToState), 50),

			WeightLbs: safeInt(cell(row, colWeightLbs)),
			WeightOz:  safeInt(cell(row, colWeightOz)),
			Length:    safeFloat(cell(row, colLength)),
			Width:     safeFloat(cell(row, colWidth)),
			Height:    safeFloat(cell(row, colHeight)),

			PhoneNum1: truncate(cell(row, colPhone1), 20),
			PhoneNum2: truncate(cell(row, colPhone2), 20),

			OrderNo: truncate(cell(row, colOrderNo), 30),
			ItemSKU: truncate(cell(row, colItemSKU), 30),

			ShippingService: model.ShippingServiceGround,
			Status:          model.ShipmentStatusPending,
		}

		if record.OrderNo == "" {
			record.OrderNo = fmt.Sprintf("ORDER-%d", i)
		}
		record.ShippingPrice = record.CalculateShippingPrice()

		records = append(records, record)
	}

	return records, rowErrs
}

// readCSVRows reads every CSV record, tolerating ragged rows. Reader errors
// after the header region are collected per row and never abort the file;
// an error inside the header region means the file itself is unreadable.
func readCSVRows(file io.Reader, headerRows int) ([][]string, []RowError, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var (
		rows    [][]string
		rowErrs []RowError
	)
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if line <= headerRows {
				return nil, nil, err
			}
			rowErrs = append(rowErrs, RowError{Row: line, Error: err.Error()})
			// keep the row count aligned with the file
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, row)
	}

	return rows, rowErrs, nil
}

// readWorkbookRows reads the first sheet of an XLSX workbook.
func readWorkbookRows(file io.Reader) ([][]string, error) {
	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	return workbook.GetRows(sheets[0])
}

// cell returns the trimmed value at index i, or "" when the row is short.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}

// safeInt parses through a float so values like "2.0" still convert.
// Any failure yields 0.
func safeInt(s string) int {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// safeFloat parses a decimal value, yielding 0.0 on any failure.
func safeFloat(s string) float64 {
	if s == "" {
		return 0.0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return f
}
