package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Seeds saved address and package presets for an existing user from an XLSX
// workbook. Sheet "Addresses": name, first_name, last_name, address,
// address2, city, state, zip, phone. Sheet "Packages": name, weight_lbs,
// weight_oz, length, width, height. Row 1 of each sheet is a header.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> <user_email>")
	}

	filePath := os.Args[1]
	email := os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())
	packageRepo := repository.NewPackageRepository(db.GetDB())

	user, err := userRepo.FindByEmail(email)
	if err != nil {
		log.Fatal("User not found:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX file:", err)
	}
	defer f.Close()

	addresses, err := readAddresses(f, user.ID)
	if err != nil {
		log.Fatal("Failed to read addresses:", err)
	}
	packages, err := readPackages(f, user.ID)
	if err != nil {
		log.Fatal("Failed to read packages:", err)
	}

	fmt.Printf("Presets to import: %d addresses, %d packages\n", len(addresses), len(packages))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for i := range addresses {
		if err := addressRepo.Create(&addresses[i]); err != nil {
			fmt.Printf("Skipping address %q: %v\n", addresses[i].Name, err)
			continue
		}
		imported++
	}
	fmt.Printf("Addresses imported: %d\n", imported)

	if len(packages) > 0 {
		if err := packageRepo.InsertBatch(packages); err != nil {
			log.Fatal("Failed to import packages:", err)
		}
	}
	fmt.Printf("Packages imported: %d\n", len(packages))

	fmt.Println("Import completed successfully!")
}

func readAddresses(f *excelize.File, userID uint) ([]model.SavedAddress, error) {
	rows, err := sheetRows(f, "Addresses")
	if err != nil || rows == nil {
		return nil, err
	}

	var addresses []model.SavedAddress
	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := strings.TrimSpace(col(row, 0))
		if name == "" {
			continue
		}
		addresses = append(addresses, model.SavedAddress{
			UserID:    userID,
			Name:      name,
			FirstName: strings.TrimSpace(col(row, 1)),
			LastName:  strings.TrimSpace(col(row, 2)),
			Address:   strings.TrimSpace(col(row, 3)),
			Address2:  strings.TrimSpace(col(row, 4)),
			City:      strings.TrimSpace(col(row, 5)),
			State:     strings.TrimSpace(col(row, 6)),
			Zip:       strings.TrimSpace(col(row, 7)),
			Phone:     strings.TrimSpace(col(row, 8)),
		})
	}
	return addresses, nil
}

func readPackages(f *excelize.File, userID uint) ([]model.SavedPackage, error) {
	rows, err := sheetRows(f, "Packages")
	if err != nil || rows == nil {
		return nil, err
	}

	var packages []model.SavedPackage
	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := strings.TrimSpace(col(row, 0))
		if name == "" {
			continue
		}
		packages = append(packages, model.SavedPackage{
			UserID:    userID,
			Name:      name,
			WeightLbs: parseInt(col(row, 1)),
			WeightOz:  parseInt(col(row, 2)),
			Length:    parseFloat(col(row, 3)),
			Width:     parseFloat(col(row, 4)),
			Height:    parseFloat(col(row, 5)),
		})
	}
	return packages, nil
}

// sheetRows returns nil rows without error when the sheet is absent.
func sheetRows(f *excelize.File, name string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	return rows, nil
}

func col(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func parseInt(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(v)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
