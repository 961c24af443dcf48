package service

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupImportService(t *testing.T) (ImportService, repository.ShipmentRepository, *gorm.DB) {
	t.Helper()

	database, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(database)
	})

	repo := repository.NewShipmentRepository(database)
	svc := NewImportService(repo, database, config.ImportConfig{
		HeaderRows: 2,
		Policy:     config.ImportPolicyAuto,
	})
	return svc, repo, database
}

// testRow builds a 23-column data row with sensible defaults.
func testRow(overrides map[int]string) []string {
	row := make([]string, 23)
	row[colToFirstName] = "John"
	row[colToLastName] = "Smith"
	row[colToAddress] = "200 Oak Ave"
	row[colToCity] = "Seattle"
	row[colToZip] = "98101"
	row[colToState] = "WA"
	row[colWeightLbs] = "1"
	row[colWeightOz] = "4"
	row[colOrderNo] = "ORD-100"
	for i, v := range overrides {
		row[i] = v
	}
	return row
}

func csvFile(t *testing.T, dataRows ...[]string) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	require.NoError(t, writer.Write([]string{"Sender", "Recipient", "Package"}))
	require.NoError(t, writer.Write([]string{"from_first_name", "from_last_name", "..."}))
	for _, row := range dataRows {
		require.NoError(t, writer.Write(row))
	}
	writer.Flush()
	require.NoError(t, writer.Error())
	return &buf
}

func TestImportCSV(t *testing.T) {
	svc, _, _ := setupImportService(t)
	owner := model.SessionOwner("session-1")

	result, err := svc.Import(owner, "shipments.csv", csvFile(t,
		testRow(nil),
		testRow(map[int]string{colToFirstName: "Jane", colOrderNo: "ORD-200"}),
	))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Records, 2)

	for _, record := range result.Records {
		assert.Equal(t, model.ShippingServiceGround, record.ShippingService)
		assert.Equal(t, model.ShipmentStatusPending, record.Status)
		// 1 lb 4 oz ground
		assert.InDelta(t, 2.50+0.05*20, record.ShippingPrice, 0.0001)
	}
}

func TestImportSkipsRowsWithoutRecipient(t *testing.T) {
	svc, _, _ := setupImportService(t)

	result, err := svc.Import(model.SessionOwner("s"), "shipments.csv", csvFile(t,
		testRow(map[int]string{colToFirstName: "", colToLastName: ""}),
		testRow(nil),
	))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)
}

func TestImportNonNumericWeight(t *testing.T) {
	svc, _, _ := setupImportService(t)

	result, err := svc.Import(model.SessionOwner("s"), "shipments.csv", csvFile(t,
		testRow(map[int]string{colWeightLbs: "heavy", colWeightOz: "2.0"}),
	))
	require.NoError(t, err)

	require.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, result.Records[0].WeightLbs)
	assert.Equal(t, 2, result.Records[0].WeightOz)
}

func TestImportMissingOrderNo(t *testing.T) {
	svc, _, _ := setupImportService(t)

	result, err := svc.Import(model.SessionOwner("s"), "shipments.csv", csvFile(t,
		testRow(map[int]string{colOrderNo: ""}),
		testRow(map[int]string{colOrderNo: ""}),
	))
	require.NoError(t, err)

	require.Equal(t, 2, result.Imported)
	orderNos := []string{result.Records[0].OrderNo, result.Records[1].OrderNo}
	assert.Contains(t, orderNos, "ORDER-0")
	assert.Contains(t, orderNos, "ORDER-1")
}

func TestImportTruncatesLongFields(t *testing.T) {
	svc, _, _ := setupImportService(t)

	long := strings.Repeat("x", 80)
	result, err := svc.Import(model.SessionOwner("s"), "shipments.csv", csvFile(t,
		testRow(map[int]string{colToFirstName: long}),
	))
	require.NoError(t, err)

	require.Equal(t, 1, result.Imported)
	assert.Len(t, result.Records[0].ToFirstName, 50)
}

func TestImportShortRowPadded(t *testing.T) {
	svc, _, _ := setupImportService(t)

	short := testRow(nil)[:colToLastName+1] // row ends after the recipient names
	result, err := svc.Import(model.SessionOwner("s"), "shipments.csv", csvFile(t, short))
	require.NoError(t, err)

	require.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "", result.Records[0].ToAddress)
	assert.Equal(t, 0, result.Records[0].WeightLbs)
}

func TestImportSessionReplacesPriorRecords(t *testing.T) {
	svc, _, _ := setupImportService(t)
	owner := model.SessionOwner("replace-me")

	_, err := svc.Import(owner, "first.csv", csvFile(t, testRow(nil), testRow(nil), testRow(nil)))
	require.NoError(t, err)

	result, err := svc.Import(owner, "second.csv", csvFile(t, testRow(nil)))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Records, 1)
}

func TestImportUserAppendsRecords(t *testing.T) {
	svc, _, _ := setupImportService(t)
	owner := model.UserOwner(1)

	_, err := svc.Import(owner, "first.csv", csvFile(t, testRow(nil), testRow(nil)))
	require.NoError(t, err)

	result, err := svc.Import(owner, "second.csv", csvFile(t, testRow(nil)))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Records, 3)
}

func TestImportUnreadableWorkbook(t *testing.T) {
	svc, repo, _ := setupImportService(t)
	owner := model.SessionOwner("s")

	_, err := svc.Import(owner, "garbage.xlsx", bytes.NewBufferString("this is not a workbook"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadableFile)

	records, err := repo.FindByOwner(owner)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSafeConversions(t *testing.T) {
	assert.Equal(t, 0, safeInt(""))
	assert.Equal(t, 0, safeInt("abc"))
	assert.Equal(t, 2, safeInt("2"))
	assert.Equal(t, 2, safeInt("2.9")) // float-then-int coercion truncates
	assert.Equal(t, 0.0, safeFloat("n/a"))
	assert.Equal(t, 1.5, safeFloat("1.5"))
}
