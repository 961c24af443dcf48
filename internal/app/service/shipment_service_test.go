package service

import (
	"testing"

	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupShipmentService(t *testing.T) (ShipmentService, *gorm.DB) {
	t.Helper()

	database, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(database)
	})

	repo := repository.NewShipmentRepository(database)
	return NewShipmentService(repo, database), database
}

func seedShipment(t *testing.T, database *gorm.DB, owner model.OwnerRef, lbs, oz int) *model.ShipmentRecord {
	t.Helper()

	record := model.ShipmentRecord{
		UserID:          owner.UserID,
		SessionID:       owner.SessionToken,
		ToFirstName:     "John",
		ToLastName:      "Smith",
		WeightLbs:       lbs,
		WeightOz:        oz,
		ShippingService: model.ShippingServiceGround,
		Status:          model.ShipmentStatusPending,
	}
	record.ShippingPrice = record.CalculateShippingPrice()
	require.NoError(t, database.Create(&record).Error)
	return &record
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestBulkUpdateEmptyIDs(t *testing.T) {
	svc, _ := setupShipmentService(t)

	_, err := svc.BulkUpdate(model.UserOwner(1), nil, ShipmentPatch{Status: strPtr("error")})
	assert.ErrorIs(t, err, ErrNoRecordIDs)
}

func TestBulkUpdateNoneFound(t *testing.T) {
	svc, _ := setupShipmentService(t)

	_, err := svc.BulkUpdate(model.UserOwner(1), []uint{999}, ShipmentPatch{Status: strPtr("error")})
	assert.ErrorIs(t, err, ErrNoShipmentsFound)
}

func TestBulkUpdateRejectsForeignID(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.UserOwner(1)
	mine := seedShipment(t, database, owner, 1, 0)
	foreign := seedShipment(t, database, model.UserOwner(2), 1, 0)

	_, err := svc.BulkUpdate(owner, []uint{mine.ID, foreign.ID}, ShipmentPatch{Status: strPtr("error")})
	require.Error(t, err)

	var invalidErr *InvalidIDsError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, []uint{foreign.ID}, invalidErr.IDs)

	// nothing mutated
	var unchanged model.ShipmentRecord
	require.NoError(t, database.First(&unchanged, mine.ID).Error)
	assert.Equal(t, model.ShipmentStatusPending, unchanged.Status)
}

func TestBulkUpdateNoFields(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.UserOwner(1)
	record := seedShipment(t, database, owner, 1, 0)

	_, err := svc.BulkUpdate(owner, []uint{record.ID}, ShipmentPatch{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
}

func TestBulkUpdateServiceRepricesPerRecord(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.UserOwner(1)
	light := seedShipment(t, database, owner, 0, 4)
	heavy := seedShipment(t, database, owner, 2, 0)

	updated, err := svc.BulkUpdate(owner, []uint{light.ID, heavy.ID}, ShipmentPatch{
		ShippingService: strPtr(model.ShippingServicePriority),
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)

	byID := map[uint]model.ShipmentRecord{}
	for _, record := range updated {
		byID[record.ID] = record
		assert.Equal(t, model.ShippingServicePriority, record.ShippingService)
	}
	assert.InDelta(t, 5.00+0.10*4, byID[light.ID].ShippingPrice, 0.0001)
	assert.InDelta(t, 5.00+0.10*32, byID[heavy.ID].ShippingPrice, 0.0001)
}

func TestBulkUpdateServiceWinsOverManualPrice(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.UserOwner(1)
	record := seedShipment(t, database, owner, 1, 0)

	updated, err := svc.BulkUpdate(owner, []uint{record.ID}, ShipmentPatch{
		ShippingService: strPtr(model.ShippingServicePriority),
		ShippingPrice:   floatPtr(99.99),
	})
	require.NoError(t, err)
	assert.InDelta(t, 5.00+0.10*16, updated[0].ShippingPrice, 0.0001)
}

func TestBulkUpdateManualPrice(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.UserOwner(1)
	record := seedShipment(t, database, owner, 1, 0)

	updated, err := svc.BulkUpdate(owner, []uint{record.ID}, ShipmentPatch{
		ShippingPrice: floatPtr(12.34),
	})
	require.NoError(t, err)
	assert.InDelta(t, 12.34, updated[0].ShippingPrice, 0.0001)
	assert.Equal(t, model.ShippingServiceGround, updated[0].ShippingService)
}

func TestBulkUpdateInvalidStatus(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.UserOwner(1)
	record := seedShipment(t, database, owner, 1, 0)

	_, err := svc.BulkUpdate(owner, []uint{record.ID}, ShipmentPatch{Status: strPtr("shipped")})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBulkUpdateBroadcast(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.SessionOwner("s1")
	first := seedShipment(t, database, owner, 1, 0)
	second := seedShipment(t, database, owner, 1, 0)

	updated, err := svc.BulkUpdate(owner, []uint{first.ID, second.ID}, ShipmentPatch{
		ToCity:  strPtr("Denver"),
		ToState: strPtr("CO"),
	})
	require.NoError(t, err)
	for _, record := range updated {
		assert.Equal(t, "Denver", record.ToCity)
		assert.Equal(t, "CO", record.ToState)
	}
}

func TestUpdateShipmentRecomputesPriceOnServiceChange(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.UserOwner(1)
	record := seedShipment(t, database, owner, 1, 0)

	updated, err := svc.UpdateShipment(owner, record.ID, ShipmentPatch{
		ShippingService: strPtr(model.ShippingServicePriority),
	})
	require.NoError(t, err)
	assert.InDelta(t, 6.60, updated.ShippingPrice, 0.0001)
}

func TestUpdateShipmentNotFound(t *testing.T) {
	svc, _ := setupShipmentService(t)

	_, err := svc.UpdateShipment(model.UserOwner(1), 999, ShipmentPatch{ToCity: strPtr("Denver")})
	assert.ErrorIs(t, err, ErrShipmentNotFound)
}

func TestCreateShipmentStampsDefaults(t *testing.T) {
	svc, _ := setupShipmentService(t)

	owner := model.SessionOwner("s1")
	record := model.ShipmentRecord{
		ToFirstName: "John",
		WeightLbs:   1,
	}
	require.NoError(t, svc.CreateShipment(owner, &record))

	assert.Equal(t, model.ShippingServiceGround, record.ShippingService)
	assert.Equal(t, model.ShipmentStatusPending, record.Status)
	assert.InDelta(t, 3.30, record.ShippingPrice, 0.0001)
	assert.Equal(t, "s1", record.SessionID)
}

func TestDeleteShipmentIdempotence(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.UserOwner(1)
	record := seedShipment(t, database, owner, 1, 0)

	require.NoError(t, svc.DeleteShipment(owner, record.ID))
	assert.ErrorIs(t, svc.DeleteShipment(owner, record.ID), ErrShipmentNotFound)
}

func TestBulkDeleteTwice(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.UserOwner(1)
	first := seedShipment(t, database, owner, 1, 0)
	second := seedShipment(t, database, owner, 1, 0)
	ids := []uint{first.ID, second.ID}

	deleted, err := svc.BulkDelete(owner, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = svc.BulkDelete(owner, ids)
	assert.ErrorIs(t, err, ErrNoShipmentsFound)
}

func TestDeleteAllShipments(t *testing.T) {
	svc, database := setupShipmentService(t)

	owner := model.SessionOwner("s1")
	seedShipment(t, database, owner, 1, 0)
	seedShipment(t, database, owner, 1, 0)
	seedShipment(t, database, model.SessionOwner("other"), 1, 0)

	deleted, err := svc.DeleteAllShipments(owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	records, err := svc.ListShipments(model.SessionOwner("other"))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
