package repository

import (
	"testing"
	"time"

	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupShipmentRepo(t *testing.T) (ShipmentRepository, *gorm.DB) {
	t.Helper()

	database, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(database)
	})

	return NewShipmentRepository(database), database
}

func seedRecord(t *testing.T, database *gorm.DB, owner model.OwnerRef, orderNo string) *model.ShipmentRecord {
	t.Helper()

	record := model.ShipmentRecord{
		SessionID:       owner.SessionToken,
		ToFirstName:     "John",
		ToLastName:      "Smith",
		OrderNo:         orderNo,
		ShippingService: model.ShippingServiceGround,
		Status:          model.ShipmentStatusPending,
	}
	record.UserID = owner.UserID
	record.ShippingPrice = record.CalculateShippingPrice()
	require.NoError(t, database.Create(&record).Error)
	return &record
}

func TestShipmentOwnerScoping(t *testing.T) {
	repo, database := setupShipmentRepo(t)

	user := model.UserOwner(1)
	session := model.SessionOwner("session-abc")

	seedRecord(t, database, user, "U-1")
	seedRecord(t, database, user, "U-2")
	seedRecord(t, database, session, "S-1")

	userRecords, err := repo.FindByOwner(user)
	require.NoError(t, err)
	assert.Len(t, userRecords, 2)

	sessionRecords, err := repo.FindByOwner(session)
	require.NoError(t, err)
	require.Len(t, sessionRecords, 1)
	assert.Equal(t, "S-1", sessionRecords[0].OrderNo)
}

func TestFindByIDsAndOwnerPartialResolve(t *testing.T) {
	repo, database := setupShipmentRepo(t)

	owner := model.UserOwner(1)
	other := model.UserOwner(2)

	mine := seedRecord(t, database, owner, "MINE")
	foreign := seedRecord(t, database, other, "FOREIGN")

	records, err := repo.FindByIDsAndOwner([]uint{mine.ID, foreign.ID}, owner)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, mine.ID, records[0].ID)
}

func TestInsertBatchAndDeleteForOwner(t *testing.T) {
	repo, database := setupShipmentRepo(t)

	session := model.SessionOwner("session-xyz")
	seedRecord(t, database, session, "OLD-1")
	seedRecord(t, database, session, "OLD-2")

	// replace semantics: delete the owner's records, then insert the new batch
	err := database.Transaction(func(tx *gorm.DB) error {
		if _, err := repo.DeleteForOwner(tx, session); err != nil {
			return err
		}
		return repo.InsertBatch(tx, []model.ShipmentRecord{
			{SessionID: session.SessionToken, ToFirstName: "A", OrderNo: "NEW-1"},
		})
	})
	require.NoError(t, err)

	records, err := repo.FindByOwner(session)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "NEW-1", records[0].OrderNo)
}

func TestUpdateFieldsBroadcast(t *testing.T) {
	repo, database := setupShipmentRepo(t)

	owner := model.UserOwner(1)
	first := seedRecord(t, database, owner, "A")
	second := seedRecord(t, database, owner, "B")

	err := repo.UpdateFields(nil, []uint{first.ID, second.ID}, owner, map[string]interface{}{
		"to_city": "Denver",
	})
	require.NoError(t, err)

	records, err := repo.FindByOwner(owner)
	require.NoError(t, err)
	for _, record := range records {
		assert.Equal(t, "Denver", record.ToCity)
	}
}

func TestDeleteByIDAndOwner(t *testing.T) {
	repo, database := setupShipmentRepo(t)

	owner := model.UserOwner(1)
	record := seedRecord(t, database, owner, "DEL")

	deleted, err := repo.DeleteByIDAndOwner(record.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// second delete affects nothing
	deleted, err = repo.DeleteByIDAndOwner(record.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestDeleteByIDAndOwnerForeignRecord(t *testing.T) {
	repo, database := setupShipmentRepo(t)

	foreign := seedRecord(t, database, model.UserOwner(2), "FOREIGN")

	deleted, err := repo.DeleteByIDAndOwner(foreign.ID, model.UserOwner(1))
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestDeleteStaleSessionRecords(t *testing.T) {
	repo, database := setupShipmentRepo(t)

	stale := seedRecord(t, database, model.SessionOwner("old-session"), "STALE")
	require.NoError(t, database.Model(stale).
		Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	seedRecord(t, database, model.SessionOwner("new-session"), "FRESH")
	userOwned := seedRecord(t, database, model.UserOwner(1), "DURABLE")
	require.NoError(t, database.Model(userOwned).
		Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	deleted, err := repo.DeleteStaleSessionRecords(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, database.Model(&model.ShipmentRecord{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)
}

func TestUpdateStatus(t *testing.T) {
	repo, database := setupShipmentRepo(t)

	owner := model.SessionOwner("s1")
	first := seedRecord(t, database, owner, "A")
	second := seedRecord(t, database, owner, "B")

	err := repo.UpdateStatus(nil, []uint{first.ID, second.ID}, owner, model.ShipmentStatusProcessed)
	require.NoError(t, err)

	records, err := repo.FindByOwner(owner)
	require.NoError(t, err)
	for _, record := range records {
		assert.Equal(t, model.ShipmentStatusProcessed, record.Status)
	}
}
