package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedGrant persists a grant row directly, bypassing the fulfillment path
func seedGrant(t *testing.T, db *gorm.DB, userID uuid.UUID, sessionID, itemID string, unitNo int, status armory.DeliveryStatus, updatedAt time.Time) uuid.UUID {
	grant, err := armory.NewInventoryGrant(userID, uuid.New(), sessionID, itemID, "Item "+itemID, unitNo)
	require.NoError(t, err)
	grant.DeliveryStatus = status
	grant.UpdatedAt = updatedAt

	var model models.InventoryGrantModel
	model.FromDomain(grant)
	require.NoError(t, db.Create(&model).Error)
	return grant.ID
}

func TestGormGrantRepository_UpdateDeliveryStatus(t *testing.T) {
	t.Run("advances one stage forward", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		userID := uuid.New()
		grantID := seedGrant(t, db, userID, "cs_adv", "prod_1", 1, armory.DeliveryStatusGranted, time.Now())

		repo := NewGormGrantRepository(db)
		advanced, err := repo.UpdateDeliveryStatus(context.Background(), grantID, armory.DeliveryStatusInTransit)
		require.NoError(t, err)
		assert.True(t, advanced)

		grants, err := repo.FindByUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, grants, 1)
		assert.Equal(t, armory.DeliveryStatusInTransit, grants[0].DeliveryStatus)
	})

	t.Run("never moves a grant backwards", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		userID := uuid.New()
		grantID := seedGrant(t, db, userID, "cs_back", "prod_1", 1, armory.DeliveryStatusDelivered, time.Now())

		repo := NewGormGrantRepository(db)
		advanced, err := repo.UpdateDeliveryStatus(context.Background(), grantID, armory.DeliveryStatusInTransit)
		require.NoError(t, err)
		assert.False(t, advanced)

		grants, err := repo.FindByUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, grants, 1)
		assert.Equal(t, armory.DeliveryStatusDelivered, grants[0].DeliveryStatus)
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		repo := NewGormGrantRepository(db)

		_, err := repo.UpdateDeliveryStatus(context.Background(), uuid.New(), armory.DeliveryStatus("SOMEWHERE"))
		assert.ErrorIs(t, err, armory.ErrInvalidDeliveryStatus)
	})
}

func TestGormGrantRepository_FindStale(t *testing.T) {
	db := setupLedgerTestDB(t)
	userID := uuid.New()
	cutoff := time.Now().Add(-time.Hour)

	staleID := seedGrant(t, db, userID, "cs_stale", "prod_1", 1, armory.DeliveryStatusGranted, cutoff.Add(-time.Hour))
	seedGrant(t, db, userID, "cs_fresh", "prod_2", 1, armory.DeliveryStatusGranted, time.Now())
	seedGrant(t, db, userID, "cs_done", "prod_3", 1, armory.DeliveryStatusDelivered, cutoff.Add(-2*time.Hour))

	repo := NewGormGrantRepository(db)
	stale, err := repo.FindStale(context.Background(), cutoff, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, staleID, stale[0].ID)
}

func TestGormGrantRepository_UniqueUnitConstraint(t *testing.T) {
	db := setupLedgerTestDB(t)
	userID := uuid.New()
	seedGrant(t, db, userID, "cs_unique", "prod_1", 1, armory.DeliveryStatusGranted, time.Now())

	grant, err := armory.NewInventoryGrant(userID, uuid.New(), "cs_unique", "prod_1", "Item prod_1", 1)
	require.NoError(t, err)

	var model models.InventoryGrantModel
	model.FromDomain(grant)
	err = db.Create(&model).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}
