package armory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInventoryGrant(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("creates grant in GRANTED state", func(t *testing.T) {
		grant, err := NewInventoryGrant(userID, orderID, "cs_test_123", "prod_axe", "Battle Axe", 1)
		require.NoError(t, err)
		require.NotNil(t, grant)

		assert.Equal(t, userID, grant.UserID)
		assert.Equal(t, orderID, grant.OrderID)
		assert.Equal(t, "cs_test_123", grant.StripeSessionID)
		assert.Equal(t, "prod_axe", grant.ItemID)
		assert.Equal(t, "Battle Axe", grant.Title)
		assert.Equal(t, 1, grant.UnitNo)
		assert.Equal(t, DeliveryStatusGranted, grant.DeliveryStatus)
		assert.NotEmpty(t, grant.ID)
		assert.False(t, grant.GrantedAt.IsZero())
	})

	t.Run("fails with nil user", func(t *testing.T) {
		_, err := NewInventoryGrant(uuid.Nil, orderID, "cs_test_123", "prod_axe", "Battle Axe", 1)
		require.Error(t, err)
	})

	t.Run("fails with empty session ID", func(t *testing.T) {
		_, err := NewInventoryGrant(userID, orderID, "", "prod_axe", "Battle Axe", 1)
		require.Error(t, err)
	})

	t.Run("fails with empty item ID", func(t *testing.T) {
		_, err := NewInventoryGrant(userID, orderID, "cs_test_123", "", "Battle Axe", 1)
		require.Error(t, err)
	})

	t.Run("fails with non-positive unit number", func(t *testing.T) {
		_, err := NewInventoryGrant(userID, orderID, "cs_test_123", "prod_axe", "Battle Axe", 0)
		require.Error(t, err)
	})
}

func TestGrantAdvanceDelivery(t *testing.T) {
	grant, err := NewInventoryGrant(uuid.New(), uuid.New(), "cs_test_adv", "prod_axe", "Battle Axe", 1)
	require.NoError(t, err)

	assert.True(t, grant.AdvanceDelivery())
	assert.Equal(t, DeliveryStatusInTransit, grant.DeliveryStatus)

	assert.True(t, grant.AdvanceDelivery())
	assert.Equal(t, DeliveryStatusDelivered, grant.DeliveryStatus)

	// DELIVERED is terminal
	assert.False(t, grant.AdvanceDelivery())
	assert.Equal(t, DeliveryStatusDelivered, grant.DeliveryStatus)
}

func TestDeliveryStatusNext(t *testing.T) {
	assert.Equal(t, DeliveryStatusInTransit, DeliveryStatusGranted.Next())
	assert.Equal(t, DeliveryStatusDelivered, DeliveryStatusInTransit.Next())
	assert.Equal(t, DeliveryStatusDelivered, DeliveryStatusDelivered.Next())
}

func TestDeliveryStatusRank(t *testing.T) {
	assert.Equal(t, 0, DeliveryStatusGranted.Rank())
	assert.Equal(t, 1, DeliveryStatusInTransit.Rank())
	assert.Equal(t, 2, DeliveryStatusDelivered.Rank())
	assert.Equal(t, -1, DeliveryStatus("LOST").Rank())
}

func TestDeliveryStatusIsValid(t *testing.T) {
	assert.True(t, DeliveryStatusGranted.IsValid())
	assert.True(t, DeliveryStatusInTransit.IsValid())
	assert.True(t, DeliveryStatusDelivered.IsValid())
	assert.False(t, DeliveryStatus("").IsValid())
	assert.False(t, DeliveryStatus("RETURNED").IsValid())
}
