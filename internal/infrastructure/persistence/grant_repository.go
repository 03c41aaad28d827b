package persistence

import (
	"context"
	"time"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGrantRepository implements GrantRepository using GORM
type GormGrantRepository struct {
	db *gorm.DB
}

// NewGormGrantRepository creates a new GormGrantRepository
func NewGormGrantRepository(db *gorm.DB) *GormGrantRepository {
	return &GormGrantRepository{db: db}
}

// FindByUser returns a user's grants ordered by grant time then unit
func (r *GormGrantRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]armory.InventoryGrant, error) {
	var rows []models.InventoryGrantModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("granted_at DESC, item_id ASC, unit_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainGrants(rows), nil
}

// FindByStripeSessionID returns the grants produced by one paid session
func (r *GormGrantRepository) FindByStripeSessionID(ctx context.Context, sessionID string) ([]armory.InventoryGrant, error) {
	var rows []models.InventoryGrantModel
	if err := r.db.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		Order("item_id ASC, unit_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainGrants(rows), nil
}

// FindStale returns grants that have not reached terminal delivery status
// and have not been touched since the cutoff
func (r *GormGrantRepository) FindStale(ctx context.Context, before time.Time, limit int) ([]armory.InventoryGrant, error) {
	var rows []models.InventoryGrantModel
	if err := r.db.WithContext(ctx).
		Where("delivery_status <> ? AND updated_at < ?", armory.DeliveryStatusDelivered.String(), before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainGrants(rows), nil
}

// UpdateDeliveryStatus advances a grant's delivery status. The WHERE clause
// guards rank order so a concurrent pass can never move a grant backwards;
// RowsAffected zero means the guard rejected the write.
func (r *GormGrantRepository) UpdateDeliveryStatus(ctx context.Context, grantID uuid.UUID, status armory.DeliveryStatus) (bool, error) {
	if !status.IsValid() {
		return false, armory.ErrInvalidDeliveryStatus
	}

	earlier := make([]string, 0, 2)
	for _, s := range []armory.DeliveryStatus{armory.DeliveryStatusGranted, armory.DeliveryStatusInTransit} {
		if s.Rank() < status.Rank() {
			earlier = append(earlier, s.String())
		}
	}
	if len(earlier) == 0 {
		return false, nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.InventoryGrantModel{}).
		Where("id = ? AND delivery_status IN ?", grantID, earlier).
		Updates(map[string]interface{}{
			"delivery_status": status.String(),
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func toDomainGrants(rows []models.InventoryGrantModel) []armory.InventoryGrant {
	grants := make([]armory.InventoryGrant, 0, len(rows))
	for i := range rows {
		grants = append(grants, *rows[i].ToDomain())
	}
	return grants
}
