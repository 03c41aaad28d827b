package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/armory/backend/internal/domain/checkout"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormWebhookEventRepository implements WebhookEventRepository using GORM
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewGormWebhookEventRepository creates a new GormWebhookEventRepository
func NewGormWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// FindByEventID finds a dedup record by the processor's event ID
func (r *GormWebhookEventRepository) FindByEventID(ctx context.Context, eventID string) (*checkout.WebhookEvent, error) {
	var model models.WebhookEventModel
	if err := r.db.WithContext(ctx).
		First(&model, "event_id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountProcessedSince reports how many events were processed in the trailing window
func (r *GormWebhookEventRepository) CountProcessedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WebhookEventModel{}).
		Where("processed_at IS NOT NULL AND processed_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
