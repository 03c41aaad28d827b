package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/armory/backend/internal/domain/checkout"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStripeSessionID finds an order by the processor's session reference
func (r *GormOrderRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (*checkout.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("stripe_session_id = ?", sessionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds a user's orders, most recent first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]checkout.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]checkout.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, *rows[i].ToDomain())
	}
	return orders, nil
}

// Save creates or updates an order together with its items. A creation that
// collides on the stripe session unique index surfaces shared.ErrAlreadyExists.
func (r *GormOrderRepository) Save(ctx context.Context, order *checkout.Order) error {
	order.UpdatedAt = time.Now()

	var model models.OrderModel
	model.FromDomain(order)
	items := model.Items
	model.Items = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"updated_at", "version", "user_id", "status",
				"failure_reason", "paid_at", "fulfilled_at", "failed_at",
			}),
		}).Create(&model).Error; err != nil {
			return err
		}

		// Line items are immutable after creation; replays of already
		// persisted items are ignored.
		if len(items) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}
