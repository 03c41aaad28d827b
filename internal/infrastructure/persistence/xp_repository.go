package persistence

import (
	"context"
	"errors"

	"github.com/armory/backend/internal/domain/progression"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormXPRepository implements XPRepository using GORM
type GormXPRepository struct {
	db *gorm.DB
}

// NewGormXPRepository creates a new GormXPRepository
func NewGormXPRepository(db *gorm.DB) *GormXPRepository {
	return &GormXPRepository{db: db}
}

// GetProgress returns a user's running XP total. Users who never earned XP
// get a zero-valued row rather than an error.
func (r *GormXPRepository) GetProgress(ctx context.Context, userID uuid.UUID) (*progression.UserProgress, error) {
	var model models.UserProgressModel
	if err := r.db.WithContext(ctx).
		First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &progression.UserProgress{UserID: userID}, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindCreditBySessionID returns the credit row for a paid session
func (r *GormXPRepository) FindCreditBySessionID(ctx context.Context, sessionID string) (*progression.XPCredit, error) {
	var model models.XPCreditModel
	if err := r.db.WithContext(ctx).
		First(&model, "stripe_session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
