package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/domain/checkout"
	"github.com/armory/backend/internal/domain/fulfillment"
	"github.com/armory/backend/internal/domain/progression"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Transaction-local sentinels. They abort the enclosing transaction so that
// nothing written so far becomes visible; the outcome captured alongside
// them tells the caller what happened.
var (
	errCommitDuplicate      = errors.New("commit: duplicate")
	errCommitUnknownSession = errors.New("commit: unknown session")
)

// GormFulfillmentLedger implements fulfillment.Ledger using GORM. Every
// commit runs in one database transaction; ownership of a mutation is won
// by inserting the webhook dedup row, and the per-unit and per-session
// unique constraints on the grant and XP tables are the final authority
// against double application.
type GormFulfillmentLedger struct {
	db *gorm.DB
}

// NewGormFulfillmentLedger creates a new GormFulfillmentLedger
func NewGormFulfillmentLedger(db *gorm.DB) *GormFulfillmentLedger {
	return &GormFulfillmentLedger{db: db}
}

// CommitPayment applies a payment-succeeded notice: dedup record, identity
// binding, per-unit inventory grants, XP credit, progress upsert and the
// order status advance, all in one transaction
func (l *GormFulfillmentLedger) CommitPayment(ctx context.Context, notice fulfillment.PaymentNotice) (*fulfillment.Outcome, error) {
	outcome := &fulfillment.Outcome{Result: fulfillment.ResultApplied}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.insertDedupRecord(tx, notice.EventID, notice.EventType); err != nil {
			return err
		}

		order, err := l.loadOrderBySession(tx, notice.StripeSessionID)
		if err != nil {
			return err
		}
		outcome.OrderID = order.ID
		outcome.UserID = order.UserID

		switch order.Status {
		case checkout.OrderStatusFulfilled:
			// Same session confirmed through a second event type. The
			// dedup row is kept so this event is never looked at again.
			outcome.Result = fulfillment.ResultDuplicate
			return nil
		case checkout.OrderStatusFailed:
			outcome.Result = fulfillment.ResultStateConflict
			return nil
		}

		if notice.AmountTotal > 0 && notice.AmountTotal != order.AmountTotal {
			outcome.Result = fulfillment.ResultAmountMismatch
			return nil
		}

		if order.UserID == nil && notice.UserID != nil {
			if err := order.BindUser(*notice.UserID); err != nil {
				return err
			}
			if err := tx.Model(&models.OrderModel{}).
				Where("id = ?", order.ID).
				Update("user_id", *notice.UserID).Error; err != nil {
				return err
			}
			outcome.UserID = order.UserID
		}

		now := time.Now()

		if order.UserID == nil {
			// Payment is real even when no identity was carried through
			// checkout. Record it; grants and XP have nowhere to go.
			if err := l.advanceOrderStatus(tx, order, checkout.OrderStatusPaid, now); err != nil {
				return err
			}
			outcome.Result = fulfillment.ResultUnboundUser
			return nil
		}

		granted, err := l.insertGrants(tx, order)
		if err != nil {
			return err
		}
		outcome.UnitsGranted = granted

		xp, err := l.insertXPCredit(tx, order, now)
		if err != nil {
			return err
		}
		outcome.XPAwarded = xp

		return l.advanceOrderStatus(tx, order, checkout.OrderStatusFulfilled, now)
	})

	return l.resolveOutcome(outcome, err)
}

// CommitFailure applies a payment-failed or session-expired notice
func (l *GormFulfillmentLedger) CommitFailure(ctx context.Context, notice fulfillment.FailureNotice) (*fulfillment.Outcome, error) {
	outcome := &fulfillment.Outcome{Result: fulfillment.ResultApplied}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.insertDedupRecord(tx, notice.EventID, notice.EventType); err != nil {
			return err
		}

		order, err := l.loadOrderBySession(tx, notice.StripeSessionID)
		if err != nil {
			return err
		}
		outcome.OrderID = order.ID
		outcome.UserID = order.UserID

		switch order.Status {
		case checkout.OrderStatusFailed:
			outcome.Result = fulfillment.ResultDuplicate
			return nil
		case checkout.OrderStatusFulfilled:
			// A failure notice after fulfillment contradicts the ledger;
			// the fulfillment stands and the event is only recorded.
			outcome.Result = fulfillment.ResultStateConflict
			return nil
		}

		now := time.Now()
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND status IN ?", order.ID,
				[]string{checkout.OrderStatusCreated.String(), checkout.OrderStatusPaid.String()}).
			Updates(map[string]interface{}{
				"status":         checkout.OrderStatusFailed.String(),
				"failure_reason": notice.Reason,
				"failed_at":      now,
				"updated_at":     now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errCommitDuplicate
		}
		return nil
	})

	return l.resolveOutcome(outcome, err)
}

// insertDedupRecord claims the event by inserting its dedup row. A unique
// violation means another delivery already owns or owned this event.
func (l *GormFulfillmentLedger) insertDedupRecord(tx *gorm.DB, eventID, eventType string) error {
	record, err := checkout.NewWebhookEvent(eventID, eventType)
	if err != nil {
		return err
	}
	record.MarkProcessed()

	var model models.WebhookEventModel
	model.FromDomain(record)
	if err := tx.Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return errCommitDuplicate
		}
		return fmt.Errorf("failed to insert webhook dedup record: %w", err)
	}
	return nil
}

func (l *GormFulfillmentLedger) loadOrderBySession(tx *gorm.DB, sessionID string) (*checkout.Order, error) {
	var model models.OrderModel
	if err := tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("stripe_session_id = ?", sessionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCommitUnknownSession
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// insertGrants writes one grant row per purchased unit. The composite
// unique index decides races between concurrent commits for the same
// session arriving under different event IDs.
func (l *GormFulfillmentLedger) insertGrants(tx *gorm.DB, order *checkout.Order) (int, error) {
	rows := make([]models.InventoryGrantModel, 0, order.UnitCount())
	for _, item := range order.Items {
		for unit := 1; unit <= item.Quantity; unit++ {
			grant, err := armory.NewInventoryGrant(
				*order.UserID, order.ID, order.StripeSessionID,
				item.ItemID, item.Title, unit,
			)
			if err != nil {
				return 0, err
			}
			var model models.InventoryGrantModel
			model.FromDomain(grant)
			rows = append(rows, model)
		}
	}

	if len(rows) == 0 {
		return 0, nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, errCommitDuplicate
		}
		return 0, fmt.Errorf("failed to insert inventory grants: %w", err)
	}
	return len(rows), nil
}

// insertXPCredit writes the per-session XP credit and folds it into the
// user's running total
func (l *GormFulfillmentLedger) insertXPCredit(tx *gorm.DB, order *checkout.Order, now time.Time) (int64, error) {
	amount := progression.XPForAmount(order.AmountTotal)

	credit, err := progression.NewXPCredit(*order.UserID, order.StripeSessionID, amount)
	if err != nil {
		return 0, err
	}

	var model models.XPCreditModel
	model.FromDomain(credit)
	if err := tx.Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, errCommitDuplicate
		}
		return 0, fmt.Errorf("failed to insert xp credit: %w", err)
	}

	progress := models.UserProgressModel{
		UserID:    *order.UserID,
		XP:        amount,
		UpdatedAt: now,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"xp":         gorm.Expr("user_progress.xp + excluded.xp"),
			"updated_at": now,
		}),
	}).Create(&progress).Error; err != nil {
		return 0, fmt.Errorf("failed to upsert user progress: %w", err)
	}

	return amount, nil
}

// advanceOrderStatus moves the order forward with a guarded update. Losing
// the guard means a concurrent commit already advanced the order.
func (l *GormFulfillmentLedger) advanceOrderStatus(tx *gorm.DB, order *checkout.Order, target checkout.OrderStatus, now time.Time) error {
	updates := map[string]interface{}{
		"status":     target.String(),
		"updated_at": now,
		"paid_at":    gorm.Expr("COALESCE(paid_at, ?)", now),
	}
	if target == checkout.OrderStatusFulfilled {
		updates["fulfilled_at"] = now
	}

	result := tx.Model(&models.OrderModel{}).
		Where("id = ? AND status IN ?", order.ID,
			[]string{checkout.OrderStatusCreated.String(), checkout.OrderStatusPaid.String()}).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errCommitDuplicate
	}
	return nil
}

// resolveOutcome maps transaction sentinels back to outcomes. Sentinel
// aborts are successful no-ops from the caller's point of view; anything
// else is a real storage failure the caller should surface as transient.
func (l *GormFulfillmentLedger) resolveOutcome(outcome *fulfillment.Outcome, err error) (*fulfillment.Outcome, error) {
	switch {
	case err == nil:
		return outcome, nil
	case errors.Is(err, errCommitDuplicate):
		return &fulfillment.Outcome{Result: fulfillment.ResultDuplicate, OrderID: outcome.OrderID, UserID: outcome.UserID}, nil
	case errors.Is(err, errCommitUnknownSession):
		return &fulfillment.Outcome{Result: fulfillment.ResultUnknownSession}, nil
	case errors.Is(err, shared.ErrInvalidState):
		return &fulfillment.Outcome{Result: fulfillment.ResultStateConflict, OrderID: outcome.OrderID, UserID: outcome.UserID}, nil
	default:
		return nil, err
	}
}
