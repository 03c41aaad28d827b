package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/domain/checkout"
	"go.uber.org/zap"
)

// DeliveryReconcilerConfig holds configuration for the delivery reconciler
type DeliveryReconcilerConfig struct {
	// Interval is how often the reconciler scans for stale grants
	Interval time.Duration

	// AdvanceAfter is how long a grant sits in a non-terminal delivery
	// stage before the reconciler moves it forward
	AdvanceAfter time.Duration

	// BatchSize caps how many grants one pass advances
	BatchSize int

	// ActivityLookback is the trailing window checked for recent webhook
	// activity; a quiet window with nothing stale lets the pass exit early
	ActivityLookback time.Duration
}

// DefaultDeliveryReconcilerConfig returns default reconciler configuration
func DefaultDeliveryReconcilerConfig() DeliveryReconcilerConfig {
	return DeliveryReconcilerConfig{
		Interval:         time.Minute,
		AdvanceAfter:     15 * time.Minute,
		BatchSize:        100,
		ActivityLookback: 24 * time.Hour,
	}
}

// DeliveryReconciler advances granted items through the delivery lifecycle.
// Delivery progression is simulated rather than tracked against a carrier,
// so the reconciler is deliberately lossy: a pass that crashes or loses a
// guarded update is corrected by the next one. The grant rows themselves are
// never touched beyond the delivery_status column.
type DeliveryReconciler struct {
	config    DeliveryReconcilerConfig
	grantRepo armory.GrantRepository
	eventRepo checkout.WebhookEventRepository
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewDeliveryReconciler creates a new delivery reconciler
func NewDeliveryReconciler(
	config DeliveryReconcilerConfig,
	grantRepo armory.GrantRepository,
	eventRepo checkout.WebhookEventRepository,
	logger *zap.Logger,
) *DeliveryReconciler {
	return &DeliveryReconciler{
		config:    config,
		grantRepo: grantRepo,
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// Start starts the reconciliation loop
func (r *DeliveryReconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = true
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.runLoop(ctx)

	r.logger.Info("Delivery reconciler started",
		zap.Duration("interval", r.config.Interval),
		zap.Duration("advance_after", r.config.AdvanceAfter),
		zap.Int("batch_size", r.config.BatchSize),
	)

	return nil
}

// Stop stops the reconciliation loop
func (r *DeliveryReconciler) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Delivery reconciler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop runs reconciliation passes until the context is cancelled
func (r *DeliveryReconciler) runLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single reconciliation pass
func (r *DeliveryReconciler) RunOnce(ctx context.Context) {
	now := time.Now()

	recent, err := r.eventRepo.CountProcessedSince(ctx, now.Add(-r.config.ActivityLookback))
	if err != nil {
		r.logger.Error("Failed to check recent webhook activity", zap.Error(err))
		return
	}

	stale, err := r.grantRepo.FindStale(ctx, now.Add(-r.config.AdvanceAfter), r.config.BatchSize)
	if err != nil {
		r.logger.Error("Failed to find stale grants", zap.Error(err))
		return
	}

	if len(stale) == 0 {
		if recent == 0 {
			r.logger.Debug("No stale grants and no recent activity, skipping pass")
		}
		return
	}

	advanced := 0
	for i := range stale {
		grant := &stale[i]
		if !grant.AdvanceDelivery() {
			continue
		}

		ok, err := r.grantRepo.UpdateDeliveryStatus(ctx, grant.ID, grant.DeliveryStatus)
		if err != nil {
			r.logger.Error("Failed to advance grant delivery",
				zap.String("grant_id", grant.ID.String()),
				zap.String("target_status", grant.DeliveryStatus.String()),
				zap.Error(err))
			continue
		}
		if ok {
			advanced++
		}
	}

	r.logger.Info("Delivery reconciliation pass complete",
		zap.Int("stale", len(stale)),
		zap.Int("advanced", advanced),
		zap.Int64("recent_events", recent),
	)
}
