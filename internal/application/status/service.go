package status

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/domain/checkout"
	"github.com/armory/backend/internal/domain/progression"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service serves the polled status read models. The database is the source
// of truth; the session cache only shaves load off pollers and is allowed to
// be a few seconds stale, never to move backwards.
type Service struct {
	orderRepo checkout.OrderRepository
	grantRepo armory.GrantRepository
	xpRepo    progression.XPRepository
	cache     shared.StatusCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// ServiceConfig holds the dependencies for building a status Service
type ServiceConfig struct {
	OrderRepo checkout.OrderRepository
	GrantRepo armory.GrantRepository
	XPRepo    progression.XPRepository
	Cache     shared.StatusCache // nil disables caching
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

// NewService creates a status service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Service{
		orderRepo: cfg.OrderRepo,
		grantRepo: cfg.GrantRepo,
		xpRepo:    cfg.XPRepo,
		cache:     cfg.Cache,
		cacheTTL:  ttl,
		logger:    logger,
	}
}

// GetSessionStatus returns the status read model for one checkout session
func (s *Service) GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatusResponse, error) {
	if sessionID == "" {
		return nil, shared.ErrNotFound
	}

	if s.cache != nil {
		payload, ok, err := s.cache.Get(ctx, sessionID)
		if err != nil {
			s.logger.Warn("Status cache read failed, falling back to database",
				zap.String("session_id", sessionID),
				zap.Error(err))
		} else if ok {
			var resp SessionStatusResponse
			if err := json.Unmarshal(payload, &resp); err == nil {
				return &resp, nil
			}
			// corrupt entry, drop it and rebuild from the database
			_ = s.cache.Invalidate(ctx, sessionID)
		}
	}

	resp, rank, err := s.buildSessionStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(resp)
		if err == nil {
			if err := s.cache.SetIfNewer(ctx, sessionID, rank, payload, s.cacheTTL); err != nil {
				s.logger.Warn("Status cache write failed",
					zap.String("session_id", sessionID),
					zap.Error(err))
			}
		}
	}

	return resp, nil
}

// buildSessionStatus composes the session read model from the database and
// returns it together with the lifecycle rank it was rendered from
func (s *Service) buildSessionStatus(ctx context.Context, sessionID string) (*SessionStatusResponse, int, error) {
	order, err := s.orderRepo.FindByStripeSessionID(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}

	items := make([]SessionItemStatus, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, SessionItemStatus{
			ItemID:    item.ItemID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	resp := &SessionStatusResponse{
		SessionID:     order.StripeSessionID,
		OrderID:       order.ID,
		Status:        order.Status.String(),
		AmountTotal:   order.AmountTotal,
		Currency:      order.Currency,
		Items:         items,
		FailureReason: order.FailureReason,
	}

	if order.Status == checkout.OrderStatusFulfilled {
		grants, err := s.grantRepo.FindByStripeSessionID(ctx, sessionID)
		if err != nil {
			return nil, 0, err
		}
		resp.UnitsGranted = len(grants)

		credit, err := s.xpRepo.FindCreditBySessionID(ctx, sessionID)
		if err == nil {
			resp.XPAwarded = credit.Amount
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, 0, err
		}
	}

	return resp, order.Status.Rank(), nil
}

// GetUserStatus returns the authenticated user's XP and inventory.
// Always served from the database: the per-user view fans in many sessions
// and is not polled tightly enough to be worth a cache.
func (s *Service) GetUserStatus(ctx context.Context, userID uuid.UUID) (*UserStatusResponse, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	progress, err := s.xpRepo.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	grants, err := s.grantRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserStatusResponse{
		UserID:    userID,
		XP:        progress.XP,
		Inventory: toInventoryEntries(grants),
	}, nil
}
