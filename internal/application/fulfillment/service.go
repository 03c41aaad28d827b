package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/armory/backend/internal/domain/fulfillment"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// Stripe event types the fulfillment pipeline reacts to
const (
	EventCheckoutCompleted      = "checkout.session.completed"
	EventAsyncPaymentSucceeded  = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed     = "checkout.session.async_payment_failed"
	EventCheckoutSessionExpired = "checkout.session.expired"
)

// WebhookResult contains the result of processing a webhook delivery
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Outcome   string `json:"outcome"`
	Message   string `json:"message,omitempty"`
}

// WebhookService turns verified Stripe deliveries into ledger commits. The
// signature check runs over the raw body before anything is parsed; the
// Redis idempotency store short-circuits replays cheaply, and the durable
// dedup constraint inside the ledger decides races it cannot see.
type WebhookService struct {
	webhookSecret    string
	ledger           fulfillment.Ledger
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	logger           *zap.Logger
}

// WebhookServiceConfig contains configuration for WebhookService
type WebhookServiceConfig struct {
	WebhookSecret    string
	Ledger           fulfillment.Ledger
	IdempotencyStore shared.IdempotencyStore
	IdempotencyCfg   shared.IdempotencyConfig
	Logger           *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	return &WebhookService{
		webhookSecret:    cfg.WebhookSecret,
		ledger:           cfg.Ledger,
		idempotencyStore: cfg.IdempotencyStore,
		idempotencyCfg:   cfg.IdempotencyCfg,
		logger:           cfg.Logger,
	}
}

// ErrInvalidSignature marks deliveries that failed signature verification
var ErrInvalidSignature = shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")

// ErrMalformedEvent marks deliveries whose payload cannot be interpreted.
// Retrying such a delivery can never succeed.
var ErrMalformedEvent = shared.NewDomainError("MALFORMED_EVENT", "Webhook event payload is malformed")

// ProcessWebhook verifies and applies one Stripe webhook delivery
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	// The event API version follows the Stripe dashboard, not the SDK pin,
	// so the version mismatch check is disabled. Signature verification is
	// unaffected.
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		// Security-relevant: either a forged delivery or a secret mismatch
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return nil, ErrInvalidSignature
	}

	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
	}

	switch string(event.Type) {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded:
		return s.handlePaymentSucceeded(ctx, event, result)
	case EventAsyncPaymentFailed, EventCheckoutSessionExpired:
		return s.handlePaymentFailed(ctx, event, result)
	default:
		s.logger.Debug("Ignoring unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Outcome = "ignored"
		result.Message = "Event type not handled"
		return result, nil
	}
}

func (s *WebhookService) handlePaymentSucceeded(ctx context.Context, event stripe.Event, result *WebhookResult) (*WebhookResult, error) {
	session, err := parseCheckoutSession(event)
	if err != nil {
		s.logger.Warn("Discarding malformed webhook event",
			zap.String("event_id", event.ID),
			zap.Error(err))
		return nil, ErrMalformedEvent
	}

	if s.isKnownDuplicate(ctx, event.ID) {
		result.Outcome = fulfillment.ResultDuplicate.String()
		return result, nil
	}

	notice := fulfillment.PaymentNotice{
		EventID:         event.ID,
		EventType:       string(event.Type),
		StripeSessionID: session.ID,
		AmountTotal:     session.AmountTotal,
		Currency:        string(session.Currency),
	}
	if userID, err := uuid.Parse(session.ClientReferenceID); err == nil && userID != uuid.Nil {
		notice.UserID = &userID
	}

	outcome, err := s.ledger.CommitPayment(ctx, notice)
	if err != nil {
		s.logger.Error("Failed to commit payment",
			zap.String("event_id", event.ID),
			zap.String("session_id", session.ID),
			zap.Error(err))
		return nil, err
	}

	s.recordOutcome(ctx, event.ID, session.ID, outcome)
	result.Outcome = outcome.Result.String()
	return result, nil
}

func (s *WebhookService) handlePaymentFailed(ctx context.Context, event stripe.Event, result *WebhookResult) (*WebhookResult, error) {
	session, err := parseCheckoutSession(event)
	if err != nil {
		s.logger.Warn("Discarding malformed webhook event",
			zap.String("event_id", event.ID),
			zap.Error(err))
		return nil, ErrMalformedEvent
	}

	if s.isKnownDuplicate(ctx, event.ID) {
		result.Outcome = fulfillment.ResultDuplicate.String()
		return result, nil
	}

	outcome, err := s.ledger.CommitFailure(ctx, fulfillment.FailureNotice{
		EventID:         event.ID,
		EventType:       string(event.Type),
		StripeSessionID: session.ID,
		Reason:          string(event.Type),
	})
	if err != nil {
		s.logger.Error("Failed to commit payment failure",
			zap.String("event_id", event.ID),
			zap.String("session_id", session.ID),
			zap.Error(err))
		return nil, err
	}

	s.recordOutcome(ctx, event.ID, session.ID, outcome)
	result.Outcome = outcome.Result.String()
	return result, nil
}

// isKnownDuplicate consults the fast-path store. A positive answer is always
// safe: events are only marked after their transaction committed.
func (s *WebhookService) isKnownDuplicate(ctx context.Context, eventID string) bool {
	if !s.idempotencyCfg.Enabled || s.idempotencyStore == nil {
		return false
	}

	processed, err := s.idempotencyStore.IsProcessed(ctx, eventID)
	if err != nil {
		s.logger.Warn("Idempotency fast path unavailable",
			zap.String("event_id", eventID),
			zap.Error(err))
		return false
	}
	if processed {
		s.logger.Info("Duplicate webhook short-circuited",
			zap.String("event_id", eventID))
	}
	return processed
}

// recordOutcome logs the commit result and, for consumed events, marks the
// fast-path store. UnknownSession is deliberately not marked: the event was
// rolled back and a later delivery may still apply it.
func (s *WebhookService) recordOutcome(ctx context.Context, eventID, sessionID string, outcome *fulfillment.Outcome) {
	switch outcome.Result {
	case fulfillment.ResultApplied:
		s.logger.Info("Fulfillment committed",
			zap.String("event_id", eventID),
			zap.String("session_id", sessionID),
			zap.Int("units_granted", outcome.UnitsGranted),
			zap.Int64("xp_awarded", outcome.XPAwarded))
	case fulfillment.ResultDuplicate:
		s.logger.Info("Duplicate webhook event ignored",
			zap.String("event_id", eventID),
			zap.String("session_id", sessionID))
	case fulfillment.ResultUnknownSession:
		s.logger.Warn("Webhook references unknown checkout session",
			zap.String("event_id", eventID),
			zap.String("session_id", sessionID))
		return
	case fulfillment.ResultUnboundUser:
		s.logger.Warn("Payment recorded without a bound user",
			zap.String("event_id", eventID),
			zap.String("session_id", sessionID),
			zap.String("order_id", outcome.OrderID.String()))
	case fulfillment.ResultAmountMismatch:
		s.logger.Warn("Processor amount disagrees with order amount",
			zap.String("event_id", eventID),
			zap.String("session_id", sessionID),
			zap.String("order_id", outcome.OrderID.String()))
	case fulfillment.ResultStateConflict:
		s.logger.Warn("Webhook event conflicts with terminal order state",
			zap.String("event_id", eventID),
			zap.String("session_id", sessionID),
			zap.String("order_id", outcome.OrderID.String()))
	}

	if s.idempotencyCfg.Enabled && s.idempotencyStore != nil {
		if _, err := s.idempotencyStore.MarkProcessed(ctx, eventID, s.idempotencyCfg.TTL); err != nil {
			s.logger.Warn("Failed to mark event in idempotency store",
				zap.String("event_id", eventID),
				zap.Error(err))
		}
	}
}

func parseCheckoutSession(event stripe.Event) (*stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("checkout session payload has no id")
	}
	return &session, nil
}
