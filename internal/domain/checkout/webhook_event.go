package checkout

import (
	"time"

	"github.com/armory/backend/internal/domain/shared"
)

// WebhookEvent is the deduplication record for a processor notification.
// One row exists per processor event ID; the row is inserted inside the same
// transaction as the ledger mutations it guards, so a half-committed
// fulfillment never leaves the event visible as processed.
type WebhookEvent struct {
	EventID     string
	Type        string
	ReceivedAt  time.Time
	ProcessedAt *time.Time
}

// NewWebhookEvent creates a dedup record for a verified processor event
func NewWebhookEvent(eventID, eventType string) (*WebhookEvent, error) {
	if eventID == "" {
		return nil, shared.NewDomainError("INVALID_EVENT", "Event ID cannot be empty")
	}
	return &WebhookEvent{
		EventID:    eventID,
		Type:       eventType,
		ReceivedAt: time.Now(),
	}, nil
}

// MarkProcessed stamps the record as fully processed
func (e *WebhookEvent) MarkProcessed() {
	now := time.Now()
	e.ProcessedAt = &now
}
