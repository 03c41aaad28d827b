package handler

import (
	"errors"
	"io"
	"net/http"

	fulfillmentapp "github.com/armory/backend/internal/application/fulfillment"
	"github.com/gin-gonic/gin"
)

// Maximum webhook payload size (64KB - Stripe webhooks are typically small)
const maxWebhookPayloadSize = 65536

// StripeWebhookHandler handles the Stripe webhook endpoint. Called by
// Stripe, not by users, so it is unauthenticated: the signature over the raw
// body is the authentication.
type StripeWebhookHandler struct {
	BaseHandler
	webhookService *fulfillmentapp.WebhookService
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(webhookService *fulfillmentapp.WebhookService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		webhookService: webhookService,
	}
}

// StripeWebhookResponse represents the response for a webhook delivery
type StripeWebhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Message   string `json:"message,omitempty"`
}

// HandleStripeWebhook verifies and applies one webhook delivery.
// Status codes steer Stripe's retry behavior: 400 for deliveries that can
// never succeed (bad signature, malformed payload), 500 for transient
// storage failures worth retrying, 200 for everything applied or safely
// ignored.
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// Signature verification needs the raw bytes, so the body is read here
	// rather than bound. The limit guards against oversized junk.
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, StripeWebhookResponse{
			Received: false,
			Message:  "Failed to read request body",
		})
		return
	}

	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, StripeWebhookResponse{
			Received: false,
			Message:  "Payload too large",
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, StripeWebhookResponse{
			Received: false,
			Message:  "Missing Stripe-Signature header",
		})
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		if errors.Is(err, fulfillmentapp.ErrInvalidSignature) || errors.Is(err, fulfillmentapp.ErrMalformedEvent) {
			c.JSON(http.StatusBadRequest, StripeWebhookResponse{
				Received: false,
				Message:  "Webhook delivery rejected",
			})
			return
		}

		// Transient failure: non-2xx makes Stripe redeliver, and redelivery
		// is safe because commits are idempotent.
		c.JSON(http.StatusInternalServerError, StripeWebhookResponse{
			Received: false,
			Message:  "Webhook processing failed",
		})
		return
	}

	c.JSON(http.StatusOK, StripeWebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Outcome:   result.Outcome,
		Message:   result.Message,
	})
}

// RegisterRoutes registers webhook routes
func (h *StripeWebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/stripe", h.HandleStripeWebhook)
	}
}
