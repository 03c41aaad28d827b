package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fulfillmentapp "github.com/armory/backend/internal/application/fulfillment"
	"github.com/armory/backend/internal/domain/fulfillment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const handlerWebhookSecret = "whsec_handler_test"

// stubLedger returns canned outcomes for handler-level tests
type stubLedger struct {
	outcome *fulfillment.Outcome
	err     error
	calls   int
}

func (s *stubLedger) CommitPayment(_ context.Context, _ fulfillment.PaymentNotice) (*fulfillment.Outcome, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func (s *stubLedger) CommitFailure(_ context.Context, _ fulfillment.FailureNotice) (*fulfillment.Outcome, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func newWebhookRouter(ledger fulfillment.Ledger) *gin.Engine {
	svc := fulfillmentapp.NewWebhookService(fulfillmentapp.WebhookServiceConfig{
		WebhookSecret: handlerWebhookSecret,
		Ledger:        ledger,
		Logger:        zap.NewNop(),
	})

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewStripeWebhookHandler(svc).RegisterRoutes(api)
	return engine
}

func stripeSignature(t *testing.T, payload []byte, secret string) string {
	t.Helper()

	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func completedEventPayload(eventID, sessionID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": %q, "object": "checkout.session", "amount_total": 3700, "currency": "usd"}}
	}`, eventID, sessionID))
}

func postWebhook(t *testing.T, engine *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookHandler(t *testing.T) {
	t.Run("applies a signed delivery", func(t *testing.T) {
		ledger := &stubLedger{outcome: &fulfillment.Outcome{
			Result:       fulfillment.ResultApplied,
			UnitsGranted: 1,
			XPAwarded:    37,
		}}
		engine := newWebhookRouter(ledger)

		payload := completedEventPayload("evt_ok", "cs_test_ok")
		w := postWebhook(t, engine, payload, stripeSignature(t, payload, handlerWebhookSecret))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"received":true`)
		assert.Contains(t, w.Body.String(), "evt_ok")
		assert.Equal(t, 1, ledger.calls)
	})

	t.Run("rejects a missing signature header", func(t *testing.T) {
		ledger := &stubLedger{}
		engine := newWebhookRouter(ledger)

		w := postWebhook(t, engine, completedEventPayload("evt_nosig", "cs_x"), "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, ledger.calls)
	})

	t.Run("rejects a forged signature", func(t *testing.T) {
		ledger := &stubLedger{}
		engine := newWebhookRouter(ledger)

		payload := completedEventPayload("evt_forged", "cs_x")
		w := postWebhook(t, engine, payload, stripeSignature(t, payload, "whsec_wrong"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, ledger.calls)
	})

	t.Run("rejects an oversized payload", func(t *testing.T) {
		engine := newWebhookRouter(&stubLedger{})

		big := bytes.Repeat([]byte("x"), maxWebhookPayloadSize+10)
		w := postWebhook(t, engine, big, "t=1,v1=deadbeef")

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("returns 500 on storage failure so the processor retries", func(t *testing.T) {
		ledger := &stubLedger{err: assert.AnError}
		engine := newWebhookRouter(ledger)

		payload := completedEventPayload("evt_db_down", "cs_test_db")
		w := postWebhook(t, engine, payload, stripeSignature(t, payload, handlerWebhookSecret))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("acks unhandled event types", func(t *testing.T) {
		ledger := &stubLedger{}
		engine := newWebhookRouter(ledger)

		payload := []byte(`{
			"id": "evt_other",
			"object": "event",
			"type": "invoice.created",
			"data": {"object": {}}
		}`)
		w := postWebhook(t, engine, payload, stripeSignature(t, payload, handlerWebhookSecret))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ignored")
		assert.Zero(t, ledger.calls)
	})

	t.Run("acks a duplicate as success", func(t *testing.T) {
		ledger := &stubLedger{outcome: &fulfillment.Outcome{Result: fulfillment.ResultDuplicate}}
		engine := newWebhookRouter(ledger)

		payload := completedEventPayload("evt_replay", "cs_test_replay")
		w := postWebhook(t, engine, payload, stripeSignature(t, payload, handlerWebhookSecret))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "duplicate")
	})
}
