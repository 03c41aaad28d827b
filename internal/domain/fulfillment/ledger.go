package fulfillment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentNotice carries the facts of a verified payment-succeeded event.
// AmountTotal is the processor-reported total, used only to reconcile
// against the amount the order was created with; grants and XP are always
// derived from the stored order, never from the notice.
type PaymentNotice struct {
	EventID         string
	EventType       string
	StripeSessionID string
	UserID          *uuid.UUID // identity binding confirmed by the processor
	AmountTotal     int64
	Currency        string
}

// FailureNotice carries the facts of a verified payment-failure event
type FailureNotice struct {
	EventID         string
	EventType       string
	StripeSessionID string
	Reason          string
}

// Result classifies the outcome of a commit attempt
type Result int

const (
	// ResultApplied means this attempt won the commit: grants, XP credit,
	// dedup record and status advance were written atomically
	ResultApplied Result = iota

	// ResultDuplicate means the event (or its session) was already fully
	// processed; nothing was mutated and the caller should report success
	ResultDuplicate

	// ResultUnknownSession means the notice references a session the
	// session ledger has never seen; an integrity anomaly, nothing mutated
	ResultUnknownSession

	// ResultUnboundUser means payment was recorded but no user identity is
	// bound to the order, so grants and XP could not be credited
	ResultUnboundUser

	// ResultAmountMismatch means the processor-reported total disagrees
	// with the amount the order was created with; nothing was fulfilled
	ResultAmountMismatch

	// ResultStateConflict means the order is in a terminal state that
	// forbids the transition (e.g. payment succeeded after FAILED)
	ResultStateConflict
)

// String returns a human-readable result name
func (r Result) String() string {
	switch r {
	case ResultApplied:
		return "applied"
	case ResultDuplicate:
		return "duplicate"
	case ResultUnknownSession:
		return "unknown_session"
	case ResultUnboundUser:
		return "unbound_user"
	case ResultAmountMismatch:
		return "amount_mismatch"
	case ResultStateConflict:
		return "state_conflict"
	}
	return "unknown"
}

// Outcome describes what a commit attempt did
type Outcome struct {
	Result       Result
	OrderID      uuid.UUID
	UserID       *uuid.UUID
	UnitsGranted int
	XPAwarded    int64
}

// Ledger is the atomic unit of work behind the fulfillment state machine.
// Implementations must make each commit all-or-nothing: the webhook dedup
// record and every ledger write become visible together or not at all, and
// ownership of the mutation is won by the unique-constraint insert of the
// dedup record, not by any external lock. Concurrent deliveries of the same
// event must resolve to exactly one ResultApplied; every loser observes
// ResultDuplicate.
type Ledger interface {
	// CommitPayment applies a payment-succeeded notice
	CommitPayment(ctx context.Context, notice PaymentNotice) (*Outcome, error)

	// CommitFailure applies a payment-failed or session-expired notice
	CommitFailure(ctx context.Context, notice FailureNotice) (*Outcome, error)
}
