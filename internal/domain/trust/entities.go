package trust

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("trust event not found")
	// ErrDuplicateEvent mirrors the store's unique-index violation for a
	// reused dedupe key.
	ErrDuplicateEvent = errors.New("duplicate trust event dedupe key")
)

type EventType string

const (
	EventPaymentOnTime      EventType = "payment_ontime"
	EventPaymentEarly       EventType = "payment_early"
	EventPaymentLate        EventType = "payment_late"
	EventPaymentMissed      EventType = "payment_missed"
	EventPaymentFailed      EventType = "payment_failed"
	EventLoanCompleted      EventType = "loan_completed"
	EventFirstLoanCompleted EventType = "first_loan_completed"
	EventVouchReceived      EventType = "vouch_received"
	EventVoucheeCompleted   EventType = "vouchee_loan_completed"
)

// Score impacts. Positive for behavior that builds reputation, negative for
// behavior that erodes it; the score aggregate is monotone in these.
const (
	ImpactPaymentEarly       = 3
	ImpactPaymentOnTime      = 2
	ImpactPaymentLate        = -3
	ImpactPaymentLate7       = -5
	ImpactPaymentLate14      = -8
	ImpactPaymentMissed30    = -15
	ImpactPaymentFailed      = -5
	ImpactLoanCompleted      = 10
	ImpactFirstLoanCompleted = 15
	ImpactVouchReceived      = 2
	ImpactVoucheeCompleted   = 3
)

// Baseline score for a borrower with no history, and the clamp bounds.
const (
	BaselineScore = 50
	MinScore      = 0
	MaxScore      = 100
)

// Event is one append-only entry in a user's trust history. DedupeKey is the
// store-level idempotency guard: a UNIQUE index rejects a second event with
// the same key, while penalty events carry NULL and stay repeatable.
type Event struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	UserID    string `gorm:"size:32;index:idx_trust_events_user" json:"user_id"`
	LoanID    string `gorm:"size:32" json:"loan_id,omitempty"`
	PaymentID string `gorm:"size:64" json:"payment_id,omitempty"`

	EventType   EventType `gorm:"size:32" json:"event_type"`
	ScoreImpact int       `json:"score_impact"`
	DedupeKey   *string   `gorm:"size:128;uniqueIndex:ux_trust_events_dedupe" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Event) TableName() string { return "trust_score_events" }

// PaymentDedupeKey keys the payment-timing event family: at most one
// early/ontime/late event may exist per (loan, user, payment).
func PaymentDedupeKey(loanID, userID, paymentID string) string {
	return fmt.Sprintf("pay:%s:%s:%s", loanID, userID, paymentID)
}

// CompletionDedupeKey keys loan completion: at most one completion event per
// (loan, user).
func CompletionDedupeKey(loanID, userID string) string {
	return fmt.Sprintf("done:%s:%s", loanID, userID)
}

// VouchDedupeKey keys the vouch-received bonus: at most one event per
// (voucher, vouchee) pair, matching the uniqueness of the vouch itself.
func VouchDedupeKey(voucherUserID, voucheeUserID string) string {
	return fmt.Sprintf("vouch:%s:%s", voucherUserID, voucheeUserID)
}

// TimingEvent maps a days-from-due classification to its event type and
// impact: before -2 days is early, -2..0 on time, after the due date late.
func TimingEvent(daysFromDue int) (EventType, int) {
	switch {
	case daysFromDue < -2:
		return EventPaymentEarly, ImpactPaymentEarly
	case daysFromDue <= 0:
		return EventPaymentOnTime, ImpactPaymentOnTime
	default:
		return EventPaymentLate, ImpactPaymentLate
	}
}

// MissedEvent scales the penalty with lateness. Only past 30 days does the
// event graduate from late to missed.
func MissedEvent(daysOverdue int) (EventType, int) {
	switch {
	case daysOverdue > 30:
		return EventPaymentMissed, ImpactPaymentMissed30
	case daysOverdue > 14:
		return EventPaymentLate, ImpactPaymentLate14
	case daysOverdue > 7:
		return EventPaymentLate, ImpactPaymentLate7
	default:
		return EventPaymentLate, ImpactPaymentLate
	}
}
