package notification

import "context"

// Intent types the engine emits. Delivery (email, in-app) is an external
// consumer's concern.
const (
	TypeLoanFunded    = "loan_funded"
	TypeOfferReceived = "offer_received"
	TypeNoMatch       = "no_match"
	TypeLoanCompleted = "loan_completed"
	TypePaymentLate   = "payment_late"
)

type Intent struct {
	UserID      string `json:"user_id"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	ReferenceID string `json:"reference_id,omitempty"`
}

// Sink receives notification intents. The engine never formats or delivers
// messages itself.
type Sink interface {
	Notify(ctx context.Context, in Intent) error
}

// Record is the durable form of an intent, consumed by the external
// delivery component.
type Record struct {
	ID          uint64 `gorm:"primaryKey;column:id" json:"-"`
	UserID      string `gorm:"size:32;index" json:"user_id"`
	Type        string `gorm:"size:32" json:"type"`
	Message     string `gorm:"type:text" json:"message"`
	ReferenceID string `gorm:"size:64" json:"reference_id,omitempty"`
	Delivered   bool   `json:"delivered"`

	CreatedAt int64 `gorm:"autoCreateTime:milli" json:"created_at"`
}

func (Record) TableName() string { return "notifications" }
