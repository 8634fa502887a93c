package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid loan state transition")
	ErrInvalidInput      = errors.New("invalid loan input")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusMatched   Status = "matched"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDefaulted Status = "defaulted"
)

type InterestType string

const (
	InterestSimple   InterestType = "simple"
	InterestCompound InterestType = "compound"
)

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Match outcome recorded on the loan: MatchStatusMatched once ranked offers
// exist, MatchStatusNoMatch once every candidate lender has declined or let
// their offer lapse.
const (
	MatchStatusMatched = "matched"
	MatchStatusNoMatch = "no_match"
)

type Loan struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID     string `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	BorrowerID string `gorm:"size:32;index:idx_loans_borrower_active" json:"borrower_id"`

	Amount       decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	Currency     string          `gorm:"size:3;default:'USD'" json:"currency"`
	InterestRate decimal.Decimal `gorm:"type:decimal(6,2)" json:"interest_rate"`
	InterestType InterestType    `gorm:"type:enum('simple','compound');default:'simple'" json:"interest_type"`

	TotalInterest      decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_interest"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_amount"`
	AmountPaid         decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount_paid"`
	AmountRemaining    decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount_remaining"`
	RepaymentFrequency Frequency       `gorm:"type:enum('weekly','biweekly','monthly');default:'monthly'" json:"repayment_frequency"`
	TotalInstallments  int             `json:"total_installments"`

	Status Status `gorm:"type:enum('pending','matched','active','completed','defaulted');default:'pending'" json:"status"`

	// Exactly one of LenderID / BusinessLenderID is set once the loan is funded.
	LenderID         *string `gorm:"size:32" json:"lender_id,omitempty"`
	BusinessLenderID *string `gorm:"size:32" json:"business_lender_id,omitempty"`

	CurrentMatchID *string `gorm:"size:32" json:"current_match_id,omitempty"`
	MatchStatus    string  `gorm:"size:16" json:"match_status,omitempty"`

	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy       string         `gorm:"size:32" json:"-"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) HasLender() bool {
	return l.LenderID != nil || l.BusinessLenderID != nil
}

// ApplyPayment credits amount against the loan, keeping
// amount_remaining = total_amount - amount_paid.
func (l *Loan) ApplyPayment(amount decimal.Decimal) {
	l.AmountPaid = l.AmountPaid.Add(amount)
	l.AmountRemaining = l.TotalAmount.Sub(l.AmountPaid)
}

func (l *Loan) SetStatus(s Status, at time.Time) {
	l.Status = s
	l.StatusUpdatedAt = at
}

// PaidRatio is amount_paid / amount (principal), the input to the
// repayment-percentage eligibility rule. Zero-principal loans report 1.
func (l *Loan) PaidRatio() decimal.Decimal {
	if l.Amount.IsZero() {
		return decimal.NewFromInt(1)
	}
	return l.AmountPaid.Div(l.Amount)
}

type ScheduleEntryStatus string

const (
	EntryPending ScheduleEntryStatus = "pending"
	EntryPaid    ScheduleEntryStatus = "paid"
	EntryOverdue ScheduleEntryStatus = "overdue"
)

type PaymentScheduleEntry struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanNumericID uint64 `gorm:"column:loan_id;index:idx_schedule_loan" json:"-"`
	InstallmentNo int    `gorm:"column:installment_no" json:"installment_no"`

	DueDate         time.Time       `gorm:"type:date" json:"due_date"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	PrincipalAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"principal_amount"`
	InterestAmount  decimal.Decimal `gorm:"type:decimal(18,2)" json:"interest_amount"`

	IsPaid bool                `json:"is_paid"`
	Status ScheduleEntryStatus `gorm:"type:enum('pending','paid','overdue');default:'pending'" json:"status"`
	// Highest lateness penalty already applied to this entry by the overdue
	// sweep, so a bucket is never charged twice.
	PenaltyLevel int `json:"-"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	PaymentID *string    `gorm:"size:64" json:"payment_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PaymentScheduleEntry) TableName() string { return "payment_schedule_entries" }
