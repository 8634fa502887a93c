package mysql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schemas only for tests (no ENUM columns) ---

type loanSQLite struct {
	ID                 uint64          `gorm:"primaryKey;column:id"`
	LoanID             string          `gorm:"size:32;uniqueIndex;column:loan_id"`
	BorrowerID         string          `gorm:"size:32;column:borrower_id"`
	Amount             decimal.Decimal `gorm:"column:amount"`
	Currency           string          `gorm:"column:currency"`
	InterestRate       decimal.Decimal `gorm:"column:interest_rate"`
	InterestType       string          `gorm:"type:text;column:interest_type"`
	TotalInterest      decimal.Decimal `gorm:"column:total_interest"`
	TotalAmount        decimal.Decimal `gorm:"column:total_amount"`
	AmountPaid         decimal.Decimal `gorm:"column:amount_paid"`
	AmountRemaining    decimal.Decimal `gorm:"column:amount_remaining"`
	RepaymentFrequency string          `gorm:"type:text;column:repayment_frequency"`
	TotalInstallments  int             `gorm:"column:total_installments"`
	Status             string          `gorm:"type:text;column:status"`
	LenderID           *string         `gorm:"column:lender_id"`
	BusinessLenderID   *string         `gorm:"column:business_lender_id"`
	CurrentMatchID     *string         `gorm:"column:current_match_id"`
	MatchStatus        string          `gorm:"column:match_status"`
	StatusUpdatedAt    time.Time       `gorm:"column:status_updated_at"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"column:deleted_at"`
	DeletedBy          string          `gorm:"column:deleted_by"`
}

func (loanSQLite) TableName() string { return "loans" }

type scheduleSQLite struct {
	ID              uint64          `gorm:"primaryKey;column:id"`
	LoanNumericID   uint64          `gorm:"column:loan_id"`
	InstallmentNo   int             `gorm:"column:installment_no"`
	DueDate         time.Time       `gorm:"column:due_date"`
	Amount          decimal.Decimal `gorm:"column:amount"`
	PrincipalAmount decimal.Decimal `gorm:"column:principal_amount"`
	InterestAmount  decimal.Decimal `gorm:"column:interest_amount"`
	IsPaid          bool            `gorm:"column:is_paid"`
	Status          string          `gorm:"type:text;column:status"`
	PenaltyLevel    int             `gorm:"column:penalty_level"`
	PaidAt          *time.Time      `gorm:"column:paid_at"`
	PaymentID       *string         `gorm:"column:payment_id"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (scheduleSQLite) TableName() string { return "payment_schedule_entries" }

type matchSQLite struct {
	ID               uint64         `gorm:"primaryKey;column:id"`
	MatchID          string         `gorm:"size:32;uniqueIndex;column:match_id"`
	LoanNumericID    uint64         `gorm:"column:loan_id"`
	LoanID           string         `gorm:"column:loan_public_id"`
	LenderUserID     *string        `gorm:"column:lender_user_id"`
	LenderBusinessID *string        `gorm:"column:lender_business_id"`
	PreferenceID     string         `gorm:"column:preference_id"`
	MatchRank        int            `gorm:"column:match_rank"`
	Status           string         `gorm:"type:text;column:status"`
	DeclineReason    string         `gorm:"column:decline_reason"`
	ExpiresAt        time.Time      `gorm:"column:expires_at"`
	RespondedAt      *time.Time     `gorm:"column:responded_at"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (matchSQLite) TableName() string { return "loan_matches" }

type trustEventSQLite struct {
	ID          uint64    `gorm:"primaryKey;column:id"`
	UserID      string    `gorm:"column:user_id"`
	LoanID      string    `gorm:"column:loan_id"`
	PaymentID   string    `gorm:"column:payment_id"`
	EventType   string    `gorm:"column:event_type"`
	ScoreImpact int       `gorm:"column:score_impact"`
	DedupeKey   *string   `gorm:"uniqueIndex;column:dedupe_key"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (trustEventSQLite) TableName() string { return "trust_score_events" }

type voucherRecordSQLite struct {
	ID             uint64          `gorm:"primaryKey;column:id"`
	VoucherID      string          `gorm:"column:voucher_id"`
	VoucherUserID  string          `gorm:"column:voucher_user_id;uniqueIndex:ux_voucher_pair"`
	VoucheeUserID  string          `gorm:"column:vouchee_user_id;uniqueIndex:ux_voucher_pair"`
	Active         bool            `gorm:"column:active"`
	LoansActive    int             `gorm:"column:loans_active"`
	LoansCompleted int             `gorm:"column:loans_completed"`
	StandingScore  decimal.Decimal `gorm:"column:standing_score"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"column:deleted_at"`
}

func (voucherRecordSQLite) TableName() string { return "voucher_records" }

type voucherLinkSQLite struct {
	ID              uint64    `gorm:"primaryKey;column:id"`
	VoucherRecordID uint64    `gorm:"column:voucher_record_id;uniqueIndex:ux_voucher_loan"`
	LoanID          string    `gorm:"column:loan_id;uniqueIndex:ux_voucher_loan"`
	Status          string    `gorm:"type:text;column:status"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (voucherLinkSQLite) TableName() string { return "voucher_loan_links" }

type lenderPrefSQLite struct {
	ID                      uint64          `gorm:"primaryKey;column:id"`
	PreferenceID            string          `gorm:"size:32;uniqueIndex;column:preference_id"`
	LenderUserID            *string         `gorm:"column:lender_user_id"`
	LenderBusinessID        *string         `gorm:"column:lender_business_id"`
	Active                  bool            `gorm:"column:active"`
	MaxAmount               decimal.Decimal `gorm:"column:max_amount"`
	FirstTimeBorrowerLimit  decimal.Decimal `gorm:"column:first_time_borrower_limit"`
	AllowFirstTimeBorrowers bool            `gorm:"column:allow_first_time_borrowers"`
	InterestRate            decimal.Decimal `gorm:"column:interest_rate"`
	InterestType            string          `gorm:"column:interest_type"`
	RepaymentFrequency      string          `gorm:"column:repayment_frequency"`
	CapitalPool             decimal.Decimal `gorm:"column:capital_pool"`
	CapitalReserved         decimal.Decimal `gorm:"column:capital_reserved"`
	OffersReceived          int             `gorm:"column:offers_received"`
	OffersAccepted          int             `gorm:"column:offers_accepted"`
	CreatedAt               time.Time       `gorm:"column:created_at"`
	UpdatedAt               time.Time       `gorm:"column:updated_at"`
	DeletedAt               gorm.DeletedAt  `gorm:"column:deleted_at"`
}

func (lenderPrefSQLite) TableName() string { return "lender_preferences" }

type borrowerSQLite struct {
	ID                 uint64         `gorm:"primaryKey;column:id"`
	UserID             string         `gorm:"size:32;uniqueIndex;column:user_id"`
	TrustScore         int            `gorm:"column:trust_score"`
	BorrowingTier      int            `gorm:"column:borrowing_tier"`
	LoansAtCurrentTier int            `gorm:"column:loans_at_current_tier"`
	LoansCompleted     int            `gorm:"column:loans_completed"`
	PaymentsMade       int            `gorm:"column:payments_made"`
	PaymentsOnTime     int            `gorm:"column:payments_on_time"`
	PaymentsEarly      int            `gorm:"column:payments_early"`
	PaymentsLate       int            `gorm:"column:payments_late"`
	IsBlocked          bool           `gorm:"column:is_blocked"`
	DebtClearedAt      *time.Time     `gorm:"column:debt_cleared_at"`
	RestrictionEndsAt  *time.Time     `gorm:"column:restriction_ends_at"`
	CreatedAt          time.Time      `gorm:"column:created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (borrowerSQLite) TableName() string { return "borrower_profiles" }

type notificationSQLite struct {
	ID          uint64 `gorm:"primaryKey;column:id"`
	UserID      string `gorm:"column:user_id"`
	Type        string `gorm:"column:type"`
	Message     string `gorm:"column:message"`
	ReferenceID string `gorm:"column:reference_id"`
	Delivered   bool   `gorm:"column:delivered"`
	CreatedAt   int64  `gorm:"column:created_at"`
}

func (notificationSQLite) TableName() string { return "notifications" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the
// sqlite-safe schemas, never the domain models.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&loanSQLite{},
		&scheduleSQLite{},
		&matchSQLite{},
		&trustEventSQLite{},
		&voucherRecordSQLite{},
		&voucherLinkSQLite{},
		&lenderPrefSQLite{},
		&borrowerSQLite{},
		&notificationSQLite{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
