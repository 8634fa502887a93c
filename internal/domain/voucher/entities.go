package voucher

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("voucher record not found")
	// ErrDuplicateVouch mirrors the (voucher_user, vouchee_user) unique key.
	ErrDuplicateVouch = errors.New("vouch already exists for this pair")
	ErrSelfVouch      = errors.New("users cannot vouch for themselves")
)

// Standing adjustments driven by the vouchee's loan behavior.
var (
	StandingPaymentEarly  = decimal.RequireFromString("0.5")
	StandingPaymentOnTime = decimal.RequireFromString("0.3")
	StandingPaymentLate   = decimal.RequireFromString("-0.5")
	StandingLoanCompleted = decimal.RequireFromString("2")
)

// Record is one user's declared endorsement of a borrower. The voucher's own
// standing moves with the vouchee's subsequent loan behavior.
type Record struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	VoucherID     string `gorm:"size:32;uniqueIndex:ux_vouchers_record_id" json:"voucher_id"`
	VoucherUserID string `gorm:"size:32;uniqueIndex:ux_vouchers_pair_users;index" json:"voucher_user_id"`
	VoucheeUserID string `gorm:"size:32;uniqueIndex:ux_vouchers_pair_users;index:idx_vouchers_vouchee" json:"vouchee_user_id"`

	Active         bool            `gorm:"default:true" json:"active"`
	LoansActive    int             `json:"loans_active"`
	LoansCompleted int             `json:"loans_completed"`
	StandingScore  decimal.Decimal `gorm:"type:decimal(8,2)" json:"standing_score"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Record) TableName() string { return "voucher_records" }

type LinkStatus string

const (
	LinkActive    LinkStatus = "active"
	LinkCompleted LinkStatus = "completed"
)

// LoanLink records that a voucher's loans_active counter already reflects a
// given loan. The (record, loan) unique key makes the increment idempotent
// no matter which acceptance path fired it.
type LoanLink struct {
	ID              uint64     `gorm:"primaryKey;column:id" json:"-"`
	VoucherRecordID uint64     `gorm:"column:voucher_record_id;uniqueIndex:ux_voucher_loan" json:"-"`
	LoanID          string     `gorm:"size:32;uniqueIndex:ux_voucher_loan" json:"loan_id"`
	Status          LinkStatus `gorm:"type:enum('active','completed');default:'active'" json:"status"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LoanLink) TableName() string { return "voucher_loan_links" }
