package borrower

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("borrower profile not found")

// Tier ceilings for personal (non-business) lending. Tier 6 is unlimited.
var tierCeilings = map[int]decimal.Decimal{
	1: decimal.NewFromInt(500),
	2: decimal.NewFromInt(1000),
	3: decimal.NewFromInt(2500),
	4: decimal.NewFromInt(5000),
	5: decimal.NewFromInt(10000),
}

const MaxTier = 6

// TierCeiling returns the personal-lending ceiling for a tier and whether
// the tier is bounded at all (tier 6 is not).
func TierCeiling(tier int) (decimal.Decimal, bool) {
	if tier >= MaxTier {
		return decimal.Zero, false
	}
	c, ok := tierCeilings[tier]
	if !ok {
		c = tierCeilings[1]
	}
	return c, true
}

type Profile struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	UserID string `gorm:"size:32;uniqueIndex:ux_borrowers_user" json:"user_id"`

	TrustScore int `gorm:"default:50" json:"trust_score"`

	BorrowingTier      int `gorm:"default:1" json:"borrowing_tier"`
	LoansAtCurrentTier int `json:"loans_at_current_tier"`
	LoansCompleted     int `json:"loans_completed"`

	PaymentsMade   int `json:"payments_made"`
	PaymentsOnTime int `json:"payments_on_time"`
	PaymentsEarly  int `json:"payments_early"`
	PaymentsLate   int `json:"payments_late"`

	IsBlocked        bool       `json:"is_blocked"`
	DebtClearedAt    *time.Time `json:"debt_cleared_at,omitempty"`
	RestrictionEndsAt *time.Time `json:"restriction_ends_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string { return "borrower_profiles" }

func (p *Profile) FirstTime() bool { return p.LoansCompleted == 0 }

// Restricted reports whether the borrower sits inside a post-default
// restriction window as of now.
func (p *Profile) Restricted(now time.Time) bool {
	return p.DebtClearedAt != nil && p.RestrictionEndsAt != nil && p.RestrictionEndsAt.After(now)
}

// PermanentlyBlocked is the hard block: flagged with debt never cleared.
func (p *Profile) PermanentlyBlocked() bool {
	return p.IsBlocked && p.DebtClearedAt == nil
}

// RecordCompletion advances the completion counters and the tier ladder.
// loansToAdvance is how many completions at the current tier promote the
// borrower one tier.
func (p *Profile) RecordCompletion(loansToAdvance int) {
	p.LoansCompleted++
	p.LoansAtCurrentTier++
	if p.BorrowingTier < MaxTier && loansToAdvance > 0 && p.LoansAtCurrentTier >= loansToAdvance {
		p.BorrowingTier++
		p.LoansAtCurrentTier = 0
	}
}
