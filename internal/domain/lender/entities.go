package lender

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("lender preference not found")
	ErrInsufficientCapital = errors.New("insufficient lender capital")
)

// Preference is a lender's standing offer configuration plus their capital
// account. capital_pool is available to lend; capital_reserved is committed
// to active loans. Both move only through relative deltas applied at the
// store, never read-modify-write.
type Preference struct {
	ID           uint64 `gorm:"primaryKey;column:id" json:"-"`
	PreferenceID string `gorm:"size:32;uniqueIndex:ux_lender_prefs_pref_id" json:"preference_id"`

	// Exactly one of the two owner columns is set.
	LenderUserID     *string `gorm:"size:32;index" json:"lender_user_id,omitempty"`
	LenderBusinessID *string `gorm:"size:32;index" json:"lender_business_id,omitempty"`

	Active bool `gorm:"default:true;index" json:"active"`

	MaxAmount               decimal.Decimal `gorm:"type:decimal(18,2)" json:"max_amount"`
	FirstTimeBorrowerLimit  decimal.Decimal `gorm:"type:decimal(18,2)" json:"first_time_borrower_limit"`
	AllowFirstTimeBorrowers bool            `json:"allow_first_time_borrowers"`

	InterestRate       decimal.Decimal `gorm:"type:decimal(6,2)" json:"interest_rate"`
	InterestType       string          `gorm:"size:16;default:'simple'" json:"interest_type"`
	RepaymentFrequency string          `gorm:"size:16;default:'monthly'" json:"repayment_frequency"`

	CapitalPool     decimal.Decimal `gorm:"type:decimal(18,2)" json:"capital_pool"`
	CapitalReserved decimal.Decimal `gorm:"type:decimal(18,2)" json:"capital_reserved"`

	OffersReceived int `json:"offers_received"`
	OffersAccepted int `json:"offers_accepted"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Preference) TableName() string { return "lender_preferences" }

// LimitFor returns the amount ceiling this preference applies to a borrower
// category.
func (p *Preference) LimitFor(firstTime bool) decimal.Decimal {
	if firstTime {
		return p.FirstTimeBorrowerLimit
	}
	return p.MaxAmount
}

// Covers reports whether the preference can serve a request of the given
// amount from the given borrower category.
func (p *Preference) Covers(amount decimal.Decimal, firstTime bool) bool {
	if !p.Active {
		return false
	}
	if firstTime && !p.AllowFirstTimeBorrowers {
		return false
	}
	return p.LimitFor(firstTime).GreaterThanOrEqual(amount)
}

// AcceptanceRate is the lender's historical offer acceptance ratio in [0,1].
// Lenders with no history rate 0.
func (p *Preference) AcceptanceRate() float64 {
	if p.OffersReceived == 0 {
		return 0
	}
	return float64(p.OffersAccepted) / float64(p.OffersReceived)
}

// AvailableRatio is uncommitted capital over the pool, in [0,1].
func (p *Preference) AvailableRatio() float64 {
	if p.CapitalPool.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	avail := p.CapitalPool.Sub(p.CapitalReserved)
	if avail.LessThan(decimal.Zero) {
		return 0
	}
	r, _ := avail.Div(p.CapitalPool).Float64()
	if r > 1 {
		r = 1
	}
	return r
}
