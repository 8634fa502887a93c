package match

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("match not found")
	// ErrAlreadyResolved is returned when accept/decline/expiry hits a match
	// that is no longer pending; the current status travels with the
	// ResolvedError wrapper so callers can reconcile.
	ErrAlreadyResolved = errors.New("match already resolved")
	ErrExpired         = errors.New("match offer expired")
	ErrNotLender       = errors.New("actor is not the offered lender")
)

// OfferTTL is how long a lender has to respond before the offer lapses and
// cascades to the next candidate.
const OfferTTL = 24 * time.Hour

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusExpired  Status = "expired"
	StatusSkipped  Status = "skipped"
)

// Match is a time-boxed offer linking a pending loan to one candidate
// lender. Created by the matching engine, mutated only by accept, decline or
// expiry; terminal once accepted or the loan acquires a lender elsewhere.
type Match struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	MatchID       string `gorm:"size:32;uniqueIndex:ux_matches_match_id" json:"match_id"`
	LoanNumericID uint64 `gorm:"column:loan_id;index:idx_matches_loan" json:"-"`
	LoanID        string `gorm:"size:32;column:loan_public_id" json:"loan_id"`

	// Exactly one of the two lender columns is set.
	LenderUserID     *string `gorm:"size:32" json:"lender_user_id,omitempty"`
	LenderBusinessID *string `gorm:"size:32" json:"lender_business_id,omitempty"`
	PreferenceID     string  `gorm:"size:32" json:"preference_id"`

	MatchRank int    `gorm:"index:idx_matches_loan" json:"match_rank"`
	Status    Status `gorm:"type:enum('pending','accepted','declined','expired','skipped');default:'pending'" json:"status"`

	DeclineReason string     `gorm:"type:text" json:"decline_reason,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Match) TableName() string { return "loan_matches" }

func (m *Match) ExpiredAt(now time.Time) bool { return now.After(m.ExpiresAt) }

func (m *Match) Resolved() bool { return m.Status != StatusPending }

// ResolvedError carries the match's current status so the caller can
// reconcile a lost race instead of guessing.
type ResolvedError struct{ Current Status }

func (e *ResolvedError) Error() string {
	return "match already resolved: " + string(e.Current)
}

func (e *ResolvedError) Unwrap() error { return ErrAlreadyResolved }
