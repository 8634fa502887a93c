package lender

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	GetByPreferenceID(ctx context.Context, preferenceID string) (*Preference, error)
	GetByOwner(ctx context.Context, lenderUserID, lenderBusinessID *string) (*Preference, error)
	ListActive(ctx context.Context) ([]*Preference, error)
	Save(ctx context.Context, p *Preference) error

	// Capital movements are atomic store-level deltas; concurrent loan
	// completions for the same lender must not lose updates.
	ReserveCapital(ctx context.Context, preferenceID string, principal decimal.Decimal) error
	// ReleaseCapital returns principal from reserved and credits realized
	// interest to the pool.
	ReleaseCapital(ctx context.Context, preferenceID string, principal, interest decimal.Decimal) error
	IncrementOffers(ctx context.Context, preferenceID string, received, accepted int) error
}
