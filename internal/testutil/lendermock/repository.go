package lendermock

import (
	"context"

	domain "trustlend-backend/internal/domain/lender"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByPreferenceIDFn func(ctx context.Context, preferenceID string) (*domain.Preference, error)
	GetByOwnerFn        func(ctx context.Context, lenderUserID, lenderBusinessID *string) (*domain.Preference, error)
	ListActiveFn        func(ctx context.Context) ([]*domain.Preference, error)
	SaveFn              func(ctx context.Context, p *domain.Preference) error
	ReserveCapitalFn    func(ctx context.Context, preferenceID string, principal decimal.Decimal) error
	ReleaseCapitalFn    func(ctx context.Context, preferenceID string, principal, interest decimal.Decimal) error
	IncrementOffersFn   func(ctx context.Context, preferenceID string, received, accepted int) error
}

func (m *Repo) GetByPreferenceID(ctx context.Context, preferenceID string) (*domain.Preference, error) {
	if m.GetByPreferenceIDFn != nil {
		return m.GetByPreferenceIDFn(ctx, preferenceID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByOwner(ctx context.Context, lenderUserID, lenderBusinessID *string) (*domain.Preference, error) {
	if m.GetByOwnerFn != nil {
		return m.GetByOwnerFn(ctx, lenderUserID, lenderBusinessID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListActive(ctx context.Context) ([]*domain.Preference, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, p *domain.Preference) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) ReserveCapital(ctx context.Context, preferenceID string, principal decimal.Decimal) error {
	if m.ReserveCapitalFn != nil {
		return m.ReserveCapitalFn(ctx, preferenceID, principal)
	}
	return nil
}

func (m *Repo) ReleaseCapital(ctx context.Context, preferenceID string, principal, interest decimal.Decimal) error {
	if m.ReleaseCapitalFn != nil {
		return m.ReleaseCapitalFn(ctx, preferenceID, principal, interest)
	}
	return nil
}

func (m *Repo) IncrementOffers(ctx context.Context, preferenceID string, received, accepted int) error {
	if m.IncrementOffersFn != nil {
		return m.IncrementOffersFn(ctx, preferenceID, received, accepted)
	}
	return nil
}
