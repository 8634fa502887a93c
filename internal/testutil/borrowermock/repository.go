package borrowermock

import (
	"context"

	domain "trustlend-backend/internal/domain/borrower"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByUserIDFn        func(ctx context.Context, userID string) (*domain.Profile, error)
	SaveFn               func(ctx context.Context, p *domain.Profile) error
	AddPaymentCountersFn func(ctx context.Context, userID string, c domain.PaymentCounters) error
	SetTrustScoreFn      func(ctx context.Context, userID string, score int) error
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, p *domain.Profile) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) AddPaymentCounters(ctx context.Context, userID string, c domain.PaymentCounters) error {
	if m.AddPaymentCountersFn != nil {
		return m.AddPaymentCountersFn(ctx, userID, c)
	}
	return nil
}

func (m *Repo) SetTrustScore(ctx context.Context, userID string, score int) error {
	if m.SetTrustScoreFn != nil {
		return m.SetTrustScoreFn(ctx, userID, score)
	}
	return nil
}
