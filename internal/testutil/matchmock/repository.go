package matchmock

import (
	"context"
	"time"

	domain "trustlend-backend/internal/domain/match"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateAllFn             func(ctx context.Context, ms []*domain.Match) error
	GetByMatchIDFn          func(ctx context.Context, matchID string) (*domain.Match, error)
	GetByMatchIDForUpdateFn func(ctx context.Context, matchID string) (*domain.Match, error)
	NextPendingForLoanFn    func(ctx context.Context, loanNumericID uint64) (*domain.Match, error)
	MarkSiblingsSkippedFn   func(ctx context.Context, loanNumericID uint64, acceptedID uint64) error
	ListPendingExpiredFn    func(ctx context.Context, asOf time.Time) ([]*domain.Match, error)
	SaveFn                  func(ctx context.Context, m *domain.Match) error
}

func (m *Repo) CreateAll(ctx context.Context, ms []*domain.Match) error {
	if m.CreateAllFn != nil {
		return m.CreateAllFn(ctx, ms)
	}
	return nil
}

func (m *Repo) GetByMatchID(ctx context.Context, matchID string) (*domain.Match, error) {
	if m.GetByMatchIDFn != nil {
		return m.GetByMatchIDFn(ctx, matchID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByMatchIDForUpdate(ctx context.Context, matchID string) (*domain.Match, error) {
	if m.GetByMatchIDForUpdateFn != nil {
		return m.GetByMatchIDForUpdateFn(ctx, matchID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) NextPendingForLoan(ctx context.Context, loanNumericID uint64) (*domain.Match, error) {
	if m.NextPendingForLoanFn != nil {
		return m.NextPendingForLoanFn(ctx, loanNumericID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) MarkSiblingsSkipped(ctx context.Context, loanNumericID uint64, acceptedID uint64) error {
	if m.MarkSiblingsSkippedFn != nil {
		return m.MarkSiblingsSkippedFn(ctx, loanNumericID, acceptedID)
	}
	return nil
}

func (m *Repo) ListPendingExpired(ctx context.Context, asOf time.Time) ([]*domain.Match, error) {
	if m.ListPendingExpiredFn != nil {
		return m.ListPendingExpiredFn(ctx, asOf)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, mm *domain.Match) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, mm)
	}
	return nil
}
