package vouchermock

import (
	"context"

	domain "trustlend-backend/internal/domain/voucher"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn              func(ctx context.Context, r *domain.Record) error
	ListActiveByVoucheeFn func(ctx context.Context, voucheeUserID string) ([]*domain.Record, error)
	LinkLoanFn            func(ctx context.Context, recordID uint64, loanID string) (bool, error)
	CompleteLinkFn        func(ctx context.Context, recordID uint64, loanID string) (bool, error)
	AddLoansActiveFn      func(ctx context.Context, recordID uint64, delta int) error
	AddLoansCompletedFn   func(ctx context.Context, recordID uint64, delta int) error
	AddStandingFn         func(ctx context.Context, recordID uint64, delta decimal.Decimal) error
	SaveFn                func(ctx context.Context, r *domain.Record) error
}

func (m *Repo) Create(ctx context.Context, r *domain.Record) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListActiveByVouchee(ctx context.Context, voucheeUserID string) ([]*domain.Record, error) {
	if m.ListActiveByVoucheeFn != nil {
		return m.ListActiveByVoucheeFn(ctx, voucheeUserID)
	}
	return nil, nil
}

func (m *Repo) LinkLoan(ctx context.Context, recordID uint64, loanID string) (bool, error) {
	if m.LinkLoanFn != nil {
		return m.LinkLoanFn(ctx, recordID, loanID)
	}
	return true, nil
}

func (m *Repo) CompleteLink(ctx context.Context, recordID uint64, loanID string) (bool, error) {
	if m.CompleteLinkFn != nil {
		return m.CompleteLinkFn(ctx, recordID, loanID)
	}
	return true, nil
}

func (m *Repo) AddLoansActive(ctx context.Context, recordID uint64, delta int) error {
	if m.AddLoansActiveFn != nil {
		return m.AddLoansActiveFn(ctx, recordID, delta)
	}
	return nil
}

func (m *Repo) AddLoansCompleted(ctx context.Context, recordID uint64, delta int) error {
	if m.AddLoansCompletedFn != nil {
		return m.AddLoansCompletedFn(ctx, recordID, delta)
	}
	return nil
}

func (m *Repo) AddStanding(ctx context.Context, recordID uint64, delta decimal.Decimal) error {
	if m.AddStandingFn != nil {
		return m.AddStandingFn(ctx, recordID, delta)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, r *domain.Record) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}
