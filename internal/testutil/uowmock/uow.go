package uowmock

import (
	"context"
	"errors"

	"trustlend-backend/internal/domain/loan"
	"trustlend-backend/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork. Repos and
// Loans let the common case work without wiring functions: WithinTx passes
// Repos straight through, WithinLoanTx looks the loan up in Loans by its
// public id.
type UoW struct {
	Repos uow.Repos
	Loans map[string]*loan.Loan

	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error
}

func New(repos uow.Repos) *UoW {
	return &UoW{Repos: repos, Loans: map[string]*loan.Loan{}}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return fn(m.Repos)
}

func (m *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, loanID, fn)
	}
	if m.Loans == nil {
		return errUnimplemented
	}
	l, ok := m.Loans[loanID]
	if !ok {
		return loan.ErrNotFound
	}
	return fn(m.Repos, l)
}
