package loanmock

import (
	"context"
	"time"

	domain "trustlend-backend/internal/domain/loan"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Fill in the function fields a test needs; unfilled lookups fail.
type Repo struct {
	CreateFn                     func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn                func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByNumericIDFn             func(ctx context.Context, pk uint64) (*domain.Loan, error)
	GetByLoanIDForUpdateFn       func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetPendingLoanByBorrowerIDFn func(ctx context.Context, borrowerID string) (*domain.Loan, error)
	ListOpenByBorrowerIDFn       func(ctx context.Context, borrowerID string) ([]*domain.Loan, error)
	SaveFn                       func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByNumericID(ctx context.Context, pk uint64) (*domain.Loan, error) {
	if m.GetByNumericIDFn != nil {
		return m.GetByNumericIDFn(ctx, pk)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetPendingLoanByBorrowerID(ctx context.Context, borrowerID string) (*domain.Loan, error) {
	if m.GetPendingLoanByBorrowerIDFn != nil {
		return m.GetPendingLoanByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListOpenByBorrowerID(ctx context.Context, borrowerID string) ([]*domain.Loan, error) {
	if m.ListOpenByBorrowerIDFn != nil {
		return m.ListOpenByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

var _ domain.ScheduleRepository = (*ScheduleRepo)(nil)

// ScheduleRepo mocks domain.ScheduleRepository in the same style.
type ScheduleRepo struct {
	CreateEntriesFn     func(ctx context.Context, entries []*domain.PaymentScheduleEntry) error
	ReplaceForLoanFn    func(ctx context.Context, loanNumericID uint64, entries []*domain.PaymentScheduleEntry) error
	ListByLoanFn        func(ctx context.Context, loanNumericID uint64) ([]*domain.PaymentScheduleEntry, error)
	CountUnpaidByLoanFn func(ctx context.Context, loanNumericID uint64) (int64, error)
	NextUnpaidByLoanFn  func(ctx context.Context, loanNumericID uint64) (*domain.PaymentScheduleEntry, error)
	ListOverdueUnpaidFn func(ctx context.Context, asOf time.Time) ([]*domain.PaymentScheduleEntry, error)
	SaveFn              func(ctx context.Context, e *domain.PaymentScheduleEntry) error
}

func (m *ScheduleRepo) CreateEntries(ctx context.Context, entries []*domain.PaymentScheduleEntry) error {
	if m.CreateEntriesFn != nil {
		return m.CreateEntriesFn(ctx, entries)
	}
	return nil
}

func (m *ScheduleRepo) ReplaceForLoan(ctx context.Context, loanNumericID uint64, entries []*domain.PaymentScheduleEntry) error {
	if m.ReplaceForLoanFn != nil {
		return m.ReplaceForLoanFn(ctx, loanNumericID, entries)
	}
	return nil
}

func (m *ScheduleRepo) ListByLoan(ctx context.Context, loanNumericID uint64) ([]*domain.PaymentScheduleEntry, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanNumericID)
	}
	return nil, nil
}

func (m *ScheduleRepo) CountUnpaidByLoan(ctx context.Context, loanNumericID uint64) (int64, error) {
	if m.CountUnpaidByLoanFn != nil {
		return m.CountUnpaidByLoanFn(ctx, loanNumericID)
	}
	return 0, nil
}

func (m *ScheduleRepo) NextUnpaidByLoan(ctx context.Context, loanNumericID uint64) (*domain.PaymentScheduleEntry, error) {
	if m.NextUnpaidByLoanFn != nil {
		return m.NextUnpaidByLoanFn(ctx, loanNumericID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *ScheduleRepo) ListOverdueUnpaid(ctx context.Context, asOf time.Time) ([]*domain.PaymentScheduleEntry, error) {
	if m.ListOverdueUnpaidFn != nil {
		return m.ListOverdueUnpaidFn(ctx, asOf)
	}
	return nil, nil
}

func (m *ScheduleRepo) Save(ctx context.Context, e *domain.PaymentScheduleEntry) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, e)
	}
	return nil
}
