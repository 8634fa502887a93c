package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByNumericID(ctx context.Context, pk uint64) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetPendingLoanByBorrowerID(ctx context.Context, borrowerID string) (*Loan, error)
	// ListOpenByBorrowerID returns the borrower's loans still carrying a
	// balance (pending, matched or active).
	ListOpenByBorrowerID(ctx context.Context, borrowerID string) ([]*Loan, error)
	Save(ctx context.Context, l *Loan) error
}

type ScheduleRepository interface {
	CreateEntries(ctx context.Context, entries []*PaymentScheduleEntry) error
	// ReplaceForLoan drops any provisional schedule and installs the final one.
	ReplaceForLoan(ctx context.Context, loanNumericID uint64, entries []*PaymentScheduleEntry) error
	ListByLoan(ctx context.Context, loanNumericID uint64) ([]*PaymentScheduleEntry, error)
	CountUnpaidByLoan(ctx context.Context, loanNumericID uint64) (int64, error)
	NextUnpaidByLoan(ctx context.Context, loanNumericID uint64) (*PaymentScheduleEntry, error)
	ListOverdueUnpaid(ctx context.Context, asOf time.Time) ([]*PaymentScheduleEntry, error)
	Save(ctx context.Context, e *PaymentScheduleEntry) error
}
