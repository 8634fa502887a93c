package uow

import (
	"context"

	"trustlend-backend/internal/domain/borrower"
	"trustlend-backend/internal/domain/lender"
	"trustlend-backend/internal/domain/loan"
	"trustlend-backend/internal/domain/match"
	"trustlend-backend/internal/domain/trust"
	"trustlend-backend/internal/domain/voucher"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Loans     loan.Repository
	Schedules loan.ScheduleRepository
	Matches   match.Repository
	Trust     trust.Repository
	Vouchers  voucher.Repository
	Lenders   lender.Repository
	Borrowers borrower.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
