package voucher

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// Create inserts a new vouch. Returns ErrDuplicateVouch when the
	// (voucher_user, vouchee_user) pair already exists.
	Create(ctx context.Context, r *Record) error
	ListActiveByVouchee(ctx context.Context, voucheeUserID string) ([]*Record, error)
	// LinkLoan inserts the (record, loan) link. Returns false when the link
	// already exists, in which case the caller must not touch the counters.
	LinkLoan(ctx context.Context, recordID uint64, loanID string) (bool, error)
	// CompleteLink flips an active link to completed. Returns false when the
	// link is absent or already completed.
	CompleteLink(ctx context.Context, recordID uint64, loanID string) (bool, error)
	// Counter and standing updates are store-level relative deltas.
	AddLoansActive(ctx context.Context, recordID uint64, delta int) error
	AddLoansCompleted(ctx context.Context, recordID uint64, delta int) error
	AddStanding(ctx context.Context, recordID uint64, delta decimal.Decimal) error
	Save(ctx context.Context, r *Record) error
}
