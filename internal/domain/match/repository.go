package match

import (
	"context"
	"time"
)

type Repository interface {
	CreateAll(ctx context.Context, ms []*Match) error
	GetByMatchID(ctx context.Context, matchID string) (*Match, error)
	GetByMatchIDForUpdate(ctx context.Context, matchID string) (*Match, error)
	// NextPendingForLoan returns the lowest-ranked pending sibling, or
	// ErrNotFound when the candidate list is exhausted.
	NextPendingForLoan(ctx context.Context, loanNumericID uint64) (*Match, error)
	// MarkSiblingsSkipped resolves every other pending match for the loan.
	MarkSiblingsSkipped(ctx context.Context, loanNumericID uint64, acceptedID uint64) error
	ListPendingExpired(ctx context.Context, asOf time.Time) ([]*Match, error)
	Save(ctx context.Context, m *Match) error
}
