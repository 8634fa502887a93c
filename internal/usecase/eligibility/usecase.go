package eligibility

import (
	"context"
	"errors"
	"fmt"
	"time"

	borrowerDomain "trustlend-backend/internal/domain/borrower"
	lenderDomain "trustlend-backend/internal/domain/lender"
	loanDomain "trustlend-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type LenderType string

const (
	LenderPersonal LenderType = "personal"
	LenderBusiness LenderType = "business"
)

var ErrInvalidLenderType = errors.New("invalid lender type")

// RepaymentThreshold is the universal rule: every open loan must be at least
// this fraction repaid (against principal) before a new loan may be
// requested. Boundary inclusive.
var RepaymentThreshold = decimal.RequireFromString("0.75")

type Usecase struct {
	borrowers borrowerDomain.Repository
	loans     loanDomain.Repository
	lenders   lenderDomain.Repository
	now       func() time.Time
}

func NewUsecase(borrowers borrowerDomain.Repository, loans loanDomain.Repository, lenders lenderDomain.Repository) *Usecase {
	return &Usecase{
		borrowers: borrowers,
		loans:     loans,
		lenders:   lenders,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

type Result struct {
	CanBorrow bool   `json:"can_borrow"`
	Reason    string `json:"reason,omitempty"`

	// MaxAmount is the applicable ceiling; Unlimited flags tier 6 / no cap.
	MaxAmount       decimal.Decimal `json:"max_amount"`
	AvailableAmount decimal.Decimal `json:"available_amount"`
	Unlimited       bool            `json:"unlimited,omitempty"`

	// Populated with the specific blocking condition so borrowers see a
	// concrete path forward, not a generic failure.
	OutstandingDebt      decimal.Decimal `json:"outstanding_debt,omitempty"`
	RequiredToUnlock     decimal.Decimal `json:"required_to_unlock,omitempty"`
	BlockingLoanID       string          `json:"blocking_loan_id,omitempty"`
	RestrictionDaysLeft  int             `json:"restriction_days_left,omitempty"`
}

// CheckEligibility decides whether the borrower may request a new loan, and
// at what amount. Read-only: consulted before a request is accepted.
func (u *Usecase) CheckEligibility(ctx context.Context, borrowerID string, lenderType LenderType, requestedAmount *decimal.Decimal) (*Result, error) {
	if lenderType != LenderPersonal && lenderType != LenderBusiness {
		return nil, ErrInvalidLenderType
	}

	profile, err := u.borrowers.GetByUserID(ctx, borrowerID)
	if err != nil {
		if !errors.Is(err, borrowerDomain.ErrNotFound) {
			return nil, fmt.Errorf("load borrower: %w", err)
		}
		// unknown borrower = brand-new first-time profile
		profile = &borrowerDomain.Profile{UserID: borrowerID, BorrowingTier: 1}
	}

	open, err := u.loans.ListOpenByBorrowerID(ctx, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("list open loans: %w", err)
	}

	// Hard blocks come first, in order.
	if profile.PermanentlyBlocked() {
		return &Result{
			CanBorrow:       false,
			Reason:          "account blocked until outstanding debt is cleared",
			OutstandingDebt: outstandingOf(open),
		}, nil
	}
	now := u.now()
	if profile.Restricted(now) {
		days := int(profile.RestrictionEndsAt.Sub(now).Hours()/24) + 1
		return &Result{
			CanBorrow:           false,
			Reason:              fmt.Sprintf("borrowing restricted for %d more days", days),
			RestrictionDaysLeft: days,
		}, nil
	}

	// Universal repayment rule: the least-repaid open loan gates everything.
	if worst := leastRepaid(open); worst != nil && worst.PaidRatio().LessThan(RepaymentThreshold) {
		needed := worst.Amount.Mul(RepaymentThreshold).Sub(worst.AmountPaid).Round(2)
		return &Result{
			CanBorrow:        false,
			Reason:           fmt.Sprintf("loan %s must reach 75%% repaid; %s more required", worst.LoanID, needed.String()),
			RequiredToUnlock: needed,
			BlockingLoanID:   worst.LoanID,
		}, nil
	}

	switch lenderType {
	case LenderBusiness:
		return u.businessEligibility(ctx, profile, requestedAmount)
	default:
		return u.personalEligibility(profile, open, requestedAmount), nil
	}
}

// businessEligibility has no tier ceiling; the eligible amount is the best
// applicable limit across active lender preferences accepting this borrower
// category.
func (u *Usecase) businessEligibility(ctx context.Context, profile *borrowerDomain.Profile, requested *decimal.Decimal) (*Result, error) {
	prefs, err := u.lenders.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lender preferences: %w", err)
	}
	firstTime := profile.FirstTime()
	best := decimal.Zero
	for _, p := range prefs {
		if firstTime && !p.AllowFirstTimeBorrowers {
			continue
		}
		if limit := p.LimitFor(firstTime); limit.GreaterThan(best) {
			best = limit
		}
	}
	out := &Result{MaxAmount: best, AvailableAmount: best}
	if best.IsZero() {
		out.Reason = "no active lender accepts this borrower category"
		return out, nil
	}
	if requested != nil && requested.GreaterThan(best) {
		out.Reason = fmt.Sprintf("requested amount exceeds best lender limit of %s", best.String())
		return out, nil
	}
	out.CanBorrow = true
	return out, nil
}

// personalEligibility applies the fixed tier ceiling, minus what is already
// outstanding.
func (u *Usecase) personalEligibility(profile *borrowerDomain.Profile, open []*loanDomain.Loan, requested *decimal.Decimal) *Result {
	ceiling, bounded := borrowerDomain.TierCeiling(profile.BorrowingTier)
	if !bounded {
		out := &Result{CanBorrow: true, Unlimited: true}
		if requested != nil {
			out.AvailableAmount = *requested
		}
		return out
	}

	available := ceiling.Sub(outstandingOf(open))
	if available.IsNegative() {
		available = decimal.Zero
	}
	out := &Result{MaxAmount: ceiling, AvailableAmount: available}
	if available.IsZero() {
		out.Reason = fmt.Sprintf("tier %d ceiling of %s is fully utilized", profile.BorrowingTier, ceiling.String())
		return out
	}
	if requested != nil && requested.GreaterThan(available) {
		out.Reason = fmt.Sprintf("requested amount exceeds available %s at tier %d", available.String(), profile.BorrowingTier)
		return out
	}
	out.CanBorrow = true
	return out
}

// outstandingOf sums the unrepaid principal across open loans.
func outstandingOf(open []*loanDomain.Loan) decimal.Decimal {
	total := decimal.Zero
	for _, l := range open {
		rem := l.Amount.Sub(l.AmountPaid)
		if rem.IsPositive() {
			total = total.Add(rem)
		}
	}
	return total
}

// leastRepaid returns the open loan with the lowest paid ratio.
func leastRepaid(open []*loanDomain.Loan) *loanDomain.Loan {
	var worst *loanDomain.Loan
	for _, l := range open {
		if worst == nil || l.PaidRatio().LessThan(worst.PaidRatio()) {
			worst = l
		}
	}
	return worst
}
