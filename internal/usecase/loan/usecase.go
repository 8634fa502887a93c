package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	loanDomain "trustlend-backend/internal/domain/loan"
	eligibilityUc "trustlend-backend/internal/usecase/eligibility"
	"trustlend-backend/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrDuplicatePending = errors.New("borrower already has a pending loan request")
	ErrNotEligible      = errors.New("borrower is not eligible for this loan")
)

type Usecase struct {
	loans       loanDomain.Repository
	schedules   loanDomain.ScheduleRepository
	eligibility *eligibilityUc.Usecase
	log         *logrus.Logger
	now         func() time.Time
}

func NewUsecase(loans loanDomain.Repository, schedules loanDomain.ScheduleRepository, eligibility *eligibilityUc.Usecase, log *logrus.Logger) *Usecase {
	return &Usecase{
		loans:       loans,
		schedules:   schedules,
		eligibility: eligibility,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

type CreateInput struct {
	BorrowerID string
	Amount     decimal.Decimal
	Currency   string

	// Requested terms. Rate may be overridden by the matched lender's
	// preference when the loan is funded through matching.
	InterestRate      decimal.Decimal
	InterestType      loanDomain.InterestType
	Frequency         loanDomain.Frequency
	TotalInstallments int

	// Which pool the borrower wants to draw from; gates eligibility.
	LenderType eligibilityUc.LenderType
}

// NotEligibleError carries the eligibility verdict so callers can surface
// the concrete blocking condition.
type NotEligibleError struct {
	Verdict *eligibilityUc.Result
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("not eligible: %s", e.Verdict.Reason)
}

func (e *NotEligibleError) Unwrap() error { return ErrNotEligible }

// Create registers a new loan request in pending state, priced but unfunded.
// Matching later assigns the lender and may re-price at the lender's rate.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*loanDomain.Loan, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	verdict, err := u.eligibility.CheckEligibility(ctx, in.BorrowerID, in.LenderType, &in.Amount)
	if err != nil {
		return nil, fmt.Errorf("check eligibility: %w", err)
	}
	if !verdict.CanBorrow {
		return nil, &NotEligibleError{Verdict: verdict}
	}

	existing, err := u.loans.GetPendingLoanByBorrowerID(ctx, in.BorrowerID)
	if err != nil && !errors.Is(err, loanDomain.ErrNotFound) {
		return nil, fmt.Errorf("check pending loans: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicatePending
	}

	l := &loanDomain.Loan{
		LoanID:             id.NewID32(),
		BorrowerID:         in.BorrowerID,
		Amount:             in.Amount.Round(2),
		Currency:           in.Currency,
		InterestRate:       in.InterestRate,
		InterestType:       in.InterestType,
		RepaymentFrequency: in.Frequency,
		TotalInstallments:  in.TotalInstallments,
		Status:             loanDomain.StatusPending,
		StatusUpdatedAt:    u.now(),
	}
	if l.Currency == "" {
		l.Currency = "USD"
	}
	loanDomain.PriceLoan(l)

	if err := u.loans.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create loan: %w", err)
	}

	u.log.WithFields(logrus.Fields{
		"loan_id":     l.LoanID,
		"borrower_id": l.BorrowerID,
		"amount":      l.Amount.String(),
		"total":       l.TotalAmount.String(),
	}).Info("loan request created")
	return l, nil
}

// Get returns one loan by public id.
func (u *Usecase) Get(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return u.loans.GetByLoanID(ctx, loanID)
}

// Schedule returns the loan's installment schedule, oldest first. For an
// unfunded loan with no persisted schedule yet, a provisional one is computed
// from the requested terms without being stored.
func (u *Usecase) Schedule(ctx context.Context, loanID string) (*loanDomain.Loan, []*loanDomain.PaymentScheduleEntry, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := u.schedules.ListByLoan(ctx, l.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list schedule: %w", err)
	}
	if len(entries) == 0 &&
		(l.Status == loanDomain.StatusPending || l.Status == loanDomain.StatusMatched) {
		entries = loanDomain.BuildSchedule(l, u.now())
	}
	return l, entries, nil
}

func validateCreate(in CreateInput) error {
	switch {
	case in.BorrowerID == "":
		return fmt.Errorf("%w: borrower_id required", loanDomain.ErrInvalidInput)
	case !in.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", loanDomain.ErrInvalidInput)
	case in.InterestRate.IsNegative():
		return fmt.Errorf("%w: interest_rate must not be negative", loanDomain.ErrInvalidInput)
	case in.TotalInstallments <= 0:
		return fmt.Errorf("%w: total_installments must be positive", loanDomain.ErrInvalidInput)
	}
	switch in.InterestType {
	case loanDomain.InterestSimple, loanDomain.InterestCompound:
	default:
		return fmt.Errorf("%w: interest_type must be simple or compound", loanDomain.ErrInvalidInput)
	}
	switch in.Frequency {
	case loanDomain.FrequencyWeekly, loanDomain.FrequencyBiweekly, loanDomain.FrequencyMonthly:
	default:
		return fmt.Errorf("%w: repayment_frequency must be weekly, biweekly or monthly", loanDomain.ErrInvalidInput)
	}
	return nil
}
