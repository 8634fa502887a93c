package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trustlend-backend/internal/domain/borrower"
	"trustlend-backend/internal/domain/lender"
	loanDomain "trustlend-backend/internal/domain/loan"
	"trustlend-backend/internal/domain/notification"
	trustDomain "trustlend-backend/internal/domain/trust"
	"trustlend-backend/internal/domain/uow"
	trustuc "trustlend-backend/internal/usecase/trust"
	voucheruc "trustlend-backend/internal/usecase/voucher"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidPayment = errors.New("invalid payment input")

// Usecase is the single choke point every payment-success path funnels
// through: provider webhooks, cron auto-pay, manually confirmed proofs. It
// is safe to invoke more than once for the same logical payment; the trust
// event's dedupe key, enforced by a unique index, guards the financial
// application.
type Usecase struct {
	uow       uow.UnitOfWork
	loans     loanDomain.Repository
	schedules loanDomain.ScheduleRepository
	borrowers borrower.Repository
	lenders   lender.Repository
	trust     *trustuc.Usecase
	vouchers  *voucheruc.Usecase
	notify    notification.Sink
	log       *logrus.Logger
	now       func() time.Time

	// completions at the current tier needed to advance one tier
	tierLoansToAdvance int
}

func NewUsecase(
	tx uow.UnitOfWork,
	loans loanDomain.Repository,
	schedules loanDomain.ScheduleRepository,
	borrowers borrower.Repository,
	lenders lender.Repository,
	trust *trustuc.Usecase,
	vouchers *voucheruc.Usecase,
	notify notification.Sink,
	log *logrus.Logger,
	tierLoansToAdvance int,
) *Usecase {
	if log == nil {
		log = logrus.New()
	}
	if tierLoansToAdvance <= 0 {
		tierLoansToAdvance = 3
	}
	return &Usecase{
		uow:                tx,
		loans:              loans,
		schedules:          schedules,
		borrowers:          borrowers,
		lenders:            lenders,
		trust:              trust,
		vouchers:           vouchers,
		notify:             notify,
		log:                log,
		now:                func() time.Time { return time.Now().UTC() },
		tierLoansToAdvance: tierLoansToAdvance,
	}
}

// WithClock overrides the handler clock for tests.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

type CompletedInput struct {
	LoanID     string
	BorrowerID string
	PaymentID  string
	Amount     decimal.Decimal
	DueDate    *time.Time
	PaidDate   *time.Time
	// SkipUserStats indicates an upstream step already updated the borrower's
	// aggregate payment counters for this payment.
	SkipUserStats bool
}

type Result struct {
	TrustScoreUpdated bool `json:"trust_score_updated"`
	LoanCompleted     bool `json:"loan_completed"`
	// Duplicate flags an idempotent no-op: the payment was already applied
	// and the call performed no new financial work.
	Duplicate bool `json:"duplicate"`
	NewScore  int  `json:"new_score"`
}

// DaysFromDue classifies payment timing; a missing due date counts as on time.
func DaysFromDue(dueDate, paidDate *time.Time) int {
	if dueDate == nil || paidDate == nil {
		return 0
	}
	due := dueDate.Truncate(24 * time.Hour)
	paid := paidDate.Truncate(24 * time.Hour)
	return int(paid.Sub(due).Hours() / 24)
}

// OnPaymentCompleted applies one successful money movement. Steps: dedupe
// check, timing classification + trust event + financial application (one
// transaction), voucher hook, borrower stats, completion detection, score.
// Every sub-step after the financial transaction is best-effort and
// independently retryable by re-invoking the handler.
func (u *Usecase) OnPaymentCompleted(ctx context.Context, in CompletedInput) (*Result, error) {
	if in.LoanID == "" || in.BorrowerID == "" || in.PaymentID == "" || in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPayment
	}
	out := &Result{}

	dedupe := trustDomain.PaymentDedupeKey(in.LoanID, in.BorrowerID, in.PaymentID)
	applied, daysFromDue, err := u.applyFinancial(ctx, in, dedupe)
	if err != nil {
		return nil, err
	}
	out.Duplicate = !applied
	out.TrustScoreUpdated = applied

	if applied {
		// Awaited: short-lived execution environments may kill the process
		// right after the response, so nothing here is fire-and-forget.
		if verr := u.vouchers.OnVoucheePaymentMade(ctx, in.BorrowerID, in.LoanID, daysFromDue); verr != nil {
			u.log.WithError(verr).WithField("loan_id", in.LoanID).Warn("payment: voucher payment hook failed")
		}
		if !in.SkipUserStats {
			u.updateStats(ctx, in.BorrowerID, daysFromDue)
		}
		if _, terr := u.trust.Recalculate(ctx, in.BorrowerID); terr != nil {
			u.log.WithError(terr).WithField("user_id", in.BorrowerID).Warn("payment: trust recalculation failed")
		}
	}

	// Completion check runs even on a duplicate call: a caller may
	// legitimately re-invoke after a crash before completion was recorded.
	completed, err := u.completeIfPaidOff(ctx, in.LoanID, in.BorrowerID)
	if err != nil {
		u.log.WithError(err).WithField("loan_id", in.LoanID).Warn("payment: completion check failed")
	}
	out.LoanCompleted = completed

	if completed {
		// Recomputed, not cached, so the caller observes the completion bonus.
		score, err := u.trust.Recalculate(ctx, in.BorrowerID)
		if err != nil {
			u.log.WithError(err).WithField("user_id", in.BorrowerID).Warn("payment: post-completion recalculation failed")
			score, _ = u.trust.GetScore(ctx, in.BorrowerID)
		}
		out.NewScore = score
	} else {
		score, err := u.trust.GetScore(ctx, in.BorrowerID)
		if err != nil {
			u.log.WithError(err).WithField("user_id", in.BorrowerID).Warn("payment: score read failed")
		}
		out.NewScore = score
	}
	return out, nil
}

// applyFinancial runs the idempotency-guarded transaction: credit the loan,
// settle the matching schedule entry and append the timing trust event. The
// event's unique dedupe key makes the whole block exactly-once; when the key
// already exists nothing is mutated and applied=false.
func (u *Usecase) applyFinancial(ctx context.Context, in CompletedInput, dedupe string) (bool, int, error) {
	var (
		applied     bool
		daysFromDue int
	)
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if _, ferr := r.Trust.FindByDedupeKey(ctx, dedupe); ferr == nil {
			return nil // already applied
		} else if !errors.Is(ferr, trustDomain.ErrNotFound) {
			return ferr
		}

		due := in.DueDate
		paid := in.PaidDate
		if paid == nil {
			now := u.now()
			paid = &now
		}

		entry, eerr := r.Schedules.NextUnpaidByLoan(ctx, l.ID)
		switch {
		case eerr == nil:
			if due == nil {
				d := entry.DueDate
				due = &d
			}
			entry.IsPaid = true
			entry.Status = loanDomain.EntryPaid
			entry.PaidAt = paid
			pid := in.PaymentID
			entry.PaymentID = &pid
			if serr := r.Schedules.Save(ctx, entry); serr != nil {
				return serr
			}
		case errors.Is(eerr, gorm.ErrRecordNotFound):
			// overpayment or out-of-schedule payment; the loan still credits
		default:
			return eerr
		}

		l.ApplyPayment(in.Amount)
		if serr := r.Loans.Save(ctx, l); serr != nil {
			return serr
		}

		daysFromDue = DaysFromDue(due, paid)
		eventType, impact := trustDomain.TimingEvent(daysFromDue)
		key := dedupe
		if cerr := r.Trust.Create(ctx, &trustDomain.Event{
			UserID:      in.BorrowerID,
			LoanID:      in.LoanID,
			PaymentID:   in.PaymentID,
			EventType:   eventType,
			ScoreImpact: impact,
			DedupeKey:   &key,
		}); cerr != nil {
			// The unique index is the authoritative guard; a concurrent
			// writer beating us here must abort the whole block.
			return cerr
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("apply payment: %w", err)
	}
	return applied, daysFromDue, nil
}

// updateStats folds the payment into the borrower's aggregate counters.
func (u *Usecase) updateStats(ctx context.Context, borrowerID string, daysFromDue int) {
	c := borrower.PaymentCounters{Made: 1}
	switch {
	case daysFromDue < -2:
		c.Early = 1
	case daysFromDue <= 0:
		c.OnTime = 1
	default:
		c.Late = 1
	}
	if err := u.borrowers.AddPaymentCounters(ctx, borrowerID, c); err != nil {
		u.log.WithError(err).WithField("user_id", borrowerID).Warn("payment: stats update failed")
	}
}
