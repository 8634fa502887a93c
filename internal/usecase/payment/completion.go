package payment

import (
	"context"
	"errors"
	"fmt"

	"trustlend-backend/internal/domain/borrower"
	"trustlend-backend/internal/domain/lender"
	loanDomain "trustlend-backend/internal/domain/loan"
	"trustlend-backend/internal/domain/notification"
	trustDomain "trustlend-backend/internal/domain/trust"
	"trustlend-backend/internal/domain/uow"

	"github.com/sirupsen/logrus"
)

// completeIfPaidOff detects and records loan completion. A loan is complete
// when no unpaid schedule entries remain, or nothing is owed, or it is
// already marked completed. Recording is idempotent through the completion
// event's dedupe key: only the call that creates the event runs the
// downstream pipeline (voucher settlement, capital release, tier advance).
func (u *Usecase) completeIfPaidOff(ctx context.Context, loanID, borrowerID string) (bool, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return false, fmt.Errorf("load loan: %w", err)
	}

	done := l.Status == loanDomain.StatusCompleted
	if !done {
		unpaid, err := u.schedules.CountUnpaidByLoan(ctx, l.ID)
		if err != nil {
			return false, fmt.Errorf("count unpaid: %w", err)
		}
		done = unpaid == 0 || !l.AmountRemaining.IsPositive()
	}
	if !done {
		return false, nil
	}

	dedupe := trustDomain.CompletionDedupeKey(loanID, borrowerID)
	var recordedNow bool
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, locked *loanDomain.Loan) error {
		if _, ferr := r.Trust.FindByDedupeKey(ctx, dedupe); ferr == nil {
			return nil // completion already recorded
		} else if !errors.Is(ferr, trustDomain.ErrNotFound) {
			return ferr
		}

		firstLoan := false
		if p, perr := r.Borrowers.GetByUserID(ctx, borrowerID); perr == nil {
			firstLoan = p.FirstTime()
		}
		eventType, impact := trustDomain.EventLoanCompleted, trustDomain.ImpactLoanCompleted
		if firstLoan {
			eventType, impact = trustDomain.EventFirstLoanCompleted, trustDomain.ImpactFirstLoanCompleted
		}

		if locked.Status != loanDomain.StatusCompleted {
			locked.SetStatus(loanDomain.StatusCompleted, u.now())
			if serr := r.Loans.Save(ctx, locked); serr != nil {
				return serr
			}
		}

		key := dedupe
		if cerr := r.Trust.Create(ctx, &trustDomain.Event{
			UserID:      borrowerID,
			LoanID:      loanID,
			EventType:   eventType,
			ScoreImpact: impact,
			DedupeKey:   &key,
		}); cerr != nil {
			return cerr
		}
		recordedNow = true
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("record completion: %w", err)
	}
	if !recordedNow {
		return true, nil
	}

	// Downstream bookkeeping: each step is best-effort and independently
	// retryable; the recorded completion is never rolled back over it. The
	// voucher pipeline is awaited to completion before returning.
	if _, verr := u.vouchers.OnVoucheeLoanCompleted(ctx, borrowerID, loanID); verr != nil {
		u.log.WithError(verr).WithField("loan_id", loanID).Warn("payment: voucher completion pipeline failed")
	}
	u.releaseLenderCapital(ctx, l)
	u.advanceBorrower(ctx, borrowerID)
	u.notifyCompletion(ctx, l)
	return true, nil
}

// releaseLenderCapital returns the principal from the lender's reserve and
// credits the realized interest to their pool, as one atomic delta.
func (u *Usecase) releaseLenderCapital(ctx context.Context, l *loanDomain.Loan) {
	if !l.HasLender() {
		return
	}
	pref, err := u.lenders.GetByOwner(ctx, l.LenderID, l.BusinessLenderID)
	if err != nil {
		if !errors.Is(err, lender.ErrNotFound) {
			u.log.WithError(err).WithField("loan_id", l.LoanID).Warn("payment: lender lookup failed")
		}
		return
	}
	if err := u.lenders.ReleaseCapital(ctx, pref.PreferenceID, l.Amount, l.TotalInterest); err != nil {
		u.log.WithError(err).WithFields(logrus.Fields{
			"loan_id":       l.LoanID,
			"preference_id": pref.PreferenceID,
		}).Warn("payment: capital release failed")
	}
}

func (u *Usecase) advanceBorrower(ctx context.Context, borrowerID string) {
	p, err := u.borrowers.GetByUserID(ctx, borrowerID)
	if err != nil {
		if errors.Is(err, borrower.ErrNotFound) {
			return
		}
		u.log.WithError(err).WithField("user_id", borrowerID).Warn("payment: borrower load failed")
		return
	}
	p.RecordCompletion(u.tierLoansToAdvance)
	if err := u.borrowers.Save(ctx, p); err != nil {
		u.log.WithError(err).WithField("user_id", borrowerID).Warn("payment: tier advance failed")
	}
}

func (u *Usecase) notifyCompletion(ctx context.Context, l *loanDomain.Loan) {
	intents := []notification.Intent{{
		UserID:      l.BorrowerID,
		Type:        notification.TypeLoanCompleted,
		Message:     fmt.Sprintf("loan %s is fully repaid", l.LoanID),
		ReferenceID: l.LoanID,
	}}
	if l.LenderID != nil {
		intents = append(intents, notification.Intent{
			UserID:      *l.LenderID,
			Type:        notification.TypeLoanCompleted,
			Message:     fmt.Sprintf("loan %s you funded is fully repaid", l.LoanID),
			ReferenceID: l.LoanID,
		})
	} else if l.BusinessLenderID != nil {
		intents = append(intents, notification.Intent{
			UserID:      *l.BusinessLenderID,
			Type:        notification.TypeLoanCompleted,
			Message:     fmt.Sprintf("loan %s you funded is fully repaid", l.LoanID),
			ReferenceID: l.LoanID,
		})
	}
	for _, in := range intents {
		if err := u.notify.Notify(ctx, in); err != nil {
			u.log.WithError(err).WithField("user_id", in.UserID).Warn("payment: completion notification failed")
		}
	}
}
