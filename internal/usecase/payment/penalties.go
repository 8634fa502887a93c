package payment

import (
	"context"
	"fmt"

	loanDomain "trustlend-backend/internal/domain/loan"
	"trustlend-backend/internal/domain/notification"
	trustDomain "trustlend-backend/internal/domain/trust"

	"github.com/sirupsen/logrus"
)

// OnPaymentFailed records the fixed penalty for a failed transfer. Non-fatal
// to the caller; one penalty per logical payment.
func (u *Usecase) OnPaymentFailed(ctx context.Context, loanID, borrowerID, paymentID string) error {
	key := fmt.Sprintf("fail:%s:%s:%s", loanID, borrowerID, paymentID)
	_, err := u.trust.RecordEvent(ctx, &trustDomain.Event{
		UserID:      borrowerID,
		LoanID:      loanID,
		PaymentID:   paymentID,
		EventType:   trustDomain.EventPaymentFailed,
		ScoreImpact: trustDomain.ImpactPaymentFailed,
		DedupeKey:   &key,
	})
	if err != nil {
		return fmt.Errorf("record payment failure: %w", err)
	}
	return nil
}

// OnPaymentMissed records an overdue-installment penalty scaled with
// lateness.
func (u *Usecase) OnPaymentMissed(ctx context.Context, loanID, borrowerID string, daysOverdue int) error {
	eventType, impact := trustDomain.MissedEvent(daysOverdue)
	if _, err := u.trust.RecordEvent(ctx, &trustDomain.Event{
		UserID:      borrowerID,
		LoanID:      loanID,
		EventType:   eventType,
		ScoreImpact: impact,
	}); err != nil {
		return fmt.Errorf("record missed payment: %w", err)
	}
	return nil
}

// Lateness buckets for the overdue sweep. A schedule entry is penalized once
// when first detected overdue and again each time it crosses into a deeper
// bucket; PenaltyLevel remembers the deepest bucket already charged.
var overdueBuckets = []int{31, 15, 8, 1}

func bucketFor(daysOverdue int) int {
	for _, b := range overdueBuckets {
		if daysOverdue >= b {
			return b
		}
	}
	return 0
}

// SweepMissedPayments is the cron sweep over overdue unpaid schedule
// entries. Returns how many penalties were applied.
func (u *Usecase) SweepMissedPayments(ctx context.Context) (int, error) {
	now := u.now()
	entries, err := u.schedules.ListOverdueUnpaid(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list overdue entries: %w", err)
	}

	penalized := 0
	loans := map[uint64]*loanDomain.Loan{}
	for _, e := range entries {
		daysOverdue := int(now.Sub(e.DueDate).Hours() / 24)
		bucket := bucketFor(daysOverdue)
		if bucket == 0 || bucket <= e.PenaltyLevel {
			continue
		}

		l, ok := loans[e.LoanNumericID]
		if !ok {
			found, lerr := u.loans.GetByNumericID(ctx, e.LoanNumericID)
			if lerr != nil {
				u.log.WithError(lerr).WithField("loan_pk", e.LoanNumericID).Warn("payment: sweep loan load failed")
				continue
			}
			l = found
			loans[e.LoanNumericID] = l
		}

		if err := u.OnPaymentMissed(ctx, l.LoanID, l.BorrowerID, daysOverdue); err != nil {
			u.log.WithError(err).WithField("loan_id", l.LoanID).Warn("payment: sweep penalty failed")
			continue
		}
		e.Status = loanDomain.EntryOverdue
		e.PenaltyLevel = bucket
		if err := u.schedules.Save(ctx, e); err != nil {
			u.log.WithError(err).WithField("loan_id", l.LoanID).Warn("payment: sweep entry update failed")
			continue
		}
		if nerr := u.notify.Notify(ctx, notification.Intent{
			UserID:      l.BorrowerID,
			Type:        notification.TypePaymentLate,
			Message:     fmt.Sprintf("installment %d of loan %s is %d days overdue", e.InstallmentNo, l.LoanID, daysOverdue),
			ReferenceID: l.LoanID,
		}); nerr != nil {
			u.log.WithError(nerr).WithFields(logrus.Fields{"loan_id": l.LoanID}).Warn("payment: overdue notification failed")
		}
		penalized++
	}
	return penalized, nil
}

