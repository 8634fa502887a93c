package voucher

import (
	"context"
	"fmt"

	trustDomain "trustlend-backend/internal/domain/trust"
	domain "trustlend-backend/internal/domain/voucher"
	trustuc "trustlend-backend/internal/usecase/trust"
	"trustlend-backend/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Usecase tracks third-party vouches and moves each voucher's standing with
// the vouchee's loan behavior. Every hook is idempotent per (voucher, loan)
// through the voucher_loan_links unique key, so it does not matter which
// acceptance code path fires it, or how many times.
type Usecase struct {
	vouchers domain.Repository
	trust    *trustuc.Usecase
	log      *logrus.Logger
}

func NewUsecase(vouchers domain.Repository, trust *trustuc.Usecase, log *logrus.Logger) *Usecase {
	if log == nil {
		log = logrus.New()
	}
	return &Usecase{vouchers: vouchers, trust: trust, log: log}
}

// CompletionResult reports how many voucher relationships a completion touched.
type CompletionResult struct {
	VouchersUpdated int `json:"vouchers_updated"`
}

// Vouch records one user's endorsement of a borrower. The vouchee earns a
// trust bonus, once per pair; the record's duplicate guard is the
// (voucher_user, vouchee_user) unique key.
func (u *Usecase) Vouch(ctx context.Context, voucherUserID, voucheeUserID string) (*domain.Record, error) {
	if voucherUserID == voucheeUserID {
		return nil, domain.ErrSelfVouch
	}
	rec := &domain.Record{
		VoucherID:     id.NewID32(),
		VoucherUserID: voucherUserID,
		VoucheeUserID: voucheeUserID,
		Active:        true,
		StandingScore: decimal.Zero,
	}
	if err := u.vouchers.Create(ctx, rec); err != nil {
		return nil, err
	}
	if u.trust != nil {
		key := trustDomain.VouchDedupeKey(voucherUserID, voucheeUserID)
		if _, err := u.trust.RecordEvent(ctx, &trustDomain.Event{
			UserID:      voucheeUserID,
			EventType:   trustDomain.EventVouchReceived,
			ScoreImpact: trustDomain.ImpactVouchReceived,
			DedupeKey:   &key,
		}); err != nil {
			u.log.WithError(err).WithFields(logrus.Fields{
				"voucher_user": voucherUserID,
				"vouchee_user": voucheeUserID,
			}).Warn("voucher: vouch-received bonus failed")
		}
	}
	return rec, nil
}

// OnVoucheeNewLoan increments loans_active for every active voucher of the
// borrower, exactly once per loan.
func (u *Usecase) OnVoucheeNewLoan(ctx context.Context, voucheeID, loanID string) error {
	records, err := u.vouchers.ListActiveByVouchee(ctx, voucheeID)
	if err != nil {
		return fmt.Errorf("list vouchers: %w", err)
	}
	for _, rec := range records {
		created, err := u.vouchers.LinkLoan(ctx, rec.ID, loanID)
		if err != nil {
			return fmt.Errorf("link voucher %s loan %s: %w", rec.VoucherID, loanID, err)
		}
		if !created {
			// already counted for this loan
			continue
		}
		if err := u.vouchers.AddLoansActive(ctx, rec.ID, 1); err != nil {
			return fmt.Errorf("voucher %s loans_active: %w", rec.VoucherID, err)
		}
	}
	return nil
}

// OnVoucheePaymentMade adjusts each voucher's standing for the vouchee's
// payment timing: early and on-time payments strengthen the relationship,
// late payments weaken it.
func (u *Usecase) OnVoucheePaymentMade(ctx context.Context, voucheeID, loanID string, daysFromDue int) error {
	records, err := u.vouchers.ListActiveByVouchee(ctx, voucheeID)
	if err != nil {
		return fmt.Errorf("list vouchers: %w", err)
	}
	adj := standingForTiming(daysFromDue)
	for _, rec := range records {
		if err := u.vouchers.AddStanding(ctx, rec.ID, adj); err != nil {
			return fmt.Errorf("voucher %s standing: %w", rec.VoucherID, err)
		}
	}
	return nil
}

// OnVoucheeLoanCompleted settles every voucher relationship for a completed
// loan: loans_active returns the slot, loans_completed and standing grow, and
// the voucher earns a trust event of their own. Callers await this; the
// completion is not durable until it returns.
func (u *Usecase) OnVoucheeLoanCompleted(ctx context.Context, voucheeID, loanID string) (CompletionResult, error) {
	var out CompletionResult
	records, err := u.vouchers.ListActiveByVouchee(ctx, voucheeID)
	if err != nil {
		return out, fmt.Errorf("list vouchers: %w", err)
	}
	for _, rec := range records {
		flipped, err := u.vouchers.CompleteLink(ctx, rec.ID, loanID)
		if err != nil {
			return out, fmt.Errorf("complete link voucher %s: %w", rec.VoucherID, err)
		}
		if !flipped {
			// no active link: either never counted or already settled
			continue
		}
		if err := u.vouchers.AddLoansActive(ctx, rec.ID, -1); err != nil {
			return out, err
		}
		if err := u.vouchers.AddLoansCompleted(ctx, rec.ID, 1); err != nil {
			return out, err
		}
		if err := u.vouchers.AddStanding(ctx, rec.ID, domain.StandingLoanCompleted); err != nil {
			return out, err
		}
		if u.trust != nil {
			key := trustDomain.CompletionDedupeKey(loanID, rec.VoucherUserID)
			if _, err := u.trust.RecordEvent(ctx, &trustDomain.Event{
				UserID:      rec.VoucherUserID,
				LoanID:      loanID,
				EventType:   trustDomain.EventVoucheeCompleted,
				ScoreImpact: trustDomain.ImpactVoucheeCompleted,
				DedupeKey:   &key,
			}); err != nil {
				u.log.WithError(err).WithFields(logrus.Fields{
					"voucher_user": rec.VoucherUserID,
					"loan_id":      loanID,
				}).Warn("voucher: trust bonus failed")
			}
		}
		out.VouchersUpdated++
	}
	return out, nil
}

func standingForTiming(daysFromDue int) decimal.Decimal {
	switch {
	case daysFromDue < -2:
		return domain.StandingPaymentEarly
	case daysFromDue <= 0:
		return domain.StandingPaymentOnTime
	default:
		return domain.StandingPaymentLate
	}
}
