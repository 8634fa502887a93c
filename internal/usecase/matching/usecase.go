package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"trustlend-backend/internal/domain/borrower"
	"trustlend-backend/internal/domain/lender"
	loanDomain "trustlend-backend/internal/domain/loan"
	matchDomain "trustlend-backend/internal/domain/match"
	"trustlend-backend/internal/domain/notification"
	"trustlend-backend/internal/domain/uow"
	voucheruc "trustlend-backend/internal/usecase/voucher"
	"trustlend-backend/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

var (
	ErrLoanNotMatchable = errors.New("loan is not matchable")
	ErrNoCandidates     = errors.New("no candidate lenders")
	ErrInvalidAction    = errors.New("invalid offer action")
)

// Ranking weights: capital availability dominates, historical acceptance
// rate refines. Ties break on preference id, so selection over the same
// inputs always reproduces the same order.
const (
	weightCapital    = 0.7
	weightAcceptance = 0.3
)

// PlatformDefaultRate is the last resolution strategy for the interest rate
// when neither the accepted preference nor the request carries one.
var PlatformDefaultRate = decimal.NewFromInt(12)

type Usecase struct {
	uow       uow.UnitOfWork
	loans     loanDomain.Repository
	matches   matchDomain.Repository
	lenders   lender.Repository
	borrowers borrower.Repository
	vouchers  *voucheruc.Usecase
	notify    notification.Sink
	log       *logrus.Logger
	now       func() time.Time
}

func NewUsecase(
	tx uow.UnitOfWork,
	loans loanDomain.Repository,
	matches matchDomain.Repository,
	lenders lender.Repository,
	borrowers borrower.Repository,
	vouchers *voucheruc.Usecase,
	notify notification.Sink,
	log *logrus.Logger,
) *Usecase {
	if log == nil {
		log = logrus.New()
	}
	return &Usecase{
		uow:       tx,
		loans:     loans,
		matches:   matches,
		lenders:   lenders,
		borrowers: borrowers,
		vouchers:  vouchers,
		notify:    notify,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the engine clock; tests use it to drive expiry.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

type OfferDTO struct {
	MatchID   string    `json:"match_id"`
	LoanID    string    `json:"loan_id"`
	Rank      int       `json:"match_rank"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateOffers matches a pending business-sourced loan against lender
// preferences and creates ranked, time-boxed offers. Personal lending is
// direct and never enters here.
func (u *Usecase) CreateOffers(ctx context.Context, loanID string) ([]OfferDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != loanDomain.StatusPending || l.HasLender() {
		return nil, fmt.Errorf("%w: status=%s", ErrLoanNotMatchable, l.Status)
	}

	firstTime := true
	if p, err := u.borrowers.GetByUserID(ctx, l.BorrowerID); err == nil {
		firstTime = p.FirstTime()
	}

	prefs, err := u.lenders.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lender preferences: %w", err)
	}
	candidates := rankCandidates(prefs, l.Amount, firstTime)
	if len(candidates) == 0 {
		l.MatchStatus = loanDomain.MatchStatusNoMatch
		if serr := u.loans.Save(ctx, l); serr != nil {
			return nil, fmt.Errorf("save loan: %w", serr)
		}
		if nerr := u.notify.Notify(ctx, notification.Intent{
			UserID:      l.BorrowerID,
			Type:        notification.TypeNoMatch,
			Message:     fmt.Sprintf("no lender matched your loan request %s", l.LoanID),
			ReferenceID: l.LoanID,
		}); nerr != nil {
			u.log.WithError(nerr).WithField("loan_id", l.LoanID).Warn("matching: notification failed")
		}
		return nil, ErrNoCandidates
	}

	now := u.now()
	ms := make([]*matchDomain.Match, 0, len(candidates))
	for i, p := range candidates {
		ms = append(ms, &matchDomain.Match{
			MatchID:          id.NewID32(),
			LoanNumericID:    l.ID,
			LoanID:           l.LoanID,
			LenderUserID:     p.LenderUserID,
			LenderBusinessID: p.LenderBusinessID,
			PreferenceID:     p.PreferenceID,
			MatchRank:        i + 1,
			Status:           matchDomain.StatusPending,
			ExpiresAt:        now.Add(matchDomain.OfferTTL),
		})
	}
	if err := u.matches.CreateAll(ctx, ms); err != nil {
		return nil, fmt.Errorf("create matches: %w", err)
	}

	first := ms[0]
	l.CurrentMatchID = &first.MatchID
	l.MatchStatus = loanDomain.MatchStatusMatched
	// Leaving pending closes the re-entry window: a second CreateOffers during
	// the offer TTL would otherwise stack a duplicate ranked batch.
	l.SetStatus(loanDomain.StatusMatched, now)
	if err := u.loans.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("save loan: %w", err)
	}

	for _, m := range ms {
		if err := u.lenders.IncrementOffers(ctx, m.PreferenceID, 1, 0); err != nil {
			u.log.WithError(err).WithField("preference_id", m.PreferenceID).Warn("matching: offer counter failed")
		}
	}
	u.notifyLender(ctx, first, notification.TypeOfferReceived,
		fmt.Sprintf("loan %s is offered to you (rank 1)", l.LoanID))

	out := make([]OfferDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, OfferDTO{MatchID: m.MatchID, LoanID: m.LoanID, Rank: m.MatchRank, Status: string(m.Status), ExpiresAt: m.ExpiresAt})
	}
	return out, nil
}

// rankCandidates filters to coverage and sorts by the weighted score,
// descending, ties on preference id ascending. Deterministic and total.
func rankCandidates(prefs []*lender.Preference, amount decimal.Decimal, firstTime bool) []*lender.Preference {
	eligible := make([]*lender.Preference, 0, len(prefs))
	for _, p := range prefs {
		if p.Covers(amount, firstTime) {
			eligible = append(eligible, p)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		si := weightCapital*eligible[i].AvailableRatio() + weightAcceptance*eligible[i].AcceptanceRate()
		sj := weightCapital*eligible[j].AvailableRatio() + weightAcceptance*eligible[j].AcceptanceRate()
		if si != sj {
			return si > sj
		}
		return eligible[i].PreferenceID < eligible[j].PreferenceID
	})
	return eligible
}

type RespondInput struct {
	MatchID string
	ActorID string
	Action  Action
	Reason  string
}

type RespondResult struct {
	MatchID    string `json:"match_id"`
	LoanID     string `json:"loan_id"`
	Status     string `json:"status"`
	LoanStatus string `json:"loan_status"`
	// NextMatchID is populated when a decline or expiry cascaded the offer
	// to the next-ranked candidate.
	NextMatchID string `json:"next_match_id,omitempty"`
}

// RespondToOffer applies a lender's accept or decline. Expiry is checked at
// the moment of the transition: an accept past expires_at is rejected and
// the offer cascades, while a late decline converges on the same cascade as
// an in-time decline.
func (u *Usecase) RespondToOffer(ctx context.Context, in RespondInput) (*RespondResult, error) {
	switch in.Action {
	case ActionAccept, ActionDecline:
	default:
		return nil, ErrInvalidAction
	}

	m, err := u.matches.GetByMatchID(ctx, in.MatchID)
	if err != nil {
		return nil, err
	}
	if in.ActorID != "" && !actorOwnsMatch(m, in.ActorID) {
		return nil, matchDomain.ErrNotLender
	}

	var (
		res        *RespondResult
		notifyOuts []notification.Intent
		accepted   *acceptedState
		lapsed     bool
	)
	err = u.uow.WithinLoanTx(ctx, m.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
		// Re-read under lock; a concurrent accept/expiry must not double-fire.
		locked, err := r.Matches.GetByMatchIDForUpdate(ctx, in.MatchID)
		if err != nil {
			return err
		}
		if locked.Resolved() {
			return &matchDomain.ResolvedError{Current: locked.Status}
		}
		now := u.now()

		if in.Action == ActionAccept {
			if locked.ExpiredAt(now) {
				// Too late to fund: the offer lapses and cascades exactly as
				// a decline would.
				locked.Status = matchDomain.StatusExpired
				locked.RespondedAt = &now
				if err := r.Matches.Save(ctx, locked); err != nil {
					return err
				}
				next, outs, err := u.cascade(ctx, r, l, now)
				if err != nil {
					return err
				}
				notifyOuts = outs
				res = &RespondResult{MatchID: locked.MatchID, LoanID: l.LoanID, Status: string(locked.Status), LoanStatus: string(l.Status), NextMatchID: next}
				// commit the lapse; the error is reported after
				lapsed = true
				return nil
			}
			st, outs, err := u.accept(ctx, r, l, locked, now)
			if err != nil {
				return err
			}
			accepted = st
			notifyOuts = outs
			res = &RespondResult{MatchID: locked.MatchID, LoanID: l.LoanID, Status: string(locked.Status), LoanStatus: string(l.Status)}
			return nil
		}

		// Decline: post-expiry declines are accepted as normal declines.
		locked.Status = matchDomain.StatusDeclined
		locked.DeclineReason = in.Reason
		locked.RespondedAt = &now
		if err := r.Matches.Save(ctx, locked); err != nil {
			return err
		}
		next, outs, err := u.cascade(ctx, r, l, now)
		if err != nil {
			return err
		}
		notifyOuts = outs
		res = &RespondResult{MatchID: locked.MatchID, LoanID: l.LoanID, Status: string(locked.Status), LoanStatus: string(l.Status), NextMatchID: next}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit, awaited: voucher bookkeeping and notification intents are
	// best-effort; the accepted loan must not be rolled back over them.
	if accepted != nil {
		if verr := u.vouchers.OnVoucheeNewLoan(ctx, accepted.borrowerID, accepted.loanID); verr != nil {
			u.log.WithError(verr).WithField("loan_id", accepted.loanID).Warn("matching: voucher new-loan hook failed")
		}
	}
	for _, n := range notifyOuts {
		if nerr := u.notify.Notify(ctx, n); nerr != nil {
			u.log.WithError(nerr).WithField("user_id", n.UserID).Warn("matching: notification failed")
		}
	}
	if lapsed {
		return res, matchDomain.ErrExpired
	}
	return res, nil
}

type acceptedState struct {
	borrowerID string
	loanID     string
}

func (u *Usecase) accept(ctx context.Context, r uow.Repos, l *loanDomain.Loan, m *matchDomain.Match, now time.Time) (*acceptedState, []notification.Intent, error) {
	if l.HasLender() || (l.Status != loanDomain.StatusPending && l.Status != loanDomain.StatusMatched) {
		return nil, nil, &matchDomain.ResolvedError{Current: matchDomain.StatusSkipped}
	}

	pref, err := r.Lenders.GetByPreferenceID(ctx, m.PreferenceID)
	if err != nil {
		return nil, nil, fmt.Errorf("load preference: %w", err)
	}

	// Interest terms resolve in fixed priority: lender preference, then the
	// request, then the platform default.
	rate, source := l.InterestRate, "request"
	if pref.InterestRate.GreaterThan(decimal.Zero) {
		rate, source = pref.InterestRate, "lender_preference"
	} else if !rate.GreaterThan(decimal.Zero) {
		rate, source = PlatformDefaultRate, "platform_default"
	}
	l.InterestRate = rate
	if pref.InterestType != "" {
		l.InterestType = loanDomain.InterestType(pref.InterestType)
	}
	if pref.RepaymentFrequency != "" {
		l.RepaymentFrequency = loanDomain.Frequency(pref.RepaymentFrequency)
	}
	u.log.WithFields(logrus.Fields{
		"loan_id":     l.LoanID,
		"rate":        rate.String(),
		"rate_source": source,
	}).Info("matching: interest rate resolved")

	l.LenderID = m.LenderUserID
	l.BusinessLenderID = m.LenderBusinessID
	l.CurrentMatchID = &m.MatchID
	l.SetStatus(loanDomain.StatusActive, now)
	loanDomain.PriceLoan(l)
	if err := r.Loans.Save(ctx, l); err != nil {
		return nil, nil, err
	}
	if err := r.Schedules.ReplaceForLoan(ctx, l.ID, loanDomain.BuildSchedule(l, now)); err != nil {
		return nil, nil, fmt.Errorf("regenerate schedule: %w", err)
	}

	m.Status = matchDomain.StatusAccepted
	m.RespondedAt = &now
	if err := r.Matches.Save(ctx, m); err != nil {
		return nil, nil, err
	}
	if err := r.Matches.MarkSiblingsSkipped(ctx, l.ID, m.ID); err != nil {
		return nil, nil, err
	}

	if err := r.Lenders.ReserveCapital(ctx, m.PreferenceID, l.Amount); err != nil {
		return nil, nil, fmt.Errorf("reserve capital: %w", err)
	}
	if err := r.Lenders.IncrementOffers(ctx, m.PreferenceID, 0, 1); err != nil {
		u.log.WithError(err).WithField("preference_id", m.PreferenceID).Warn("matching: acceptance counter failed")
	}

	outs := []notification.Intent{{
		UserID:      l.BorrowerID,
		Type:        notification.TypeLoanFunded,
		Message:     fmt.Sprintf("your loan %s has been funded", l.LoanID),
		ReferenceID: l.LoanID,
	}}
	return &acceptedState{borrowerID: l.BorrowerID, loanID: l.LoanID}, outs, nil
}

// cascade hands the loan to the next-ranked pending candidate, or records
// that the candidate list is exhausted. Declines and expiries converge here.
func (u *Usecase) cascade(ctx context.Context, r uow.Repos, l *loanDomain.Loan, now time.Time) (string, []notification.Intent, error) {
	next, err := r.Matches.NextPendingForLoan(ctx, l.ID)
	if err != nil {
		if !errors.Is(err, matchDomain.ErrNotFound) {
			return "", nil, err
		}
		l.CurrentMatchID = nil
		l.MatchStatus = loanDomain.MatchStatusNoMatch
		if err := r.Loans.Save(ctx, l); err != nil {
			return "", nil, err
		}
		return "", []notification.Intent{{
			UserID:      l.BorrowerID,
			Type:        notification.TypeNoMatch,
			Message:     fmt.Sprintf("no lender matched your loan request %s", l.LoanID),
			ReferenceID: l.LoanID,
		}}, nil
	}

	l.CurrentMatchID = &next.MatchID
	if err := r.Loans.Save(ctx, l); err != nil {
		return "", nil, err
	}
	return next.MatchID, []notification.Intent{lenderIntent(next, notification.TypeOfferReceived,
		fmt.Sprintf("loan %s is now offered to you (rank %d)", l.LoanID, next.MatchRank))}, nil
}

// ExpireStaleOffers is the cron sweep: every offer pending past expires_at
// lapses and cascades identically to a decline. Returns the expired count.
func (u *Usecase) ExpireStaleOffers(ctx context.Context) (int, error) {
	stale, err := u.matches.ListPendingExpired(ctx, u.now())
	if err != nil {
		return 0, fmt.Errorf("list stale offers: %w", err)
	}
	expired := 0
	for _, m := range stale {
		var outs []notification.Intent
		err := u.uow.WithinLoanTx(ctx, m.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
			locked, err := r.Matches.GetByMatchIDForUpdate(ctx, m.MatchID)
			if err != nil {
				return err
			}
			if locked.Resolved() {
				// lost to a concurrent accept/decline, nothing to do
				return nil
			}
			now := u.now()
			locked.Status = matchDomain.StatusExpired
			locked.RespondedAt = &now
			if err := r.Matches.Save(ctx, locked); err != nil {
				return err
			}
			_, o, err := u.cascade(ctx, r, l, now)
			if err != nil {
				return err
			}
			outs = o
			expired++
			return nil
		})
		if err != nil {
			u.log.WithError(err).WithField("match_id", m.MatchID).Warn("matching: expiry sweep failed for offer")
			continue
		}
		for _, n := range outs {
			if nerr := u.notify.Notify(ctx, n); nerr != nil {
				u.log.WithError(nerr).WithField("user_id", n.UserID).Warn("matching: notification failed")
			}
		}
	}
	return expired, nil
}

func actorOwnsMatch(m *matchDomain.Match, actorID string) bool {
	if m.LenderUserID != nil && *m.LenderUserID == actorID {
		return true
	}
	if m.LenderBusinessID != nil && *m.LenderBusinessID == actorID {
		return true
	}
	return false
}

func lenderIntent(m *matchDomain.Match, typ, msg string) notification.Intent {
	in := notification.Intent{Type: typ, Message: msg, ReferenceID: m.MatchID}
	if m.LenderUserID != nil {
		in.UserID = *m.LenderUserID
	} else if m.LenderBusinessID != nil {
		in.UserID = *m.LenderBusinessID
	}
	return in
}

func (u *Usecase) notifyLender(ctx context.Context, m *matchDomain.Match, typ, msg string) {
	if err := u.notify.Notify(ctx, lenderIntent(m, typ, msg)); err != nil {
		u.log.WithError(err).WithField("match_id", m.MatchID).Warn("matching: notification failed")
	}
}
