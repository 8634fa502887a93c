package scheduler

import (
	"context"
	"time"

	matchingUc "trustlend-backend/internal/usecase/matching"
	paymentUc "trustlend-backend/internal/usecase/payment"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 5 * time.Minute

// Scheduler owns the background sweeps: expiring stale offers and charging
// overdue-payment penalties. Each job runs under its own timeout so a hung
// sweep cannot block the cron goroutine forever.
type Scheduler struct {
	cron     *cron.Cron
	matching *matchingUc.Usecase
	payments *paymentUc.Usecase
	log      *logrus.Logger
}

func New(matching *matchingUc.Usecase, payments *paymentUc.Usecase, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		matching: matching,
		payments: payments,
		log:      log,
	}
}

// Register wires the sweeps at the given cron schedules. An empty schedule
// disables that sweep.
func (s *Scheduler) Register(offerExpirySchedule, missedSweepSchedule string) error {
	if offerExpirySchedule != "" {
		if _, err := s.cron.AddFunc(offerExpirySchedule, s.runOfferExpiry); err != nil {
			return err
		}
	}
	if missedSweepSchedule != "" {
		if _, err := s.cron.AddFunc(missedSweepSchedule, s.runMissedSweep); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runOfferExpiry() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	n, err := s.matching.ExpireStaleOffers(ctx)
	if err != nil {
		s.log.WithError(err).Error("scheduler: offer expiry sweep failed")
		return
	}
	if n > 0 {
		s.log.WithField("expired", n).Info("scheduler: stale offers expired")
	}
}

func (s *Scheduler) runMissedSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	n, err := s.payments.SweepMissedPayments(ctx)
	if err != nil {
		s.log.WithError(err).Error("scheduler: missed payment sweep failed")
		return
	}
	if n > 0 {
		s.log.WithField("penalized", n).Info("scheduler: overdue penalties applied")
	}
}
