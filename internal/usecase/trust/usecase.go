package trust

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trustlend-backend/internal/domain/borrower"
	domain "trustlend-backend/internal/domain/trust"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheTTL = 6 * time.Hour

// Usecase is the trust score service: an append-only event log aggregated
// into a 0-100 reputation score. The aggregate is baseline + sum of event
// impacts, clamped; since good events carry positive impacts and bad events
// negative ones, the score is monotone in the history.
type Usecase struct {
	events    domain.Repository
	borrowers borrower.Repository
	cache     *redis.Client // optional; nil disables caching
	log       *logrus.Logger
}

func NewUsecase(events domain.Repository, borrowers borrower.Repository, cache *redis.Client, log *logrus.Logger) *Usecase {
	if log == nil {
		log = logrus.New()
	}
	return &Usecase{events: events, borrowers: borrowers, cache: cache, log: log}
}

func cacheKey(userID string) string { return "trust:score:" + userID }

func clamp(score int) int {
	if score < domain.MinScore {
		return domain.MinScore
	}
	if score > domain.MaxScore {
		return domain.MaxScore
	}
	return score
}

// GetScore returns the cached score when available, falling back to the
// stored profile value and finally the baseline for unknown users.
func (u *Usecase) GetScore(ctx context.Context, userID string) (int, error) {
	if u.cache != nil {
		if n, err := u.cache.Get(ctx, cacheKey(userID)).Int(); err == nil {
			return clamp(n), nil
		}
	}
	p, err := u.borrowers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, borrower.ErrNotFound) {
			return domain.BaselineScore, nil
		}
		return 0, err
	}
	return clamp(p.TrustScore), nil
}

// Recalculate rebuilds the score from the full event log, persists it to the
// profile and refreshes the cache. Used right after a loan completes so
// callers observe the post-completion bonus immediately.
func (u *Usecase) Recalculate(ctx context.Context, userID string) (int, error) {
	events, err := u.events.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list trust events: %w", err)
	}
	score := domain.BaselineScore
	for _, e := range events {
		score += e.ScoreImpact
	}
	score = clamp(score)

	if err := u.borrowers.SetTrustScore(ctx, userID, score); err != nil {
		// Score persistence is bookkeeping; the computed value is still valid.
		u.log.WithError(err).WithField("user_id", userID).Warn("trust: persist score failed")
	}
	u.cacheSet(ctx, userID, score)
	return score, nil
}

// RecordEvent appends an event and folds its impact into the stored score.
// A duplicate dedupe key is reported as applied=false, not an error.
func (u *Usecase) RecordEvent(ctx context.Context, e *domain.Event) (bool, error) {
	if e.DedupeKey != nil {
		if _, err := u.events.FindByDedupeKey(ctx, *e.DedupeKey); err == nil {
			return false, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
	}
	if err := u.events.Create(ctx, e); err != nil {
		// The unique index is the authoritative guard; losing the race to a
		// concurrent writer is a no-op, anything else surfaces.
		if isDuplicate(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := u.Recalculate(ctx, e.UserID); err != nil {
		u.log.WithError(err).WithField("user_id", e.UserID).Warn("trust: recalculate after event failed")
	}
	return true, nil
}

// History returns the user's full trust event log, newest first.
func (u *Usecase) History(ctx context.Context, userID string) ([]*domain.Event, error) {
	return u.events.ListByUser(ctx, userID)
}

func (u *Usecase) cacheSet(ctx context.Context, userID string, score int) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Set(ctx, cacheKey(userID), score, cacheTTL).Err(); err != nil {
		u.log.WithError(err).WithField("user_id", userID).Debug("trust: cache set failed")
	}
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
