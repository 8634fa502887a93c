package trust

import (
	"context"
	"testing"

	domain "trustlend-backend/internal/domain/trust"
	"trustlend-backend/internal/testutil/borrowermock"
	"trustlend-backend/internal/testutil/trustmock"
)

func newTestUsecase(events *trustmock.Repo, borrowers *borrowermock.Repo) *Usecase {
	if events == nil {
		events = &trustmock.Repo{}
	}
	if borrowers == nil {
		borrowers = &borrowermock.Repo{}
	}
	return NewUsecase(events, borrowers, nil, nil)
}

func strptr(s string) *string { return &s }

func TestGetScoreUnknownUserBaseline(t *testing.T) {
	u := newTestUsecase(nil, nil)
	score, err := u.GetScore(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if score != domain.BaselineScore {
		t.Errorf("score = %d, want baseline %d", score, domain.BaselineScore)
	}
}

func TestRecordEventFoldsImpact(t *testing.T) {
	events := &trustmock.Repo{}
	var persisted int
	borrowers := &borrowermock.Repo{
		SetTrustScoreFn: func(ctx context.Context, userID string, score int) error {
			persisted = score
			return nil
		},
	}
	u := newTestUsecase(events, borrowers)

	applied, err := u.RecordEvent(context.Background(), &domain.Event{
		UserID:      "u1",
		EventType:   domain.EventPaymentOnTime,
		ScoreImpact: domain.ImpactPaymentOnTime,
	})
	if err != nil || !applied {
		t.Fatalf("RecordEvent: applied=%v err=%v", applied, err)
	}
	if persisted != domain.BaselineScore+domain.ImpactPaymentOnTime {
		t.Errorf("persisted score = %d, want %d", persisted, domain.BaselineScore+domain.ImpactPaymentOnTime)
	}
}

func TestRecordEventDedupeApplied(t *testing.T) {
	events := &trustmock.Repo{}
	u := newTestUsecase(events, nil)
	key := domain.PaymentDedupeKey("l1", "u1", "p1")

	e := &domain.Event{UserID: "u1", EventType: domain.EventPaymentOnTime, ScoreImpact: 2, DedupeKey: strptr(key)}
	applied, err := u.RecordEvent(context.Background(), e)
	if err != nil || !applied {
		t.Fatalf("first record: applied=%v err=%v", applied, err)
	}

	again := &domain.Event{UserID: "u1", EventType: domain.EventPaymentOnTime, ScoreImpact: 2, DedupeKey: strptr(key)}
	applied, err = u.RecordEvent(context.Background(), again)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if applied {
		t.Error("duplicate dedupe key must report applied=false")
	}
	if n := len(events.Events()); n != 1 {
		t.Errorf("event log holds %d events, want 1", n)
	}
}

func TestRecordEventRaceLosesQuietly(t *testing.T) {
	// The pre-check misses but the store's unique index rejects the insert.
	events := &trustmock.Repo{
		FindByDedupeKeyFn: func(ctx context.Context, key string) (*domain.Event, error) {
			return nil, domain.ErrNotFound
		},
		CreateFn: func(ctx context.Context, e *domain.Event) error {
			return domain.ErrDuplicateEvent
		},
	}
	u := newTestUsecase(events, nil)

	applied, err := u.RecordEvent(context.Background(), &domain.Event{
		UserID: "u1", DedupeKey: strptr("done:l1:u1"), ScoreImpact: 10,
	})
	if err != nil {
		t.Fatalf("lost insert race must not error: %v", err)
	}
	if applied {
		t.Error("lost insert race must report applied=false")
	}
}

func TestRecalculateClampsScore(t *testing.T) {
	events := &trustmock.Repo{}
	u := newTestUsecase(events, nil)
	ctx := context.Background()

	// Repeatable penalties (NULL dedupe key) drive the raw sum below zero.
	for i := 0; i < 10; i++ {
		if _, err := u.RecordEvent(ctx, &domain.Event{
			UserID:      "u1",
			EventType:   domain.EventPaymentMissed,
			ScoreImpact: domain.ImpactPaymentMissed30,
		}); err != nil {
			t.Fatalf("record penalty %d: %v", i, err)
		}
	}
	score, err := u.Recalculate(ctx, "u1")
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if score != domain.MinScore {
		t.Errorf("score = %d, want clamped to %d", score, domain.MinScore)
	}

	// And a pile of bonuses clamps at the top.
	for i := 0; i < 10; i++ {
		u.RecordEvent(ctx, &domain.Event{UserID: "u2", EventType: domain.EventLoanCompleted, ScoreImpact: domain.ImpactLoanCompleted})
	}
	score, err = u.Recalculate(ctx, "u2")
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if score != domain.MaxScore {
		t.Errorf("score = %d, want clamped to %d", score, domain.MaxScore)
	}
}

func TestRecalculateIsMonotoneInHistory(t *testing.T) {
	events := &trustmock.Repo{}
	u := newTestUsecase(events, nil)
	ctx := context.Background()

	before, _ := u.Recalculate(ctx, "u1")
	u.RecordEvent(ctx, &domain.Event{UserID: "u1", EventType: domain.EventPaymentEarly, ScoreImpact: domain.ImpactPaymentEarly})
	afterGood, _ := u.Recalculate(ctx, "u1")
	if afterGood < before {
		t.Errorf("good event lowered score: %d -> %d", before, afterGood)
	}

	u.RecordEvent(ctx, &domain.Event{UserID: "u1", EventType: domain.EventPaymentLate, ScoreImpact: domain.ImpactPaymentLate})
	afterBad, _ := u.Recalculate(ctx, "u1")
	if afterBad > afterGood {
		t.Errorf("bad event raised score: %d -> %d", afterGood, afterBad)
	}
}
