package trustmock

import (
	"context"
	"sync"

	domain "trustlend-backend/internal/domain/trust"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository. The
// zero value acts as an in-memory event log with dedupe-key uniqueness,
// which most trust tests want; set the Fn fields to override.
type Repo struct {
	CreateFn          func(ctx context.Context, e *domain.Event) error
	FindByDedupeKeyFn func(ctx context.Context, key string) (*domain.Event, error)
	ListByUserFn      func(ctx context.Context, userID string) ([]*domain.Event, error)

	mu     sync.Mutex
	events []*domain.Event
}

func (m *Repo) Create(ctx context.Context, e *domain.Event) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.DedupeKey != nil {
		for _, ex := range m.events {
			if ex.DedupeKey != nil && *ex.DedupeKey == *e.DedupeKey {
				return domain.ErrDuplicateEvent
			}
		}
	}
	m.events = append(m.events, e)
	return nil
}

func (m *Repo) FindByDedupeKey(ctx context.Context, key string) (*domain.Event, error) {
	if m.FindByDedupeKeyFn != nil {
		return m.FindByDedupeKeyFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.DedupeKey != nil && *e.DedupeKey == key {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Event, 0)
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Events returns a copy of everything recorded so far.
func (m *Repo) Events() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Event(nil), m.events...)
}
