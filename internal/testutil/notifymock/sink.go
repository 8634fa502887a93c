package notifymock

import (
	"context"
	"sync"

	"trustlend-backend/internal/domain/notification"
)

var _ notification.Sink = (*Sink)(nil)

// Sink records every intent it receives.
type Sink struct {
	NotifyFn func(ctx context.Context, in notification.Intent) error

	mu   sync.Mutex
	sent []notification.Intent
}

func (m *Sink) Notify(ctx context.Context, in notification.Intent) error {
	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, in)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, in)
	return nil
}

// Sent returns a copy of the recorded intents.
func (m *Sink) Sent() []notification.Intent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification.Intent(nil), m.sent...)
}

// SentOfType filters recorded intents by type.
func (m *Sink) SentOfType(typ string) []notification.Intent {
	out := make([]notification.Intent, 0)
	for _, in := range m.Sent() {
		if in.Type == typ {
			out = append(out, in)
		}
	}
	return out
}
