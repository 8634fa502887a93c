package trust

import "context"

type Repository interface {
	// Create appends an event. A duplicate DedupeKey surfaces the store's
	// uniqueness violation; callers treat that as "already applied".
	Create(ctx context.Context, e *Event) error
	FindByDedupeKey(ctx context.Context, key string) (*Event, error)
	ListByUser(ctx context.Context, userID string) ([]*Event, error)
}
