package borrower

import "context"

type PaymentCounters struct {
	Made   int
	OnTime int
	Early  int
	Late   int
}

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	// AddPaymentCounters applies the aggregate payment statistics as a
	// store-level delta.
	AddPaymentCounters(ctx context.Context, userID string, c PaymentCounters) error
	SetTrustScore(ctx context.Context, userID string, score int) error
}
