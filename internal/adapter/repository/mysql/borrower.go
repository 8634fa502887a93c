package mysql

import (
	"context"
	"errors"

	borrowerDomain "trustlend-backend/internal/domain/borrower"

	"gorm.io/gorm"
)

type BorrowerRepository struct{ db *gorm.DB }

func NewBorrowerRepository(db *gorm.DB) *BorrowerRepository { return &BorrowerRepository{db: db} }

func (r *BorrowerRepository) GetByUserID(ctx context.Context, userID string) (*borrowerDomain.Profile, error) {
	var out borrowerDomain.Profile
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, borrowerDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *BorrowerRepository) Save(ctx context.Context, p *borrowerDomain.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *BorrowerRepository) AddPaymentCounters(ctx context.Context, userID string, c borrowerDomain.PaymentCounters) error {
	return r.db.WithContext(ctx).
		Model(&borrowerDomain.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"payments_made":    gorm.Expr("payments_made + ?", c.Made),
			"payments_on_time": gorm.Expr("payments_on_time + ?", c.OnTime),
			"payments_early":   gorm.Expr("payments_early + ?", c.Early),
			"payments_late":    gorm.Expr("payments_late + ?", c.Late),
		}).Error
}

func (r *BorrowerRepository) SetTrustScore(ctx context.Context, userID string, score int) error {
	return r.db.WithContext(ctx).
		Model(&borrowerDomain.Profile{}).
		Where("user_id = ?", userID).
		Update("trust_score", score).Error
}
