package mysql

import (
	"context"
	"errors"

	trustDomain "trustlend-backend/internal/domain/trust"

	"gorm.io/gorm"
)

type TrustRepository struct{ db *gorm.DB }

func NewTrustRepository(db *gorm.DB) *TrustRepository { return &TrustRepository{db: db} }

func (r *TrustRepository) Create(ctx context.Context, e *trustDomain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *TrustRepository) FindByDedupeKey(ctx context.Context, key string) (*trustDomain.Event, error) {
	var out trustDomain.Event
	res := r.db.WithContext(ctx).Where("dedupe_key = ?", key).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, trustDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *TrustRepository) ListByUser(ctx context.Context, userID string) ([]*trustDomain.Event, error) {
	var out []*trustDomain.Event
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
