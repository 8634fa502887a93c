package mysql

import (
	"context"
	"errors"

	lenderDomain "trustlend-backend/internal/domain/lender"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LenderRepository struct{ db *gorm.DB }

func NewLenderRepository(db *gorm.DB) *LenderRepository { return &LenderRepository{db: db} }

func (r *LenderRepository) GetByPreferenceID(ctx context.Context, preferenceID string) (*lenderDomain.Preference, error) {
	var out lenderDomain.Preference
	res := r.db.WithContext(ctx).Where("preference_id = ?", preferenceID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, lenderDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *LenderRepository) GetByOwner(ctx context.Context, lenderUserID, lenderBusinessID *string) (*lenderDomain.Preference, error) {
	q := r.db.WithContext(ctx)
	switch {
	case lenderUserID != nil:
		q = q.Where("lender_user_id = ?", *lenderUserID)
	case lenderBusinessID != nil:
		q = q.Where("lender_business_id = ?", *lenderBusinessID)
	default:
		return nil, lenderDomain.ErrNotFound
	}
	var out lenderDomain.Preference
	res := q.First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, lenderDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *LenderRepository) ListActive(ctx context.Context) ([]*lenderDomain.Preference, error) {
	var out []*lenderDomain.Preference
	res := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("preference_id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LenderRepository) Save(ctx context.Context, p *lenderDomain.Preference) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// ReserveCapital commits principal to an active loan as a relative delta.
// The sufficiency predicate rides in the same statement, so two concurrent
// accepts cannot both reserve the last of the pool.
func (r *LenderRepository) ReserveCapital(ctx context.Context, preferenceID string, principal decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&lenderDomain.Preference{}).
		Where("preference_id = ? AND capital_pool - capital_reserved >= ?", preferenceID, principal).
		Update("capital_reserved", gorm.Expr("capital_reserved + ?", principal))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByPreferenceID(ctx, preferenceID); err != nil {
			return err
		}
		return lenderDomain.ErrInsufficientCapital
	}
	return nil
}

// ReleaseCapital returns principal from reserved and credits realized
// interest to the pool, in one statement so concurrent completions for the
// same lender cannot lose updates.
func (r *LenderRepository) ReleaseCapital(ctx context.Context, preferenceID string, principal, interest decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&lenderDomain.Preference{}).
		Where("preference_id = ?", preferenceID).
		Updates(map[string]any{
			"capital_reserved": gorm.Expr("capital_reserved - ?", principal),
			"capital_pool":     gorm.Expr("capital_pool + ?", interest),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return lenderDomain.ErrNotFound
	}
	return nil
}

func (r *LenderRepository) IncrementOffers(ctx context.Context, preferenceID string, received, accepted int) error {
	return r.db.WithContext(ctx).
		Model(&lenderDomain.Preference{}).
		Where("preference_id = ?", preferenceID).
		Updates(map[string]any{
			"offers_received": gorm.Expr("offers_received + ?", received),
			"offers_accepted": gorm.Expr("offers_accepted + ?", accepted),
		}).Error
}
