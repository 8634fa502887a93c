package mysql

import (
	"context"
	"errors"
	"time"

	matchDomain "trustlend-backend/internal/domain/match"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchRepository struct{ db *gorm.DB }

func NewMatchRepository(db *gorm.DB) *MatchRepository { return &MatchRepository{db: db} }

func (r *MatchRepository) CreateAll(ctx context.Context, ms []*matchDomain.Match) error {
	if len(ms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ms).Error
}

func (r *MatchRepository) GetByMatchID(ctx context.Context, matchID string) (*matchDomain.Match, error) {
	var out matchDomain.Match
	res := r.db.WithContext(ctx).Where("match_id = ?", matchID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, matchDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *MatchRepository) GetByMatchIDForUpdate(ctx context.Context, matchID string) (*matchDomain.Match, error) {
	var out matchDomain.Match
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("match_id = ?", matchID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, matchDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *MatchRepository) NextPendingForLoan(ctx context.Context, loanNumericID uint64) (*matchDomain.Match, error) {
	var out matchDomain.Match
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND status = ?", loanNumericID, matchDomain.StatusPending).
		Order("match_rank ASC").
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, matchDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *MatchRepository) MarkSiblingsSkipped(ctx context.Context, loanNumericID uint64, acceptedID uint64) error {
	return r.db.WithContext(ctx).
		Model(&matchDomain.Match{}).
		Where("loan_id = ? AND id <> ? AND status = ?", loanNumericID, acceptedID, matchDomain.StatusPending).
		Update("status", matchDomain.StatusSkipped).Error
}

func (r *MatchRepository) ListPendingExpired(ctx context.Context, asOf time.Time) ([]*matchDomain.Match, error) {
	var out []*matchDomain.Match
	res := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", matchDomain.StatusPending, asOf).
		Order("loan_id ASC, match_rank ASC").
		Find(&out)
	return out, res.Error
}

func (r *MatchRepository) Save(ctx context.Context, m *matchDomain.Match) error {
	return r.db.WithContext(ctx).Save(m).Error
}
