package mysql

import (
	"context"
	"time"

	loanDomain "trustlend-backend/internal/domain/loan"

	"gorm.io/gorm"
)

type ScheduleRepository struct{ db *gorm.DB }

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository { return &ScheduleRepository{db: db} }

func (r *ScheduleRepository) CreateEntries(ctx context.Context, entries []*loanDomain.PaymentScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *ScheduleRepository) ReplaceForLoan(ctx context.Context, loanNumericID uint64, entries []*loanDomain.PaymentScheduleEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_id = ?", loanNumericID).
			Delete(&loanDomain.PaymentScheduleEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

func (r *ScheduleRepository) ListByLoan(ctx context.Context, loanNumericID uint64) ([]*loanDomain.PaymentScheduleEntry, error) {
	var out []*loanDomain.PaymentScheduleEntry
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		Order("installment_no ASC").
		Find(&out)
	return out, res.Error
}

func (r *ScheduleRepository) CountUnpaidByLoan(ctx context.Context, loanNumericID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&loanDomain.PaymentScheduleEntry{}).
		Where("loan_id = ? AND is_paid = ?", loanNumericID, false).
		Count(&n)
	return n, res.Error
}

func (r *ScheduleRepository) NextUnpaidByLoan(ctx context.Context, loanNumericID uint64) (*loanDomain.PaymentScheduleEntry, error) {
	var out loanDomain.PaymentScheduleEntry
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND is_paid = ?", loanNumericID, false).
		Order("installment_no ASC").
		First(&out)
	return &out, res.Error
}

func (r *ScheduleRepository) ListOverdueUnpaid(ctx context.Context, asOf time.Time) ([]*loanDomain.PaymentScheduleEntry, error) {
	var out []*loanDomain.PaymentScheduleEntry
	res := r.db.WithContext(ctx).
		Where("is_paid = ? AND due_date < ?", false, asOf).
		Order("loan_id ASC, installment_no ASC").
		Find(&out)
	return out, res.Error
}

func (r *ScheduleRepository) Save(ctx context.Context, e *loanDomain.PaymentScheduleEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}
