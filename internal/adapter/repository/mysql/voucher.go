package mysql

import (
	"context"
	"errors"
	"strings"

	voucherDomain "trustlend-backend/internal/domain/voucher"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VoucherRepository struct{ db *gorm.DB }

func NewVoucherRepository(db *gorm.DB) *VoucherRepository { return &VoucherRepository{db: db} }

func (r *VoucherRepository) Create(ctx context.Context, rec *voucherDomain.Record) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKey(err)) {
		return voucherDomain.ErrDuplicateVouch
	}
	return err
}

func (r *VoucherRepository) ListActiveByVouchee(ctx context.Context, voucheeUserID string) ([]*voucherDomain.Record, error) {
	var out []*voucherDomain.Record
	res := r.db.WithContext(ctx).
		Where("vouchee_user_id = ? AND active = ?", voucheeUserID, true).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

// LinkLoan relies on the (voucher_record_id, loan_id) unique key: a duplicate
// insert reports false rather than erroring, so callers skip the counters.
func (r *VoucherRepository) LinkLoan(ctx context.Context, recordID uint64, loanID string) (bool, error) {
	link := &voucherDomain.LoanLink{
		VoucherRecordID: recordID,
		LoanID:          loanID,
		Status:          voucherDomain.LinkActive,
	}
	err := r.db.WithContext(ctx).Create(link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *VoucherRepository) CompleteLink(ctx context.Context, recordID uint64, loanID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&voucherDomain.LoanLink{}).
		Where("voucher_record_id = ? AND loan_id = ? AND status = ?", recordID, loanID, voucherDomain.LinkActive).
		Update("status", voucherDomain.LinkCompleted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *VoucherRepository) AddLoansActive(ctx context.Context, recordID uint64, delta int) error {
	return r.db.WithContext(ctx).
		Model(&voucherDomain.Record{}).
		Where("id = ?", recordID).
		Update("loans_active", gorm.Expr("loans_active + ?", delta)).Error
}

func (r *VoucherRepository) AddLoansCompleted(ctx context.Context, recordID uint64, delta int) error {
	return r.db.WithContext(ctx).
		Model(&voucherDomain.Record{}).
		Where("id = ?", recordID).
		Update("loans_completed", gorm.Expr("loans_completed + ?", delta)).Error
}

func (r *VoucherRepository) AddStanding(ctx context.Context, recordID uint64, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&voucherDomain.Record{}).
		Where("id = ?", recordID).
		Update("standing_score", gorm.Expr("standing_score + ?", delta)).Error
}

func (r *VoucherRepository) Save(ctx context.Context, rec *voucherDomain.Record) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// isDuplicateKey covers drivers that do not translate to gorm.ErrDuplicatedKey
// (the sqlite test driver among them).
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
