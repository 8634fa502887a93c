package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	loanDomain "trustlend-backend/internal/domain/loan"
)

func seedSchedule(t *testing.T, repo *ScheduleRepository, loanNumericID uint64, n int, firstDue time.Time) []*loanDomain.PaymentScheduleEntry {
	t.Helper()
	entries := make([]*loanDomain.PaymentScheduleEntry, 0, n)
	for i := 1; i <= n; i++ {
		entries = append(entries, &loanDomain.PaymentScheduleEntry{
			LoanNumericID:   loanNumericID,
			InstallmentNo:   i,
			DueDate:         firstDue.AddDate(0, i-1, 0),
			Amount:          decimal.RequireFromString("93.33"),
			PrincipalAmount: decimal.RequireFromString("83.33"),
			InterestAmount:  decimal.RequireFromString("10.00"),
		})
	}
	if err := repo.CreateEntries(context.Background(), entries); err != nil {
		t.Fatalf("CreateEntries: %v", err)
	}
	return entries
}

func TestScheduleNextUnpaidAdvances(t *testing.T) {
	db := openTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	entries := seedSchedule(t, repo, 5, 3, time.Now())

	next, err := repo.NextUnpaidByLoan(ctx, 5)
	if err != nil {
		t.Fatalf("NextUnpaidByLoan: %v", err)
	}
	if next.InstallmentNo != 1 {
		t.Fatalf("next installment = %d, want 1", next.InstallmentNo)
	}

	entries[0].IsPaid = true
	if err := repo.Save(ctx, entries[0]); err != nil {
		t.Fatalf("Save: %v", err)
	}

	next, err = repo.NextUnpaidByLoan(ctx, 5)
	if err != nil {
		t.Fatalf("NextUnpaidByLoan after payment: %v", err)
	}
	if next.InstallmentNo != 2 {
		t.Errorf("next installment = %d, want 2", next.InstallmentNo)
	}

	n, err := repo.CountUnpaidByLoan(ctx, 5)
	if err != nil || n != 2 {
		t.Errorf("CountUnpaidByLoan = %d, %v; want 2", n, err)
	}
}

func TestScheduleNextUnpaidExhausted(t *testing.T) {
	db := openTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	entries := seedSchedule(t, repo, 5, 1, time.Now())
	entries[0].IsPaid = true
	if err := repo.Save(ctx, entries[0]); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// overpayment handling keys off this sentinel
	if _, err := repo.NextUnpaidByLoan(ctx, 5); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestScheduleReplaceForLoan(t *testing.T) {
	db := openTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	seedSchedule(t, repo, 5, 4, time.Now())
	seedSchedule(t, repo, 6, 2, time.Now())

	repriced := []*loanDomain.PaymentScheduleEntry{
		{LoanNumericID: 5, InstallmentNo: 1, DueDate: time.Now(), Amount: decimal.RequireFromString("560.00")},
		{LoanNumericID: 5, InstallmentNo: 2, DueDate: time.Now().AddDate(0, 1, 0), Amount: decimal.RequireFromString("560.00")},
	}
	if err := repo.ReplaceForLoan(ctx, 5, repriced); err != nil {
		t.Fatalf("ReplaceForLoan: %v", err)
	}

	got, err := repo.ListByLoan(ctx, 5)
	if err != nil {
		t.Fatalf("ListByLoan: %v", err)
	}
	if len(got) != 2 || !got[0].Amount.Equal(decimal.RequireFromString("560.00")) {
		t.Fatalf("replaced schedule = %d entries, want the 2 repriced ones", len(got))
	}

	// other loans untouched
	other, err := repo.ListByLoan(ctx, 6)
	if err != nil || len(other) != 2 {
		t.Fatalf("loan 6 schedule = %d entries, %v; want 2", len(other), err)
	}
}

func TestScheduleListOverdueUnpaid(t *testing.T) {
	db := openTestDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	now := time.Now()
	entries := seedSchedule(t, repo, 5, 3, now.AddDate(0, 0, -40))

	// a paid entry past due is not overdue
	entries[0].IsPaid = true
	if err := repo.Save(ctx, entries[0]); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := repo.ListOverdueUnpaid(ctx, now)
	if err != nil {
		t.Fatalf("ListOverdueUnpaid: %v", err)
	}
	if len(out) != 1 || out[0].InstallmentNo != 2 {
		t.Fatalf("overdue = %+v, want only installment 2", out)
	}
}
