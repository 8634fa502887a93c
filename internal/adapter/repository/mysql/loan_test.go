package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "trustlend-backend/internal/domain/loan"
	"trustlend-backend/pkg/id"

	"github.com/shopspring/decimal"
)

func makeLoan(loanID, borrowerID string) *domain.Loan {
	l := &domain.Loan{
		LoanID:             loanID,
		BorrowerID:         borrowerID,
		Amount:             decimal.NewFromInt(1000),
		Currency:           "USD",
		InterestRate:       decimal.NewFromInt(12),
		InterestType:       domain.InterestSimple,
		RepaymentFrequency: domain.FrequencyMonthly,
		TotalInstallments:  12,
		Status:             domain.StatusPending,
		StatusUpdatedAt:    time.Now().UTC(),
	}
	domain.PriceLoan(l)
	return l
}

func TestLoanCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	loanID := id.NewID32()
	borrower := id.NewID32()

	l := makeLoan(loanID, borrower)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.LoanID != loanID || got.BorrowerID != borrower {
		t.Errorf("unexpected loan: %+v", got)
	}

	byPK, err := repo.GetByNumericID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByNumericID: %v", err)
	}
	if byPK.LoanID != loanID {
		t.Errorf("GetByNumericID returned wrong loan: %+v", byPK)
	}
}

func TestLoanGetNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)

	_, err := repo.GetByLoanID(context.Background(), "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoanSaveUpdates(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	loanID := id.NewID32()
	l := makeLoan(loanID, id.NewID32())
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	l.ApplyPayment(decimal.NewFromInt(100))
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if !got.AmountPaid.Equal(decimal.NewFromInt(100)) {
		t.Errorf("AmountPaid = %s, want 100", got.AmountPaid)
	}
	if !got.AmountRemaining.Equal(got.TotalAmount.Sub(got.AmountPaid)) {
		t.Errorf("AmountRemaining broken: %s", got.AmountRemaining)
	}
}

func TestGetPendingLoanByBorrowerID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	b := id.NewID32()

	active := makeLoan(id.NewID32(), b)
	active.Status = domain.StatusActive
	active.StatusUpdatedAt = time.Now().UTC().Add(-time.Hour)
	if err := repo.Create(ctx, active); err != nil {
		t.Fatal(err)
	}

	pending := makeLoan(id.NewID32(), b)
	if err := repo.Create(ctx, pending); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetPendingLoanByBorrowerID(ctx, b)
	if err != nil {
		t.Fatalf("GetPendingLoanByBorrowerID: %v", err)
	}
	if got.LoanID != pending.LoanID {
		t.Errorf("got %s, want %s", got.LoanID, pending.LoanID)
	}

	// a loan awaiting lender response still counts as the open request
	pending.Status = domain.StatusMatched
	if err := repo.Save(ctx, pending); err != nil {
		t.Fatal(err)
	}
	got, err = repo.GetPendingLoanByBorrowerID(ctx, b)
	if err != nil {
		t.Fatalf("matched request lookup: %v", err)
	}
	if got.LoanID != pending.LoanID {
		t.Errorf("matched request: got %s, want %s", got.LoanID, pending.LoanID)
	}

	if _, err := repo.GetPendingLoanByBorrowerID(ctx, id.NewID32()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for borrower without pending loans, got %v", err)
	}
}

func TestListOpenByBorrowerID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	b := id.NewID32()
	for _, st := range []domain.Status{domain.StatusPending, domain.StatusActive, domain.StatusCompleted} {
		l := makeLoan(id.NewID32(), b)
		l.Status = st
		if err := repo.Create(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	open, err := repo.ListOpenByBorrowerID(ctx, b)
	if err != nil {
		t.Fatalf("ListOpenByBorrowerID: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("open loans = %d, want 2 (completed must be excluded)", len(open))
	}
	for _, l := range open {
		if l.Status == domain.StatusCompleted {
			t.Errorf("completed loan leaked into open set: %+v", l)
		}
	}
}
