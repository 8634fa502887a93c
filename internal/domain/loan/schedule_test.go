package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotalInterestSimple(t *testing.T) {
	tests := []struct {
		name         string
		principal    string
		rate         string
		freq         Frequency
		installments int
		want         string
	}{
		{"1000 at 12% over 12 months", "1000", "12", FrequencyMonthly, 12, "120"},
		{"1000 at 12% over 6 months", "1000", "12", FrequencyMonthly, 6, "60"},
		{"500 at 10% over 4 weeks", "500", "10", FrequencyWeekly, 4, "4.17"},
		{"2000 at 8% over 26 biweekly", "2000", "8", FrequencyBiweekly, 26, "173.33"},
		{"zero installments", "1000", "12", FrequencyMonthly, 0, "0"},
		{"zero principal", "0", "12", FrequencyMonthly, 12, "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotalInterest(dec(tc.principal), dec(tc.rate), InterestSimple, tc.freq, tc.installments)
			if !got.Equal(dec(tc.want)) {
				t.Errorf("interest = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestComputeTotalInterestCompound(t *testing.T) {
	// 1000 at 12% annual, monthly compounding over 12 months:
	// 1000 * (1 + 0.01)^12 - 1000 = 126.83
	got := ComputeTotalInterest(dec("1000"), dec("12"), InterestCompound, FrequencyMonthly, 12)
	if !got.Equal(dec("126.83")) {
		t.Errorf("compound interest = %s, want 126.83", got)
	}
	// compound always beats simple at the same terms
	simple := ComputeTotalInterest(dec("1000"), dec("12"), InterestSimple, FrequencyMonthly, 12)
	if !got.GreaterThan(simple) {
		t.Errorf("compound %s must exceed simple %s", got, simple)
	}
}

func TestBuildScheduleWorkedExample(t *testing.T) {
	l := &Loan{
		ID:                 1,
		Amount:             dec("1000"),
		InterestRate:       dec("12"),
		InterestType:       InterestSimple,
		RepaymentFrequency: FrequencyMonthly,
		TotalInstallments:  12,
	}
	PriceLoan(l)

	if !l.TotalInterest.Equal(dec("120")) {
		t.Fatalf("TotalInterest = %s, want 120", l.TotalInterest)
	}
	if !l.TotalAmount.Equal(dec("1120")) {
		t.Fatalf("TotalAmount = %s, want 1120", l.TotalAmount)
	}

	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	entries := BuildSchedule(l, start)
	if len(entries) != 12 {
		t.Fatalf("entries = %d, want 12", len(entries))
	}

	for i, e := range entries[:11] {
		if !e.Amount.Equal(dec("93.33")) {
			t.Errorf("installment %d amount = %s, want 93.33", i+1, e.Amount)
		}
	}
	last := entries[11]
	if !last.Amount.Equal(dec("93.37")) {
		t.Errorf("final installment = %s, want 93.37 (absorbs rounding remainder)", last.Amount)
	}

	var sumTotal, sumPrincipal, sumInterest decimal.Decimal
	for _, e := range entries {
		sumTotal = sumTotal.Add(e.Amount)
		sumPrincipal = sumPrincipal.Add(e.PrincipalAmount)
		sumInterest = sumInterest.Add(e.InterestAmount)
	}
	if !sumTotal.Equal(l.TotalAmount) {
		t.Errorf("sum of amounts = %s, want %s", sumTotal, l.TotalAmount)
	}
	if !sumPrincipal.Equal(l.Amount) {
		t.Errorf("sum of principal = %s, want %s", sumPrincipal, l.Amount)
	}
	if !sumInterest.Equal(l.TotalInterest) {
		t.Errorf("sum of interest = %s, want %s", sumInterest, l.TotalInterest)
	}

	// monthly cadence from the start date
	if got := entries[0].DueDate; !got.Equal(start.AddDate(0, 1, 0)) {
		t.Errorf("first due date = %s", got)
	}
	if got := entries[11].DueDate; !got.Equal(start.AddDate(0, 12, 0)) {
		t.Errorf("last due date = %s", got)
	}
}

func TestBuildScheduleSumsExactAcrossTerms(t *testing.T) {
	for _, n := range []int{1, 3, 7, 13, 52} {
		l := &Loan{
			Amount:             dec("999.99"),
			InterestRate:       dec("7.5"),
			InterestType:       InterestSimple,
			RepaymentFrequency: FrequencyWeekly,
			TotalInstallments:  n,
		}
		PriceLoan(l)
		entries := BuildSchedule(l, time.Now().UTC())

		var sum decimal.Decimal
		for _, e := range entries {
			sum = sum.Add(e.Amount)
		}
		if !sum.Equal(l.TotalAmount) {
			t.Errorf("n=%d: schedule sums to %s, want %s", n, sum, l.TotalAmount)
		}
	}
}

func TestBuildScheduleDueDateCadence(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	l := &Loan{Amount: dec("100"), RepaymentFrequency: FrequencyBiweekly, TotalInstallments: 3}
	PriceLoan(l)

	entries := BuildSchedule(l, start)
	want := []time.Time{
		start.AddDate(0, 0, 14),
		start.AddDate(0, 0, 28),
		start.AddDate(0, 0, 42),
	}
	for i, e := range entries {
		if !e.DueDate.Equal(want[i]) {
			t.Errorf("installment %d due %s, want %s", i+1, e.DueDate, want[i])
		}
	}
}

func TestApplyPaymentKeepsRemainingConsistent(t *testing.T) {
	l := &Loan{Amount: dec("1000"), TotalAmount: dec("1120"), AmountRemaining: dec("1120")}
	l.ApplyPayment(dec("93.33"))
	l.ApplyPayment(dec("93.33"))

	if !l.AmountPaid.Equal(dec("186.66")) {
		t.Errorf("AmountPaid = %s", l.AmountPaid)
	}
	if !l.AmountRemaining.Equal(dec("933.34")) {
		t.Errorf("AmountRemaining = %s", l.AmountRemaining)
	}
}

func TestPaidRatio(t *testing.T) {
	l := &Loan{Amount: dec("1000"), AmountPaid: dec("750")}
	if !l.PaidRatio().Equal(dec("0.75")) {
		t.Errorf("PaidRatio = %s, want 0.75", l.PaidRatio())
	}
	zero := &Loan{}
	if !zero.PaidRatio().Equal(dec("1")) {
		t.Errorf("zero-principal PaidRatio = %s, want 1", zero.PaidRatio())
	}
}
