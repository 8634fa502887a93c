package loan

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Term length in months implied by one installment at each frequency. The
// same mapping feeds both the simple and the compound formula so the two
// interest types share a single time base.
var monthsPerInstallment = map[Frequency]decimal.Decimal{
	FrequencyWeekly:   decimal.RequireFromString("0.25"),
	FrequencyBiweekly: decimal.RequireFromString("0.5"),
	FrequencyMonthly:  decimal.NewFromInt(1),
}

var twelve = decimal.NewFromInt(12)

// TermMonths returns the loan term in months for n installments at frequency f.
func TermMonths(f Frequency, n int) decimal.Decimal {
	per, ok := monthsPerInstallment[f]
	if !ok {
		per = decimal.NewFromInt(1)
	}
	return per.Mul(decimal.NewFromInt(int64(n)))
}

// ComputeTotalInterest returns the total interest for the term, rounded to
// cents.
//
// The configured rate is an annual percentage. Simple interest accrues
// linearly over the term: P * (r/100) * termYears. Compound interest uses a
// monthly-compounding approximation: P * (1 + r/1200)^months - P.
func ComputeTotalInterest(principal, annualRatePercent decimal.Decimal, t InterestType, f Frequency, installments int) decimal.Decimal {
	if installments <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	months := TermMonths(f, installments)

	switch t {
	case InterestCompound:
		// Power calculation in float64, monetary arithmetic in decimal.
		monthlyRate := annualRatePercent.InexactFloat64() / 1200.0
		factor := math.Pow(1+monthlyRate, months.InexactFloat64())
		total := principal.Mul(decimal.NewFromFloat(factor)).Round(2)
		return total.Sub(principal)
	default:
		years := months.Div(twelve)
		return principal.Mul(annualRatePercent).Div(decimal.NewFromInt(100)).Mul(years).Round(2)
	}
}

func periodAfter(f Frequency, start time.Time, installmentNo int) time.Time {
	switch f {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7*installmentNo)
	case FrequencyBiweekly:
		return start.AddDate(0, 0, 14*installmentNo)
	default:
		return start.AddDate(0, installmentNo, 0)
	}
}

// BuildSchedule produces the full installment schedule for a loan whose
// TotalInterest/TotalAmount are already computed. Each of the three money
// streams (total, principal, interest) is split evenly at 2 decimals with
// the final installment absorbing its rounding remainder, so the schedule
// sums exactly to TotalAmount, Amount and TotalInterest respectively.
func BuildSchedule(l *Loan, start time.Time) []*PaymentScheduleEntry {
	n := l.TotalInstallments
	if n <= 0 {
		return nil
	}
	nDec := decimal.NewFromInt(int64(n))

	perTotal := l.TotalAmount.Div(nDec).Round(2)
	perPrincipal := l.Amount.Div(nDec).Round(2)
	perInterest := l.TotalInterest.Div(nDec).Round(2)

	restDec := decimal.NewFromInt(int64(n - 1))
	lastTotal := l.TotalAmount.Sub(perTotal.Mul(restDec))
	lastPrincipal := l.Amount.Sub(perPrincipal.Mul(restDec))
	lastInterest := l.TotalInterest.Sub(perInterest.Mul(restDec))

	entries := make([]*PaymentScheduleEntry, 0, n)
	for i := 1; i <= n; i++ {
		e := &PaymentScheduleEntry{
			LoanNumericID:   l.ID,
			InstallmentNo:   i,
			DueDate:         periodAfter(l.RepaymentFrequency, start, i),
			Amount:          perTotal,
			PrincipalAmount: perPrincipal,
			InterestAmount:  perInterest,
			Status:          EntryPending,
		}
		if i == n {
			e.Amount = lastTotal
			e.PrincipalAmount = lastPrincipal
			e.InterestAmount = lastInterest
		}
		entries = append(entries, e)
	}
	return entries
}

// PriceLoan fills TotalInterest, TotalAmount and AmountRemaining from the
// loan's principal and rate terms.
func PriceLoan(l *Loan) {
	l.TotalInterest = ComputeTotalInterest(l.Amount, l.InterestRate, l.InterestType, l.RepaymentFrequency, l.TotalInstallments)
	l.TotalAmount = l.Amount.Add(l.TotalInterest)
	l.AmountRemaining = l.TotalAmount.Sub(l.AmountPaid)
}
