package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Monetary rounding policy: every ledger-affecting value is rounded to 2 decimal
// places, half away from zero. Rate math goes through float64 only for the
// (1+r)^n power and returns to decimal immediately after.

// ScheduleEntry is one period of an amortization schedule.
type ScheduleEntry struct {
	PaymentNumber    int             `json:"payment_number"`
	PaymentDate      time.Time       `json:"payment_date"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// monthlyRate converts an annual percentage rate (4.5 = 4.5%) to a monthly
// fraction.
func monthlyRate(annualRatePct decimal.Decimal) decimal.Decimal {
	return annualRatePct.Div(decimal.NewFromInt(1200))
}

// MonthlyPayment computes the fixed monthly payment for a standard amortizing
// loan: P * r / (1 - (1+r)^-n). A zero rate degenerates to an even split P / n.
func MonthlyPayment(loanAmount, annualRatePct decimal.Decimal, termYears int) decimal.Decimal {
	n := termYears * 12
	if n <= 0 {
		return decimal.Zero
	}
	r := monthlyRate(annualRatePct)
	if r.IsZero() {
		return loanAmount.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	rf, _ := r.Float64()
	pf, _ := loanAmount.Float64()
	payment := pf * rf / (1 - math.Pow(1+rf, -float64(n)))
	return decimal.NewFromFloat(payment).Round(2)
}

// SplitPayment breaks a payment against the current balance into principal and
// interest portions: interest accrues at one month of the annual rate, principal
// is the remainder. A payment smaller than the accrued interest yields zero
// principal (clamped so an underpayment can never grow the balance).
func SplitPayment(balance, annualRatePct, payment decimal.Decimal) (principal, interest decimal.Decimal) {
	interest = balance.Mul(monthlyRate(annualRatePct)).Round(2)
	principal = payment.Sub(interest).Round(2)
	if principal.IsNegative() {
		principal = decimal.Zero
	}
	return principal, interest
}

// Schedule materializes the full amortization schedule: termYears*12 entries,
// one month apart starting one month after startDate. The final entry forces
// the remaining balance to exactly zero, absorbing rounding drift into the last
// principal portion.
func Schedule(loanAmount, annualRatePct decimal.Decimal, termYears int, startDate time.Time) []ScheduleEntry {
	n := termYears * 12
	if n <= 0 || loanAmount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	payment := MonthlyPayment(loanAmount, annualRatePct, termYears)
	rate := monthlyRate(annualRatePct)
	balance := loanAmount
	schedule := make([]ScheduleEntry, 0, n)

	for i := 1; i <= n; i++ {
		interest := balance.Mul(rate).Round(2)
		principal := payment.Sub(interest).Round(2)
		total := payment

		if i == n {
			// Last period pays off whatever is left.
			principal = balance
			total = principal.Add(interest)
		}

		balance = balance.Sub(principal)
		if balance.IsNegative() || i == n {
			balance = decimal.Zero
		}

		schedule = append(schedule, ScheduleEntry{
			PaymentNumber:    i,
			PaymentDate:      startDate.AddDate(0, i, 0),
			Payment:          total,
			Principal:        principal,
			Interest:         interest,
			RemainingBalance: balance,
		})
	}

	return schedule
}

// LoanToValue returns loanAmount/propertyValue as a percentage.
func LoanToValue(loanAmount, propertyValue decimal.Decimal) decimal.Decimal {
	if propertyValue.IsZero() {
		return decimal.Zero
	}
	return loanAmount.Div(propertyValue).Mul(decimal.NewFromInt(100)).Round(2)
}

// TotalInterest returns the interest paid over the whole term assuming every
// scheduled payment is made: payment * n - loanAmount.
func TotalInterest(loanAmount, payment decimal.Decimal, termYears int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termYears * 12))
	return payment.Mul(n).Sub(loanAmount).Round(2)
}
