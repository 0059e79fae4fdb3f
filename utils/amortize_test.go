package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMonthlyPayment(t *testing.T) {
	// 400k at 4.5% over 30 years is the canonical fixture
	payment := MonthlyPayment(dec("400000"), dec("4.5"), 30)
	assert.True(t, payment.Equal(dec("2026.74")), "got %s", payment)
}

func TestMonthlyPaymentIsPure(t *testing.T) {
	a := MonthlyPayment(dec("250000"), dec("6.25"), 15)
	b := MonthlyPayment(dec("250000"), dec("6.25"), 15)
	assert.True(t, a.Equal(b))
}

func TestMonthlyPaymentZeroRate(t *testing.T) {
	// Zero interest degenerates to an even split
	payment := MonthlyPayment(dec("120000"), decimal.Zero, 10)
	assert.True(t, payment.Equal(dec("1000")), "got %s", payment)
}

func TestSplitPayment(t *testing.T) {
	principal, interest := SplitPayment(dec("400000"), dec("4.5"), dec("2026.74"))
	assert.True(t, interest.Equal(dec("1500.00")), "interest %s", interest)
	assert.True(t, principal.Equal(dec("526.74")), "principal %s", principal)
}

func TestSplitPaymentClampsNegativePrincipal(t *testing.T) {
	// A payment below the accrued interest must not produce negative principal
	principal, interest := SplitPayment(dec("400000"), dec("4.5"), dec("100"))
	assert.True(t, interest.Equal(dec("1500.00")))
	assert.True(t, principal.IsZero(), "principal %s", principal)
}

func TestScheduleLengthAndFinalBalance(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	schedule := Schedule(dec("400000"), dec("4.5"), 30, start)

	require.Len(t, schedule, 360)
	assert.True(t, schedule[359].RemainingBalance.IsZero())
	assert.Equal(t, 1, schedule[0].PaymentNumber)
	assert.Equal(t, start.AddDate(0, 1, 0), schedule[0].PaymentDate)
	assert.Equal(t, start.AddDate(0, 360, 0), schedule[359].PaymentDate)
}

func TestSchedulePrincipalSumsToLoanAmount(t *testing.T) {
	loan := dec("400000")
	schedule := Schedule(loan, dec("4.5"), 30, time.Now())

	sum := decimal.Zero
	for _, entry := range schedule {
		sum = sum.Add(entry.Principal)
	}
	// Rounding drift is absorbed by the final entry, so the sum is exact
	assert.True(t, sum.Equal(loan), "principal sum %s", sum)
}

func TestScheduleBalanceIsMonotonic(t *testing.T) {
	schedule := Schedule(dec("50000"), dec("7.0"), 5, time.Now())
	require.Len(t, schedule, 60)

	prev := dec("50000")
	for _, entry := range schedule {
		assert.True(t, entry.RemainingBalance.LessThanOrEqual(prev),
			"balance grew at period %d: %s -> %s", entry.PaymentNumber, prev, entry.RemainingBalance)
		prev = entry.RemainingBalance
	}
}

func TestScheduleZeroRate(t *testing.T) {
	schedule := Schedule(dec("12000"), decimal.Zero, 1, time.Now())
	require.Len(t, schedule, 12)
	for _, entry := range schedule {
		assert.True(t, entry.Interest.IsZero())
		assert.True(t, entry.Principal.Equal(dec("1000")))
	}
	assert.True(t, schedule[11].RemainingBalance.IsZero())
}

func TestScheduleInvalidInputs(t *testing.T) {
	assert.Nil(t, Schedule(dec("100000"), dec("5"), 0, time.Now()))
	assert.Nil(t, Schedule(decimal.Zero, dec("5"), 10, time.Now()))
}

func TestLoanToValue(t *testing.T) {
	assert.True(t, LoanToValue(dec("400000"), dec("500000")).Equal(dec("80")))
	assert.True(t, LoanToValue(dec("410000"), dec("500000")).Equal(dec("82")))
	assert.True(t, LoanToValue(dec("100"), decimal.Zero).IsZero())
}

func TestTotalInterest(t *testing.T) {
	total := TotalInterest(dec("400000"), dec("2026.74"), 30)
	// 2026.74 * 360 - 400000
	assert.True(t, total.Equal(dec("329626.40")), "got %s", total)
}
