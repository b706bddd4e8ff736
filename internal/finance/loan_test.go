package finance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyPayment_StandardAnnuity(t *testing.T) {
	got, err := MonthlyPayment(200000, 6, 30)
	require.NoError(t, err)
	assert.InDelta(t, 1199.10, got, 0.01)
}

func TestMonthlyPayment_ZeroRateFallsBackToStraightLine(t *testing.T) {
	got, err := MonthlyPayment(100000, 0, 30)
	require.NoError(t, err)
	assert.Equal(t, 100000.0/360, got)
}

func TestMonthlyPayment_InvalidInput(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		rate      float64
		years     float64
		field     string
	}{
		{"zero principal", 0, 5, 30, "principal"},
		{"negative principal", -1, 5, 30, "principal"},
		{"negative rate", 1000, -0.5, 30, "annual rate"},
		{"zero term", 1000, 5, 0, "term"},
		{"term shorter than half a month", 1000, 5, 0.01, "term"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MonthlyPayment(tc.principal, tc.rate, tc.years)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var inputErr *InvalidInputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tc.field, inputErr.Field)
		})
	}
}

func TestAmortizationSchedule_Properties(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		years     float64
	}{
		{200000, 6, 30},
		{100000, 0, 30},
		{15000, 3.9, 5},
		{5000, 24.99, 1},
		{350000, 7.125, 15},
	}
	for _, tc := range cases {
		schedule, err := AmortizationSchedule(tc.principal, tc.rate, tc.years)
		require.NoError(t, err)
		require.Len(t, schedule, int(tc.years*12))

		var principalSum float64
		prev := tc.principal
		for i, e := range schedule {
			assert.Equal(t, i+1, e.Period)
			assert.GreaterOrEqual(t, e.RemainingBalance, 0.0)
			assert.LessOrEqual(t, e.RemainingBalance, prev)
			prev = e.RemainingBalance
			principalSum += e.Principal
		}
		assert.Equal(t, 0.0, schedule[len(schedule)-1].RemainingBalance)
		assert.InDelta(t, tc.principal, principalSum, 1e-6)
	}
}

func TestAmortizationSchedule_FirstPeriodSplit(t *testing.T) {
	schedule, err := AmortizationSchedule(200000, 6, 30)
	require.NoError(t, err)

	first := schedule[0]
	assert.InDelta(t, 1000.0, first.Interest, 1e-9)
	assert.InDelta(t, 199.10, first.Principal, 0.01)
	assert.InDelta(t, first.Payment, first.Principal+first.Interest, 1e-9)
}

func TestAmortizationSchedule_ZeroRate(t *testing.T) {
	schedule, err := AmortizationSchedule(1200, 0, 1)
	require.NoError(t, err)
	require.Len(t, schedule, 12)
	for _, e := range schedule {
		assert.InDelta(t, 100.0, e.Payment, 1e-9)
		assert.Equal(t, 0.0, e.Interest)
	}
	assert.InDelta(t, 1100.0, schedule[0].RemainingBalance, 1e-9)
}

func TestAmortizationSchedule_RejectsInvalidInput(t *testing.T) {
	_, err := AmortizationSchedule(100000, -1, 30)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = AmortizationSchedule(0, 5, 30)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = AmortizationSchedule(100000, 5, -2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAmortizationSchedule_TermIsBounded(t *testing.T) {
	schedule, err := AmortizationSchedule(100000, 5, MaxTermYears)
	require.NoError(t, err)
	assert.Len(t, schedule, MaxPeriods)

	for _, years := range []float64{50.5, 10000, 1e8, 1e12, 1e300} {
		_, err := AmortizationSchedule(100000, 5, years)
		require.Error(t, err, "term %g", years)

		var inputErr *InvalidInputError
		require.True(t, errors.As(err, &inputErr))
		assert.Equal(t, "term", inputErr.Field)
		assert.Equal(t, "must not exceed 50 years", inputErr.Reason)
	}
}

func TestLongTermsRejectedEverywhere(t *testing.T) {
	_, err := MonthlyPayment(100000, 5, 1e13)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = EarlyPayoff(100000, 5, 1e9, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = HouseAffordability(AffordabilityInput{AnnualIncome: 90000, AnnualRatePercent: 5, TermYears: 51})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSummarizeSchedule(t *testing.T) {
	schedule, err := AmortizationSchedule(200000, 6, 30)
	require.NoError(t, err)

	totals := SummarizeSchedule(schedule)
	payment, err := MonthlyPayment(200000, 6, 30)
	require.NoError(t, err)

	assert.Equal(t, 360, totals.Payments)
	assert.InDelta(t, 200000, totals.Principal, 1e-6)
	assert.InDelta(t, TotalPayment(payment, 30), totals.Paid, 1e-4)
	assert.InDelta(t, totals.Paid-200000, totals.Interest, 1e-4)
}

func TestPeriods(t *testing.T) {
	assert.Equal(t, 360, Periods(30))
	assert.Equal(t, 6, Periods(0.5))
	assert.Equal(t, 1, Periods(1.0/12))
	assert.Equal(t, 0, Periods(0.01))
}
