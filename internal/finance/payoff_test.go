package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarlyPayoff_NoExtraMatchesSchedule(t *testing.T) {
	s, err := EarlyPayoff(200000, 6, 30, 0)
	require.NoError(t, err)

	assert.Equal(t, 360, s.OriginalMonths)
	assert.Equal(t, 360, s.NewMonths)
	assert.Equal(t, 0, s.MonthsSaved)
	assert.InDelta(t, 0, s.Savings, 1e-4)
	assert.InDelta(t, s.OriginalInterest, s.NewInterest, 1e-4)
}

func TestEarlyPayoff_ExtraPaymentShortensLoan(t *testing.T) {
	s, err := EarlyPayoff(200000, 6, 30, 200)
	require.NoError(t, err)

	assert.Less(t, s.NewMonths, s.OriginalMonths)
	assert.Equal(t, s.OriginalMonths-s.NewMonths, s.MonthsSaved)
	assert.Greater(t, s.Savings, 0.0)
	assert.Less(t, s.NewInterest, s.OriginalInterest)
	// every dollar saved is interest that was never charged
	assert.InDelta(t, s.OriginalInterest-s.NewInterest, s.Savings, 1e-4)
}

func TestEarlyPayoff_ZeroRate(t *testing.T) {
	s, err := EarlyPayoff(12000, 0, 1, 1000)
	require.NoError(t, err)

	assert.Equal(t, 6, s.NewMonths)
	assert.Equal(t, 6, s.MonthsSaved)
	assert.InDelta(t, 12000, s.NewTotalPayment, 1e-9)
	assert.InDelta(t, 0, s.Savings, 1e-9)
}

func TestEarlyPayoff_RejectsNegativeExtra(t *testing.T) {
	_, err := EarlyPayoff(1000, 5, 1, -10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHouseAffordability_ZeroRate(t *testing.T) {
	a, err := HouseAffordability(AffordabilityInput{
		AnnualIncome:       120000,
		MonthlyDebts:       500,
		DownPaymentPercent: 20,
		AnnualRatePercent:  0,
		TermYears:          30,
		PropertyTaxRate:    1,
		HomeInsuranceRate:  0.5,
	})
	require.NoError(t, err)

	assert.InDelta(t, 3800, a.MonthlyPayment, 1e-9)
	assert.InDelta(t, 1368000, a.MaxLoanAmount, 1e-6)
	assert.InDelta(t, 1710000, a.MaxHousePrice, 1e-6)
	assert.InDelta(t, 342000, a.DownPayment, 1e-6)
	assert.InDelta(t, 17100, a.AnnualPropertyTax, 1e-6)
	assert.InDelta(t, 8550, a.AnnualHomeInsurance, 1e-6)
}

func TestHouseAffordability_LoanSupportsPayment(t *testing.T) {
	a, err := HouseAffordability(AffordabilityInput{
		AnnualIncome:       90000,
		MonthlyDebts:       300,
		DownPaymentPercent: 10,
		AnnualRatePercent:  6.5,
		TermYears:          30,
	})
	require.NoError(t, err)

	payment, err := MonthlyPayment(a.MaxLoanAmount, 6.5, 30)
	require.NoError(t, err)
	assert.InDelta(t, a.MonthlyPayment, payment, 1e-6)
	assert.InDelta(t, a.MaxHousePrice-a.MaxLoanAmount, a.DownPayment, 1e-6)
	assert.InDelta(t, a.MaxHousePrice*0.02, a.ClosingCosts, 1e-6)
}

func TestHouseAffordability_DebtsExceedAllowance(t *testing.T) {
	a, err := HouseAffordability(AffordabilityInput{
		AnnualIncome:      24000,
		MonthlyDebts:      2000,
		AnnualRatePercent: 5,
		TermYears:         30,
	})
	require.NoError(t, err)
	assert.Equal(t, Affordability{DebtToIncome: 100}, a)
}

func TestHouseAffordability_InvalidDownPayment(t *testing.T) {
	_, err := HouseAffordability(AffordabilityInput{
		AnnualIncome:       50000,
		DownPaymentPercent: 100,
		AnnualRatePercent:  5,
		TermYears:          30,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
