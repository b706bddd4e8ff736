package calculators

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincalc/internal/finance"
)

func compute(t *testing.T, c Calculator, form url.Values) ResultSet {
	t.Helper()
	in, err := ParseInput(c.Fields(), form)
	require.NoError(t, err)
	rs, err := c.Compute(in)
	require.NoError(t, err)
	assert.Equal(t, c.Kind(), rs.Kind)
	return rs
}

func value(t *testing.T, rs ResultSet, key string) float64 {
	t.Helper()
	r, ok := rs.Get(key)
	require.True(t, ok, "missing result %q", key)
	return r.Value
}

func TestMortgage_Compute(t *testing.T) {
	rs := compute(t, Mortgage{}, url.Values{
		"propertyValue": {"250000"},
		"downPayment":   {"50000"},
		"interestRate":  {"6"},
		"loanTerm":      {"30"},
	})

	assert.Equal(t, 200000.0, value(t, rs, "loanAmount"))
	assert.InDelta(t, 1199.10, value(t, rs, "monthlyPayment"), 0.01)
	assert.InDelta(t, 250.0, value(t, rs, "monthlyPropertyTax"), 1e-9)
	assert.InDelta(t, 80.0, value(t, rs, "ltvRatio"), 1e-9)
	assert.Equal(t, 0.0, value(t, rs, "monthlyMortgageInsurance"))

	tier, ok := rs.Get("insuranceTier")
	require.True(t, ok)
	assert.Equal(t, Text, tier.Kind)
	assert.Contains(t, tier.Text, "None")
}

func TestMortgage_InsuranceTierText(t *testing.T) {
	rs := compute(t, Mortgage{}, url.Values{
		"propertyValue": {"200000"},
		"downPayment":   {"10000"},
		"interestRate":  {"5"},
		"loanTerm":      {"30"},
	})

	tier, _ := rs.Get("insuranceTier")
	assert.Equal(t, "1.50% of the loan per year", tier.Text)
}

func TestMortgage_EngineErrorSurfaces(t *testing.T) {
	in, err := ParseInput(Mortgage{}.Fields(), url.Values{
		"propertyValue": {"100000"},
		"downPayment":   {"100000"},
		"interestRate":  {"5"},
		"loanTerm":      {"30"},
	})
	require.NoError(t, err)

	_, err = Mortgage{}.Compute(in)
	assert.ErrorIs(t, err, finance.ErrInvalidInput)
}

func TestAmortization_ComputeIncludesSchedule(t *testing.T) {
	rs := compute(t, Amortization{}, url.Values{
		"loanAmount":   {"1200"},
		"interestRate": {"0"},
		"loanTerm":     {"1"},
	})

	require.Len(t, rs.Schedule, 12)
	assert.Equal(t, 100.0, value(t, rs, "monthlyPayment"))
	assert.Equal(t, 1200.0, value(t, rs, "totalPayment"))
	assert.Equal(t, 0.0, value(t, rs, "totalInterest"))
	assert.Equal(t, 12.0, value(t, rs, "numberOfPayments"))
}

func TestAmortization_TotalsMatchScheduleRows(t *testing.T) {
	rs := compute(t, Amortization{}, url.Values{
		"loanAmount":   {"250000"},
		"interestRate": {"6.75"},
		"loanTerm":     {"30"},
	})

	var paid, interest float64
	for _, e := range rs.Schedule {
		paid += e.Payment
		interest += e.Interest
	}
	assert.Equal(t, paid, value(t, rs, "totalPayment"))
	assert.Equal(t, interest, value(t, rs, "totalInterest"))
	assert.InDelta(t, paid-250000, value(t, rs, "totalInterest"), 1e-6)
}

func TestLoan_Compute(t *testing.T) {
	rs := compute(t, Loan{}, url.Values{
		"loanAmount":   {"200,000"},
		"interestRate": {"6"},
		"loanTerm":     {"30"},
	})

	assert.InDelta(t, 1199.10, value(t, rs, "monthlyPayment"), 0.01)
	assert.Equal(t, 360.0, value(t, rs, "numberOfPayments"))
	assert.Nil(t, rs.Schedule)
}

func TestInvestment_ComputeAllowsNegativeReturn(t *testing.T) {
	rs := compute(t, Investment{}, url.Values{
		"initialInvestment": {"10000"},
		"interestRate":      {"-5"},
		"years":             {"2"},
	})

	assert.Equal(t, 10000.0, value(t, rs, "totalContributions"))
	assert.Less(t, value(t, rs, "futureValue"), 10000.0)
	assert.Less(t, value(t, rs, "roi"), 0.0)
}

func TestMortgagePayoff_Compute(t *testing.T) {
	rs := compute(t, MortgagePayoff{}, url.Values{
		"loanAmount":   {"12000"},
		"interestRate": {"0"},
		"loanTerm":     {"1"},
		"extraPayment": {"1000"},
	})

	assert.Equal(t, 6.0, value(t, rs, "newMonths"))
	assert.Equal(t, 6.0, value(t, rs, "monthsSaved"))
}

func TestHouseAffordability_ComputeUsesDefaults(t *testing.T) {
	rs := compute(t, HouseAffordability{}, url.Values{
		"annualIncome": {"120000"},
		"monthlyDebts": {"500"},
		"interestRate": {"0"},
	})

	assert.InDelta(t, 1710000, value(t, rs, "maxHousePrice"), 1e-6)
	assert.Equal(t, finance.MaxDebtToIncomeRatio, value(t, rs, "maxDebtToIncome"))
}

func TestHouseAffordability_ReportsClosingCostsAndDebtRatio(t *testing.T) {
	rs := compute(t, HouseAffordability{}, url.Values{
		"annualIncome": {"120000"},
		"monthlyDebts": {"500"},
		"interestRate": {"0"},
	})

	assert.InDelta(t, 34200, value(t, rs, "closingCosts"), 1e-6)
	assert.InDelta(t, 5, value(t, rs, "debtToIncome"), 1e-9)
}

func TestInvestment_InflationAdjustedValue(t *testing.T) {
	rs := compute(t, Investment{}, url.Values{
		"initialInvestment": {"10000"},
		"interestRate":      {"6"},
		"years":             {"10"},
	})
	_, ok := rs.Get("realFutureValue")
	assert.False(t, ok)

	rs = compute(t, Investment{}, url.Values{
		"initialInvestment": {"10000"},
		"interestRate":      {"6"},
		"years":             {"10"},
		"inflationRate":     {"6"},
	})
	assert.InDelta(t, 10000, value(t, rs, "realFutureValue"), 1e-6)
}

func TestCompoundInterest_Compute(t *testing.T) {
	rs := compute(t, CompoundInterest{}, url.Values{
		"principal":        {"1000"},
		"interestRate":     {"10"},
		"years":            {"2"},
		"compoundsPerYear": {"1"},
	})
	assert.InDelta(t, 1210, value(t, rs, "futureValue"), 1e-9)
	assert.InDelta(t, 210, value(t, rs, "interestEarned"), 1e-9)
	assert.InDelta(t, 21, value(t, rs, "roi"), 1e-9)

	in := Input{"principal": 1000, "interestRate": 10, "years": 2, "compoundsPerYear": 2.5}
	_, err := CompoundInterest{}.Compute(in)
	assert.ErrorIs(t, err, finance.ErrInvalidInput)
}

func TestROI_ZeroBaseYieldsZero(t *testing.T) {
	rs := compute(t, ROI{}, url.Values{"amountInvested": {"0"}, "finalValue": {"500"}})
	assert.Equal(t, 0.0, value(t, rs, "roi"))
	assert.Equal(t, 500.0, value(t, rs, "gain"))
}

func TestROI_PaybackPeriodNeedsCashFlow(t *testing.T) {
	rs := compute(t, ROI{}, url.Values{"amountInvested": {"10000"}, "finalValue": {"12500"}})
	_, ok := rs.Get("paybackPeriod")
	assert.False(t, ok)

	rs = compute(t, ROI{}, url.Values{"amountInvested": {"10000"}, "finalValue": {"12500"}, "annualCashFlow": {"2500"}})
	payback, ok := rs.Get("paybackPeriod")
	require.True(t, ok)
	assert.Equal(t, Years, payback.Kind)
	assert.Equal(t, 4.0, payback.Value)
}

func TestPropertyTax_Compute(t *testing.T) {
	rs := compute(t, PropertyTax{}, url.Values{"propertyValue": {"300000"}})
	assert.InDelta(t, 3600, value(t, rs, "annualPropertyTax"), 1e-9)
	assert.InDelta(t, 300, value(t, rs, "monthlyPropertyTax"), 1e-9)
}

func TestParseInput_ReportsEveryBadField(t *testing.T) {
	_, err := ParseInput(Mortgage{}.Fields(), url.Values{
		"propertyValue": {"abc"},
		"downPayment":   {"-1"},
		"interestRate":  {"5"},
	})
	require.Error(t, err)

	var errs FieldErrors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 3)
	assert.Equal(t, "must be a number", errs.For("propertyValue").Reason)
	assert.Equal(t, "must not be negative", errs.For("downPayment").Reason)
	assert.Equal(t, "is required", errs.For("loanTerm").Reason)
	assert.Nil(t, errs.For("interestRate"))
	assert.Contains(t, err.Error(), "Loan Term (years): is required")
}

func TestParseInput_AppliesDefaults(t *testing.T) {
	in, err := ParseInput(Mortgage{}.Fields(), url.Values{
		"propertyValue": {" 300000 "},
		"downPayment":   {"60000"},
		"interestRate":  {"6.5"},
		"loanTerm":      {"30"},
	})
	require.NoError(t, err)

	assert.Equal(t, 300000.0, in.Get("propertyValue"))
	assert.Equal(t, 1.2, in.Get("propertyTaxRate"))
	assert.Equal(t, 0.35, in.Get("homeInsuranceRate"))
}

func TestParseInput_RejectsNonFinite(t *testing.T) {
	_, err := ParseInput(Loan{}.Fields(), url.Values{
		"loanAmount":   {"Inf"},
		"interestRate": {"NaN"},
		"loanTerm":     {"30"},
	})
	var errs FieldErrors
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 2)
}

func TestParseInput_EnforcesMax(t *testing.T) {
	for _, term := range []string{"51", "1e12", "10000"} {
		_, err := ParseInput(Amortization{}.Fields(), url.Values{
			"loanAmount":   {"100000"},
			"interestRate": {"5"},
			"loanTerm":     {term},
		})
		var errs FieldErrors
		require.True(t, errors.As(err, &errs), term)
		require.Len(t, errs, 1)
		assert.Equal(t, "must not exceed 50", errs.For("loanTerm").Reason)
	}

	in, err := ParseInput(HouseAffordability{}.Fields(), url.Values{
		"annualIncome": {"90000"},
		"interestRate": {"5"},
		"loanTerm":     {"50"},
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, in.Get("loanTerm"))
}

func TestInput_KeyIsOrderIndependent(t *testing.T) {
	a := Input{"b": 2, "a": 1.5}
	b := Input{"a": 1.5, "b": 2}
	assert.Equal(t, "a=1.5&b=2", a.Key())
	assert.Equal(t, a.Key(), b.Key())
}

func TestValues_RoundTripsThroughParse(t *testing.T) {
	in := Input{"loanAmount": 1500.5, "interestRate": 4.25, "loanTerm": 3}
	back, err := ParseInput(Loan{}.Fields(), Values(Loan{}.Fields(), in))
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

func TestRegistry(t *testing.T) {
	r := Default()

	c, ok := r.Get(KindMortgage)
	require.True(t, ok)
	assert.IsType(t, Mortgage{}, c)

	_, ok = r.Get("retirement")
	assert.False(t, ok)
	assert.Len(t, r.Kinds(), 9)

	_, err := NewRegistry(Loan{}, Loan{})
	assert.Error(t, err)
}
