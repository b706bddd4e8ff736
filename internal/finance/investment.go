package finance

import "math"

// Growth is the outcome of a monthly-compounded savings plan.
type Growth struct {
	FutureValue        float64
	TotalContributions float64
	InterestEarned     float64
	ReturnPercent      float64
}

// FutureValueWithContributions compounds an initial amount monthly and adds an
// ordinary annuity of monthly contributions. The return may be negative; a
// zero return degrades to the plain sum of the deposits.
func FutureValueWithContributions(initial, monthlyContribution, annualReturnPercent, years float64) (float64, error) {
	if err := requireNonNegative("initial amount", initial); err != nil {
		return 0, err
	}
	if err := requireNonNegative("monthly contribution", monthlyContribution); err != nil {
		return 0, err
	}
	if err := requireFinite("annual return", annualReturnPercent); err != nil {
		return 0, err
	}
	if err := requirePositive("years", years); err != nil {
		return 0, err
	}
	n := float64(Periods(years))
	r := MonthlyRate(annualReturnPercent)
	if r == 0 {
		return initial + monthlyContribution*n, nil
	}
	growth := math.Pow(1+r, n)
	return initial*growth + monthlyContribution*((growth-1)/r), nil
}

// InvestmentGrowth runs FutureValueWithContributions and derives the totals
// shown by the investment calculator.
func InvestmentGrowth(initial, monthlyContribution, annualReturnPercent, years float64) (Growth, error) {
	fv, err := FutureValueWithContributions(initial, monthlyContribution, annualReturnPercent, years)
	if err != nil {
		return Growth{}, err
	}
	contributed := initial + monthlyContribution*float64(Periods(years))
	return Growth{
		FutureValue:        fv,
		TotalContributions: contributed,
		InterestEarned:     fv - contributed,
		ReturnPercent:      ReturnOnInvestment(contributed, fv),
	}, nil
}

// CompoundInterest compounds principal compoundsPerYear times a year.
func CompoundInterest(principal, annualRatePercent, years float64, compoundsPerYear int) (float64, error) {
	if err := requireNonNegative("principal", principal); err != nil {
		return 0, err
	}
	if err := requireFinite("annual rate", annualRatePercent); err != nil {
		return 0, err
	}
	if err := requireNonNegative("years", years); err != nil {
		return 0, err
	}
	if compoundsPerYear < 1 {
		return 0, invalid("compounds per year", float64(compoundsPerYear), "must be at least 1")
	}
	k := float64(compoundsPerYear)
	return principal * math.Pow(1+annualRatePercent/100/k, years*k), nil
}

// PresentValue discounts a future amount back to today.
func PresentValue(futureValue, annualRatePercent, years float64, compoundsPerYear int) (float64, error) {
	if err := requireFinite("future value", futureValue); err != nil {
		return 0, err
	}
	if err := requireFinite("annual rate", annualRatePercent); err != nil {
		return 0, err
	}
	if err := requireNonNegative("years", years); err != nil {
		return 0, err
	}
	if compoundsPerYear < 1 {
		return 0, invalid("compounds per year", float64(compoundsPerYear), "must be at least 1")
	}
	k := float64(compoundsPerYear)
	factor := math.Pow(1+annualRatePercent/100/k, years*k)
	if factor == 0 {
		return 0, invalid("annual rate", annualRatePercent, "discount factor is zero")
	}
	return futureValue / factor, nil
}

// ReturnOnInvestment returns the gain over the amount contributed, as a
// percentage. Nothing contributed means no measurable return, so a zero base
// yields 0.
func ReturnOnInvestment(totalContributed, finalValue float64) float64 {
	if totalContributed == 0 {
		return 0
	}
	return (finalValue - totalContributed) / totalContributed * 100
}

// PaybackPeriod returns how many years of cash flow recover the initial
// investment. A cash flow of zero never pays back and yields 0.
func PaybackPeriod(initialInvestment, annualCashFlow float64) float64 {
	if annualCashFlow == 0 {
		return 0
	}
	return initialInvestment / annualCashFlow
}
