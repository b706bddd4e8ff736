// Package finance implements the loan, mortgage and investment formulas behind
// the calculators.
//
// Every function is pure: results depend only on the arguments and are returned
// at full float64 precision. Rounding to cents is left to the formatting layer
// so that chained calculations (schedule totals, payoff savings) do not
// accumulate rounding error.
//
// Rates are annual percentages (6 means 6 %) compounded monthly unless a
// function says otherwise. Terms are expressed in years and converted to whole
// months with Periods.
package finance

import (
	"fmt"
	"math"
)

// MonthsPerYear is the compounding frequency used by loan and investment formulas.
const MonthsPerYear = 12

// MaxTermYears is the longest loan term the engine accepts. Schedules are
// therefore never longer than MaxPeriods entries.
const (
	MaxTermYears = 50
	MaxPeriods   = MaxTermYears * MonthsPerYear
)

// AmortizationEntry is one monthly period of a repayment schedule.
type AmortizationEntry struct {
	Period           int
	Payment          float64
	Principal        float64
	Interest         float64
	RemainingBalance float64
}

// ScheduleTotals aggregates a repayment schedule.
type ScheduleTotals struct {
	Payments  int
	Paid      float64
	Principal float64
	Interest  float64
}

// Periods converts a term in years to a number of monthly periods, rounded to
// the nearest whole month.
func Periods(termYears float64) int {
	return int(math.Round(termYears * MonthsPerYear))
}

// MonthlyRate converts an annual percentage rate to a monthly fraction.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 100 / MonthsPerYear
}

func validateLoan(principal, annualRatePercent, termYears float64) (int, error) {
	if err := requirePositive("principal", principal); err != nil {
		return 0, err
	}
	if err := requireNonNegative("annual rate", annualRatePercent); err != nil {
		return 0, err
	}
	return loanPeriods(termYears)
}

// loanPeriods validates a loan term and converts it to months.
func loanPeriods(termYears float64) (int, error) {
	if err := requirePositive("term", termYears); err != nil {
		return 0, err
	}
	if termYears > MaxTermYears {
		return 0, invalid("term", termYears, fmt.Sprintf("must not exceed %d years", MaxTermYears))
	}
	n := Periods(termYears)
	if n < 1 {
		return 0, invalid("term", termYears, "must cover at least one month")
	}
	return n, nil
}

// annuity returns the level payment that repays principal over n periods at
// periodic rate r. A zero rate degrades to straight-line repayment.
func annuity(principal, r float64, n int) float64 {
	if r == 0 {
		return principal / float64(n)
	}
	growth := math.Pow(1+r, float64(n))
	return principal * r * growth / (growth - 1)
}

// MonthlyPayment returns the level monthly payment of a fully amortizing loan.
func MonthlyPayment(principal, annualRatePercent, termYears float64) (float64, error) {
	n, err := validateLoan(principal, annualRatePercent, termYears)
	if err != nil {
		return 0, err
	}
	return annuity(principal, MonthlyRate(annualRatePercent), n), nil
}

// AmortizationSchedule returns one entry per month of the term. The balance
// never goes negative and the last period pays off whatever is left, so the
// principal portions always add up to the original principal.
func AmortizationSchedule(principal, annualRatePercent, termYears float64) ([]AmortizationEntry, error) {
	n, err := validateLoan(principal, annualRatePercent, termYears)
	if err != nil {
		return nil, err
	}
	r := MonthlyRate(annualRatePercent)
	payment := annuity(principal, r, n)

	schedule := make([]AmortizationEntry, 0, n)
	balance := principal
	for period := 1; period <= n; period++ {
		interest := balance * r
		portion := payment - interest
		pay := payment
		if period == n || portion > balance {
			portion = balance
			pay = portion + interest
		}
		balance -= portion
		if period == n || balance < 0 {
			balance = 0
		}
		schedule = append(schedule, AmortizationEntry{
			Period:           period,
			Payment:          pay,
			Principal:        portion,
			Interest:         interest,
			RemainingBalance: balance,
		})
	}
	return schedule, nil
}

// SummarizeSchedule totals the payments of a schedule.
func SummarizeSchedule(schedule []AmortizationEntry) ScheduleTotals {
	totals := ScheduleTotals{Payments: len(schedule)}
	for _, e := range schedule {
		totals.Paid += e.Payment
		totals.Principal += e.Principal
		totals.Interest += e.Interest
	}
	return totals
}

// TotalPayment is the sum of all level payments over the term.
func TotalPayment(monthlyPayment, termYears float64) float64 {
	return monthlyPayment * float64(Periods(termYears))
}

// TotalInterest is what was paid on top of the principal.
func TotalInterest(totalPayment, principal float64) float64 {
	return totalPayment - principal
}
