package finance

import "math"

// balanceTolerance treats sub-micro-cent balances as repaid.
const balanceTolerance = 1e-6

// PayoffSummary compares the scheduled repayment of a loan with one that adds
// a fixed extra amount to every monthly payment.
type PayoffSummary struct {
	MonthlyPayment       float64
	OriginalMonths       int
	NewMonths            int
	MonthsSaved          int
	OriginalTotalPayment float64
	NewTotalPayment      float64
	OriginalInterest     float64
	NewInterest          float64
	Savings              float64
}

// EarlyPayoff simulates the loan month by month with the extra payment applied
// to principal until the balance is gone.
func EarlyPayoff(principal, annualRatePercent, termYears, extraMonthly float64) (PayoffSummary, error) {
	n, err := validateLoan(principal, annualRatePercent, termYears)
	if err != nil {
		return PayoffSummary{}, err
	}
	if err := requireNonNegative("extra payment", extraMonthly); err != nil {
		return PayoffSummary{}, err
	}

	r := MonthlyRate(annualRatePercent)
	payment := annuity(principal, r, n)
	originalTotal := payment * float64(n)

	balance := principal
	months := 0
	var paid, interestPaid float64
	for months < n && balance > balanceTolerance {
		months++
		interest := balance * r
		pay := math.Min(payment+extraMonthly, balance+interest)
		balance -= pay - interest
		paid += pay
		interestPaid += interest
	}

	return PayoffSummary{
		MonthlyPayment:       payment,
		OriginalMonths:       n,
		NewMonths:            months,
		MonthsSaved:          n - months,
		OriginalTotalPayment: originalTotal,
		NewTotalPayment:      paid,
		OriginalInterest:     originalTotal - principal,
		NewInterest:          interestPaid,
		Savings:              originalTotal - paid,
	}, nil
}
