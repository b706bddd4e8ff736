package finance

import "math"

// AffordabilityInput describes a buyer's finances and the intended loan terms.
type AffordabilityInput struct {
	AnnualIncome       float64
	MonthlyDebts       float64
	DownPaymentPercent float64
	AnnualRatePercent  float64
	TermYears          float64
	PropertyTaxRate    float64
	HomeInsuranceRate  float64
}

// Affordability is the most expensive home the buyer can finance while keeping
// total debt payments at MaxDebtToIncomeRatio of income.
type Affordability struct {
	MaxHousePrice       float64
	MaxLoanAmount       float64
	DownPayment         float64
	MonthlyPayment      float64
	AnnualPropertyTax   float64
	AnnualHomeInsurance float64
	ClosingCosts        float64
	// DebtToIncome is the share of monthly income already going to debts.
	DebtToIncome float64
}

// HouseAffordability inverts the annuity formula: the payment left after
// existing debts determines the largest loan, and the down payment share
// scales that loan up to a purchase price. When existing debts already use the
// whole allowance the result is all zeros apart from DebtToIncome.
func HouseAffordability(in AffordabilityInput) (Affordability, error) {
	if err := requirePositive("annual income", in.AnnualIncome); err != nil {
		return Affordability{}, err
	}
	if err := requireNonNegative("monthly debts", in.MonthlyDebts); err != nil {
		return Affordability{}, err
	}
	if err := requireNonNegative("down payment", in.DownPaymentPercent); err != nil {
		return Affordability{}, err
	}
	if in.DownPaymentPercent >= 100 {
		return Affordability{}, invalid("down payment", in.DownPaymentPercent, "must be below 100 percent")
	}
	if err := requireNonNegative("annual rate", in.AnnualRatePercent); err != nil {
		return Affordability{}, err
	}
	n, err := loanPeriods(in.TermYears)
	if err != nil {
		return Affordability{}, err
	}

	monthlyIncome := in.AnnualIncome / MonthsPerYear
	dti := DebtToIncomeRatio(in.MonthlyDebts, monthlyIncome)
	available := monthlyIncome*MaxDebtToIncomeRatio/100 - in.MonthlyDebts
	if available <= 0 {
		return Affordability{DebtToIncome: dti}, nil
	}

	r := MonthlyRate(in.AnnualRatePercent)
	var maxLoan float64
	if r == 0 {
		maxLoan = available * float64(n)
	} else {
		growth := math.Pow(1+r, float64(n))
		maxLoan = available * (growth - 1) / (r * growth)
	}
	price := maxLoan / (1 - in.DownPaymentPercent/100)

	return Affordability{
		MaxHousePrice:       price,
		MaxLoanAmount:       maxLoan,
		DownPayment:         DownPayment(price, in.DownPaymentPercent),
		MonthlyPayment:      available,
		AnnualPropertyTax:   PropertyTax(price, in.PropertyTaxRate),
		AnnualHomeInsurance: HomeInsurance(price, in.HomeInsuranceRate),
		ClosingCosts:        ClosingCosts(price, DefaultClosingCostRate),
		DebtToIncome:        dti,
	}, nil
}
