package finance

// Default percentages used by the mortgage and affordability calculators.
const (
	DefaultPropertyTaxRate   = 1.2
	DefaultHomeInsuranceRate = 0.35
	DefaultClosingCostRate   = 2.0
	MaxDebtToIncomeRatio     = 43.0
)

// premiumTier maps an inclusive loan-to-value upper bound to an annual
// premium rate expressed as a fraction of the loan amount.
type premiumTier struct {
	maxLTV float64
	rate   float64
}

var premiumTiers = []premiumTier{
	{maxLTV: 80, rate: 0},
	{maxLTV: 85, rate: 0.005},
	{maxLTV: 90, rate: 0.01},
	{maxLTV: 95, rate: 0.015},
}

const topPremiumRate = 0.02

// LoanAmount is the financed part of the purchase price.
func LoanAmount(propertyValue, downPayment float64) float64 {
	return propertyValue - downPayment
}

// LoanToValueRatio returns the loan amount as a percentage of the property value.
func LoanToValueRatio(loanAmount, propertyValue float64) (float64, error) {
	if err := requireNonNegative("loan amount", loanAmount); err != nil {
		return 0, err
	}
	if err := requirePositive("property value", propertyValue); err != nil {
		return 0, err
	}
	return loanAmount / propertyValue * 100, nil
}

// MortgageInsuranceRate returns the annual premium rate (fraction of the loan)
// for a loan-to-value percentage. Tier upper bounds are inclusive.
func MortgageInsuranceRate(ltvPercent float64) float64 {
	for _, tier := range premiumTiers {
		if ltvPercent <= tier.maxLTV {
			return tier.rate
		}
	}
	return topPremiumRate
}

// MortgageInsurancePremium returns the annual private mortgage insurance premium.
func MortgageInsurancePremium(loanAmount, ltvPercent float64) float64 {
	return loanAmount * MortgageInsuranceRate(ltvPercent)
}

// PropertyTax returns the annual property tax.
func PropertyTax(propertyValue, ratePercent float64) float64 {
	return propertyValue * ratePercent / 100
}

// HomeInsurance returns the annual home insurance cost.
func HomeInsurance(propertyValue, ratePercent float64) float64 {
	return propertyValue * ratePercent / 100
}

// ClosingCosts returns the one-off closing costs of a purchase.
func ClosingCosts(propertyValue, ratePercent float64) float64 {
	return propertyValue * ratePercent / 100
}

// DownPayment returns the down payment for a percentage of the property value.
func DownPayment(propertyValue, ratePercent float64) float64 {
	return propertyValue * ratePercent / 100
}

// Monthly spreads an annual amount over twelve months.
func Monthly(annual float64) float64 {
	return annual / MonthsPerYear
}

// DebtToIncomeRatio returns monthly debt payments as a percentage of monthly
// income. A zero income yields 0 rather than an infinite ratio.
func DebtToIncomeRatio(monthlyDebtPayments, monthlyIncome float64) float64 {
	if monthlyIncome == 0 {
		return 0
	}
	return monthlyDebtPayments / monthlyIncome * 100
}

// MortgageBreakdown is the full monthly cost of a mortgaged purchase.
type MortgageBreakdown struct {
	LoanAmount           float64
	LoanToValue          float64
	MonthlyPayment       float64
	TotalPayment         float64
	TotalInterest        float64
	MonthlyPropertyTax   float64
	MonthlyHomeInsurance float64
	MonthlyInsurance     float64
	InsuranceRate        float64
	TotalMonthlyPayment  float64
	ClosingCosts         float64
}

// MortgageInput carries the purchase and loan parameters of a mortgage.
type MortgageInput struct {
	PropertyValue     float64
	DownPayment       float64
	AnnualRatePercent float64
	TermYears         float64
	PropertyTaxRate   float64
	HomeInsuranceRate float64
}

// Mortgage combines the loan payment with taxes, insurance and PMI.
func Mortgage(in MortgageInput) (MortgageBreakdown, error) {
	if err := requirePositive("property value", in.PropertyValue); err != nil {
		return MortgageBreakdown{}, err
	}
	if err := requireNonNegative("down payment", in.DownPayment); err != nil {
		return MortgageBreakdown{}, err
	}
	if in.DownPayment >= in.PropertyValue {
		return MortgageBreakdown{}, invalid("down payment", in.DownPayment, "must be less than the property value")
	}
	if err := requireNonNegative("property tax rate", in.PropertyTaxRate); err != nil {
		return MortgageBreakdown{}, err
	}
	if err := requireNonNegative("home insurance rate", in.HomeInsuranceRate); err != nil {
		return MortgageBreakdown{}, err
	}

	loan := LoanAmount(in.PropertyValue, in.DownPayment)
	payment, err := MonthlyPayment(loan, in.AnnualRatePercent, in.TermYears)
	if err != nil {
		return MortgageBreakdown{}, err
	}
	ltv, err := LoanToValueRatio(loan, in.PropertyValue)
	if err != nil {
		return MortgageBreakdown{}, err
	}

	total := TotalPayment(payment, in.TermYears)
	b := MortgageBreakdown{
		LoanAmount:           loan,
		LoanToValue:          ltv,
		MonthlyPayment:       payment,
		TotalPayment:         total,
		TotalInterest:        TotalInterest(total, loan),
		MonthlyPropertyTax:   Monthly(PropertyTax(in.PropertyValue, in.PropertyTaxRate)),
		MonthlyHomeInsurance: Monthly(HomeInsurance(in.PropertyValue, in.HomeInsuranceRate)),
		MonthlyInsurance:     Monthly(MortgageInsurancePremium(loan, ltv)),
		InsuranceRate:        MortgageInsuranceRate(ltv) * 100,
		ClosingCosts:         ClosingCosts(in.PropertyValue, DefaultClosingCostRate),
	}
	b.TotalMonthlyPayment = b.MonthlyPayment + b.MonthlyPropertyTax + b.MonthlyHomeInsurance + b.MonthlyInsurance
	return b, nil
}
