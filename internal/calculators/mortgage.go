package calculators

import (
	"fmt"

	"fincalc/internal/finance"
)

var (
	fieldPropertyValue     = Field{Name: "propertyValue", Label: "Property Value ($)"}
	fieldDownPayment       = Field{Name: "downPayment", Label: "Down Payment ($)"}
	fieldInterestRate      = Field{Name: "interestRate", Label: "Interest Rate (%)", Step: "0.01"}
	fieldLoanTerm          = Field{Name: "loanTerm", Label: "Loan Term (years)", Max: finance.MaxTermYears}
	fieldLoanAmount        = Field{Name: "loanAmount", Label: "Loan Amount ($)"}
	fieldPropertyTaxRate   = Field{Name: "propertyTaxRate", Label: "Property Tax Rate (%)", Step: "0.01", Default: "1.2"}
	fieldHomeInsuranceRate = Field{Name: "homeInsuranceRate", Label: "Home Insurance Rate (%)", Step: "0.01", Default: "0.35"}
)

// Mortgage computes the full monthly cost of a home loan, including escrowed
// property tax, home insurance and mortgage insurance.
type Mortgage struct{}

func (Mortgage) Kind() string { return KindMortgage }

func (Mortgage) Fields() []Field {
	return []Field{fieldPropertyValue, fieldDownPayment, fieldInterestRate, fieldLoanTerm, fieldPropertyTaxRate, fieldHomeInsuranceRate}
}

func (Mortgage) Compute(in Input) (ResultSet, error) {
	b, err := finance.Mortgage(finance.MortgageInput{
		PropertyValue:     in.Get(fieldPropertyValue.Name),
		DownPayment:       in.Get(fieldDownPayment.Name),
		AnnualRatePercent: in.Get(fieldInterestRate.Name),
		TermYears:         in.Get(fieldLoanTerm.Name),
		PropertyTaxRate:   in.Get(fieldPropertyTaxRate.Name),
		HomeInsuranceRate: in.Get(fieldHomeInsuranceRate.Name),
	})
	if err != nil {
		return ResultSet{}, err
	}

	rs := ResultSet{Kind: KindMortgage}
	rs.add("loanAmount", "Loan Amount", b.LoanAmount, Currency)
	rs.add("monthlyPayment", "Monthly Principal & Interest", b.MonthlyPayment, Currency)
	rs.add("totalPayment", "Total Payment", b.TotalPayment, Currency)
	rs.add("totalInterest", "Total Interest", b.TotalInterest, Currency)
	rs.add("monthlyPropertyTax", "Monthly Property Tax", b.MonthlyPropertyTax, Currency)
	rs.add("monthlyHomeInsurance", "Monthly Home Insurance", b.MonthlyHomeInsurance, Currency)
	rs.add("monthlyMortgageInsurance", "Monthly PMI", b.MonthlyInsurance, Currency)
	rs.add("totalMonthlyPayment", "Total Monthly Payment", b.TotalMonthlyPayment, Currency)
	rs.add("ltvRatio", "Loan-to-Value Ratio", b.LoanToValue, Percent)
	rs.add("closingCosts", "Estimated Closing Costs", b.ClosingCosts, Currency)
	rs.addText("insuranceTier", "Mortgage Insurance Tier", insuranceTier(b.InsuranceRate))
	return rs, nil
}

func insuranceTier(ratePercent float64) string {
	if ratePercent == 0 {
		return "None (loan-to-value at or below 80%)"
	}
	return fmt.Sprintf("%.2f%% of the loan per year", ratePercent)
}

// Amortization lists every monthly payment of a fixed-rate loan.
type Amortization struct{}

func (Amortization) Kind() string { return KindAmortization }

func (Amortization) Fields() []Field {
	return []Field{fieldLoanAmount, fieldInterestRate, fieldLoanTerm}
}

func (Amortization) Compute(in Input) (ResultSet, error) {
	principal := in.Get(fieldLoanAmount.Name)
	rate := in.Get(fieldInterestRate.Name)
	years := in.Get(fieldLoanTerm.Name)

	schedule, err := finance.AmortizationSchedule(principal, rate, years)
	if err != nil {
		return ResultSet{}, err
	}
	payment, err := finance.MonthlyPayment(principal, rate, years)
	if err != nil {
		return ResultSet{}, err
	}
	// Totals follow the rows, whose last payment absorbs rounding residue.
	totals := finance.SummarizeSchedule(schedule)

	rs := ResultSet{Kind: KindAmortization, Schedule: schedule}
	rs.add("monthlyPayment", "Monthly Payment", payment, Currency)
	rs.add("totalPayment", "Total Payment", totals.Paid, Currency)
	rs.add("totalInterest", "Total Interest", totals.Interest, Currency)
	rs.add("numberOfPayments", "Number of Payments", float64(totals.Payments), Months)
	return rs, nil
}

// MortgagePayoff shows the effect of a fixed extra monthly payment.
type MortgagePayoff struct{}

var fieldExtraPayment = Field{Name: "extraPayment", Label: "Extra Monthly Payment ($)", Default: "0"}

func (MortgagePayoff) Kind() string { return KindMortgagePayoff }

func (MortgagePayoff) Fields() []Field {
	return []Field{fieldLoanAmount, fieldInterestRate, fieldLoanTerm, fieldExtraPayment}
}

func (MortgagePayoff) Compute(in Input) (ResultSet, error) {
	s, err := finance.EarlyPayoff(
		in.Get(fieldLoanAmount.Name),
		in.Get(fieldInterestRate.Name),
		in.Get(fieldLoanTerm.Name),
		in.Get(fieldExtraPayment.Name),
	)
	if err != nil {
		return ResultSet{}, err
	}

	rs := ResultSet{Kind: KindMortgagePayoff}
	rs.add("monthlyPayment", "Scheduled Monthly Payment", s.MonthlyPayment, Currency)
	rs.add("originalMonths", "Original Term", float64(s.OriginalMonths), Months)
	rs.add("newMonths", "New Term", float64(s.NewMonths), Months)
	rs.add("monthsSaved", "Time Saved", float64(s.MonthsSaved), Months)
	rs.add("originalInterest", "Original Total Interest", s.OriginalInterest, Currency)
	rs.add("newInterest", "New Total Interest", s.NewInterest, Currency)
	rs.add("savings", "Interest Saved", s.Savings, Currency)
	return rs, nil
}

// HouseAffordability estimates the largest purchase an income supports.
type HouseAffordability struct{}

var (
	fieldAnnualIncome       = Field{Name: "annualIncome", Label: "Annual Income ($)"}
	fieldMonthlyDebts       = Field{Name: "monthlyDebts", Label: "Monthly Debts ($)", Default: "0"}
	fieldDownPaymentPercent = Field{Name: "downPaymentPercent", Label: "Down Payment (%)", Step: "0.1", Default: "20"}
)

func (HouseAffordability) Kind() string { return KindHouseAffordability }

func (HouseAffordability) Fields() []Field {
	term := fieldLoanTerm
	term.Default = "30"
	return []Field{fieldAnnualIncome, fieldMonthlyDebts, fieldDownPaymentPercent, fieldInterestRate, term, fieldPropertyTaxRate, fieldHomeInsuranceRate}
}

func (HouseAffordability) Compute(in Input) (ResultSet, error) {
	a, err := finance.HouseAffordability(finance.AffordabilityInput{
		AnnualIncome:       in.Get(fieldAnnualIncome.Name),
		MonthlyDebts:       in.Get(fieldMonthlyDebts.Name),
		DownPaymentPercent: in.Get(fieldDownPaymentPercent.Name),
		AnnualRatePercent:  in.Get(fieldInterestRate.Name),
		TermYears:          in.Get(fieldLoanTerm.Name),
		PropertyTaxRate:    in.Get(fieldPropertyTaxRate.Name),
		HomeInsuranceRate:  in.Get(fieldHomeInsuranceRate.Name),
	})
	if err != nil {
		return ResultSet{}, err
	}

	rs := ResultSet{Kind: KindHouseAffordability}
	rs.add("maxHousePrice", "Maximum House Price", a.MaxHousePrice, Currency)
	rs.add("maxLoanAmount", "Maximum Loan Amount", a.MaxLoanAmount, Currency)
	rs.add("downPayment", "Down Payment", a.DownPayment, Currency)
	rs.add("monthlyPayment", "Monthly Principal & Interest", a.MonthlyPayment, Currency)
	rs.add("annualPropertyTax", "Annual Property Tax", a.AnnualPropertyTax, Currency)
	rs.add("annualHomeInsurance", "Annual Home Insurance", a.AnnualHomeInsurance, Currency)
	rs.add("closingCosts", "Estimated Closing Costs", a.ClosingCosts, Currency)
	rs.add("debtToIncome", "Current Debt-to-Income", a.DebtToIncome, Percent)
	rs.add("maxDebtToIncome", "Debt-to-Income Limit", finance.MaxDebtToIncomeRatio, Percent)
	return rs, nil
}

// PropertyTax converts a tax rate into annual and monthly amounts.
type PropertyTax struct{}

func (PropertyTax) Kind() string { return KindPropertyTax }

func (PropertyTax) Fields() []Field {
	return []Field{fieldPropertyValue, fieldPropertyTaxRate}
}

func (PropertyTax) Compute(in Input) (ResultSet, error) {
	annual := finance.PropertyTax(in.Get(fieldPropertyValue.Name), in.Get(fieldPropertyTaxRate.Name))

	rs := ResultSet{Kind: KindPropertyTax}
	rs.add("annualPropertyTax", "Annual Property Tax", annual, Currency)
	rs.add("monthlyPropertyTax", "Monthly Property Tax", finance.Monthly(annual), Currency)
	return rs, nil
}
