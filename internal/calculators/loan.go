package calculators

import "fincalc/internal/finance"

// Loan is the plain fixed-rate loan calculator shared by the auto, personal,
// student and business loan pages.
type Loan struct{}

func (Loan) Kind() string { return KindLoan }

func (Loan) Fields() []Field {
	return []Field{fieldLoanAmount, fieldInterestRate, fieldLoanTerm}
}

func (Loan) Compute(in Input) (ResultSet, error) {
	principal := in.Get(fieldLoanAmount.Name)
	years := in.Get(fieldLoanTerm.Name)

	payment, err := finance.MonthlyPayment(principal, in.Get(fieldInterestRate.Name), years)
	if err != nil {
		return ResultSet{}, err
	}
	total := finance.TotalPayment(payment, years)

	rs := ResultSet{Kind: KindLoan}
	rs.add("monthlyPayment", "Monthly Payment", payment, Currency)
	rs.add("totalPayment", "Total Payment", total, Currency)
	rs.add("totalInterest", "Total Interest", finance.TotalInterest(total, principal), Currency)
	rs.add("numberOfPayments", "Number of Payments", float64(finance.Periods(years)), Months)
	return rs, nil
}
