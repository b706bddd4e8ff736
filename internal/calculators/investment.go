package calculators

import (
	"math"

	"fincalc/internal/finance"
)

var (
	fieldInitialInvestment   = Field{Name: "initialInvestment", Label: "Initial Investment ($)"}
	fieldMonthlyContribution = Field{Name: "monthlyContribution", Label: "Monthly Contribution ($)", Default: "0"}
	fieldExpectedReturn      = Field{Name: "interestRate", Label: "Expected Annual Return (%)", Step: "0.01", Signed: true}
	fieldYears               = Field{Name: "years", Label: "Investment Period (years)"}
	fieldInflationRate       = Field{Name: "inflationRate", Label: "Inflation Rate (%)", Step: "0.01", Optional: true}
)

// Investment projects a savings plan with monthly contributions.
type Investment struct{}

func (Investment) Kind() string { return KindInvestment }

func (Investment) Fields() []Field {
	return []Field{fieldInitialInvestment, fieldMonthlyContribution, fieldExpectedReturn, fieldYears, fieldInflationRate}
}

func (Investment) Compute(in Input) (ResultSet, error) {
	g, err := finance.InvestmentGrowth(
		in.Get(fieldInitialInvestment.Name),
		in.Get(fieldMonthlyContribution.Name),
		in.Get(fieldExpectedReturn.Name),
		in.Get(fieldYears.Name),
	)
	if err != nil {
		return ResultSet{}, err
	}

	rs := ResultSet{Kind: KindInvestment}
	rs.add("futureValue", "Future Value", g.FutureValue, Currency)
	rs.add("totalContributions", "Total Contributions", g.TotalContributions, Currency)
	rs.add("interestEarned", "Interest Earned", g.InterestEarned, Currency)
	rs.add("roi", "Return on Investment", g.ReturnPercent, Percent)

	if inflation := in.Get(fieldInflationRate.Name); inflation > 0 {
		todays, err := finance.PresentValue(g.FutureValue, inflation, in.Get(fieldYears.Name), finance.MonthsPerYear)
		if err != nil {
			return ResultSet{}, err
		}
		rs.add("realFutureValue", "Future Value in Today's Dollars", todays, Currency)
	}
	return rs, nil
}

// CompoundInterest grows a lump sum at a chosen compounding frequency.
type CompoundInterest struct{}

var (
	fieldPrincipal        = Field{Name: "principal", Label: "Principal ($)"}
	fieldAnnualRate       = Field{Name: "interestRate", Label: "Annual Interest Rate (%)", Step: "0.01", Signed: true}
	fieldCompoundsPerYear = Field{Name: "compoundsPerYear", Label: "Compounds per Year", Default: "12"}
)

func (CompoundInterest) Kind() string { return KindCompoundInterest }

func (CompoundInterest) Fields() []Field {
	return []Field{fieldPrincipal, fieldAnnualRate, fieldYears, fieldCompoundsPerYear}
}

func (CompoundInterest) Compute(in Input) (ResultSet, error) {
	k := in.Get(fieldCompoundsPerYear.Name)
	if k != math.Trunc(k) {
		return ResultSet{}, &finance.InvalidInputError{Field: "compounds per year", Value: k, Reason: "must be a whole number"}
	}
	principal := in.Get(fieldPrincipal.Name)
	fv, err := finance.CompoundInterest(principal, in.Get(fieldAnnualRate.Name), in.Get(fieldYears.Name), int(k))
	if err != nil {
		return ResultSet{}, err
	}

	rs := ResultSet{Kind: KindCompoundInterest}
	rs.add("futureValue", "Future Value", fv, Currency)
	rs.add("interestEarned", "Interest Earned", fv-principal, Currency)
	rs.add("roi", "Total Return", finance.ReturnOnInvestment(principal, fv), Percent)
	return rs, nil
}

// ROI compares what was put in with what came back.
type ROI struct{}

var (
	fieldAmountInvested = Field{Name: "amountInvested", Label: "Amount Invested ($)"}
	fieldFinalValue     = Field{Name: "finalValue", Label: "Final Value ($)"}
	fieldAnnualCashFlow = Field{Name: "annualCashFlow", Label: "Annual Cash Flow ($)", Optional: true}
)

func (ROI) Kind() string { return KindROI }

func (ROI) Fields() []Field {
	return []Field{fieldAmountInvested, fieldFinalValue, fieldAnnualCashFlow}
}

func (ROI) Compute(in Input) (ResultSet, error) {
	invested := in.Get(fieldAmountInvested.Name)
	final := in.Get(fieldFinalValue.Name)

	rs := ResultSet{Kind: KindROI}
	rs.add("gain", "Net Gain", final-invested, Currency)
	rs.add("roi", "Return on Investment", finance.ReturnOnInvestment(invested, final), Percent)
	if cashFlow := in.Get(fieldAnnualCashFlow.Name); cashFlow > 0 {
		rs.add("paybackPeriod", "Payback Period", finance.PaybackPeriod(invested, cashFlow), Years)
	}
	return rs, nil
}
