// Package calculators turns form input into finance engine calls and labelled
// results. Each calculator kind is an independent type behind the Calculator
// interface; the Registry maps catalog kinds to them.
package calculators

import (
	"sort"
	"strconv"
	"strings"

	"fincalc/internal/finance"
)

// Kind names a calculator implementation. Catalog entries refer to these.
const (
	KindMortgage           = "mortgage"
	KindAmortization       = "amortization"
	KindInvestment         = "investment"
	KindLoan               = "loan"
	KindMortgagePayoff     = "mortgage-payoff"
	KindHouseAffordability = "house-affordability"
	KindCompoundInterest   = "compound-interest"
	KindROI                = "roi"
	KindPropertyTax        = "property-tax"
)

// Calculator computes a result set from parsed form input.
type Calculator interface {
	Kind() string
	Fields() []Field
	Compute(in Input) (ResultSet, error)
}

// ResultKind tells the presentation layer how to format a value.
type ResultKind string

const (
	Currency ResultKind = "currency"
	Percent  ResultKind = "percent"
	Months   ResultKind = "months"
	Years    ResultKind = "years"
	Text     ResultKind = "text"
)

// Result is one labelled output value. Text carries pre-formatted values such
// as an insurance tier; numeric kinds use Value.
type Result struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Value float64    `json:"value"`
	Kind  ResultKind `json:"kind"`
	Text  string     `json:"text,omitempty"`
}

// ResultSet is the ordered output of a calculation. Schedule is only set by
// calculators that produce an amortization table.
type ResultSet struct {
	Kind     string                      `json:"kind"`
	Results  []Result                    `json:"results"`
	Schedule []finance.AmortizationEntry `json:"schedule,omitempty"`
}

// Get looks a result up by key.
func (rs ResultSet) Get(key string) (Result, bool) {
	for _, r := range rs.Results {
		if r.Key == key {
			return r, true
		}
	}
	return Result{}, false
}

func (rs *ResultSet) add(key, label string, value float64, kind ResultKind) {
	rs.Results = append(rs.Results, Result{Key: key, Label: label, Value: value, Kind: kind})
}

func (rs *ResultSet) addText(key, label, text string) {
	rs.Results = append(rs.Results, Result{Key: key, Label: label, Kind: Text, Text: text})
}

// Input holds parsed numeric form values keyed by field name.
type Input map[string]float64

// Get returns the value for name, or zero when absent.
func (in Input) Get(name string) float64 {
	return in[name]
}

// Key is a canonical encoding of the input, stable across map iteration
// order, used to identify identical calculations.
func (in Input) Key() string {
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(in[name], 'g', -1, 64))
	}
	return b.String()
}
