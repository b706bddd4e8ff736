package calculators

import (
	"fmt"
	"sort"
)

// Registry maps calculator kinds to implementations. It is filled at
// construction and read-only afterwards.
type Registry struct {
	byKind map[string]Calculator
}

// NewRegistry indexes the given calculators by kind. Two calculators with the
// same kind are a configuration error.
func NewRegistry(calcs ...Calculator) (*Registry, error) {
	r := &Registry{byKind: make(map[string]Calculator, len(calcs))}
	for _, c := range calcs {
		if _, dup := r.byKind[c.Kind()]; dup {
			return nil, fmt.Errorf("duplicate calculator kind %q", c.Kind())
		}
		r.byKind[c.Kind()] = c
	}
	return r, nil
}

// All returns every calculator the site ships.
func All() []Calculator {
	return []Calculator{
		Mortgage{},
		Amortization{},
		Investment{},
		Loan{},
		MortgagePayoff{},
		HouseAffordability{},
		CompoundInterest{},
		ROI{},
		PropertyTax{},
	}
}

// Default is the registry of All.
func Default() *Registry {
	r, err := NewRegistry(All()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the calculator for kind.
func (r *Registry) Get(kind string) (Calculator, bool) {
	c, ok := r.byKind[kind]
	return c, ok
}

// Kinds lists the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.byKind))
	for k := range r.byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
