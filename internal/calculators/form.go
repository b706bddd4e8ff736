package calculators

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Field describes one numeric form input.
type Field struct {
	Name    string
	Label   string
	Default string
	Step    string
	// Optional fields may be left blank and then read as Default, or zero.
	Optional bool
	// Signed fields accept negative values, e.g. an expected return.
	Signed bool
	// Max bounds the value when positive.
	Max float64
}

// Required reports whether the form must supply a value.
func (f Field) Required() bool {
	return !f.Optional && f.Default == ""
}

// FieldError reports a form value that could not be used.
type FieldError struct {
	Field  string
	Label  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Reason)
}

// FieldErrors collects every invalid field of a submission.
type FieldErrors []*FieldError

func (errs FieldErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// For returns the error recorded for the named field, if any.
func (errs FieldErrors) For(name string) *FieldError {
	for _, e := range errs {
		if e.Field == name {
			return e
		}
	}
	return nil
}

// ParseInput reads the declared fields from submitted form values. Blank
// fields take their default; missing required values, non-numeric text,
// negative amounts on unsigned fields and values above Max are reported
// together as FieldErrors.
func ParseInput(fields []Field, values url.Values) (Input, error) {
	in := make(Input, len(fields))
	var errs FieldErrors
	for _, f := range fields {
		raw := strings.TrimSpace(values.Get(f.Name))
		if raw == "" {
			raw = f.Default
		}
		if raw == "" {
			if f.Required() {
				errs = append(errs, &FieldError{Field: f.Name, Label: f.Label, Reason: "is required"})
				continue
			}
			in[f.Name] = 0
			continue
		}

		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, &FieldError{Field: f.Name, Label: f.Label, Value: raw, Reason: "must be a number"})
			continue
		}
		if v < 0 && !f.Signed {
			errs = append(errs, &FieldError{Field: f.Name, Label: f.Label, Value: raw, Reason: "must not be negative"})
			continue
		}
		if f.Max > 0 && v > f.Max {
			reason := "must not exceed " + strconv.FormatFloat(f.Max, 'f', -1, 64)
			errs = append(errs, &FieldError{Field: f.Name, Label: f.Label, Value: raw, Reason: reason})
			continue
		}
		in[f.Name] = v
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return in, nil
}

// Values renders an input back into form values, for links and prefilled forms.
func Values(fields []Field, in Input) url.Values {
	v := make(url.Values, len(fields))
	for _, f := range fields {
		if x, ok := in[f.Name]; ok {
			v.Set(f.Name, strconv.FormatFloat(x, 'f', -1, 64))
		}
	}
	return v
}
