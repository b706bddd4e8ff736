package cli

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fincalc/internal/calculators"
	"fincalc/internal/catalog"
	"fincalc/internal/finance"
	"fincalc/internal/format"
	"fincalc/internal/log"
)

// CalcResult is the JSON payload of the calc command.
type CalcResult struct {
	Calculator string            `json:"calculator"`
	Kind       string            `json:"kind"`
	Inputs     calculators.Input `json:"inputs"`
	Results    []CalcResultRow   `json:"results"`
	Periods    int               `json:"periods,omitempty"`
}

type CalcResultRow struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// NewCalcCommand creates the calc command.
func NewCalcCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc <calculator> [field=value ...]",
		Short: "Run a calculator",
		Long: `Run one of the site's calculators with field=value assignments.

Fields left out take their default where the calculator has one. Amounts
may use thousands separators, e.g. loanAmount=250,000.

Example:
  fincalc-cli calc mortgage propertyValue=400000 downPayment=80000 interestRate=6.5 loanTerm=30`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

func runCalc(opts *RootOptions, id string, assignments []string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.getLogger()

	a, err := newApp()
	if err != nil {
		return err
	}
	entry, calc, ok := a.lookup(id)
	if !ok {
		msg := fmt.Sprintf("unknown calculator %q", id)
		_ = out.Error(ErrCodeUnknownCalculator, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	values, err := parseAssignments(calc.Fields(), assignments)
	if err != nil {
		_ = out.Error(ErrCodeUsage, err.Error(), fieldNames(calc.Fields()))
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}
	out.VerboseLog("Running %s (%s) with %s", entry.ID, entry.Kind, values.Encode())

	in, err := calculators.ParseInput(calc.Fields(), values)
	if err != nil {
		return reportInputError(out, err)
	}
	rs, err := calc.Compute(in)
	if err != nil {
		if errors.Is(err, finance.ErrInvalidInput) {
			return reportInputError(out, err)
		}
		return WrapExitError(ExitFailure, "calculation failed", err)
	}
	logger.Debug("Calculation complete", log.FieldCalculator, entry.ID, log.FieldOperation, log.OpCompute)

	result := newCalcResult(entry, in, rs, a.formatter)
	return out.Success(result, func(w io.Writer) error {
		return writeCalcText(w, entry, result)
	})
}

// parseAssignments turns field=value arguments into form values. Unknown
// field names are rejected so a typo never falls back to a default silently.
func parseAssignments(fields []calculators.Field, args []string) (url.Values, error) {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}

	values := make(url.Values, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		if !known[name] {
			return nil, fmt.Errorf("unknown field %q", name)
		}
		values.Set(name, value)
	}
	return values, nil
}

func fieldNames(fields []calculators.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = fmt.Sprintf("%s: %s", f.Name, f.Label)
	}
	return names
}

// reportInputError prints field or engine validation failures and maps them
// to ExitFailure.
func reportInputError(out *OutputFormatter, err error) error {
	var details []string
	var fieldErrs calculators.FieldErrors
	var engineErr *finance.InvalidInputError
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			details = append(details, fe.Label+" "+fe.Reason)
		}
	case errors.As(err, &engineErr):
		details = append(details, engineErr.Field+" "+engineErr.Reason)
	default:
		details = append(details, err.Error())
	}
	_ = out.Error(ErrCodeInvalidInput, "invalid input", details)
	return WrapExitError(ExitFailure, "invalid input", err)
}

func newCalcResult(entry catalog.Entry, in calculators.Input, rs calculators.ResultSet, f *format.Formatter) CalcResult {
	result := CalcResult{Calculator: entry.ID, Kind: rs.Kind, Inputs: in, Periods: len(rs.Schedule)}
	for _, r := range rs.Results {
		result.Results = append(result.Results, CalcResultRow{Key: r.Key, Label: r.Label, Value: r.Value, Display: f.Result(r)})
	}
	return result
}

func writeCalcText(w io.Writer, entry catalog.Entry, result CalcResult) error {
	fmt.Fprintln(w, entry.Name)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range result.Results {
		fmt.Fprintf(tw, "  %s\t%s\n", r.Label, r.Display)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if result.Periods > 0 {
		fmt.Fprintf(w, "Schedule: %d payments (see: fincalc-cli schedule)\n", result.Periods)
	}
	return nil
}
