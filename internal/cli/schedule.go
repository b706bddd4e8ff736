package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fincalc/internal/calculators"
	"fincalc/internal/finance"
	"fincalc/internal/format"
)

type scheduleOptions struct {
	amount float64
	rate   float64
	years  float64
	csv    bool
}

// ScheduleResult is the JSON payload of the schedule command.
type ScheduleResult struct {
	Summary  []CalcResultRow             `json:"summary"`
	Schedule []finance.AmortizationEntry `json:"schedule"`
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &scheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print or export an amortization schedule",
		Long: `Print the month-by-month amortization schedule of a fixed-rate loan.

With --csv the schedule is written in the same CSV layout as the site's
download link, ready for a spreadsheet.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.amount, "amount", 0, "loan amount in dollars")
	cmd.Flags().Float64Var(&opts.rate, "rate", 0, "annual interest rate in percent")
	cmd.Flags().Float64Var(&opts.years, "years", 0, "loan term in years")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "write CSV instead of a table")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("years")

	return cmd
}

func runSchedule(rootOpts *RootOptions, opts *scheduleOptions, cmd *cobra.Command) error {
	out := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := newApp()
	if err != nil {
		return err
	}
	calc, ok := a.registry.Get(calculators.KindAmortization)
	if !ok {
		return NewExitError(ExitCommandError, "amortization calculator is not registered")
	}

	in := calculators.Input{"loanAmount": opts.amount, "interestRate": opts.rate, "loanTerm": opts.years}
	rs, err := calc.Compute(in)
	if err != nil {
		if errors.Is(err, finance.ErrInvalidInput) {
			return reportInputError(out, err)
		}
		return WrapExitError(ExitFailure, "calculation failed", err)
	}
	out.VerboseLog("Computed %d periods", len(rs.Schedule))

	if opts.csv {
		if err := format.WriteScheduleCSV(cmd.OutOrStdout(), rs.Schedule); err != nil {
			return WrapExitError(ExitFailure, "write schedule", err)
		}
		return nil
	}

	result := ScheduleResult{Schedule: rs.Schedule}
	for _, r := range rs.Results {
		result.Summary = append(result.Summary, CalcResultRow{Key: r.Key, Label: r.Label, Value: r.Value, Display: a.formatter.Result(r)})
	}
	return out.Success(result, func(w io.Writer) error {
		return writeScheduleText(w, result, a.formatter)
	})
}

func writeScheduleText(w io.Writer, result ScheduleResult, f *format.Formatter) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range result.Summary {
		fmt.Fprintf(tw, "%s\t%s\n", r.Label, r.Display)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Period\tPayment\tPrincipal\tInterest\tRemaining Balance\t")
	for _, e := range result.Schedule {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			e.Period, f.Currency(e.Payment), f.Currency(e.Principal), f.Currency(e.Interest), f.Currency(e.RemainingBalance))
	}
	return tw.Flush()
}
