package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fincalc/internal/calculators"
	"fincalc/internal/catalog"
	"fincalc/internal/format"
	"fincalc/internal/log"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	logger *log.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func (o *RootOptions) getLogger() *log.Logger {
	if o.logger == nil {
		return log.NewNop()
	}
	return o.logger
}

// NewRootCommand creates the root command of fincalc-cli.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fincalc-cli",
		Short: "Financial calculators on the command line",
		Long: `Run the mortgage, loan and investment calculators of the fincalc site
from a terminal, export amortization schedules, walk the site's pages and
follow calculation events published by a running server.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			opts.logger = SetupLogger(level, cmd.ErrOrStderr()).WithComponent(log.ComponentCLI)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCalcCommand(opts))
	cmd.AddCommand(NewScheduleCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewBrowseCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// app is the read-only calculator setup every command works from.
type app struct {
	registry  *calculators.Registry
	catalog   *catalog.Catalog
	formatter *format.Formatter
}

func newApp() (*app, error) {
	registry := calculators.Default()
	cat, err := catalog.Load(registry.Kinds()...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load catalog", err)
	}
	return &app{registry: registry, catalog: cat, formatter: format.USD()}, nil
}

// lookup resolves a catalog entry ID to its calculator. Coming-soon entries
// have none.
func (a *app) lookup(id string) (catalog.Entry, calculators.Calculator, bool) {
	entry, ok := a.catalog.Find(id)
	if !ok || !entry.Available() {
		return catalog.Entry{}, nil, false
	}
	calc, ok := a.registry.Get(entry.Kind)
	if !ok {
		return catalog.Entry{}, nil, false
	}
	return entry, calc, true
}
