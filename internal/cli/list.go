package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fincalc/internal/catalog"
)

// NewListCommand creates the calculators command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var available bool

	cmd := &cobra.Command{
		Use:           "calculators",
		Aliases:       []string{"list", "ls"},
		Short:         "List the calculator catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			a, err := newApp()
			if err != nil {
				return err
			}
			categories := a.catalog.Categories()
			if available {
				categories = onlyAvailable(categories)
			}
			return out.Success(categories, func(w io.Writer) error {
				writeCategories(w, categories)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&available, "available", false, "hide calculators that are not available yet")
	return cmd
}

func onlyAvailable(categories []catalog.Category) []catalog.Category {
	out := make([]catalog.Category, 0, len(categories))
	for _, c := range categories {
		entries := make([]catalog.Entry, 0, len(c.Calculators))
		for _, e := range c.Calculators {
			if e.Available() {
				entries = append(entries, e)
			}
		}
		if len(entries) == 0 {
			continue
		}
		c.Calculators = entries
		out = append(out, c)
	}
	return out
}

func writeCategories(w io.Writer, categories []catalog.Category) {
	for i, c := range categories {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, c.Name)
		for _, e := range c.Calculators {
			if e.Available() {
				fmt.Fprintf(w, "  %-22s %s\n", e.ID, e.Name)
			} else {
				fmt.Fprintf(w, "  %-22s %s (coming soon)\n", e.ID, e.Name)
			}
		}
	}
}
