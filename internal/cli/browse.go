package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fincalc/internal/log"
	"fincalc/internal/router"
)

const browseHelp = `Commands:
  /path       open a page, e.g. /calculators or /calculator/mortgage
  back        go to the previous page
  forward     go to the next page
  history     list visited pages
  page        show the current page again
  routes      list the route patterns
  help        show this help
  quit        leave`

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Walk the site's pages in the terminal",
		Long: `Open an interactive session over the site's page routes. Paths are
resolved by the same route table as the web server, with back and forward
history.

` + browseHelp,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runBrowse(a, rootOpts.getLogger(), start, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&start, "start", "/", "first page to open")
	return cmd
}

func runBrowse(a *app, logger *log.Logger, start string, in io.Reader, out io.Writer) error {
	pages := a.textPages()
	history := router.NewMemoryHistory(start)
	session := router.NewSession(pages, history)

	render := func(res router.Result[string]) {
		fmt.Fprintf(out, "[%s]\n%s\n", res.Path, res.Value)
	}
	show := func(res router.Result[string], err error) {
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		logger.Debug("Route dispatched",
			log.FieldOperation, log.OpDispatch,
			log.FieldPath, res.Path,
			log.FieldNotFound, res.NotFound)
		render(res)
	}

	show(session.Navigate(history.Current()))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprintln(out, browseHelp)
		case "back":
			if !history.Back() {
				fmt.Fprintln(out, "No earlier page.")
				continue
			}
			show(session.PopState())
		case "forward":
			if !history.Forward() {
				fmt.Fprintln(out, "No later page.")
				continue
			}
			show(session.PopState())
		case "history":
			current := history.Index()
			for i, p := range history.Entries() {
				marker := " "
				if i == current {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, p)
			}
		case "page":
			render(session.Last())
		case "routes":
			for _, r := range pages.Routes() {
				fmt.Fprintf(out, "  %s\n", r.Matcher)
			}
		default:
			if !strings.HasPrefix(line, "/") {
				line = "/" + line
			}
			show(session.Navigate(line))
		}
	}
}

// textPages is the terminal rendition of the site's page table.
func (a *app) textPages() *router.Dispatcher[string] {
	var t router.Table[string]
	t.Register(router.Exact("/"), a.homeText).
		Register(router.Exact("/calculators"), a.calculatorsText).
		Register(router.MustPattern(`/calculator/([^/]+)`), a.calculatorText).
		Register(router.Exact("/about"), func([]string) string {
			return "About Financial Calculators\n\nStraightforward calculators for mortgages, loans and investments."
		}).
		Register(router.Exact("/contact"), func([]string) string {
			return "Contact Us\n\nEmail: support@financialcalculators.pro\nPhone: +1-555-0123"
		})
	return t.Build(func([]string) string {
		return "404 - Page Not Found"
	})
}

func (a *app) homeText([]string) string {
	var b strings.Builder
	b.WriteString("Financial Calculators\n\nPopular Calculators:\n")
	for _, e := range a.catalog.Featured() {
		fmt.Fprintf(&b, "  /calculator/%-20s %s\n", e.ID, e.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *app) calculatorsText([]string) string {
	var b strings.Builder
	writeCategories(&b, a.catalog.Categories())
	return strings.TrimRight(b.String(), "\n")
}

func (a *app) calculatorText(params []string) string {
	entry, calc, ok := a.lookup(params[0])
	if !ok {
		return "404 - Page Not Found"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\nFields:\n", entry.Name, entry.Description)
	for _, f := range calc.Fields() {
		switch {
		case f.Default != "":
			fmt.Fprintf(&b, "  %-22s %s (default %s)\n", f.Name, f.Label, f.Default)
		case f.Optional:
			fmt.Fprintf(&b, "  %-22s %s (optional)\n", f.Name, f.Label)
		default:
			fmt.Fprintf(&b, "  %-22s %s\n", f.Name, f.Label)
		}
	}
	fmt.Fprintf(&b, "\nRun: fincalc-cli calc %s field=value ...", entry.ID)
	return b.String()
}
