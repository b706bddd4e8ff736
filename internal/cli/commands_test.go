package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincalc/internal/amqp"
	"fincalc/internal/catalog"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCalc_Text(t *testing.T) {
	out, err := execute(t, NewCalcCommand(&RootOptions{Format: "text"}),
		"loan", "loanAmount=200,000", "interestRate=6", "loanTerm=30")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Loan Calculator\n"))
	assert.Contains(t, out, "Monthly Payment")
	assert.Contains(t, out, "$1,199.10")
	assert.Contains(t, out, "30 years")
}

func TestCalc_JSON(t *testing.T) {
	out, err := execute(t, NewCalcCommand(&RootOptions{Format: "json"}),
		"amortization", "loanAmount=200000", "interestRate=6", "loanTerm=30")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   CalcResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "amortization", resp.Data.Calculator)
	assert.Equal(t, "amortization", resp.Data.Kind)
	assert.Equal(t, 360, resp.Data.Periods)
	require.NotEmpty(t, resp.Data.Results)
	assert.Equal(t, "monthlyPayment", resp.Data.Results[0].Key)
	assert.Equal(t, "$1,199.10", resp.Data.Results[0].Display)
	assert.InDelta(t, 1199.10, resp.Data.Results[0].Value, 0.01)
}

func TestCalc_AppliesDefaults(t *testing.T) {
	out, err := execute(t, NewCalcCommand(&RootOptions{Format: "json"}),
		"mortgage", "propertyValue=300000", "downPayment=60000", "interestRate=6", "loanTerm=30")
	require.NoError(t, err)

	var resp struct {
		Data CalcResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1.2, resp.Data.Inputs["propertyTaxRate"])
	assert.Equal(t, 0.35, resp.Data.Inputs["homeInsuranceRate"])
}

func TestCalc_FieldErrors(t *testing.T) {
	out, err := execute(t, NewCalcCommand(&RootOptions{Format: "text"}), "loan", "loanAmount=abc", "loanTerm=30")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error: invalid input")
	assert.Contains(t, out, "Loan Amount ($) must be a number")
	assert.Contains(t, out, "Interest Rate (%) is required")
}

func TestCalc_EngineRejection(t *testing.T) {
	out, err := execute(t, NewCalcCommand(&RootOptions{Format: "json"}), "loan", "loanAmount=1000", "interestRate=5", "loanTerm=0")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidInput, resp.Error.Code)
	assert.Equal(t, []any{"term must be positive"}, resp.Error.Details)
}

func TestCalc_UnknownCalculator(t *testing.T) {
	for _, id := range []string{"refinance", "nope"} {
		out, err := execute(t, NewCalcCommand(&RootOptions{Format: "text"}), id)

		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, `unknown calculator "`+id+`"`)
	}
}

func TestCalc_BadAssignments(t *testing.T) {
	out, err := execute(t, NewCalcCommand(&RootOptions{Format: "text"}), "loan", "rate=5")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `unknown field "rate"`)
	assert.Contains(t, out, "loanAmount: Loan Amount ($)")

	_, err = execute(t, NewCalcCommand(&RootOptions{Format: "text"}), "loan", "loanAmount")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected field=value, got "loanAmount"`)
}

func TestSchedule_CSVGolden(t *testing.T) {
	out, err := execute(t, NewScheduleCommand(&RootOptions{Format: "text"}),
		"--amount", "1200", "--rate", "0", "--years", "1", "--csv")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "schedule_csv", []byte(out))
}

func TestSchedule_Text(t *testing.T) {
	out, err := execute(t, NewScheduleCommand(&RootOptions{Format: "text"}),
		"--amount", "1200", "--rate", "0", "--years", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Monthly Payment")
	assert.Contains(t, out, "Remaining Balance")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "$1,100.00")
	assert.Contains(t, out, "1 year\n")
}

func TestSchedule_JSON(t *testing.T) {
	out, err := execute(t, NewScheduleCommand(&RootOptions{Format: "json"}),
		"--amount", "10000", "--rate", "5", "--years", "2")
	require.NoError(t, err)

	var resp struct {
		Data ScheduleResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Schedule, 24)
	assert.Equal(t, 1, resp.Data.Schedule[0].Period)
	assert.InDelta(t, 0, resp.Data.Schedule[23].RemainingBalance, 1e-9)
}

func TestSchedule_Errors(t *testing.T) {
	_, err := execute(t, NewScheduleCommand(&RootOptions{Format: "text"}), "--rate", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")

	out, err := execute(t, NewScheduleCommand(&RootOptions{Format: "text"}), "--amount", "0", "--years", "10")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "principal must be positive")
}

func TestList_Text(t *testing.T) {
	out, err := execute(t, NewListCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Mortgage Calculators\n"))
	assert.Contains(t, out, "mortgage-payoff")
	assert.Contains(t, out, "Rent vs. Buy Calculator (coming soon)")
}

func TestList_AvailableJSON(t *testing.T) {
	out, err := execute(t, NewListCommand(&RootOptions{Format: "json"}), "--available")
	require.NoError(t, err)

	var resp struct {
		Data []catalog.Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data)
	for _, c := range resp.Data {
		for _, e := range c.Calculators {
			assert.True(t, e.Available(), e.ID)
		}
	}
	assert.Equal(t, "mortgage", resp.Data[0].ID)
}

func TestBrowse_NavigatesWithHistory(t *testing.T) {
	cmd := NewBrowseCommand(&RootOptions{Format: "text"})
	cmd.SetIn(strings.NewReader(strings.Join([]string{
		"/calculators",
		"calculator/mortgage/",
		"back",
		"back",
		"back",
		"forward",
		"/nowhere",
		"history",
		"quit",
	}, "\n")))

	out, err := execute(t, cmd)
	require.NoError(t, err)

	order := []string{
		"[/]\nFinancial Calculators",
		"Popular Calculators:",
		"[/calculators]\nMortgage Calculators",
		"[/calculator/mortgage]\nMortgage Calculator",
		"propertyTaxRate",
		"(default 1.2)",
		"[/calculators]",
		"[/]",
		"No earlier page.",
		"[/calculators]",
		"[/nowhere]\n404 - Page Not Found",
		"  /\n  /calculators\n* /nowhere\n",
	}
	rest := out
	for _, want := range order {
		i := strings.Index(rest, want)
		require.GreaterOrEqual(t, i, 0, "missing %q after previous output", want)
		rest = rest[i+len(want):]
	}
}

func TestBrowse_HistoryMarksCurrentEntryOnly(t *testing.T) {
	cmd := NewBrowseCommand(&RootOptions{Format: "text"})
	cmd.SetIn(strings.NewReader("/about\n/\nback\nhistory\npage\nroutes\n"))

	out, err := execute(t, cmd)
	require.NoError(t, err)
	assert.Contains(t, out, "  /\n* /about\n  /\n")

	_, afterHistory, ok := strings.Cut(out, "* /about\n  /\n")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(afterHistory, "> [/about]\nAbout Financial Calculators"))
	assert.Contains(t, afterHistory, "  /calculators\n")
	assert.Contains(t, afterHistory, "/calculator/([^/]+)")
}

func TestBrowse_StartAndEOF(t *testing.T) {
	cmd := NewBrowseCommand(&RootOptions{Format: "text"})
	cmd.SetIn(strings.NewReader("/calculator/refinance\n"))

	out, err := execute(t, cmd, "--start", "/about")
	require.NoError(t, err)
	assert.Contains(t, out, "[/about]\nAbout Financial Calculators")
	assert.Contains(t, out, "[/calculator/refinance]\n404 - Page Not Found")
}

func TestEvents_RequiresBroker(t *testing.T) {
	t.Setenv("AMQP_URL", "")

	out, err := execute(t, NewEventsCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no broker configured")
}

func TestPrintEvent(t *testing.T) {
	event := &amqp.CalculationEvent{
		ID:         uuid.New(),
		Calculator: "auto-loan",
		Kind:       "loan",
		CacheHit:   true,
		RequestID:  "req-1",
		Timestamp:  time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC),
	}

	buf := &bytes.Buffer{}
	require.NoError(t, printEvent(&OutputFormatter{Format: "text", Writer: buf}, event))
	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "09:30:15  auto-loan"))
	assert.Contains(t, line, "cached")
	assert.Contains(t, line, "request=req-1")

	buf.Reset()
	require.NoError(t, printEvent(&OutputFormatter{Format: "json", Writer: buf}, event))
	decoded, err := amqp.CalculationEventFromJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
	assert.True(t, decoded.CacheHit)
}
