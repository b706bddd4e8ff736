package format

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincalc/internal/calculators"
	"fincalc/internal/finance"
)

func TestCurrency(t *testing.T) {
	f := USD()

	cases := map[float64]string{
		1199.1:       "$1,199.10",
		1710000:      "$1,710,000.00",
		0:            "$0.00",
		-25:          "-$25.00",
		-0.001:       "$0.00",
		72.916666667: "$72.92",
		999.999:      "$1,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, f.Currency(in), "amount %v", in)
	}
}

func TestPercent(t *testing.T) {
	f := USD()
	assert.Equal(t, "80.00%", f.Percent(80))
	assert.Equal(t, "0.50%", f.Percent(0.5))
	assert.Equal(t, "-12.25%", f.Percent(-12.25))
	assert.Equal(t, "1,250.00%", f.Percent(1250))
}

func TestNumber(t *testing.T) {
	f := USD()
	assert.Equal(t, "1,234.6", f.Number(1234.5678, 1))
	assert.Equal(t, "42", f.Number(42, 0))
}

func TestMonths(t *testing.T) {
	f := USD()
	assert.Equal(t, "0 months", f.Months(0))
	assert.Equal(t, "1 month", f.Months(1))
	assert.Equal(t, "11 months", f.Months(11))
	assert.Equal(t, "1 year", f.Months(12))
	assert.Equal(t, "30 years", f.Months(360))
	assert.Equal(t, "27 years 4 months", f.Months(328))
}

func TestYears(t *testing.T) {
	f := USD()
	assert.Equal(t, "1 year", f.Years(1))
	assert.Equal(t, "4 years", f.Years(4))
	assert.Equal(t, "2.5 years", f.Years(2.5))
}

func TestResult_DispatchesOnKind(t *testing.T) {
	f := USD()
	assert.Equal(t, "$5.00", f.Result(calculators.Result{Kind: calculators.Currency, Value: 5}))
	assert.Equal(t, "5.00%", f.Result(calculators.Result{Kind: calculators.Percent, Value: 5}))
	assert.Equal(t, "5 months", f.Result(calculators.Result{Kind: calculators.Months, Value: 5}))
	assert.Equal(t, "tier", f.Result(calculators.Result{Kind: calculators.Text, Text: "tier", Value: 5}))
}

func TestWriteScheduleCSV_Golden(t *testing.T) {
	schedule, err := finance.AmortizationSchedule(1200, 0, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(&buf, schedule))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "schedule_zero_rate", buf.Bytes())
}

func TestWriteScheduleCSV_RowsMatchSchedule(t *testing.T) {
	schedule, err := finance.AmortizationSchedule(200000, 6, 30)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(&buf, schedule))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 361)
	assert.Equal(t, "1,1199.10,199.10,1000.00,199800.90", string(lines[1]))
	assert.True(t, bytes.HasSuffix(lines[360], []byte(",0.00")))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteScheduleCSV_PropagatesWriteErrors(t *testing.T) {
	schedule, err := finance.AmortizationSchedule(1200, 0, 1)
	require.NoError(t, err)

	err = WriteScheduleCSV(failingWriter{}, schedule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
