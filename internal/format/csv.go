package format

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fincalc/internal/finance"
)

var scheduleHeader = []string{"Period", "Payment", "Principal", "Interest", "Remaining Balance"}

// WriteScheduleCSV writes an amortization schedule as CSV with amounts
// rounded to cents and no grouping separators, so spreadsheets read them as
// numbers.
func WriteScheduleCSV(w io.Writer, schedule []finance.AmortizationEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range schedule {
		row := []string{
			strconv.Itoa(e.Period),
			plain(e.Payment),
			plain(e.Principal),
			plain(e.Interest),
			plain(e.RemainingBalance),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", e.Period, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func plain(v float64) string {
	return strconv.FormatFloat(cents(v), 'f', 2, 64)
}
