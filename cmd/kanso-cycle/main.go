package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
)

const dateLayout = "2006-01-02"

var (
	nowOverride string
	tzName      string
	cycleWeeks  int
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "kanso-cycle",
	Short: "Inspect goal cycles from the command line",
	Long: "Compute cycle weeks, week ranges, end dates and cycle status for a goal " +
		"start date without running the API.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&nowOverride, "now", "",
		"Evaluate as of this instant (YYYY-MM-DD or RFC3339) instead of the system clock")
	rootCmd.PersistentFlags().StringVar(&tzName, "tz", "Local",
		"IANA time zone used to interpret calendar dates")
	rootCmd.PersistentFlags().IntVar(&cycleWeeks, "weeks", cycle.DefaultCycleWeeks,
		"Cycle length in weeks")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")

	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(rangeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(endDateCmd)
	rootCmd.AddCommand(weeksCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newCalculator builds a calculator from --tz and --now.
func newCalculator() (*cycle.Calculator, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz %q: %w", tzName, err)
	}

	if nowOverride == "" {
		return cycle.NewCalculator(loc, nil), nil
	}

	now, err := parseInstant(nowOverride, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid --now %q: %w", nowOverride, err)
	}
	return cycle.NewCalculator(loc, func() time.Time { return now }), nil
}

func parseInstant(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	// a bare date means midday so the calendar day is unambiguous in any zone
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc), nil
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return cycle.DateIn(d, loc), nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
