package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
)

var weekCmd = &cobra.Command{
	Use:   "week <start-date> [date]",
	Short: "Show which cycle week a date falls in",
	Long:  "Show the 1-based cycle week containing date (today when omitted). 0 means the cycle has not started.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runWeek,
}

var rangeCmd = &cobra.Command{
	Use:   "range <start-date> <week>",
	Short: "Show the calendar span of a cycle week",
	Args:  cobra.ExactArgs(2),
	RunE:  runRange,
}

var statusCmd = &cobra.Command{
	Use:   "status <start-date>",
	Short: "Show whether a cycle is not started, in progress or complete",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var endDateCmd = &cobra.Command{
	Use:   "end-date <start-date>",
	Short: "Show the end date stored for a goal with this start date",
	Args:  cobra.ExactArgs(1),
	RunE:  runEndDate,
}

var weeksCmd = &cobra.Command{
	Use:   "weeks <start-date>",
	Short: "List every week of a cycle",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeeks,
}

func runWeek(cmd *cobra.Command, args []string) error {
	calc, err := newCalculator()
	if err != nil {
		return err
	}

	start, err := parseDate(args[0], calc.Location())
	if err != nil {
		return err
	}

	target := calc.Now()
	if len(args) == 2 {
		if target, err = parseDate(args[1], calc.Location()); err != nil {
			return err
		}
	}

	week, err := calc.WeekNumberForDate(start, target, cycleWeeks)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if jsonOutput {
		return printJSON(out, map[string]any{
			"date":        target.Format(dateLayout),
			"week":        week,
			"total_weeks": cycleWeeks,
		})
	}

	fmt.Fprintf(out, "Date:  %s\n", target.Format(dateLayout))
	fmt.Fprintf(out, "Week:  %d of %d\n", week, cycleWeeks)
	return nil
}

func runRange(cmd *cobra.Command, args []string) error {
	calc, err := newCalculator()
	if err != nil {
		return err
	}

	start, err := parseDate(args[0], calc.Location())
	if err != nil {
		return err
	}

	week, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid week %q", args[1])
	}

	c, err := calc.Cycle(start, cycleWeeks)
	if err != nil {
		return err
	}
	r, err := c.Week(week)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if jsonOutput {
		return printJSON(out, r)
	}

	fmt.Fprintf(out, "Week:   %d\n", r.Index)
	fmt.Fprintf(out, "Start:  %s\n", r.Start.Format(dateLayout))
	fmt.Fprintf(out, "End:    %s\n", r.End.Format(dateLayout))
	fmt.Fprintf(out, "Label:  %s\n", r.Label())
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	calc, err := newCalculator()
	if err != nil {
		return err
	}

	start, err := parseDate(args[0], calc.Location())
	if err != nil {
		return err
	}

	status, err := calc.Evaluate(start, cycleWeeks)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if jsonOutput {
		return printJSON(out, map[string]any{
			"phase":       status.Phase,
			"week":        status.Week,
			"total_weeks": status.TotalWeeks,
			"label":       status.Label(),
		})
	}

	fmt.Fprintf(out, "Phase:  %s\n", status.Phase)
	fmt.Fprintf(out, "Label:  %s\n", status.Label())
	return nil
}

func runEndDate(cmd *cobra.Command, args []string) error {
	calc, err := newCalculator()
	if err != nil {
		return err
	}

	start, err := parseDate(args[0], calc.Location())
	if err != nil {
		return err
	}

	end, err := calc.DeriveEndDate(start, cycleWeeks)
	if err != nil {
		return err
	}
	complete := calc.IsCycleComplete(end)

	out := cmd.OutOrStdout()

	if jsonOutput {
		return printJSON(out, map[string]any{
			"start_date": start.Format(dateLayout),
			"end_date":   end.Format(dateLayout),
			"complete":   complete,
		})
	}

	fmt.Fprintf(out, "Start:     %s\n", start.Format(dateLayout))
	fmt.Fprintf(out, "End:       %s\n", end.Format(dateLayout))
	fmt.Fprintf(out, "Complete:  %t\n", complete)
	return nil
}

func runWeeks(cmd *cobra.Command, args []string) error {
	calc, err := newCalculator()
	if err != nil {
		return err
	}

	start, err := parseDate(args[0], calc.Location())
	if err != nil {
		return err
	}

	c, err := calc.Cycle(start, cycleWeeks)
	if err != nil {
		return err
	}
	weeks := c.AllWeeks()
	current := c.Status(calc.Now())

	out := cmd.OutOrStdout()

	if jsonOutput {
		return printJSON(out, map[string]any{
			"status": current,
			"weeks":  weeks,
		})
	}

	tw := newTabWriter(out)
	fmt.Fprintln(tw, "WEEK\tSTART\tEND\tLABEL\t")
	for _, w := range weeks {
		marker := ""
		if current.Phase == cycle.PhaseInProgress && current.Week == w.Index {
			marker = "<- current"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			w.Index, w.Start.Format(dateLayout), w.End.Format(dateLayout), w.Label(), marker)
	}
	return tw.Flush()
}
