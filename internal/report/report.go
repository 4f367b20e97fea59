// Package report renders a Solution for people and machines: an aligned
// terminal report, a flat CSV export and indented JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/hooplab/rosteropt/internal/types"
)

// Output formats accepted by Write.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// Write renders the solution in the named format.
func Write(w io.Writer, sol *types.Solution, format string) error {
	switch format {
	case FormatTable:
		return WriteTable(w, sol)
	case FormatCSV:
		return WriteCSV(w, sol)
	case FormatJSON:
		return WriteJSON(w, sol)
	default:
		return fmt.Errorf("unknown report format %q, want table, csv or json", format)
	}
}

// WriteTable renders the summary block, the per-gameday squad table and the
// transfer plan.
func WriteTable(w io.Writer, sol *types.Solution) error {
	fmt.Fprintf(w, "Status:     %s\n", sol.Status)
	fmt.Fprintf(w, "Points:     %.2f\n", sol.TotalPoints)
	fmt.Fprintf(w, "Bound:      %.2f\n", sol.Meta.Bound)
	fmt.Fprintf(w, "Transfers:  %d\n", sol.TransfersUsed)
	fmt.Fprintf(w, "Gamedays:   %d\n", len(sol.Gamedays))
	fmt.Fprintf(w, "Elapsed:    %dms\n", sol.Meta.ElapsedMS)
	fmt.Fprintf(w, "Nodes:      %d\n", sol.Meta.Nodes)
	fmt.Fprintf(w, "Solve ID:   %s\n\n", sol.Meta.SolveID)

	withLineup := false
	for _, day := range sol.Gamedays {
		if len(day.Lineup) > 0 {
			withLineup = true
			break
		}
	}

	squads := tablewriter.NewWriter(w)
	if withLineup {
		squads.Header("Gameday", "Squad", "Lineup", "Captain", "Points", "Spend")
	} else {
		squads.Header("Gameday", "Squad", "Points", "Spend")
	}
	for _, day := range sol.Gamedays {
		if withLineup {
			squads.Append(
				fmt.Sprintf("%d", day.Gameday),
				strings.Join(day.Players, ", "),
				strings.Join(day.Lineup, ", "),
				day.Captain,
				fmt.Sprintf("%.2f", day.Points),
				fmt.Sprintf("%d", day.Spend),
			)
		} else {
			squads.Append(
				fmt.Sprintf("%d", day.Gameday),
				strings.Join(day.Players, ", "),
				fmt.Sprintf("%.2f", day.Points),
				fmt.Sprintf("%d", day.Spend),
			)
		}
	}
	if err := squads.Render(); err != nil {
		return fmt.Errorf("render squad table: %w", err)
	}

	if len(sol.Transfers) == 0 {
		fmt.Fprintln(w, "\nNo transfers.")
		return nil
	}

	fmt.Fprintln(w)
	transfers := tablewriter.NewWriter(w)
	transfers.Header("Gameday", "In", "Out")
	for _, step := range sol.Transfers {
		transfers.Append(
			fmt.Sprintf("%d", step.Gameday),
			strings.Join(step.In, ", "),
			strings.Join(step.Out, ", "),
		)
	}
	if err := transfers.Render(); err != nil {
		return fmt.Errorf("render transfer table: %w", err)
	}
	return nil
}
