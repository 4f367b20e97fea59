package report

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/hooplab/rosteropt/internal/store"
)

// WriteHistory renders archived solves as a table, newest first.
func WriteHistory(w io.Writer, entries []store.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No archived solves.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Solve ID", "Created", "Status", "Points", "Window", "Transfers", "Elapsed")
	for _, e := range entries {
		table.Append(
			e.SolveID,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			string(e.Status),
			fmt.Sprintf("%.2f", e.Objective),
			fmt.Sprintf("%d-%d", e.StartGameday, e.EndGameday),
			fmt.Sprintf("%d", e.TransfersUsed),
			(time.Duration(e.ElapsedMS) * time.Millisecond).String(),
		)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render history table: %w", err)
	}
	return nil
}
