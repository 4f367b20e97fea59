package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/hooplab/rosteropt/internal/types"
)

// WriteCSV exports the solution flat, one row per (gameday, player), with the
// gameday totals repeated on every row of that gameday.
func WriteCSV(w io.Writer, sol *types.Solution) error {
	cw := csv.NewWriter(w)

	header := []string{"gameday", "player", "in_lineup", "is_captain", "gameday_points", "gameday_spend"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, day := range sol.Gamedays {
		inLineup := make(map[string]bool, len(day.Lineup))
		for _, name := range day.Lineup {
			inLineup[name] = true
		}
		for _, name := range day.Players {
			row := []string{
				strconv.Itoa(day.Gameday),
				name,
				strconv.FormatBool(inLineup[name]),
				strconv.FormatBool(name == day.Captain && name != ""),
				strconv.FormatFloat(day.Points, 'f', 2, 64),
				strconv.Itoa(day.Spend),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
