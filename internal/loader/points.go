package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hooplab/rosteropt/internal/types"
)

var pointsColumns = []string{"player", "gameday", "points"}

// ReadPerDayPoints parses per-gameday base points from CSV with the columns
// player,gameday,points. Later rows override earlier ones for the same
// (player, gameday) pair.
func ReadPerDayPoints(r io.Reader) (map[string]map[int]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	if err := expectHeader(cr, pointsColumns); err != nil {
		return nil, fmt.Errorf("points csv: %w", err)
	}

	perDay := make(map[string]map[int]float64)
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("points csv: %w", err)
		}

		name := strings.TrimSpace(rec[0])
		if name == "" {
			return nil, fmt.Errorf("points csv: row %d: empty player name", row)
		}
		gameday, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("points csv: row %d: bad gameday %q", row, rec[1])
		}
		points, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("points csv: row %d: bad points %q", row, rec[2])
		}

		if perDay[name] == nil {
			perDay[name] = make(map[int]float64)
		}
		perDay[name][gameday] = points
	}
	return perDay, nil
}

// LoadPerDayPoints reads per-gameday points from a CSV file.
func LoadPerDayPoints(path string) (map[string]map[int]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open points file: %w", err)
	}
	defer f.Close()
	return ReadPerDayPoints(f)
}

// MergePerDayPoints attaches per-gameday points to the matching pool players.
// Every referenced player must exist in the pool.
func MergePerDayPoints(pool []types.Player, perDay map[string]map[int]float64) error {
	index := make(map[string]int, len(pool))
	for i, p := range pool {
		index[p.Name] = i
	}
	for name, days := range perDay {
		i, ok := index[name]
		if !ok {
			return &types.UnknownPlayerError{Name: name}
		}
		if pool[i].PerDay == nil {
			pool[i].PerDay = make(map[int]float64, len(days))
		}
		for day, pts := range days {
			pool[i].PerDay[day] = pts
		}
	}
	return nil
}
