// Package loader reads player, game and per-gameday points records from CSV
// files into the typed records the optimizer consumes. All readers require a
// header row and report problems with the offending row number.
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

var playerColumns = []string{"name", "team", "position", "price", "points"}

// ReadPlayers parses player records from CSV with the columns
// name,team,position,price,points.
func ReadPlayers(r io.Reader) ([]types.Player, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	if err := expectHeader(cr, playerColumns); err != nil {
		return nil, fmt.Errorf("players csv: %w", err)
	}

	var players []types.Player
	seen := make(map[string]bool)
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("players csv: %w", err)
		}

		name := strings.TrimSpace(rec[0])
		if name == "" {
			return nil, fmt.Errorf("players csv: row %d: empty player name", row)
		}
		if seen[name] {
			return nil, fmt.Errorf("players csv: row %d: duplicate player %q", row, name)
		}
		seen[name] = true

		price, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			return nil, fmt.Errorf("players csv: row %d: bad price %q", row, rec[3])
		}
		if price <= 0 {
			return nil, fmt.Errorf("players csv: row %d: price must be positive, got %d", row, price)
		}

		points, err := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("players csv: row %d: bad points %q", row, rec[4])
		}

		players = append(players, types.Player{
			Name:     name,
			Team:     strings.TrimSpace(rec[1]),
			Position: strings.TrimSpace(rec[2]),
			Price:    price,
			Points:   points,
		})
	}

	if len(players) == 0 {
		return nil, fmt.Errorf("players csv: no player records")
	}
	return players, nil
}

// LoadPlayers reads player records from a CSV file.
func LoadPlayers(path string) ([]types.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open players file: %w", err)
	}
	defer f.Close()
	return ReadPlayers(f)
}

// expectHeader consumes the first record and checks it names the expected
// columns in order, case-insensitively. The csv reader then enforces the
// field count on every following row.
func expectHeader(cr *csv.Reader, want []string) error {
	rec, err := cr.Read()
	if err == io.EOF {
		return fmt.Errorf("empty file, want header %s", strings.Join(want, ","))
	}
	if err != nil {
		return err
	}
	if len(rec) != len(want) {
		return fmt.Errorf("header has %d columns, want %s", len(rec), strings.Join(want, ","))
	}
	for i, col := range want {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), col) {
			return fmt.Errorf("header column %d is %q, want %q", i+1, strings.TrimSpace(rec[i]), col)
		}
	}
	return nil
}
