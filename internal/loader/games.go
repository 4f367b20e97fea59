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

var gameColumns = []string{"gameday", "home_team", "away_team", "date"}

// ReadGames parses game records from CSV with the columns
// gameday,home_team,away_team,date. The date column may be empty.
func ReadGames(r io.Reader) ([]types.Game, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	if err := expectHeader(cr, gameColumns); err != nil {
		return nil, fmt.Errorf("games csv: %w", err)
	}

	var games []types.Game
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("games csv: %w", err)
		}

		gameday, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("games csv: row %d: bad gameday %q", row, rec[0])
		}
		home := strings.TrimSpace(rec[1])
		away := strings.TrimSpace(rec[2])
		if home == "" || away == "" {
			return nil, fmt.Errorf("games csv: row %d: empty team name", row)
		}

		games = append(games, types.Game{
			Gameday:  gameday,
			HomeTeam: home,
			AwayTeam: away,
			Date:     strings.TrimSpace(rec[3]),
		})
	}
	return games, nil
}

// LoadGames reads game records from a CSV file.
func LoadGames(path string) ([]types.Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open games file: %w", err)
	}
	defer f.Close()
	return ReadGames(f)
}
