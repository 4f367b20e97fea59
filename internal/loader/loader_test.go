package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplab/rosteropt/internal/types"
)

func TestReadPlayers(t *testing.T) {
	csv := strings.Join([]string{
		"name,team,position,price,points",
		"Curry,GSW,backcourt,135,55.5",
		"Jokic,DEN,frontcourt,145,60",
		" Ayton , PHX , frontcourt , 75 , 30 ",
	}, "\n")

	players, err := ReadPlayers(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, players, 3)

	assert.Equal(t, types.Player{Name: "Curry", Team: "GSW", Position: "backcourt", Price: 135, Points: 55.5}, players[0])
	assert.Equal(t, "Jokic", players[1].Name)
	// Fields are trimmed.
	assert.Equal(t, types.Player{Name: "Ayton", Team: "PHX", Position: "frontcourt", Price: 75, Points: 30}, players[2])
}

func TestReadPlayersErrors(t *testing.T) {
	cases := []struct {
		name string
		csv  string
		want string
	}{
		{"empty file", "", "header"},
		{"wrong header", "who,team,position,price,points\n", `"name"`},
		{"missing column", "name,team,position,price\n", "4 columns"},
		{"empty name", "name,team,position,price,points\n,GSW,backcourt,1,2\n", "empty player name"},
		{"duplicate name", "name,team,position,price,points\nA,GSW,g,1,2\nA,DEN,f,3,4\n", "duplicate"},
		{"bad price", "name,team,position,price,points\nA,GSW,g,cheap,2\n", "bad price"},
		{"zero price", "name,team,position,price,points\nA,GSW,g,0,2\n", "positive"},
		{"bad points", "name,team,position,price,points\nA,GSW,g,1,lots\n", "bad points"},
		{"no records", "name,team,position,price,points\n", "no player records"},
		{"ragged row", "name,team,position,price,points\nA,GSW,g,1\n", "wrong number of fields"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadPlayers(strings.NewReader(tc.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestReadGames(t *testing.T) {
	csv := strings.Join([]string{
		"gameday,home_team,away_team,date",
		"110,PHX,GSW,2024-03-01",
		"111,DEN,LAC,",
	}, "\n")

	games, err := ReadGames(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, types.Game{Gameday: 110, HomeTeam: "PHX", AwayTeam: "GSW", Date: "2024-03-01"}, games[0])
	assert.Equal(t, types.Game{Gameday: 111, HomeTeam: "DEN", AwayTeam: "LAC"}, games[1])
}

func TestReadGamesErrors(t *testing.T) {
	cases := []struct {
		name string
		csv  string
		want string
	}{
		{"bad gameday", "gameday,home_team,away_team,date\nsoon,PHX,GSW,\n", "bad gameday"},
		{"empty team", "gameday,home_team,away_team,date\n110,,GSW,\n", "empty team"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadGames(strings.NewReader(tc.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestReadGamesEmptyScheduleIsFine(t *testing.T) {
	games, err := ReadGames(strings.NewReader("gameday,home_team,away_team,date\n"))
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestReadPerDayPoints(t *testing.T) {
	csv := strings.Join([]string{
		"player,gameday,points",
		"Curry,110,48.5",
		"Curry,111,62",
		"Jokic,110,71",
		"Curry,110,50",
	}, "\n")

	perDay, err := ReadPerDayPoints(strings.NewReader(csv))
	require.NoError(t, err)

	// The later Curry/110 row wins.
	assert.Equal(t, map[int]float64{110: 50, 111: 62}, perDay["Curry"])
	assert.Equal(t, map[int]float64{110: 71}, perDay["Jokic"])
}

func TestMergePerDayPoints(t *testing.T) {
	pool := []types.Player{
		{Name: "Curry", Points: 55},
		{Name: "Jokic", Points: 60, PerDay: map[int]float64{109: 40}},
	}
	perDay := map[string]map[int]float64{
		"Curry": {110: 48.5},
		"Jokic": {110: 71},
	}

	require.NoError(t, MergePerDayPoints(pool, perDay))

	assert.Equal(t, map[int]float64{110: 48.5}, pool[0].PerDay)
	// Existing per-day entries survive the merge.
	assert.Equal(t, map[int]float64{109: 40, 110: 71}, pool[1].PerDay)
}

func TestMergePerDayPointsUnknownPlayer(t *testing.T) {
	pool := []types.Player{{Name: "Curry"}}
	err := MergePerDayPoints(pool, map[string]map[int]float64{"Nobody": {110: 1}})

	var unknown *types.UnknownPlayerError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Nobody", unknown.Name)
}
