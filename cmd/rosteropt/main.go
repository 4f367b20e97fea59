package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hooplab/rosteropt/internal/config"
	"github.com/hooplab/rosteropt/internal/loader"
	"github.com/hooplab/rosteropt/internal/optimizer"
	"github.com/hooplab/rosteropt/internal/report"
	"github.com/hooplab/rosteropt/internal/store"
	"github.com/hooplab/rosteropt/internal/types"
	"github.com/hooplab/rosteropt/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "solve":
		cmdSolve(os.Args[2:])
	case "history":
		cmdHistory(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  rosteropt solve -players examples/players.csv -config examples/config.json")
	fmt.Println("      [-games examples/games.csv] [-points examples/points.csv]")
	fmt.Println("      [-format table|csv|json] [-out path] [-archive solves.db] [-time-limit ms]")
	fmt.Println("  rosteropt history -archive solves.db [-n 10]")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "rosteropt: %v\n", err)
	os.Exit(1)
}

func cmdSolve(args []string) {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	playersPath := fs.String("players", "", "Path to the players CSV")
	gamesPath := fs.String("games", "", "Optional path to the games CSV")
	pointsPath := fs.String("points", "", "Optional path to the per-gameday points CSV")
	cfgPath := fs.String("config", "", "Path to the JSON config")
	format := fs.String("format", report.FormatTable, "Output format: table, csv or json")
	outPath := fs.String("out", "", "Write the report to a file instead of stdout")
	archivePath := fs.String("archive", "", "Optional sqlite archive to record the solve in")
	timeLimit := fs.Int("time-limit", 0, "Time limit in milliseconds, overrides the config")
	_ = fs.Parse(args)

	if *playersPath == "" || *cfgPath == "" {
		fmt.Fprintln(os.Stderr, "-players and -config are required")
		os.Exit(2)
	}

	// Reports go to stdout, so logs stay on stderr.
	log := logger.InitLogger("", false)
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatal(err)
	}
	if *timeLimit > 0 {
		cfg.TimeLimitMS = *timeLimit
	}

	pool, err := loader.LoadPlayers(*playersPath)
	if err != nil {
		fatal(err)
	}

	var games []types.Game
	if *gamesPath != "" {
		if games, err = loader.LoadGames(*gamesPath); err != nil {
			fatal(err)
		}
	}

	if *pointsPath != "" {
		perDay, err := loader.LoadPerDayPoints(*pointsPath)
		if err != nil {
			fatal(err)
		}
		if err := loader.MergePerDayPoints(pool, perDay); err != nil {
			fatal(err)
		}
	}

	eng, err := optimizer.New(pool, games, cfg, log)
	if err != nil {
		fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sol, err := eng.Solve(ctx)
	if err != nil {
		fatal(err)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		out = f
	}
	if err := report.Write(out, sol, *format); err != nil {
		fatal(err)
	}

	if *archivePath != "" {
		archive, err := store.Open(*archivePath)
		if err != nil {
			fatal(err)
		}
		defer archive.Close()
		if err := archive.Save(ctx, cfg, sol); err != nil {
			fatal(err)
		}
		log.WithFields(logrus.Fields{
			"solve_id": sol.Meta.SolveID,
			"archive":  *archivePath,
		}).Info("Archived solve")
	}
}

func cmdHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	archivePath := fs.String("archive", "", "Path to the sqlite archive")
	n := fs.Int("n", 10, "Number of recent solves to list")
	_ = fs.Parse(args)

	if *archivePath == "" {
		fmt.Fprintln(os.Stderr, "-archive is required")
		os.Exit(2)
	}

	archive, err := store.Open(*archivePath)
	if err != nil {
		fatal(err)
	}
	defer archive.Close()

	entries, err := archive.Recent(context.Background(), *n)
	if err != nil {
		fatal(err)
	}
	if err := report.WriteHistory(os.Stdout, entries); err != nil {
		fatal(err)
	}
}
