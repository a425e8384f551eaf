package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/bot"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/simulator"
)

type CLI struct {
	Sessions   int      `short:"n" help:"Number of sessions to play" default:"1000"`
	Hands      int      `help:"Hand limit per session (0 plays until one player remains)" default:"100"`
	Players    []string `short:"p" help:"Seats as name=kind pairs (kinds: folder, caller, random, maniac)" default:"hero=random,station=caller,gambler=maniac"`
	Chips      int      `help:"Starting chips per player (0 means 100 big blinds)" default:"0"`
	SmallBlind int      `help:"Small blind" default:"5"`
	BigBlind   int      `help:"Big blind" default:"10"`
	Seed       int64    `help:"RNG seed (0 picks one); rerun with the printed seed to replay" default:"0"`
	Workers    int      `short:"w" help:"Parallel sessions (0 uses every CPU)" default:"0"`
	HistoryDir string   `help:"Write .phh hand histories to this directory"`
	Verbose    bool     `short:"v" help:"Verbose logging"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)

	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	players, err := parsePlayers(cli.Players, cli.Chips)
	if err != nil {
		logger.Fatal("bad player spec", "err", err)
	}

	workers := cli.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	seed := randutil.Seed(cli.Seed)

	sim, err := simulator.New(simulator.Config{
		Sessions:   cli.Sessions,
		HandLimit:  cli.Hands,
		Players:    players,
		SmallBlind: cli.SmallBlind,
		BigBlind:   cli.BigBlind,
		Seed:       seed,
		Workers:    workers,
		HistoryDir: cli.HistoryDir,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("invalid simulation", "err", err)
	}

	fmt.Printf("simulating %d sessions, %d players, blinds %d/%d (seed %d, %d workers)\n",
		cli.Sessions, len(players), cli.SmallBlind, cli.BigBlind, seed, workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		logger.Fatal("simulation failed", "err", err)
	}
	elapsed := time.Since(start)

	simulator.WriteSummary(os.Stdout, stats)
	fmt.Printf("finished in %s (%.0f hands/sec)\n",
		elapsed.Round(time.Millisecond), float64(stats.Hands)/elapsed.Seconds())

	kctx.Exit(0)
}

func parsePlayers(specs []string, chips int) ([]simulator.PlayerSpec, error) {
	players := make([]simulator.PlayerSpec, 0, len(specs))
	for _, s := range specs {
		name, kind, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("player %q: want name=kind, e.g. hero=random", s)
		}
		kind = strings.ToLower(kind)
		if !slices.Contains(bot.Kinds(), kind) {
			return nil, fmt.Errorf("player %s: unknown bot %q (valid: %s)",
				name, kind, strings.Join(bot.Kinds(), ", "))
		}
		players = append(players, simulator.PlayerSpec{Name: name, Kind: kind, Chips: chips})
	}
	return players, nil
}
