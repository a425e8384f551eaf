// holdem-bot fills remote seats on a table server with house bots. Each
// bot dials the server, claims a name, and plays its policy until the
// session ends.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/bot"
	"github.com/lox/holdem/internal/client"
	"github.com/lox/holdem/internal/randutil"
)

type CLI struct {
	URL     string `short:"u" help:"Server URL (http schemes are converted to ws)" default:"ws://localhost:8080"`
	Name    string `short:"n" help:"Name to claim at the table; a number is appended when count > 1" default:"bot"`
	Kind    string `short:"k" help:"Bot policy (folder, caller, random, maniac)" default:"caller"`
	Count   int    `short:"c" help:"Seats to fill" default:"1"`
	Token   string `help:"Join token, when the server requires one"`
	Seed    int64  `help:"RNG seed for the bots (0 picks one)" default:"0"`
	Verbose bool   `short:"v" help:"Log every decision"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if cli.Count < 1 {
		logger.Fatal("count must be at least 1")
	}
	if !slices.Contains(bot.Kinds(), cli.Kind) {
		logger.Fatal("unknown bot kind", "kind", cli.Kind, "valid", bot.Kinds())
	}

	seed := randutil.Seed(cli.Seed)
	logger.Info("starting bots", "url", cli.URL, "kind", cli.Kind,
		"count", cli.Count, "seed", seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cli.Count; i++ {
		name := cli.Name
		if cli.Count > 1 {
			name = fmt.Sprintf("%s-%d", cli.Name, i+1)
		}

		agent, err := bot.New(cli.Kind, randutil.New(seed+int64(i)), logger)
		if err != nil {
			logger.Fatal("building bot failed", "err", err)
		}
		c, err := client.New(client.Config{
			URL:    cli.URL,
			Name:   name,
			Token:  cli.Token,
			Agent:  agent,
			Logger: logger,
		})
		if err != nil {
			logger.Fatal("invalid client config", "err", err)
		}

		g.Go(func() error {
			res, err := c.Run(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			for _, st := range res.Standings {
				if st.Name == name {
					logger.Info("bot finished", "name", name,
						"hands", res.Hands, "chips", st.Chips)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("bots failed", "err", err)
	}
	kctx.Exit(0)
}
