package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/holdem/internal/bot"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/tui"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

type CLI struct {
	Name       string   `help:"Your name at the table" default:"hero"`
	Opponents  []string `short:"o" help:"Bot kinds to seat against you (folder, caller, random, maniac)" default:"caller,random,maniac"`
	Chips      int      `help:"Starting chips per player" default:"1000"`
	SmallBlind int      `help:"Small blind" default:"5"`
	BigBlind   int      `help:"Big blind" default:"10"`
	HandLimit  int      `help:"Stop after this many hands (0 plays until one player remains)" default:"0"`
	Seed       int64    `help:"RNG seed (0 picks one)" default:"0"`
	LogFile    string   `help:"Debug log file (the TUI owns the terminal)" default:"holdem.log"`
	NoColor    bool     `help:"Disable colour output"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)

	if cli.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	fmt.Print(titleStyle.Render(" ♠ ♥ Texas Hold'em ♦ ♣ "))
	fmt.Println()
	fmt.Println()

	if err := play(cli); err != nil {
		log.Fatal("game failed", "err", err)
	}
	kctx.Exit(0)
}

func play(cli CLI) error {
	if cli.Name == "" {
		return errors.New("name required")
	}
	if len(cli.Opponents) == 0 {
		return errors.New("need at least one opponent")
	}
	if cli.SmallBlind < 1 || cli.BigBlind < cli.SmallBlind {
		return fmt.Errorf("invalid blinds %d/%d", cli.SmallBlind, cli.BigBlind)
	}
	if cli.Chips < cli.BigBlind {
		return fmt.Errorf("%d chips cannot cover the big blind", cli.Chips)
	}

	f, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Error("closing log file failed", "err", err)
		}
	}()

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	seed := randutil.Seed(cli.Seed)
	logger.Info("starting session",
		"seed", seed, "opponents", cli.Opponents,
		"blinds", fmt.Sprintf("%d/%d", cli.SmallBlind, cli.BigBlind))

	model := tui.NewModel(cli.Name, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	bus := game.NewEventBus()
	bus.Subscribe(tui.NewSubscriber(program))

	opts := []game.EngineOption{game.WithBus(bus), game.WithLogger(logger)}
	if cli.HandLimit > 0 {
		opts = append(opts, game.WithHandLimit(cli.HandLimit))
	}
	engine := game.NewEngine(randutil.New(seed), cli.SmallBlind, cli.BigBlind, opts...)
	engine.AddPlayer(cli.Name, cli.Chips, tui.NewAgent(model, program, logger))
	for i, kind := range cli.Opponents {
		agent, err := bot.New(kind, randutil.New(seed+int64(i)+1), logger)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%s-%d", kind, i+1)
		if name == cli.Name {
			return fmt.Errorf("name %q collides with a bot seat", cli.Name)
		}
		engine.AddPlayer(name, cli.Chips, agent)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type outcome struct {
		res *game.SessionResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := engine.Run(ctx)
		if res != nil {
			program.Send(tui.SessionEndMsg{Result: res})
		}
		done <- outcome{res, err}
	}()
	go func() {
		<-model.Quitting()
		cancel()
	}()

	if _, err := program.Run(); err != nil {
		logger.Error("tui failed", "err", err)
	}

	// The program can exit without the model seeing a quit key, e.g. on
	// SIGTERM. Release the agent so the engine goroutine can finish.
	model.SignalQuit()
	cancel()

	result := <-done
	if result.err != nil && !errors.Is(result.err, context.Canceled) {
		return result.err
	}
	if result.res != nil {
		printStandings(result.res)
	}
	return nil
}

func printStandings(res *game.SessionResult) {
	fmt.Printf("Session over after %d hands.\n", res.Hands)
	for i, st := range res.Standings {
		if st.Chips > 0 {
			fmt.Printf("  %d. %-12s $%d\n", i+1, st.Name, st.Chips)
		} else {
			fmt.Printf("  %d. %-12s busted on hand %d\n", i+1, st.Name, st.BustedHand)
		}
	}
}
