// Package simulator plays batches of independent sessions and merges
// their statistics. Sessions get derived seeds so a batch is
// reproducible regardless of how many workers run it.
package simulator

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/bot"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/phh"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/statistics"
)

// PlayerSpec seats one bot in every session. Chips of 0 means 100 big
// blinds.
type PlayerSpec struct {
	Name  string
	Kind  string
	Chips int
}

// Config holds simulation parameters.
type Config struct {
	Sessions   int
	HandLimit  int // hands per session, 0 plays until one player remains
	Players    []PlayerSpec
	SmallBlind int
	BigBlind   int
	Seed       int64
	Workers    int
	HistoryDir string // optional PHH export directory
	Logger     *log.Logger
}

// Simulator runs poker session simulations.
type Simulator struct {
	cfg  Config
	sink game.HistorySink
}

// New validates the configuration and returns a simulator.
func New(cfg Config) (*Simulator, error) {
	if cfg.Sessions < 1 {
		return nil, fmt.Errorf("simulator: need at least 1 session, got %d", cfg.Sessions)
	}
	if len(cfg.Players) < 2 {
		return nil, fmt.Errorf("simulator: need at least 2 players, got %d", len(cfg.Players))
	}
	if cfg.SmallBlind < 1 || cfg.BigBlind < cfg.SmallBlind {
		return nil, fmt.Errorf("simulator: invalid blinds %d/%d", cfg.SmallBlind, cfg.BigBlind)
	}
	seen := make(map[string]bool)
	for _, p := range cfg.Players {
		if p.Name == "" {
			return nil, fmt.Errorf("simulator: player name required")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("simulator: duplicate player %q", p.Name)
		}
		seen[p.Name] = true
		if p.Chips < 0 {
			return nil, fmt.Errorf("simulator: %s has negative chips", p.Name)
		}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	s := &Simulator{cfg: cfg}
	if cfg.HistoryDir != "" {
		sink, err := phh.NewDirSink(cfg.HistoryDir)
		if err != nil {
			return nil, err
		}
		s.sink = sink
	}
	return s, nil
}

// Run plays every session, fanning out across the configured workers,
// and returns the merged statistics. Results are identical for any
// worker count because each session derives its own seed and merging
// happens in session order.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	results := make([]*statistics.Statistics, s.cfg.Sessions)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range results {
		g.Go(func() error {
			stats, err := s.runSession(ctx, i)
			if err != nil {
				return fmt.Errorf("session %d: %w", i+1, err)
			}
			results[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := statistics.New(s.cfg.BigBlind)
	for _, r := range results {
		merged.Merge(r)
	}
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}
	return merged, nil
}

func (s *Simulator) runSession(ctx context.Context, session int) (*statistics.Statistics, error) {
	seed := s.cfg.Seed + int64(session)
	logger := s.cfg.Logger.With("session", session+1, "seed", seed)

	stats := statistics.New(s.cfg.BigBlind)
	bus := game.NewEventBus()
	bus.Subscribe(stats)

	opts := []game.EngineOption{
		game.WithBus(bus),
		game.WithLogger(logger),
	}
	if s.cfg.HandLimit > 0 {
		opts = append(opts, game.WithHandLimit(s.cfg.HandLimit))
	}
	if s.sink != nil {
		opts = append(opts, game.WithHistorySink(s.sink))
	}

	e := game.NewEngine(randutil.New(seed), s.cfg.SmallBlind, s.cfg.BigBlind, opts...)
	for j, spec := range s.cfg.Players {
		agent, err := bot.New(spec.Kind, randutil.New(seed+int64(j)+1), logger)
		if err != nil {
			return nil, err
		}
		chips := spec.Chips
		if chips == 0 {
			chips = 100 * s.cfg.BigBlind
		}
		e.AddPlayer(spec.Name, chips, agent)
	}

	res, err := e.Run(ctx)
	if err != nil {
		return nil, err
	}
	stats.ObserveSession(res)

	logger.Debug("session finished", "hands", res.Hands, "winner", res.Winner())
	return stats, nil
}

// WriteSummary renders the merged statistics as a human-readable
// report.
func WriteSummary(w io.Writer, stats *statistics.Statistics) {
	fmt.Fprintf(w, "sessions: %d   hands: %d (%d showdown, %d fold wins)\n",
		stats.Sessions, stats.Hands, stats.ShowdownHands, stats.FoldHands)
	fmt.Fprintf(w, "largest pot: %d chips (%.1f bb)   pots of 50bb+: %d\n",
		stats.MaxPotChips, stats.MaxPotBB(), stats.BigPots)

	for _, ps := range stats.Players() {
		low, high := ps.NetBB.ConfidenceInterval95()
		fmt.Fprintf(w, "%-12s %5d hands  %4d wins (%d showdown, %d fold)  %+.3f bb/hand (95%% CI %+.3f..%+.3f, median %+.3f)",
			ps.Name, ps.Hands, ps.Wins, ps.ShowdownWins, ps.FoldWins,
			ps.NetBB.Mean(), low, high, ps.NetBB.Median())
		if ps.Busts > 0 {
			fmt.Fprintf(w, "  busted %dx", ps.Busts)
		}
		fmt.Fprintln(w)
	}
}
