package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem/internal/bot"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/protocol"
	"github.com/lox/holdem/internal/randutil"
)

// Table hosts the single game the server runs. Remote players take the
// seats the configured NPCs leave open; once the last one authenticates
// the session starts and every engine event streams back over the
// connections, with hole cards delivered only to their owner.
type Table struct {
	cfg    *Config
	wire   messenger
	logger *log.Logger
	clock  quartz.Clock

	mu      sync.Mutex
	joined  []string
	agents  map[string]*NetworkAgent
	dropped int
	started bool

	sessionCtx context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewTable creates the table described by cfg. Messages go out through
// wire; clock times the decision windows.
func NewTable(cfg *Config, wire messenger, logger *log.Logger, clock quartz.Clock) *Table {
	ctx, cancel := context.WithCancel(context.Background())
	return &Table{
		cfg:        cfg,
		wire:       wire,
		logger:     logger.WithPrefix("table"),
		clock:      clock,
		agents:     make(map[string]*NetworkAgent),
		sessionCtx: ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Join seats a remote player and returns their seat. Filling the last
// open seat starts the game in the background.
func (t *Table) Join(name string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return 0, errors.New("the game has already started")
	}
	if _, ok := t.agents[name]; ok {
		return 0, fmt.Errorf("the name %q is taken", name)
	}
	for _, npc := range t.cfg.NPCs {
		if npc.Name == name {
			return 0, fmt.Errorf("the name %q is taken", name)
		}
	}

	seat := len(t.joined)
	t.joined = append(t.joined, name)
	timeout := time.Duration(t.cfg.Table.DecisionTimeout) * time.Second
	t.agents[name] = NewNetworkAgent(name, t.wire, t.logger, timeout, t.clock)
	t.logger.Info("player seated", "player", name, "seat", seat,
		"waiting", t.cfg.HumanSeats()-len(t.joined))

	if len(t.joined) == t.cfg.HumanSeats() {
		t.started = true
		go t.run()
	}
	return seat, nil
}

// HandleDecision routes a client's answer to their agent.
func (t *Table) HandleDecision(name string, data protocol.DecisionData) error {
	t.mu.Lock()
	agent := t.agents[name]
	t.mu.Unlock()
	if agent == nil {
		return fmt.Errorf("%s is not seated", name)
	}
	return agent.HandleDecision(data)
}

// HandleDisconnect releases a player's seat before the game starts, or
// switches their agent to auto-fold once it has. The session is stopped
// when the last remote player drops.
func (t *Table) HandleDisconnect(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	agent, ok := t.agents[name]
	if !ok {
		return
	}
	agent.Disconnect()

	if !t.started {
		delete(t.agents, name)
		t.joined = slices.DeleteFunc(t.joined, func(n string) bool { return n == name })
		t.logger.Info("player left before start", "player", name)
		return
	}

	t.dropped++
	t.logger.Info("player disconnected mid-game", "player", name)
	if t.dropped == len(t.joined) {
		t.logger.Info("all players disconnected, stopping session")
		t.cancel()
	}
}

// Started reports whether the game is underway.
func (t *Table) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Done is closed when the session has finished.
func (t *Table) Done() <-chan struct{} {
	return t.done
}

func (t *Table) run() {
	defer close(t.done)
	defer t.cancel()

	t.mu.Lock()
	joined := slices.Clone(t.joined)
	t.mu.Unlock()

	seed := randutil.Seed(t.cfg.Table.Seed)
	t.logger.Info("table starting", "seed", seed,
		"players", len(joined), "npcs", len(t.cfg.NPCs))

	bus := game.NewEventBus()
	bus.Subscribe(game.SubscriberFunc(t.publishEvent))

	opts := []game.EngineOption{game.WithBus(bus), game.WithLogger(t.logger)}
	if t.cfg.Table.HandLimit > 0 {
		opts = append(opts, game.WithHandLimit(t.cfg.Table.HandLimit))
	}
	engine := game.NewEngine(randutil.New(seed), t.cfg.Table.SmallBlind, t.cfg.Table.BigBlind, opts...)

	for _, name := range joined {
		t.mu.Lock()
		agent := t.agents[name]
		t.mu.Unlock()
		engine.AddPlayer(name, t.cfg.Table.StartingChips, agent)
	}
	for i, npc := range t.cfg.NPCs {
		agent, err := bot.New(npc.Kind, randutil.New(seed+int64(i)+1), t.logger)
		if err != nil {
			t.logger.Error("configured npc is invalid", "npc", npc.Name, "err", err)
			return
		}
		engine.AddPlayer(npc.Name, t.cfg.Table.StartingChips, agent)
	}

	players := make([]protocol.PlayerStateData, 0, len(engine.Players()))
	for _, sp := range engine.Players() {
		players = append(players, protocol.PlayerStateData{Seat: sp.Seat, Name: sp.Name, Chips: sp.Chips})
	}
	if msg, err := protocol.NewMessage(protocol.TypeTableStart, protocol.TableStartData{
		Players:    players,
		SmallBlind: t.cfg.Table.SmallBlind,
		BigBlind:   t.cfg.Table.BigBlind,
		HandLimit:  t.cfg.Table.HandLimit,
	}); err == nil {
		t.wire.Broadcast(msg)
	}

	res, err := engine.Run(t.sessionCtx)
	switch {
	case errors.Is(err, context.Canceled):
		t.logger.Info("session cancelled")
	case err != nil:
		t.logger.Error("session failed", "err", err)
	}
	if res == nil {
		return
	}

	standings := make([]protocol.StandingData, len(res.Standings))
	for i, st := range res.Standings {
		standings[i] = protocol.StandingData{Seat: st.Seat, Name: st.Name, Chips: st.Chips, BustedHand: st.BustedHand}
	}
	if msg, err := protocol.NewMessage(protocol.TypeSessionEnd, protocol.SessionEndData{
		Hands:     res.Hands,
		Winner:    res.Winner(),
		Standings: standings,
	}); err == nil {
		t.wire.Broadcast(msg)
	}
	t.logger.Info("session complete", "hands", res.Hands, "winner", res.Winner())
}

// publishEvent mirrors one engine event to the connections. Hole cards
// go to their owner alone; everything else fans out to the table.
func (t *Table) publishEvent(ev game.GameEvent) {
	if hc, ok := ev.(game.HoleCardsEvent); ok {
		if msg, ok := protocol.MessageFromEvent(ev, hc.Name); ok {
			// NPC seats have no connection; nothing to deliver.
			_ = t.wire.SendToPlayer(hc.Name, msg)
		}
		return
	}
	if msg, ok := protocol.MessageFromEvent(ev, ""); ok {
		t.wire.Broadcast(msg)
	}
}
