package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"
)

// SessionPlayer is a seat across a whole session. Seats are stable even
// as players bust out; hands are dealt to the survivors only.
type SessionPlayer struct {
	Seat       int
	Name       string
	Chips      int
	Agent      Agent
	BustedHand int // hand number of elimination, 0 while still in
}

// Engine runs a multi-hand session: it deals hands to the surviving
// players, collects decisions from their agents, rotates the button and
// eliminates busted stacks until one player holds all the chips or the
// hand limit is reached.
type Engine struct {
	rng        *rand.Rand
	logger     *log.Logger
	bus        EventBus
	players    []*SessionPlayer
	smallBlind int
	bigBlind   int
	handLimit  int
	sink       HistorySink

	button        int // session seat holding the button
	handsPlayed   int
	startingTotal int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger. The default discards output.
func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithBus publishes all game events to bus instead of the engine's own.
func WithBus(bus EventBus) EngineOption {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithHandLimit stops the session after n hands. Zero means no limit.
func WithHandLimit(n int) EngineOption {
	return func(e *Engine) {
		e.handLimit = n
	}
}

// WithHistorySink writes each completed hand's history to sink. Sink
// failures are logged, not fatal.
func WithHistorySink(sink HistorySink) EngineOption {
	return func(e *Engine) {
		e.sink = sink
	}
}

// NewEngine creates a session engine. Players are added with AddPlayer
// before Run. The RNG drives every shuffle, so a fixed seed replays the
// whole session.
func NewEngine(rng *rand.Rand, smallBlind, bigBlind int, opts ...EngineOption) *Engine {
	if rng == nil {
		panic("game: rng is required")
	}
	if smallBlind < 1 || bigBlind < smallBlind {
		panic("game: invalid blinds")
	}
	e := &Engine{
		rng:        rng,
		logger:     log.New(io.Discard),
		bus:        NewEventBus(),
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddPlayer seats a player and returns their session seat. Names must
// be unique; they key statistics and transports.
func (e *Engine) AddPlayer(name string, chips int, agent Agent) int {
	if e.handsPlayed > 0 {
		panic("game: cannot add players mid-session")
	}
	if name == "" {
		panic("game: player name required")
	}
	if chips <= 0 {
		panic("game: every player needs chips")
	}
	if agent == nil {
		panic("game: agent required")
	}
	for _, p := range e.players {
		if p.Name == name {
			panic("game: duplicate player name " + name)
		}
	}
	seat := len(e.players)
	e.players = append(e.players, &SessionPlayer{
		Seat:  seat,
		Name:  name,
		Chips: chips,
		Agent: agent,
	})
	e.startingTotal += chips
	return seat
}

// Bus returns the event bus carrying the session's game events.
func (e *Engine) Bus() EventBus {
	return e.bus
}

// Players returns the session seats in order.
func (e *Engine) Players() []*SessionPlayer {
	return e.players
}

// SessionResult is the outcome of a session.
type SessionResult struct {
	Hands     int
	Standings []Standing
}

// Standing is one player's final position, best first.
type Standing struct {
	Seat       int
	Name       string
	Chips      int
	BustedHand int
}

// Winner returns the name of the top standing.
func (sr *SessionResult) Winner() string {
	if len(sr.Standings) == 0 {
		return ""
	}
	return sr.Standings[0].Name
}

// Run plays hands until one player remains, the hand limit is reached,
// or the context is cancelled. The partial result is returned alongside
// any error.
func (e *Engine) Run(ctx context.Context) (*SessionResult, error) {
	if len(e.players) < 2 {
		return nil, errors.New("game: need at least 2 players")
	}
	for {
		if err := ctx.Err(); err != nil {
			return e.sessionResult(), err
		}
		if e.handLimit > 0 && e.handsPlayed >= e.handLimit {
			break
		}
		if len(e.survivors()) < 2 {
			break
		}
		if _, err := e.PlayHand(ctx); err != nil {
			return e.sessionResult(), err
		}
	}
	return e.sessionResult(), nil
}

// PlayHand deals and plays a single hand among the survivors. An agent
// whose decision is rejected gets exactly one more try, then the engine
// checks or folds for them; anything beyond an illegal action is fatal.
func (e *Engine) PlayHand(ctx context.Context) (*HandResult, error) {
	roster := e.survivors()
	if len(roster) < 2 {
		return nil, errors.New("game: not enough players for a hand")
	}

	names := make([]string, len(roster))
	chips := make([]int, len(roster))
	buttonIdx := 0
	for i, sp := range roster {
		names[i] = sp.Name
		chips[i] = sp.Chips
		if sp.Seat == e.button {
			buttonIdx = i
		}
	}

	h, err := NewHand(e.rng, names, buttonIdx, e.smallBlind, e.bigBlind,
		WithChips(chips), WithEventBus(e.bus))
	if err != nil {
		return nil, err
	}
	e.logger.Debug("hand started", "hand", h.ID, "players", len(roster), "button", roster[buttonIdx].Name)

	for !h.Complete() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		seat := h.ActivePlayer
		agent := roster[seat].Agent
		state := h.Snapshot(seat)
		valid := h.ValidActions()

		decision := agent.MakeDecision(state, valid)
		if err := h.Act(seat, decision.Action, decision.Amount); err != nil {
			var illegalErr *IllegalActionError
			if !errors.As(err, &illegalErr) {
				return nil, err
			}
			e.logger.Warn("decision rejected",
				"hand", h.ID, "player", roster[seat].Name,
				"action", decision.Action, "amount", decision.Amount, "err", err)

			decision = agent.MakeDecision(state, valid)
			if err := h.Act(seat, decision.Action, decision.Amount); err != nil {
				if !errors.As(err, &illegalErr) {
					return nil, err
				}
				fallback := safeFallback(valid)
				e.logger.Warn("acting for player",
					"hand", h.ID, "player", roster[seat].Name, "action", fallback.Action)
				if err := h.Act(seat, fallback.Action, fallback.Amount); err != nil {
					return nil, fmt.Errorf("fallback action rejected: %w", err)
				}
			}
		}
	}

	result := h.Result()
	e.handsPlayed++

	total := 0
	for i, sp := range roster {
		sp.Chips = h.Players[i].Chips
		if sp.Chips == 0 && sp.BustedHand == 0 {
			sp.BustedHand = e.handsPlayed
			e.logger.Info("player eliminated", "player", sp.Name, "hand", h.ID)
		}
	}
	for _, sp := range e.players {
		total += sp.Chips
	}
	if total != e.startingTotal {
		return nil, &PotConservationError{HandID: h.ID, Expected: e.startingTotal, Actual: total}
	}

	if e.sink != nil {
		if err := e.sink.WriteHand(h.History()); err != nil {
			e.logger.Error("writing hand history failed", "hand", h.ID, "err", err)
		}
	}

	e.rotateButton()
	return result, nil
}

// safeFallback checks when free, folds otherwise. Both are always legal
// for the player due to act.
func safeFallback(valid []ValidAction) Decision {
	for _, va := range valid {
		if va.Action == Check {
			return Decision{Action: Check}
		}
	}
	return Decision{Action: Fold}
}

func (e *Engine) survivors() []*SessionPlayer {
	out := make([]*SessionPlayer, 0, len(e.players))
	for _, p := range e.players {
		if p.Chips > 0 {
			out = append(out, p)
		}
	}
	return out
}

// rotateButton moves the button to the next surviving seat.
func (e *Engine) rotateButton() {
	n := len(e.players)
	for i := 1; i <= n; i++ {
		seat := (e.button + i) % n
		if e.players[seat].Chips > 0 {
			e.button = seat
			return
		}
	}
}

func (e *Engine) sessionResult() *SessionResult {
	standings := make([]Standing, len(e.players))
	for i, p := range e.players {
		standings[i] = Standing{Seat: p.Seat, Name: p.Name, Chips: p.Chips, BustedHand: p.BustedHand}
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Chips != standings[j].Chips {
			return standings[i].Chips > standings[j].Chips
		}
		return standings[i].BustedHand > standings[j].BustedHand
	})
	return &SessionResult{Hands: e.handsPlayed, Standings: standings}
}
