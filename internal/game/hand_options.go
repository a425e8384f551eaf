package game

import (
	"math/rand/v2"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/gameid"
)

// HandOption configures a HandState during creation.
type HandOption func(*handConfig)

type handConfig struct {
	chipCounts []int
	startChips int
	deck       *deck.Deck
	bus        EventBus
	id         string
}

// NewHand creates a hand, posts blinds and deals hole cards. The RNG is
// required so randomness is always explicit; a fixed seed reproduces
// the hand exactly.
//
// Structural misuse (nil RNG, too few players, bad button, bad blinds)
// panics. The error return covers runtime failures: a stacked deck
// running out of cards, or a chip conservation violation.
//
// The returned hand may already be complete when the blinds put
// everyone all-in, so callers should check Complete before acting.
//
// Example:
//
//	rng := randutil.New(42)
//	h, err := game.NewHand(rng, []string{"Alice", "Bob"}, 0, 5, 10,
//	    game.WithChips([]int{1000, 800}))
func NewHand(rng *rand.Rand, playerNames []string, button, smallBlind, bigBlind int, opts ...HandOption) (*HandState, error) {
	if rng == nil {
		panic("game: rng is required for hand creation")
	}
	if len(playerNames) < 2 {
		panic("game: at least 2 players required")
	}
	if 2*len(playerNames)+5 > deck.Size {
		panic("game: too many players for one deck")
	}
	if button < 0 || button >= len(playerNames) {
		panic("game: button position out of range")
	}
	if smallBlind < 1 || bigBlind < smallBlind {
		panic("game: invalid blinds")
	}

	cfg := &handConfig{startChips: 1000}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.chipCounts != nil && len(cfg.chipCounts) != len(playerNames) {
		panic("game: chip counts must match number of players")
	}

	players := make([]*Player, len(playerNames))
	expected := 0
	for i, name := range playerNames {
		chips := cfg.startChips
		if cfg.chipCounts != nil {
			chips = cfg.chipCounts[i]
		}
		if chips <= 0 {
			panic("game: every player needs chips")
		}
		players[i] = &Player{Seat: i, Name: name, Chips: chips}
		expected += chips
	}

	d := cfg.deck
	if d == nil {
		d = deck.New(rng)
	}
	id := cfg.id
	if id == "" {
		id = gameid.New()
	}

	h := &HandState{
		ID:         id,
		Players:    players,
		Button:     button,
		Street:     PreFlop,
		Deck:       d,
		Betting:    NewBettingRound(len(players), bigBlind),
		Pots:       NewPotManager(),
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		bus:        cfg.bus,
		expected:   expected,
	}
	h.history = newHandHistory(h)

	h.postBlinds()
	h.publish(NewHandStartEvent(h.ID, h.Snapshot(-1).Players, button, smallBlind, bigBlind))

	if err := h.dealHoleCards(); err != nil {
		return nil, err
	}

	if len(players) == 2 {
		// Heads-up the button is the small blind and acts first.
		h.ActivePlayer = h.nextActive(button)
	} else {
		h.ActivePlayer = h.nextActive(button + 3)
	}

	// Short blinds can leave nobody able to act.
	if h.Betting.Complete(h.Players) {
		if err := h.endStreet(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *HandState) postBlinds() {
	sb, bb := BlindSeats(h.Button, len(h.Players))
	h.Players[sb].pay(h.SmallBlind)
	h.Players[bb].pay(h.BigBlind)
	// The bet to match is the full big blind even when posted short.
	h.Betting.CurrentBet = h.BigBlind
}

// BlindSeats returns the small and big blind seats for a button
// position. Heads-up the button posts the small blind.
func BlindSeats(button, numPlayers int) (sb, bb int) {
	if numPlayers == 2 {
		return button, (button + 1) % numPlayers
	}
	return (button + 1) % numPlayers, (button + 2) % numPlayers
}

func (h *HandState) dealHoleCards() error {
	for _, p := range h.Players {
		cards, err := h.Deck.DealN(2)
		if err != nil {
			return err
		}
		p.HoleCards = cards
		h.history.HoleCards[p.Seat] = cards
		h.publish(NewHoleCardsEvent(h.ID, p.Seat, p.Name, cards))
	}
	return nil
}

// WithUniformChips sets the same starting stack for every player.
// Default is 1000.
func WithUniformChips(chips int) HandOption {
	return func(c *handConfig) {
		c.startChips = chips
		c.chipCounts = nil
	}
}

// WithChips sets individual starting stacks. The length must match the
// number of players.
func WithChips(chipCounts []int) HandOption {
	return func(c *handConfig) {
		c.chipCounts = chipCounts
	}
}

// WithDeck supplies a prepared deck, usually deck.NewOrdered in tests.
// The RNG is then unused for dealing.
func WithDeck(d *deck.Deck) HandOption {
	return func(c *handConfig) {
		c.deck = d
	}
}

// WithEventBus publishes the hand's events to bus.
func WithEventBus(bus EventBus) HandOption {
	return func(c *handConfig) {
		c.bus = bus
	}
}

// WithID overrides the generated hand ID.
func WithID(id string) HandOption {
	return func(c *handConfig) {
		c.id = id
	}
}
