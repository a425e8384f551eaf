package game

import "github.com/lox/holdem/internal/deck"

// Decision is an agent's chosen action. For Raise, Amount is the total
// the street bet is raised to, not the increment. Other actions ignore
// Amount.
type Decision struct {
	Action Action
	Amount int
}

// ValidAction is an action the acting player may legally take, with its
// chip bounds. For Call the bounds are the chips to add (both equal).
// For Raise they are the smallest and largest legal raise-to totals;
// for AllIn both are the total after shoving the full stack.
type ValidAction struct {
	Action    Action
	MinAmount int
	MaxAmount int
}

// PlayerState is a seat's public state as seen by an agent. HoleCards
// is populated only for the viewer's own seat.
type PlayerState struct {
	Seat      int
	Name      string
	Chips     int
	Bet       int
	TotalBet  int
	Folded    bool
	AllIn     bool
	HoleCards []deck.Card
}

// TableState is the immutable view of a hand handed to agents when it
// is their turn. Pot includes street bets not yet swept.
type TableState struct {
	HandID     string
	Street     Street
	Board      []deck.Card
	Pot        int
	CurrentBet int
	MinRaise   int
	SmallBlind int
	BigBlind   int
	Button     int
	Players    []PlayerState
	Acting     int // index into Players of the seat deciding
}

// Hero returns the acting player's own state.
func (ts TableState) Hero() PlayerState {
	return ts.Players[ts.Acting]
}

// ToCall returns the chips the acting player must add to match the
// current bet.
func (ts TableState) ToCall() int {
	hero := ts.Hero()
	if toCall := ts.CurrentBet - hero.Bet; toCall > 0 {
		return toCall
	}
	return 0
}

// Agent is anything that can decide for a player: a bot policy, a TUI
// prompt, or a remote connection. Agents receive immutable state and
// return a decision; they never mutate the hand.
type Agent interface {
	MakeDecision(state TableState, valid []ValidAction) Decision
}
