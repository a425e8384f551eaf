package game

import "github.com/lox/holdem/internal/deck"

// Player is a seat's state within a single hand. Seats are indices into
// HandState.Players and stay fixed for the hand's duration.
type Player struct {
	Seat      int
	Name      string
	Chips     int
	HoleCards []deck.Card
	Folded    bool
	AllInFlag bool
	Bet       int // chips committed this street
	TotalBet  int // chips committed this hand
}

// IsActive reports whether the player can still act in betting.
func (p *Player) IsActive() bool {
	return !p.Folded && !p.AllInFlag && p.Chips > 0
}

// InHand reports whether the player still contests the pot.
func (p *Player) InHand() bool {
	return !p.Folded
}

// pay moves up to amount chips from the stack into the current bet,
// clamping at the stack and flagging all-in when it empties. It returns
// the chips actually moved.
func (p *Player) pay(amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	if amount < 0 {
		amount = 0
	}
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Chips == 0 {
		p.AllInFlag = true
	}
	return amount
}
