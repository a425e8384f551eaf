package game

// Street identifies the betting round.
type Street int

const (
	PreFlop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	if s < PreFlop || s > Showdown {
		return "unknown"
	}
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// Action is a player decision type.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	AllIn
)

func (a Action) String() string {
	if a < Fold || a > AllIn {
		return "unknown"
	}
	return [...]string{"fold", "check", "call", "raise", "allin"}[a]
}

// Phase describes where a hand is in its lifecycle. It is derived from
// hand state rather than stored, so it can never drift.
type Phase int

const (
	PhasePreFlop Phase = iota
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseComplete
)

func (p Phase) String() string {
	if p < PhasePreFlop || p > PhaseComplete {
		return "unknown"
	}
	return [...]string{"preflop", "flop", "turn", "river", "showdown", "complete"}[p]
}

// BettingRound tracks one street of betting: the bet to match, the
// minimum raise increment, and who has acted since the last full raise.
//
// Blind posts do not mark the blinds as having acted, which is what
// gives the big blind its preflop option. A full raise clears every
// acted flag; a short all-in does not, so players who already acted may
// only call or fold when it comes back around.
type BettingRound struct {
	CurrentBet int
	MinRaise   int
	LastRaiser int // seat of the last aggressor, -1 if none
	Acted      []bool
	bigBlind   int
}

// NewBettingRound returns the preflop betting state for numPlayers.
func NewBettingRound(numPlayers, bigBlind int) *BettingRound {
	return &BettingRound{
		MinRaise:   bigBlind,
		LastRaiser: -1,
		Acted:      make([]bool, numPlayers),
		bigBlind:   bigBlind,
	}
}

// Reset prepares the round for a new street.
func (br *BettingRound) Reset() {
	br.CurrentBet = 0
	br.MinRaise = br.bigBlind
	br.LastRaiser = -1
	for i := range br.Acted {
		br.Acted[i] = false
	}
}

// MarkActed records that seat has acted since the last full raise.
func (br *BettingRound) MarkActed(seat int) {
	if seat >= 0 && seat < len(br.Acted) {
		br.Acted[seat] = true
	}
}

// reopen clears all acted flags after a full raise. The raiser is
// re-marked by the caller.
func (br *BettingRound) reopen() {
	for i := range br.Acted {
		br.Acted[i] = false
	}
}

// Complete reports whether the street's betting is finished: every
// player who can still act has matched the current bet and has acted
// since the last full raise. With nobody left to act it is trivially
// complete.
func (br *BettingRound) Complete(players []*Player) bool {
	for i, p := range players {
		if p.Folded || p.AllInFlag {
			continue
		}
		if p.Bet != br.CurrentBet || !br.Acted[i] {
			return false
		}
	}
	return true
}
