package game

import (
	"sort"

	"github.com/lox/holdem/internal/evaluator"
)

// Pot is one pot tier. The main pot is tier zero; each all-in level
// below the largest commitment opens a side pot above it.
type Pot struct {
	Amount   int
	Eligible []int // seats still contesting this tier, ascending
}

// Award records chips paid to a seat out of a pot tier at hand end.
type Award struct {
	Seat     int
	PotIndex int
	Amount   int
}

// PotManager owns pot accounting for a hand. Tiers are rebuilt from the
// players' hand-total commitments at every collection, so side pots are
// always consistent with who is all-in for how much.
type PotManager struct {
	pots []Pot
}

// NewPotManager returns an empty pot.
func NewPotManager() *PotManager {
	return &PotManager{}
}

// Collect sweeps the street bets into the pot and recomputes tiers.
func (pm *PotManager) Collect(players []*Player) {
	for _, p := range players {
		p.Bet = 0
	}
	pm.rebuild(players)
}

// rebuild derives the tiers from total commitments. Each all-in total
// caps a tier; the largest commitment closes the last one. A tier's
// amount is everyone's contribution inside its band, folded players
// included, but only unfolded players who reached the band are
// eligible to win it.
func (pm *PotManager) rebuild(players []*Player) {
	maxTotal := 0
	levelSet := make(map[int]bool)
	for _, p := range players {
		if p.TotalBet > maxTotal {
			maxTotal = p.TotalBet
		}
		if p.AllInFlag && p.TotalBet > 0 {
			levelSet[p.TotalBet] = true
		}
	}
	if maxTotal == 0 {
		pm.pots = nil
		return
	}
	levelSet[maxTotal] = true

	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	pots := make([]Pot, 0, len(levels))
	prev := 0
	for _, level := range levels {
		var pot Pot
		for _, p := range players {
			if c := min(p.TotalBet, level) - prev; c > 0 {
				pot.Amount += c
			}
			if !p.Folded && p.TotalBet >= level {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
		prev = level
	}
	pm.pots = pots
}

// Pots returns the current tiers, main pot first.
func (pm *PotManager) Pots() []Pot {
	return pm.pots
}

// Total returns the chips collected across all tiers.
func (pm *PotManager) Total() int {
	total := 0
	for _, pot := range pm.pots {
		total += pot.Amount
	}
	return total
}

// Live returns the pot a player is fighting for right now: collected
// tiers plus the street bets not yet swept.
func (pm *PotManager) Live(players []*Player) int {
	total := pm.Total()
	for _, p := range players {
		total += p.Bet
	}
	return total
}

// AwardAll pays every tier to a single winner and empties the pot. Used
// when the hand ends with everyone else folded; any uncalled chips
// return to the winner in the same sweep.
func (pm *PotManager) AwardAll(players []*Player, seat int) []Award {
	total := pm.Total()
	pm.pots = nil
	if total == 0 {
		return nil
	}
	players[seat].Chips += total
	return []Award{{Seat: seat, PotIndex: 0, Amount: total}}
}

// Distribute pays each tier to the strongest eligible hand, splitting
// ties evenly. Odd chips go one each to the tied winners closest to the
// button's left. Stacks are credited in place and the pot empties.
func (pm *PotManager) Distribute(players []*Player, ranks map[int]evaluator.HandRank, button int) []Award {
	var awards []Award
	for i, pot := range pm.pots {
		winners := bestSeats(pot.Eligible, ranks)
		if len(winners) == 0 {
			continue
		}
		share := pot.Amount / len(winners)
		odd := pot.Amount % len(winners)
		for _, seat := range clockwiseFrom(winners, button+1, len(players)) {
			amount := share
			if odd > 0 {
				amount++
				odd--
			}
			if amount == 0 {
				continue
			}
			players[seat].Chips += amount
			awards = append(awards, Award{Seat: seat, PotIndex: i, Amount: amount})
		}
	}
	pm.pots = nil
	return awards
}

// CheckConservation verifies that stacks, live bets and pots still sum
// to the chips the hand started with.
func (pm *PotManager) CheckConservation(players []*Player, expected int, handID string) error {
	actual := pm.Total()
	for _, p := range players {
		actual += p.Chips + p.Bet
	}
	if actual != expected {
		return &PotConservationError{HandID: handID, Expected: expected, Actual: actual}
	}
	return nil
}

func bestSeats(eligible []int, ranks map[int]evaluator.HandRank) []int {
	best := evaluator.HandRank(-1)
	var seats []int
	for _, seat := range eligible {
		r, ok := ranks[seat]
		if !ok {
			continue
		}
		switch {
		case r > best:
			best = r
			seats = []int{seat}
		case r == best:
			seats = append(seats, seat)
		}
	}
	return seats
}

// clockwiseFrom orders seats by table position starting at from.
func clockwiseFrom(seats []int, from, numPlayers int) []int {
	ordered := make([]int, len(seats))
	copy(ordered, seats)
	pos := func(seat int) int {
		return ((seat-from)%numPlayers + numPlayers) % numPlayers
	}
	sort.Slice(ordered, func(i, j int) bool { return pos(ordered[i]) < pos(ordered[j]) })
	return ordered
}
