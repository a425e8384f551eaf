package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/holdem/internal/game"
)

// Sample accumulates observations of one metric. Sum2 carries the sum
// of squares so variance merges without revisiting values.
type Sample struct {
	N      int
	Sum    float64
	Sum2   float64
	values []float64
}

// Add incorporates one observation.
func (s *Sample) Add(v float64) {
	s.N++
	s.Sum += v
	s.Sum2 += v * v
	s.values = append(s.values, v)
}

func (s *Sample) merge(o Sample) {
	s.N += o.N
	s.Sum += o.Sum
	s.Sum2 += o.Sum2
	s.values = append(s.values, o.values...)
}

// Mean returns the arithmetic mean of the sample.
func (s *Sample) Mean() float64 {
	if s.N == 0 {
		return 0
	}
	return s.Sum / float64(s.N)
}

// Variance returns the sample variance.
func (s *Sample) Variance() float64 {
	if s.N < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.N)*mean*mean) / float64(s.N-1)
}

// StdDev returns the sample standard deviation.
func (s *Sample) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Sample) StdError() float64 {
	if s.N == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.N))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Sample) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median observation.
func (s *Sample) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0),
// interpolating between observations.
func (s *Sample) Percentile(p float64) float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.values))
	copy(sorted, s.values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// PlayerStats tracks one player's results across hands and sessions.
// Wins counts hands where the player was credited from at least one
// pot, which includes getting an uncalled bet back.
type PlayerStats struct {
	Name         string
	Hands        int
	Wins         int
	ShowdownWins int
	FoldWins     int
	NetBB        Sample
	Busts        int
	BustHands    []int // hand number within each session the player busted on
}

// Statistics aggregates hand and session results for a simulation run.
// It implements game.EventSubscriber so it can sit on an engine's event
// bus and fold in every finished hand.
type Statistics struct {
	BigBlind      int
	Hands         int
	Sessions      int
	ShowdownHands int
	FoldHands     int
	MaxPotChips   int
	BigPots       int // pots of 50bb or more
	players       map[string]*PlayerStats
}

// New creates statistics denominated in the given big blind.
func New(bigBlind int) *Statistics {
	if bigBlind < 1 {
		panic("statistics: big blind must be positive")
	}
	return &Statistics{
		BigBlind: bigBlind,
		players:  make(map[string]*PlayerStats),
	}
}

// Player returns the stats bucket for name, creating it if needed.
func (s *Statistics) Player(name string) *PlayerStats {
	ps, ok := s.players[name]
	if !ok {
		ps = &PlayerStats{Name: name}
		s.players[name] = ps
	}
	return ps
}

// Players returns all player stats sorted by name.
func (s *Statistics) Players() []*PlayerStats {
	out := make([]*PlayerStats, 0, len(s.players))
	for _, ps := range s.players {
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MaxPotBB returns the largest observed pot in big blinds.
func (s *Statistics) MaxPotBB() float64 {
	return float64(s.MaxPotChips) / float64(s.BigBlind)
}

// ObserveHand folds one finished hand into the aggregates.
func (s *Statistics) ObserveHand(res *game.HandResult) {
	s.Hands++

	if res.PotTotal > s.MaxPotChips {
		s.MaxPotChips = res.PotTotal
	}
	if float64(res.PotTotal)/float64(s.BigBlind) >= 50 {
		s.BigPots++
	}

	if res.Showdown {
		s.ShowdownHands++
	} else {
		s.FoldHands++
	}

	for _, d := range res.Deltas {
		ps := s.Player(d.Name)
		ps.Hands++
		ps.NetBB.Add(float64(d.Net) / float64(s.BigBlind))
	}
	for _, w := range res.Winners {
		ps := s.Player(w.Name)
		ps.Wins++
		if res.Showdown {
			ps.ShowdownWins++
		} else {
			ps.FoldWins++
		}
	}
}

// ObserveSession records eliminations from a finished session.
func (s *Statistics) ObserveSession(res *game.SessionResult) {
	s.Sessions++
	for _, st := range res.Standings {
		if st.BustedHand > 0 {
			ps := s.Player(st.Name)
			ps.Busts++
			ps.BustHands = append(ps.BustHands, st.BustedHand)
		}
	}
}

// OnEvent feeds hand results from an event bus into the aggregates.
func (s *Statistics) OnEvent(event game.GameEvent) {
	if end, ok := event.(game.HandEndEvent); ok {
		s.ObserveHand(end.Result)
	}
}

// Merge folds other into s. Both sides must use the same big blind.
func (s *Statistics) Merge(other *Statistics) {
	if other.BigBlind != s.BigBlind {
		panic("statistics: merging mismatched big blinds")
	}
	s.Hands += other.Hands
	s.Sessions += other.Sessions
	s.ShowdownHands += other.ShowdownHands
	s.FoldHands += other.FoldHands
	s.BigPots += other.BigPots
	if other.MaxPotChips > s.MaxPotChips {
		s.MaxPotChips = other.MaxPotChips
	}
	for _, op := range other.Players() {
		ps := s.Player(op.Name)
		ps.Hands += op.Hands
		ps.Wins += op.Wins
		ps.ShowdownWins += op.ShowdownWins
		ps.FoldWins += op.FoldWins
		ps.Busts += op.Busts
		ps.BustHands = append(ps.BustHands, op.BustHands...)
		ps.NetBB.merge(op.NetBB)
	}
}

// Validate checks the internal ledger. Hands are zero-sum, so the
// players' net big blinds must cancel out; the split counts must add
// back up to their totals.
func (s *Statistics) Validate() error {
	if s.Hands != s.ShowdownHands+s.FoldHands {
		return fmt.Errorf("hand split %d+%d does not match %d hands",
			s.ShowdownHands, s.FoldHands, s.Hands)
	}

	var totalBB float64
	for _, ps := range s.players {
		if ps.Wins != ps.ShowdownWins+ps.FoldWins {
			return fmt.Errorf("%s: win split %d+%d does not match %d wins",
				ps.Name, ps.ShowdownWins, ps.FoldWins, ps.Wins)
		}
		if ps.Wins > ps.Hands {
			return fmt.Errorf("%s: %d wins exceed %d hands", ps.Name, ps.Wins, ps.Hands)
		}
		if ps.NetBB.N != ps.Hands {
			return fmt.Errorf("%s: %d samples for %d hands", ps.Name, ps.NetBB.N, ps.Hands)
		}
		if ps.Busts != len(ps.BustHands) {
			return fmt.Errorf("%s: %d busts but %d bust hands recorded",
				ps.Name, ps.Busts, len(ps.BustHands))
		}
		totalBB += ps.NetBB.Sum
	}
	if math.Abs(totalBB) > 1e-6 {
		return fmt.Errorf("net big blinds sum to %.6f, want 0", totalBB)
	}
	return nil
}
