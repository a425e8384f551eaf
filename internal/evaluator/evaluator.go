// Package evaluator ranks poker hands. Evaluate takes five to seven
// cards and returns the strength of the best five-card hand as a single
// comparable HandRank.
package evaluator

import (
	"fmt"

	"github.com/lox/holdem/internal/deck"
)

// Evaluate returns the rank of the best five-card hand in cards. It
// accepts exactly 5, 6 or 7 cards and panics otherwise; callers are
// expected to assemble hole cards plus board before asking.
func Evaluate(cards []deck.Card) HandRank {
	switch len(cards) {
	case 5:
		return evaluate5(cards)
	case 6:
		var buf [5]deck.Card
		best := HandRank(-1)
		for skip := 0; skip < 6; skip++ {
			n := 0
			for i, c := range cards {
				if i == skip {
					continue
				}
				buf[n] = c
				n++
			}
			if r := evaluate5(buf[:]); r > best {
				best = r
			}
		}
		return best
	case 7:
		var buf [5]deck.Card
		best := HandRank(-1)
		for i := 0; i < 7; i++ {
			for j := i + 1; j < 7; j++ {
				n := 0
				for k, c := range cards {
					if k == i || k == j {
						continue
					}
					buf[n] = c
					n++
				}
				if r := evaluate5(buf[:]); r > best {
					best = r
				}
			}
		}
		return best
	}
	panic(fmt.Sprintf("evaluator: %d cards, want 5 to 7", len(cards)))
}

// evaluate5 ranks exactly five cards. It never mutates its input; the
// rank histogram makes sorting unnecessary.
func evaluate5(cards []deck.Card) HandRank {
	var counts [15]int
	var suits [4]int
	var mask uint16
	for _, c := range cards {
		counts[c.Rank]++
		suits[c.Suit]++
		mask |= 1 << uint(c.Rank)
	}

	flush := false
	for _, n := range suits {
		if n == 5 {
			flush = true
			break
		}
	}
	straight := straightHigh(mask)

	if flush && straight > 0 {
		return pack(StraightFlush, straight)
	}

	var quad int
	var trips, pairs, singles []int
	for r := int(deck.Ace); r >= int(deck.Two); r-- {
		switch c := counts[r]; {
		case c >= 4:
			quad = r
			if c > 4 {
				singles = append(singles, r)
			}
		case c == 3:
			trips = append(trips, r)
		case c == 2:
			pairs = append(pairs, r)
		case c == 1:
			singles = append(singles, r)
		}
	}

	switch {
	case quad > 0:
		return pack(FourOfAKind, quad, highestOther(trips, pairs, singles))
	case len(trips) > 0 && (len(pairs) > 0 || len(trips) > 1):
		low := trips[1:]
		if len(pairs) > 0 {
			low = pairs
		}
		return pack(FullHouse, trips[0], low[0])
	case flush:
		return pack(Flush, ranksDesc(counts)...)
	case straight > 0:
		return pack(Straight, straight)
	case len(trips) > 0:
		return pack(ThreeOfAKind, trips[0], singles[0], singles[1])
	case len(pairs) > 1:
		return pack(TwoPair, pairs[0], pairs[1], singles[0])
	case len(pairs) == 1:
		return pack(Pair, pairs[0], singles[0], singles[1], singles[2])
	}
	return pack(HighCard, ranksDesc(counts)...)
}

// wheelMask is A-2-3-4-5, the only straight where the ace plays low.
const wheelMask = 1<<uint(deck.Ace) | 1<<uint(deck.Five) | 1<<uint(deck.Four) | 1<<uint(deck.Three) | 1<<uint(deck.Two)

// straightHigh returns the high card of the straight formed by the
// ranks in mask, or 0 if there is none. The wheel reports Five.
func straightHigh(mask uint16) int {
	for high := int(deck.Ace); high >= int(deck.Six); high-- {
		window := uint16(0x1f) << uint(high-4)
		if mask&window == window {
			return high
		}
	}
	if mask&wheelMask == wheelMask {
		return int(deck.Five)
	}
	return 0
}

// ranksDesc flattens the histogram back into all five ranks, highest
// first, duplicates included.
func ranksDesc(counts [15]int) []int {
	out := make([]int, 0, 5)
	for r := int(deck.Ace); r >= int(deck.Two); r-- {
		for i := 0; i < counts[r]; i++ {
			out = append(out, r)
		}
	}
	return out
}

func highestOther(groups ...[]int) int {
	best := 0
	for _, g := range groups {
		for _, r := range g {
			if r > best {
				best = r
			}
		}
	}
	return best
}
