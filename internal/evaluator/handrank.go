package evaluator

import (
	"fmt"
	"strings"

	"github.com/lox/holdem/internal/deck"
)

// Category is the hand class, ordered weakest to strongest.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	"High Card",
	"Pair",
	"Two Pair",
	"Three of a Kind",
	"Straight",
	"Flush",
	"Full House",
	"Four of a Kind",
	"Straight Flush",
}

func (c Category) String() string {
	if c < HighCard || c > StraightFlush {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// HandRank is a hand's full strength packed into one comparable int:
// the category in the high bits, then up to five tiebreak ranks in
// descending significance, four bits each. Larger always beats smaller,
// so ranks from different hands compare directly.
type HandRank int

const categoryShift = 20

func pack(cat Category, tiebreaks ...int) HandRank {
	r := int(cat) << categoryShift
	shift := categoryShift - 4
	for _, t := range tiebreaks {
		r |= t << shift
		shift -= 4
	}
	return HandRank(r)
}

// Category returns the hand class.
func (r HandRank) Category() Category {
	return Category(int(r) >> categoryShift)
}

// Tiebreaks returns the tiebreak ranks in descending significance:
// group ranks first, then kickers. Straights carry only the high card.
func (r HandRank) Tiebreaks() []int {
	var out []int
	for shift := categoryShift - 4; shift >= 0; shift -= 4 {
		v := (int(r) >> shift) & 0xf
		if v == 0 {
			break
		}
		out = append(out, v)
	}
	return out
}

// Compare orders two ranks: -1 if r is weaker than other, 0 if they
// tie exactly, +1 if r is stronger.
func (r HandRank) Compare(other HandRank) int {
	switch {
	case r < other:
		return -1
	case r > other:
		return 1
	}
	return 0
}

// String returns the category name, reporting an ace-high straight
// flush as "Royal Flush".
func (r HandRank) String() string {
	if r.royal() {
		return "Royal Flush"
	}
	return r.Category().String()
}

func (r HandRank) royal() bool {
	tb := r.Tiebreaks()
	return r.Category() == StraightFlush && len(tb) > 0 && deck.Rank(tb[0]) == deck.Ace
}

// Describe returns a spoken description such as "Pair of Kings" or
// "Full House, Aces full of Tens".
func (r HandRank) Describe() string {
	tb := r.Tiebreaks()
	name := func(i int) string { return deck.Rank(tb[i]).Name() }

	switch r.Category() {
	case HighCard:
		return fmt.Sprintf("High Card, %s", name(0))
	case Pair:
		return fmt.Sprintf("Pair of %s", plural(tb[0]))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", plural(tb[0]), plural(tb[1]))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", plural(tb[0]))
	case Straight:
		return fmt.Sprintf("Straight, %s high", name(0))
	case Flush:
		return fmt.Sprintf("Flush, %s high", name(0))
	case FullHouse:
		return fmt.Sprintf("Full House, %s full of %s", plural(tb[0]), plural(tb[1]))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", plural(tb[0]))
	case StraightFlush:
		if r.royal() {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", name(0))
	}
	return r.Category().String()
}

func plural(rank int) string {
	n := deck.Rank(rank).Name()
	if strings.HasSuffix(n, "x") {
		return n + "es"
	}
	return n + "s"
}
