// Package deck implements standard playing cards and a 52-card deck with
// injectable randomness.
package deck

import (
	"fmt"
	"strings"
)

// Suit identifies one of the four card suits.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

var (
	suitGlyphs  = [...]string{"♣", "♦", "♥", "♠"}
	suitLetters = [...]string{"c", "d", "h", "s"}
)

func (s Suit) String() string {
	if s < Clubs || s > Spades {
		return "?"
	}
	return suitGlyphs[s]
}

// Letter returns the lowercase suit code used in compact notation.
func (s Suit) Letter() string {
	if s < Clubs || s > Spades {
		return "?"
	}
	return suitLetters[s]
}

// Red reports whether the suit renders red on a table.
func (s Suit) Red() bool {
	return s == Diamonds || s == Hearts
}

// Rank is the face value of a card. Aces are high; the evaluator treats
// them as low only inside the wheel straight.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var rankNames = map[Rank]string{
	Two: "Two", Three: "Three", Four: "Four", Five: "Five", Six: "Six",
	Seven: "Seven", Eight: "Eight", Nine: "Nine", Ten: "Ten",
	Jack: "Jack", Queen: "Queen", King: "King", Ace: "Ace",
}

func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	}
	return "?"
}

// Letter returns the single-character rank code used in compact
// notation, with "T" for ten.
func (r Rank) Letter() string {
	if r == Ten {
		return "T"
	}
	return r.String()
}

// Name returns the spoken name of the rank, e.g. "Queen".
func (r Rank) Name() string {
	if n, ok := rankNames[r]; ok {
		return n
	}
	return "?"
}

// Card is a single playing card. The zero value is not a valid card.
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Compact returns the two-character form used by hand history formats,
// e.g. "As" or "Th".
func (c Card) Compact() string {
	return c.Rank.Letter() + c.Suit.Letter()
}

// Parse converts compact notation into a Card. It accepts "As", "th",
// "10c" and the like, case-insensitively.
func Parse(s string) (Card, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if len(in) < 2 {
		return Card{}, fmt.Errorf("deck: malformed card %q", s)
	}

	var suit Suit
	switch in[len(in)-1] {
	case 'c':
		suit = Clubs
	case 'd':
		suit = Diamonds
	case 'h':
		suit = Hearts
	case 's':
		suit = Spades
	default:
		return Card{}, fmt.Errorf("deck: unknown suit in %q", s)
	}

	var rank Rank
	switch in[:len(in)-1] {
	case "2":
		rank = Two
	case "3":
		rank = Three
	case "4":
		rank = Four
	case "5":
		rank = Five
	case "6":
		rank = Six
	case "7":
		rank = Seven
	case "8":
		rank = Eight
	case "9":
		rank = Nine
	case "10", "t":
		rank = Ten
	case "j":
		rank = Jack
	case "q":
		rank = Queen
	case "k":
		rank = King
	case "a":
		rank = Ace
	default:
		return Card{}, fmt.Errorf("deck: unknown rank in %q", s)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// ParseAll parses a whitespace-separated list of cards.
func ParseAll(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := Parse(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParse is Parse for known-good literals; it panics on error.
// Intended for tests and stacked decks.
func MustParse(s string) Card {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// MustParseAll is ParseAll for known-good literals; it panics on error.
func MustParseAll(s string) []Card {
	cards, err := ParseAll(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// Format renders a hand of cards as a single string, e.g. "A♠ K♦".
func Format(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
