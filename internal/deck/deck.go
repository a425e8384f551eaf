package deck

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyDeck is returned when a deal asks for more cards than remain.
var ErrEmptyDeck = errors.New("deck: no cards remaining")

// Size is the number of cards in a full deck.
const Size = 52

// Deck is a sequence of cards dealt from the front. It is not safe for
// concurrent use.
type Deck struct {
	cards []Card
	next  int
	rng   *rand.Rand
}

// New returns a full 52-card deck shuffled with rng. It panics if rng
// is nil; callers own seeding so that hands stay reproducible.
func New(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("deck: nil rng")
	}
	d := &Deck{cards: make([]Card, 0, Size), rng: rng}
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, Card{Rank: rank, Suit: suit})
		}
	}
	d.shuffle()
	return d
}

// NewOrdered returns a deck that deals exactly the given cards in the
// given order and never shuffles. Reset rewinds it to the first card.
// Intended for tests and replays.
func NewOrdered(cards ...Card) *Deck {
	cp := make([]Card, len(cards))
	copy(cp, cards)
	return &Deck{cards: cp}
}

func (d *Deck) shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	d.next = 0
}

// Deal removes and returns the top card.
func (d *Deck) Deal() (Card, error) {
	if d.next >= len(d.cards) {
		return Card{}, ErrEmptyDeck
	}
	c := d.cards[d.next]
	d.next++
	return c, nil
}

// DealN removes and returns the top n cards. If fewer than n remain it
// returns ErrEmptyDeck and deals nothing.
func (d *Deck) DealN(n int) ([]Card, error) {
	if n < 0 {
		panic("deck: negative deal count")
	}
	if len(d.cards)-d.next < n {
		return nil, ErrEmptyDeck
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining reports how many cards are left to deal.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Reset returns all dealt cards and reshuffles. Ordered decks rewind
// without changing their order.
func (d *Deck) Reset() {
	if d.rng == nil {
		d.next = 0
		return
	}
	d.shuffle()
}
