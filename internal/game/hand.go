package game

import (
	"time"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/evaluator"
)

// HandState is the full state of one hand. It is driven by Act calls
// for the seat due to act and is not safe for concurrent use; run each
// hand on a single goroutine.
type HandState struct {
	ID           string
	Players      []*Player
	Button       int
	Street       Street
	Board        []deck.Card
	Deck         *deck.Deck
	Betting      *BettingRound
	Pots         *PotManager
	ActivePlayer int // seat due to act, -1 when none
	SmallBlind   int
	BigBlind     int

	bus      EventBus
	history  *HandHistory
	expected int // chip total at hand start, for conservation checks
	result   *HandResult
}

// HandResult is the outcome of a completed hand.
type HandResult struct {
	HandID   string
	Board    []deck.Card
	Pots     []Pot // final tiers before payout
	PotTotal int
	Winners  []WinnerInfo
	Deltas   []PlayerDelta
	Showdown bool // false when everyone else folded
}

// WinnerInfo is one seat's winnings. Rank and HoleCards are only set
// when the hand reached showdown.
type WinnerInfo struct {
	Seat      int
	Name      string
	Amount    int
	Rank      evaluator.HandRank
	HoleCards []deck.Card
}

// PlayerDelta is a seat's net chip change over the hand.
type PlayerDelta struct {
	Seat int
	Name string
	Net  int
}

// Complete reports whether the hand has finished and Result is set.
func (h *HandState) Complete() bool {
	return h.result != nil
}

// Result returns the hand's outcome, or nil while it is still running.
func (h *HandState) Result() *HandResult {
	return h.result
}

// History returns the hand's accumulating history.
func (h *HandState) History() *HandHistory {
	return h.history
}

// Pot returns the live pot: collected tiers plus unswept street bets.
func (h *HandState) Pot() int {
	return h.Pots.Live(h.Players)
}

// Phase reports where the hand is in its lifecycle.
func (h *HandState) Phase() Phase {
	if h.result != nil {
		return PhaseComplete
	}
	switch h.Street {
	case PreFlop:
		return PhasePreFlop
	case Flop:
		return PhaseFlop
	case Turn:
		return PhaseTurn
	case River:
		return PhaseRiver
	}
	return PhaseShowdown
}

// Act applies one decision for seat. For Raise, amount is the total the
// street bet is raised to. Validation happens before any mutation, so a
// rejected action returns an IllegalActionError with the hand untouched
// and the same seat still due to act. Any other error is fatal.
func (h *HandState) Act(seat int, action Action, amount int) error {
	if h.Complete() {
		return illegal(seat, action, amount, "hand is complete")
	}
	if seat != h.ActivePlayer {
		return illegal(seat, action, amount, "seat %d is due to act", h.ActivePlayer)
	}
	p := h.Players[seat]
	toCall := h.Betting.CurrentBet - p.Bet

	switch action {
	case Fold:
		// Folding is always legal, even when checking is free.

	case Check:
		if toCall != 0 {
			return illegal(seat, action, amount, "facing a bet, must call %d", toCall)
		}

	case Call:
		if toCall <= 0 {
			return illegal(seat, action, amount, "nothing to call")
		}

	case Raise:
		maxTo := p.Bet + p.Chips
		if amount > maxTo {
			return &InsufficientStackError{Seat: seat, Required: amount - p.Bet, Stack: p.Chips}
		}
		if amount <= h.Betting.CurrentBet {
			return illegal(seat, action, amount, "raise must exceed current bet of %d", h.Betting.CurrentBet)
		}
		if h.Betting.Acted[seat] {
			return illegal(seat, action, amount, "betting was not reopened")
		}
		if amount < h.Betting.CurrentBet+h.Betting.MinRaise && amount < maxTo {
			return illegal(seat, action, amount, "minimum raise is to %d", h.Betting.CurrentBet+h.Betting.MinRaise)
		}

	case AllIn:
		if p.Bet+p.Chips > h.Betting.CurrentBet && h.Betting.Acted[seat] {
			return illegal(seat, action, amount, "betting was not reopened")
		}

	default:
		return illegal(seat, action, amount, "unknown action")
	}

	h.apply(p, action, amount)
	return h.advance(seat)
}

// apply mutates state for an already validated action.
func (h *HandState) apply(p *Player, action Action, amount int) {
	h.Betting.MarkActed(p.Seat)

	var paid int
	switch action {
	case Fold:
		p.Folded = true
	case Call:
		paid = p.pay(h.Betting.CurrentBet - p.Bet)
	case Raise:
		paid = p.pay(amount - p.Bet)
		h.raiseTo(p.Seat, p.Bet)
	case AllIn:
		paid = p.pay(p.Chips)
		if p.Bet > h.Betting.CurrentBet {
			h.raiseTo(p.Seat, p.Bet)
		}
	}

	rec := ActionRecord{
		Seat:   p.Seat,
		Name:   p.Name,
		Street: h.Street,
		Action: action,
		Amount: paid,
		To:     p.Bet,
		Pot:    h.Pot(),
		Time:   time.Now(),
	}
	h.history.record(rec)
	h.publish(NewPlayerActionEvent(h.ID, p.Seat, p.Name, h.Street, action, paid, p.Bet, h.Pot()))
}

// raiseTo moves the current bet up to a validated raise total. A full
// raise resets the minimum increment and reopens betting for everyone;
// a short all-in below the increment moves the bet without reopening.
func (h *HandState) raiseTo(seat, to int) {
	increment := to - h.Betting.CurrentBet
	if increment >= h.Betting.MinRaise {
		h.Betting.MinRaise = increment
		h.Betting.reopen()
	}
	h.Betting.CurrentBet = to
	h.Betting.LastRaiser = seat
	h.Betting.MarkActed(seat)
}

// advance moves the turn on after an action, closing the street or the
// hand when nothing is left to do.
func (h *HandState) advance(seat int) error {
	if h.remaining() == 1 {
		return h.finishFold()
	}
	h.ActivePlayer = h.nextActive(seat + 1)
	if !h.Betting.Complete(h.Players) {
		return nil
	}
	return h.endStreet()
}

// endStreet sweeps bets into the pot and deals the next street. When
// nobody can act it keeps dealing until showdown.
func (h *HandState) endStreet() error {
	h.Pots.Collect(h.Players)
	if err := h.Pots.CheckConservation(h.Players, h.expected, h.ID); err != nil {
		return err
	}

	for {
		switch h.Street {
		case PreFlop:
			if err := h.dealBoard(3); err != nil {
				return err
			}
			h.Street = Flop
		case Flop:
			if err := h.dealBoard(1); err != nil {
				return err
			}
			h.Street = Turn
		case Turn:
			if err := h.dealBoard(1); err != nil {
				return err
			}
			h.Street = River
		case River:
			h.Street = Showdown
			return h.finishShowdown()
		}

		h.Betting.Reset()
		h.ActivePlayer = h.nextActive(h.Button + 1)
		h.publish(NewStreetChangeEvent(h.ID, h.Street, h.Board, h.Pots.Pots()))
		if h.ActivePlayer != -1 {
			return nil
		}
	}
}

// finishFold ends the hand with one player left. The pot is awarded
// without showing or evaluating any cards.
func (h *HandState) finishFold() error {
	winner := -1
	for _, p := range h.Players {
		if !p.Folded {
			winner = p.Seat
			break
		}
	}

	h.Pots.Collect(h.Players)
	pots := h.Pots.Pots()
	total := h.Pots.Total()
	h.Pots.AwardAll(h.Players, winner)
	h.ActivePlayer = -1

	h.result = &HandResult{
		HandID:   h.ID,
		Board:    append([]deck.Card(nil), h.Board...),
		Pots:     pots,
		PotTotal: total,
		Winners: []WinnerInfo{{
			Seat:   winner,
			Name:   h.Players[winner].Name,
			Amount: total,
		}},
		Deltas: h.deltas(),
	}
	return h.finish()
}

// finishShowdown evaluates every live hand and pays each pot tier.
func (h *HandState) finishShowdown() error {
	h.ActivePlayer = -1

	ranks := make(map[int]evaluator.HandRank)
	var reveals []ShowdownHand
	for _, p := range h.Players {
		if p.Folded {
			continue
		}
		cards := make([]deck.Card, 0, len(p.HoleCards)+len(h.Board))
		cards = append(cards, p.HoleCards...)
		cards = append(cards, h.Board...)
		r := evaluator.Evaluate(cards)
		ranks[p.Seat] = r
		reveals = append(reveals, ShowdownHand{
			Seat:      p.Seat,
			Name:      p.Name,
			HoleCards: p.HoleCards,
			Rank:      r,
		})
	}
	h.publish(NewShowdownEvent(h.ID, h.Board, reveals))

	pots := h.Pots.Pots()
	total := h.Pots.Total()
	awards := h.Pots.Distribute(h.Players, ranks, h.Button)

	winners := make([]WinnerInfo, 0, len(awards))
	bySeat := make(map[int]int) // seat -> index into winners
	for _, a := range awards {
		if i, ok := bySeat[a.Seat]; ok {
			winners[i].Amount += a.Amount
			continue
		}
		p := h.Players[a.Seat]
		bySeat[a.Seat] = len(winners)
		winners = append(winners, WinnerInfo{
			Seat:      a.Seat,
			Name:      p.Name,
			Amount:    a.Amount,
			Rank:      ranks[a.Seat],
			HoleCards: p.HoleCards,
		})
	}

	h.result = &HandResult{
		HandID:   h.ID,
		Board:    append([]deck.Card(nil), h.Board...),
		Pots:     pots,
		PotTotal: total,
		Winners:  winners,
		Deltas:   h.deltas(),
		Showdown: true,
	}
	return h.finish()
}

// finish seals the history, verifies conservation one last time, and
// announces the result.
func (h *HandState) finish() error {
	h.history.finish(h)
	if err := h.Pots.CheckConservation(h.Players, h.expected, h.ID); err != nil {
		return err
	}
	h.publish(NewHandEndEvent(h.result))
	return nil
}

func (h *HandState) deltas() []PlayerDelta {
	deltas := make([]PlayerDelta, len(h.Players))
	for i, p := range h.Players {
		deltas[i] = PlayerDelta{
			Seat: p.Seat,
			Name: p.Name,
			Net:  p.Chips - h.history.Players[i].Chips,
		}
	}
	return deltas
}

func (h *HandState) dealBoard(n int) error {
	cards, err := h.Deck.DealN(n)
	if err != nil {
		return err
	}
	h.Board = append(h.Board, cards...)
	return nil
}

// ValidActions returns the legal actions for the seat due to act, or
// nil once the hand is complete.
func (h *HandState) ValidActions() []ValidAction {
	if h.Complete() || h.ActivePlayer < 0 {
		return nil
	}
	return h.validActionsFor(h.ActivePlayer)
}

func (h *HandState) validActionsFor(seat int) []ValidAction {
	p := h.Players[seat]
	br := h.Betting
	toCall := br.CurrentBet - p.Bet
	maxTo := p.Bet + p.Chips

	actions := []ValidAction{{Action: Fold}}

	if toCall == 0 {
		actions = append(actions, ValidAction{Action: Check})
	} else {
		call := min(toCall, p.Chips)
		actions = append(actions, ValidAction{Action: Call, MinAmount: call, MaxAmount: call})
	}

	switch {
	case maxTo > br.CurrentBet && !br.Acted[seat]:
		minTo := min(br.CurrentBet+br.MinRaise, maxTo)
		actions = append(actions,
			ValidAction{Action: Raise, MinAmount: minTo, MaxAmount: maxTo},
			ValidAction{Action: AllIn, MinAmount: maxTo, MaxAmount: maxTo})
	case toCall >= p.Chips:
		// Shoving is just a call for the rest of the stack.
		actions = append(actions, ValidAction{Action: AllIn, MinAmount: maxTo, MaxAmount: maxTo})
	}
	return actions
}

// Snapshot builds the immutable view of the hand for one seat. Only the
// viewer's own hole cards are included.
func (h *HandState) Snapshot(viewer int) TableState {
	players := make([]PlayerState, len(h.Players))
	for i, p := range h.Players {
		players[i] = PlayerState{
			Seat:     p.Seat,
			Name:     p.Name,
			Chips:    p.Chips,
			Bet:      p.Bet,
			TotalBet: p.TotalBet,
			Folded:   p.Folded,
			AllIn:    p.AllInFlag,
		}
		if i == viewer {
			players[i].HoleCards = append([]deck.Card(nil), p.HoleCards...)
		}
	}
	return TableState{
		HandID:     h.ID,
		Street:     h.Street,
		Board:      append([]deck.Card(nil), h.Board...),
		Pot:        h.Pot(),
		CurrentBet: h.Betting.CurrentBet,
		MinRaise:   h.Betting.MinRaise,
		SmallBlind: h.SmallBlind,
		BigBlind:   h.BigBlind,
		Button:     h.Button,
		Players:    players,
		Acting:     h.ActivePlayer,
	}
}

func (h *HandState) remaining() int {
	n := 0
	for _, p := range h.Players {
		if !p.Folded {
			n++
		}
	}
	return n
}

func (h *HandState) nextActive(from int) int {
	n := len(h.Players)
	for i := 0; i < n; i++ {
		seat := (from + i) % n
		if h.Players[seat].IsActive() {
			return seat
		}
	}
	return -1
}

func (h *HandState) publish(event GameEvent) {
	if h.bus != nil {
		h.bus.Publish(event)
	}
}
