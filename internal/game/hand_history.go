package game

import (
	"time"

	"github.com/lox/holdem/internal/deck"
)

// ActionRecord is a single action in a hand's history. Amount is the
// chips the action moved; To is the street commitment afterwards.
type ActionRecord struct {
	Seat   int
	Name   string
	Street Street
	Action Action
	Amount int
	To     int
	Pot    int
	Time   time.Time
}

// HistoryPlayer captures a seat at the start of a hand.
type HistoryPlayer struct {
	Seat  int
	Name  string
	Chips int
}

// HandHistory accumulates everything needed to replay or export a hand:
// the table setup, every hole card, every action, the board, and the
// outcome. HoleCards is keyed by seat and includes mucked hands, so
// exports must decide for themselves what to reveal.
type HandHistory struct {
	HandID     string
	Start      time.Time
	End        time.Time
	Button     int
	SmallBlind int
	BigBlind   int
	Players    []HistoryPlayer
	HoleCards  map[int][]deck.Card
	Actions    []ActionRecord
	Board      []deck.Card
	Result     *HandResult
}

func newHandHistory(h *HandState) *HandHistory {
	players := make([]HistoryPlayer, len(h.Players))
	for i, p := range h.Players {
		players[i] = HistoryPlayer{Seat: p.Seat, Name: p.Name, Chips: p.Chips}
	}
	return &HandHistory{
		HandID:     h.ID,
		Start:      time.Now(),
		Button:     h.Button,
		SmallBlind: h.SmallBlind,
		BigBlind:   h.BigBlind,
		Players:    players,
		HoleCards:  make(map[int][]deck.Card),
	}
}

func (hh *HandHistory) record(rec ActionRecord) {
	hh.Actions = append(hh.Actions, rec)
}

func (hh *HandHistory) finish(h *HandState) {
	hh.End = time.Now()
	hh.Board = append([]deck.Card(nil), h.Board...)
	hh.Result = h.result
}

// HistorySink receives completed hand histories, typically to persist
// them in an export format.
type HistorySink interface {
	WriteHand(hh *HandHistory) error
}
