// Package phh exports finished hands as PHH documents, the TOML hand
// history format the wider poker tooling ecosystem reads. One file per
// hand; writes are atomic.
package phh

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/fileutil"
	"github.com/lox/holdem/internal/game"
)

// FromHistory converts a finished hand history into PHH form.
func FromHistory(hh *game.HandHistory) *Hand {
	n := len(hh.Players)

	blinds := make([]int, n)
	sb, bb := game.BlindSeats(hh.Button, n)
	blinds[sb] = hh.SmallBlind
	blinds[bb] = hh.BigBlind

	seats := make([]int, n)
	starting := make([]int, n)
	players := make([]string, n)
	for i, p := range hh.Players {
		seats[i] = i + 1
		starting[i] = p.Chips
		players[i] = p.Name
	}

	finishing := append([]int(nil), starting...)
	winnings := make([]int, n)
	if hh.Result != nil {
		for _, d := range hh.Result.Deltas {
			finishing[d.Seat] += d.Net
		}
		for _, w := range hh.Result.Winners {
			winnings[w.Seat] += w.Amount
		}
	}

	start := hh.Start.UTC()
	return &Hand{
		Variant:           "NT",
		SeatCount:         n,
		Seats:             seats,
		Antes:             make([]int, n),
		BlindsOrStraddles: blinds,
		MinBet:            hh.BigBlind,
		StartingStacks:    starting,
		FinishingStacks:   finishing,
		Winnings:          winnings,
		Actions:           buildActions(hh),
		Players:           players,
		HandID:            hh.HandID,
		Time:              start.Format("15:04:05"),
		TimeZone:          "UTC",
		Day:               start.Day(),
		Month:             int(start.Month()),
		Year:              start.Year(),
	}
}

// buildActions renders the PHH action list: hole card deals, then the
// betting actions with board deals interleaved at street boundaries.
// Blind posts are forced bets and never appear. The current bet is
// tracked so calls for less (all-in under the bet) become cc rather
// than an impossible cbr.
func buildActions(hh *game.HandHistory) []string {
	out := make([]string, 0, len(hh.Players)+len(hh.Actions)+3)

	for _, p := range hh.Players {
		out = append(out, fmt.Sprintf("d dh p%d %s", p.Seat+1, cards(hh.HoleCards[p.Seat])))
	}

	street := game.PreFlop
	bet := hh.BigBlind
	advance := func(to game.Street) {
		for street < to {
			street++
			switch street {
			case game.Flop:
				out = append(out, "d db "+cards(hh.Board[:3]))
			case game.Turn:
				out = append(out, "d db "+cards(hh.Board[3:4]))
			case game.River:
				out = append(out, "d db "+cards(hh.Board[4:5]))
			}
			bet = 0
		}
	}

	for _, rec := range hh.Actions {
		advance(rec.Street)
		seat := fmt.Sprintf("p%d", rec.Seat+1)
		switch {
		case rec.Action == game.Fold:
			out = append(out, seat+" f")
		case rec.To > bet:
			out = append(out, fmt.Sprintf("%s cbr %d", seat, rec.To))
			bet = rec.To
		default:
			out = append(out, seat+" cc")
		}
	}

	// An all-in runout deals board cards after the last action.
	switch len(hh.Board) {
	case 3:
		advance(game.Flop)
	case 4:
		advance(game.Turn)
	case 5:
		advance(game.River)
	}

	return out
}

func cards(cs []deck.Card) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(c.Compact())
	}
	return b.String()
}

// Encode writes the hand to w in PHH TOML format.
func Encode(w io.Writer, hand *Hand) error {
	if hand == nil {
		return fmt.Errorf("phh: hand is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(hand *Hand) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile atomically writes the hand to path.
func WriteFile(path string, hand *Hand) error {
	data, err := EncodeToBytes(hand)
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, data, 0o644)
}

// DirSink writes one <hand id>.phh file per finished hand into a
// directory. It implements game.HistorySink.
type DirSink struct {
	dir string
}

// NewDirSink creates the directory if needed and returns a sink
// writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("phh: create sink dir: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// WriteHand exports one hand history.
func (s *DirSink) WriteHand(hh *game.HandHistory) error {
	return WriteFile(filepath.Join(s.dir, hh.HandID+".phh"), FromHistory(hh))
}
