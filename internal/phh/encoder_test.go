package phh_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/phh"
)

// threeWayHistory is a played-out hand: limped preflop, flop bet and a
// fold, checked turn, bet and call on the river, showdown.
func threeWayHistory() *game.HandHistory {
	rec := func(seat int, street game.Street, action game.Action, amount, to int) game.ActionRecord {
		return game.ActionRecord{Seat: seat, Street: street, Action: action, Amount: amount, To: to}
	}
	return &game.HandHistory{
		HandID:     "hand-42",
		Start:      time.Date(2026, time.March, 14, 15, 22, 0, 0, time.UTC),
		Button:     0,
		SmallBlind: 5,
		BigBlind:   10,
		Players: []game.HistoryPlayer{
			{Seat: 0, Name: "Alice", Chips: 1000},
			{Seat: 1, Name: "Bob", Chips: 1000},
			{Seat: 2, Name: "Carol", Chips: 1000},
		},
		HoleCards: map[int][]deck.Card{
			0: deck.MustParseAll("As Ks"),
			1: deck.MustParseAll("Qh Qd"),
			2: deck.MustParseAll("7c 2d"),
		},
		Board: deck.MustParseAll("2s 5s 9s 3h 8d"),
		Actions: []game.ActionRecord{
			rec(0, game.PreFlop, game.Call, 10, 10),
			rec(1, game.PreFlop, game.Call, 5, 10),
			rec(2, game.PreFlop, game.Check, 0, 10),
			rec(1, game.Flop, game.Check, 0, 0),
			rec(2, game.Flop, game.Check, 0, 0),
			rec(0, game.Flop, game.Raise, 20, 20),
			rec(1, game.Flop, game.Call, 20, 20),
			rec(2, game.Flop, game.Fold, 0, 0),
			rec(1, game.Turn, game.Check, 0, 0),
			rec(0, game.Turn, game.Check, 0, 0),
			rec(1, game.River, game.Check, 0, 0),
			rec(0, game.River, game.Raise, 50, 50),
			rec(1, game.River, game.Call, 50, 50),
		},
		Result: &game.HandResult{
			HandID:   "hand-42",
			PotTotal: 170,
			Showdown: true,
			Winners:  []game.WinnerInfo{{Seat: 0, Name: "Alice", Amount: 170}},
			Deltas: []game.PlayerDelta{
				{Seat: 0, Name: "Alice", Net: 90},
				{Seat: 1, Name: "Bob", Net: -80},
				{Seat: 2, Name: "Carol", Net: -10},
			},
		},
	}
}

func TestFromHistory(t *testing.T) {
	hand := phh.FromHistory(threeWayHistory())

	if hand.Variant != "NT" || hand.SeatCount != 3 {
		t.Errorf("header = %q/%d", hand.Variant, hand.SeatCount)
	}
	if !reflect.DeepEqual(hand.BlindsOrStraddles, []int{0, 5, 10}) {
		t.Errorf("blinds = %v", hand.BlindsOrStraddles)
	}
	if hand.MinBet != 10 {
		t.Errorf("min_bet = %d", hand.MinBet)
	}
	if !reflect.DeepEqual(hand.StartingStacks, []int{1000, 1000, 1000}) {
		t.Errorf("starting = %v", hand.StartingStacks)
	}
	if !reflect.DeepEqual(hand.FinishingStacks, []int{1090, 920, 990}) {
		t.Errorf("finishing = %v", hand.FinishingStacks)
	}
	if !reflect.DeepEqual(hand.Winnings, []int{170, 0, 0}) {
		t.Errorf("winnings = %v", hand.Winnings)
	}
	if !reflect.DeepEqual(hand.Players, []string{"Alice", "Bob", "Carol"}) {
		t.Errorf("players = %v", hand.Players)
	}
	if hand.Time != "15:22:00" || hand.Day != 14 || hand.Month != 3 || hand.Year != 2026 {
		t.Errorf("time = %s %d-%d-%d", hand.Time, hand.Year, hand.Month, hand.Day)
	}

	wantActions := []string{
		"d dh p1 AsKs",
		"d dh p2 QhQd",
		"d dh p3 7c2d",
		"p1 cc", "p2 cc", "p3 cc",
		"d db 2s5s9s",
		"p2 cc", "p3 cc", "p1 cbr 20", "p2 cc", "p3 f",
		"d db 3h",
		"p2 cc", "p1 cc",
		"d db 8d",
		"p2 cc", "p1 cbr 50", "p2 cc",
	}
	if !reflect.DeepEqual(hand.Actions, wantActions) {
		t.Errorf("actions =\n%v\nwant\n%v", hand.Actions, wantActions)
	}
}

func TestFromHistoryFoldWin(t *testing.T) {
	hh := &game.HandHistory{
		HandID:     "hand-7",
		Start:      time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC),
		Button:     0,
		SmallBlind: 5,
		BigBlind:   10,
		Players: []game.HistoryPlayer{
			{Seat: 0, Name: "Alice", Chips: 500},
			{Seat: 1, Name: "Bob", Chips: 500},
		},
		HoleCards: map[int][]deck.Card{
			0: deck.MustParseAll("Ah Kh"),
			1: deck.MustParseAll("2c 7d"),
		},
		Actions: []game.ActionRecord{
			{Seat: 0, Street: game.PreFlop, Action: game.Fold},
		},
		Result: &game.HandResult{
			PotTotal: 15,
			Winners:  []game.WinnerInfo{{Seat: 1, Name: "Bob", Amount: 15}},
			Deltas: []game.PlayerDelta{
				{Seat: 0, Name: "Alice", Net: -5},
				{Seat: 1, Name: "Bob", Net: 5},
			},
		},
	}

	hand := phh.FromHistory(hh)

	// Heads-up the button posts the small blind.
	if !reflect.DeepEqual(hand.BlindsOrStraddles, []int{5, 10}) {
		t.Errorf("blinds = %v", hand.BlindsOrStraddles)
	}
	wantActions := []string{"d dh p1 AhKh", "d dh p2 2c7d", "p1 f"}
	if !reflect.DeepEqual(hand.Actions, wantActions) {
		t.Errorf("actions = %v", hand.Actions)
	}
	if !reflect.DeepEqual(hand.FinishingStacks, []int{495, 505}) {
		t.Errorf("finishing = %v", hand.FinishingStacks)
	}
}

func TestFromHistoryAllInRunout(t *testing.T) {
	hh := &game.HandHistory{
		HandID:     "hand-9",
		Start:      time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC),
		Button:     0,
		SmallBlind: 5,
		BigBlind:   10,
		Players: []game.HistoryPlayer{
			{Seat: 0, Name: "Alice", Chips: 100},
			{Seat: 1, Name: "Bob", Chips: 60},
		},
		HoleCards: map[int][]deck.Card{
			0: deck.MustParseAll("As Ad"),
			1: deck.MustParseAll("Ks Kd"),
		},
		Board: deck.MustParseAll("2c 7h 9s 3d Jh"),
		Actions: []game.ActionRecord{
			{Seat: 0, Street: game.PreFlop, Action: game.AllIn, Amount: 95, To: 100},
			{Seat: 1, Street: game.PreFlop, Action: game.AllIn, Amount: 50, To: 60},
		},
		Result: &game.HandResult{
			PotTotal: 160,
			Showdown: true,
			Winners:  []game.WinnerInfo{{Seat: 0, Name: "Alice", Amount: 160}},
			Deltas: []game.PlayerDelta{
				{Seat: 0, Name: "Alice", Net: 60},
				{Seat: 1, Name: "Bob", Net: -60},
			},
		},
	}

	hand := phh.FromHistory(hh)

	// The shove is a raise; the shorter call-for-less is cc, and the
	// runout board deals trail the betting.
	wantActions := []string{
		"d dh p1 AsAd",
		"d dh p2 KsKd",
		"p1 cbr 100",
		"p2 cc",
		"d db 2c7h9s",
		"d db 3d",
		"d db Jh",
	}
	if !reflect.DeepEqual(hand.Actions, wantActions) {
		t.Errorf("actions = %v", hand.Actions)
	}
}

func TestEncodeGolden(t *testing.T) {
	hand := &phh.Hand{
		Variant:           "NT",
		SeatCount:         2,
		Seats:             []int{1, 2},
		Antes:             []int{0, 0},
		BlindsOrStraddles: []int{5, 10},
		MinBet:            10,
		StartingStacks:    []int{1000, 1000},
		FinishingStacks:   []int{1010, 990},
		Winnings:          []int{20, 0},
		Actions:           []string{"d dh p1 AhKh", "d dh p2 2c7d", "p1 cc", "p2 cc"},
		Players:           []string{"Alice", "Bob"},
		HandID:            "hand-1",
		Time:              "15:22:00",
		TimeZone:          "UTC",
		Day:               14,
		Month:             3,
		Year:              2026,
	}

	var buf bytes.Buffer
	if err := phh.Encode(&buf, hand); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := "" +
		"variant = \"NT\"\n" +
		"seat_count = 2\n" +
		"seats = [1, 2]\n" +
		"antes = [0, 0]\n" +
		"blinds_or_straddles = [5, 10]\n" +
		"min_bet = 10\n" +
		"starting_stacks = [1000, 1000]\n" +
		"finishing_stacks = [1010, 990]\n" +
		"winnings = [20, 0]\n" +
		"actions = [\"d dh p1 AhKh\", \"d dh p2 2c7d\", \"p1 cc\", \"p2 cc\"]\n" +
		"players = [\"Alice\", \"Bob\"]\n" +
		"hand = \"hand-1\"\n" +
		"time = \"15:22:00\"\n" +
		"time_zone = \"UTC\"\n" +
		"day = 14\n" +
		"month = 3\n" +
		"year = 2026\n"

	if got := buf.String(); got != want {
		t.Fatalf("Encode output mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func TestEncodeNilHand(t *testing.T) {
	if err := phh.Encode(&bytes.Buffer{}, nil); err == nil {
		t.Fatal("Encode accepted nil hand")
	}
}

func TestDirSinkWritesOneFilePerHand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hands")
	sink, err := phh.NewDirSink(dir)
	if err != nil {
		t.Fatalf("NewDirSink: %v", err)
	}

	if err := sink.WriteHand(threeWayHistory()); err != nil {
		t.Fatalf("WriteHand: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "hand-42.phh"))
	if err != nil {
		t.Fatalf("read exported hand: %v", err)
	}

	var decoded phh.Hand
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("exported hand is not valid TOML: %v", err)
	}
	if decoded.HandID != "hand-42" || decoded.Variant != "NT" {
		t.Errorf("decoded = %q/%q", decoded.HandID, decoded.Variant)
	}
	if len(decoded.Actions) != 19 {
		t.Errorf("actions = %d, want 19", len(decoded.Actions))
	}
}
