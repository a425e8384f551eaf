package bot

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func testState(chips, bet, currentBet int) game.TableState {
	return game.TableState{
		HandID:     "test",
		Street:     game.Flop,
		Pot:        30,
		CurrentBet: currentBet,
		MinRaise:   10,
		SmallBlind: 5,
		BigBlind:   10,
		Players: []game.PlayerState{
			{Seat: 0, Name: "hero", Chips: chips, Bet: bet},
			{Seat: 1, Name: "villain", Chips: 1000},
		},
		Acting: 0,
	}
}

// The three action menus the engine actually produces: free to act,
// facing a bet, and facing a short all-in that did not reopen betting.
var (
	freeActions = []game.ValidAction{
		{Action: game.Fold},
		{Action: game.Check},
		{Action: game.Raise, MinAmount: 20, MaxAmount: 1000},
		{Action: game.AllIn, MinAmount: 1000, MaxAmount: 1000},
	}
	facingBet = []game.ValidAction{
		{Action: game.Fold},
		{Action: game.Call, MinAmount: 50, MaxAmount: 50},
		{Action: game.Raise, MinAmount: 100, MaxAmount: 1000},
		{Action: game.AllIn, MinAmount: 1000, MaxAmount: 1000},
	}
	lockedBet = []game.ValidAction{
		{Action: game.Fold},
		{Action: game.Call, MinAmount: 20, MaxAmount: 20},
	}
)

func assertLegal(t *testing.T, d game.Decision, valid []game.ValidAction) {
	t.Helper()
	va, ok := find(d.Action, valid)
	if !ok {
		t.Fatalf("decision %v not in valid set %v", d.Action, valid)
	}
	if d.Action == game.Raise && (d.Amount < va.MinAmount || d.Amount > va.MaxAmount) {
		t.Fatalf("raise to %d outside [%d, %d]", d.Amount, va.MinAmount, va.MaxAmount)
	}
}

func TestFolder(t *testing.T) {
	t.Parallel()
	f := NewFolder(testLogger())

	if d := f.MakeDecision(testState(1000, 0, 0), freeActions); d.Action != game.Check {
		t.Errorf("free: got %v, want check", d.Action)
	}
	if d := f.MakeDecision(testState(1000, 0, 50), facingBet); d.Action != game.Fold {
		t.Errorf("facing bet: got %v, want fold", d.Action)
	}
}

func TestCaller(t *testing.T) {
	t.Parallel()
	c := NewCaller(testLogger())

	if d := c.MakeDecision(testState(1000, 0, 0), freeActions); d.Action != game.Check {
		t.Errorf("free: got %v, want check", d.Action)
	}
	if d := c.MakeDecision(testState(1000, 0, 50), facingBet); d.Action != game.Call {
		t.Errorf("facing bet: got %v, want call", d.Action)
	}

	// When the call itself is the whole stack the engine offers all-in
	// instead of a raise; the caller takes it.
	shortMenu := []game.ValidAction{
		{Action: game.Fold},
		{Action: game.Call, MinAmount: 40, MaxAmount: 40},
		{Action: game.AllIn, MinAmount: 60, MaxAmount: 60},
	}
	if d := c.MakeDecision(testState(40, 20, 100), shortMenu); d.Action != game.Call {
		t.Errorf("short: got %v, want call", d.Action)
	}
}

func TestRandomStaysLegal(t *testing.T) {
	t.Parallel()
	r := NewRandom(randutil.New(1), testLogger())

	menus := [][]game.ValidAction{freeActions, facingBet, lockedBet}
	for i := 0; i < 500; i++ {
		menu := menus[i%len(menus)]
		assertLegal(t, r.MakeDecision(testState(1000, 0, 50), menu), menu)
	}
}

func TestManiacStaysLegal(t *testing.T) {
	t.Parallel()
	m := NewManiac(randutil.New(2), testLogger())

	menus := [][]game.ValidAction{freeActions, facingBet, lockedBet}
	for i := 0; i < 500; i++ {
		menu := menus[i%len(menus)]
		assertLegal(t, m.MakeDecision(testState(1000, 0, 50), menu), menu)
	}
}

func TestManiacNeverFoldsWhenCheckIsFree(t *testing.T) {
	t.Parallel()
	m := NewManiac(randutil.New(3), testLogger())

	for i := 0; i < 500; i++ {
		if d := m.MakeDecision(testState(1000, 0, 0), freeActions); d.Action == game.Fold {
			t.Fatal("maniac folded a free hand")
		}
	}
}

func TestManiacOnlyCallsOrFoldsWhenBettingLocked(t *testing.T) {
	t.Parallel()
	m := NewManiac(randutil.New(4), testLogger())

	for i := 0; i < 500; i++ {
		d := m.MakeDecision(testState(1000, 100, 120), lockedBet)
		if d.Action != game.Call && d.Action != game.Fold {
			t.Fatalf("got %v with betting locked", d.Action)
		}
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds() {
		if _, err := New(kind, randutil.New(1), testLogger()); err != nil {
			t.Errorf("New(%q): %v", kind, err)
		}
	}
	if _, err := New("gto-wizard", randutil.New(1), testLogger()); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestBotTableConservesChips(t *testing.T) {
	t.Parallel()

	rng := randutil.New(7)
	e := game.NewEngine(rng, 5, 10, game.WithHandLimit(40))
	e.AddPlayer("folder", 500, NewFolder(testLogger()))
	e.AddPlayer("caller", 500, NewCaller(testLogger()))
	e.AddPlayer("random", 500, NewRandom(randutil.New(8), testLogger()))
	e.AddPlayer("maniac", 500, NewManiac(randutil.New(9), testLogger()))

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	total := 0
	for _, s := range res.Standings {
		total += s.Chips
	}
	if total != 2000 {
		t.Fatalf("chip total = %d, want 2000", total)
	}
}
