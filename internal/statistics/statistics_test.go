package statistics

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/bot"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestSampleMoments(t *testing.T) {
	t.Parallel()

	var s Sample
	for _, v := range []float64{1, 2, 3, 4, 5} {
		s.Add(v)
	}

	approx(t, "Mean", s.Mean(), 3)
	approx(t, "Variance", s.Variance(), 2.5)
	approx(t, "StdDev", s.StdDev(), math.Sqrt(2.5))
	approx(t, "StdError", s.StdError(), math.Sqrt(0.5))
	approx(t, "Median", s.Median(), 3)

	low, high := s.ConfidenceInterval95()
	approx(t, "CI low", low, 3-1.96*math.Sqrt(0.5))
	approx(t, "CI high", high, 3+1.96*math.Sqrt(0.5))
}

func TestSamplePercentiles(t *testing.T) {
	t.Parallel()

	var s Sample
	for _, v := range []float64{4, 1, 3, 2} {
		s.Add(v)
	}

	approx(t, "Median", s.Median(), 2.5)
	approx(t, "P0", s.Percentile(0), 1)
	approx(t, "P100", s.Percentile(1), 4)
	approx(t, "P25", s.Percentile(0.25), 1.75)

	var empty Sample
	approx(t, "empty median", empty.Median(), 0)
}

func showdownHand() *game.HandResult {
	return &game.HandResult{
		HandID:   "h1",
		PotTotal: 600,
		Showdown: true,
		Winners:  []game.WinnerInfo{{Seat: 0, Name: "a", Amount: 600}},
		Deltas: []game.PlayerDelta{
			{Seat: 0, Name: "a", Net: 400},
			{Seat: 1, Name: "b", Net: -100},
			{Seat: 2, Name: "c", Net: -300},
		},
	}
}

func foldHand() *game.HandResult {
	return &game.HandResult{
		HandID:   "h2",
		PotTotal: 15,
		Showdown: false,
		Winners:  []game.WinnerInfo{{Seat: 1, Name: "b", Amount: 15}},
		Deltas: []game.PlayerDelta{
			{Seat: 0, Name: "a", Net: -5},
			{Seat: 1, Name: "b", Net: 15},
			{Seat: 2, Name: "c", Net: -10},
		},
	}
}

func TestObserveHandAggregates(t *testing.T) {
	t.Parallel()

	s := New(10)
	s.ObserveHand(showdownHand())
	s.ObserveHand(foldHand())

	if s.Hands != 2 || s.ShowdownHands != 1 || s.FoldHands != 1 {
		t.Fatalf("hand counts = %d/%d/%d", s.Hands, s.ShowdownHands, s.FoldHands)
	}
	if s.MaxPotChips != 600 {
		t.Errorf("MaxPotChips = %d", s.MaxPotChips)
	}
	approx(t, "MaxPotBB", s.MaxPotBB(), 60)
	if s.BigPots != 1 {
		t.Errorf("BigPots = %d", s.BigPots)
	}

	a := s.Player("a")
	if a.Hands != 2 || a.Wins != 1 || a.ShowdownWins != 1 || a.FoldWins != 0 {
		t.Errorf("a = %+v", a)
	}
	approx(t, "a mean bb", a.NetBB.Mean(), (40-0.5)/2)

	b := s.Player("b")
	if b.Wins != 1 || b.FoldWins != 1 {
		t.Errorf("b = %+v", b)
	}

	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestObserveSessionRecordsBusts(t *testing.T) {
	t.Parallel()

	s := New(10)
	s.ObserveSession(&game.SessionResult{
		Hands: 12,
		Standings: []game.Standing{
			{Seat: 1, Name: "b", Chips: 3000},
			{Seat: 0, Name: "a", Chips: 0, BustedHand: 9},
			{Seat: 2, Name: "c", Chips: 0, BustedHand: 4},
		},
	})

	if s.Sessions != 1 {
		t.Errorf("Sessions = %d", s.Sessions)
	}
	if a := s.Player("a"); a.Busts != 1 || len(a.BustHands) != 1 || a.BustHands[0] != 9 {
		t.Errorf("a = %+v", a)
	}
	if b := s.Player("b"); b.Busts != 0 {
		t.Errorf("b busted: %+v", b)
	}
}

func TestMergeMatchesSequential(t *testing.T) {
	t.Parallel()

	sequential := New(10)
	left, right := New(10), New(10)

	for i := 0; i < 4; i++ {
		sequential.ObserveHand(showdownHand())
		left.ObserveHand(showdownHand())
	}
	for i := 0; i < 3; i++ {
		sequential.ObserveHand(foldHand())
		right.ObserveHand(foldHand())
	}

	merged := New(10)
	merged.Merge(left)
	merged.Merge(right)

	if merged.Hands != sequential.Hands {
		t.Fatalf("Hands = %d, want %d", merged.Hands, sequential.Hands)
	}
	if merged.MaxPotChips != sequential.MaxPotChips || merged.BigPots != sequential.BigPots {
		t.Errorf("pots = %d/%d, want %d/%d",
			merged.MaxPotChips, merged.BigPots, sequential.MaxPotChips, sequential.BigPots)
	}
	for _, want := range sequential.Players() {
		got := merged.Player(want.Name)
		if got.Hands != want.Hands || got.Wins != want.Wins {
			t.Errorf("%s: %d/%d, want %d/%d", want.Name, got.Hands, got.Wins, want.Hands, want.Wins)
		}
		approx(t, want.Name+" mean", got.NetBB.Mean(), want.NetBB.Mean())
		approx(t, want.Name+" stddev", got.NetBB.StdDev(), want.NetBB.StdDev())
	}
	if err := merged.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestMergePanicsOnBigBlindMismatch(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	New(10).Merge(New(20))
}

func TestValidateDetectsCorruption(t *testing.T) {
	t.Parallel()

	s := New(10)
	s.ObserveHand(showdownHand())
	s.Player("a").Wins++

	if err := s.Validate(); err == nil {
		t.Fatal("Validate accepted corrupted wins")
	}
}

func TestStatisticsFromLiveSession(t *testing.T) {
	t.Parallel()

	logger := log.New(io.Discard)
	stats := New(10)

	bus := game.NewEventBus()
	bus.Subscribe(stats)

	e := game.NewEngine(randutil.New(7), 5, 10, game.WithBus(bus), game.WithHandLimit(25))
	for _, name := range []string{"a", "b", "c"} {
		e.AddPlayer(name, 500, bot.NewCaller(logger))
	}

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	stats.ObserveSession(res)

	if stats.Hands != res.Hands {
		t.Fatalf("observed %d hands, session played %d", stats.Hands, res.Hands)
	}
	if stats.Sessions != 1 {
		t.Errorf("Sessions = %d", stats.Sessions)
	}
	if got := len(stats.Players()); got != 3 {
		t.Errorf("players = %d, want 3", got)
	}
	if err := stats.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
