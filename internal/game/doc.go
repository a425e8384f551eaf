// Package game implements the core Texas Hold'em logic.
//
// The main type is HandState, which manages a single hand from blind
// posting through showdown: players, betting rounds, pot and side pot
// accounting, and winner determination. Engine sits above it and runs
// multi-hand sessions with button rotation and player elimination.
//
// # Basic Usage
//
// Create a hand and feed it decisions until it completes:
//
//	rng := randutil.New(42)
//	h, err := game.NewHand(rng, []string{"Alice", "Bob", "Charlie"}, 0, 5, 10)
//	for !h.Complete() {
//	    valid := h.ValidActions()
//	    err := h.Act(h.ActivePlayer, game.Call, 0)
//	    // ...
//	}
//	result := h.Result()
//
// # Deterministic Testing
//
// Randomness is always injected. A fixed seed reproduces the exact
// shuffle, and WithDeck accepts a stacked deck for full control:
//
//	h, _ := game.NewHand(rng, players, 0, 5, 10,
//	    game.WithDeck(deck.NewOrdered(cards...)))
//
// # Architecture
//
// HandState delegates to specialized components:
//   - BettingRound: bet matching, minimum raise, and action tracking
//   - PotManager: pot collection and side pot tiers from all-in levels
//   - deck.Deck: shuffled cards with injected RNG
//   - evaluator.Evaluate: hand strength at showdown
//
// Each hand is independent state, so many sessions can run concurrently
// as long as each has its own RNG.
package game
