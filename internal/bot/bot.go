// Package bot provides the NPC decision agents: Folder, Caller, Random
// and Maniac. All of them satisfy game.Agent and only ever pick from the
// valid actions they are handed, so a table of bots never trips the
// engine's illegal-action handling.
package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/game"
)

// Kinds lists the bot names New accepts.
func Kinds() []string {
	return []string{"folder", "caller", "random", "maniac"}
}

// New builds a bot by name. The stochastic bots draw from rng; the
// deterministic ones ignore it.
func New(kind string, rng *rand.Rand, logger *log.Logger) (game.Agent, error) {
	switch strings.ToLower(kind) {
	case "folder":
		return NewFolder(logger), nil
	case "caller":
		return NewCaller(logger), nil
	case "random":
		return NewRandom(rng, logger), nil
	case "maniac":
		return NewManiac(rng, logger), nil
	default:
		return nil, fmt.Errorf("unknown bot %q (valid: %s)", kind, strings.Join(Kinds(), ", "))
	}
}

func has(action game.Action, valid []game.ValidAction) bool {
	_, ok := find(action, valid)
	return ok
}

func find(action game.Action, valid []game.ValidAction) (game.ValidAction, bool) {
	for _, va := range valid {
		if va.Action == action {
			return va, true
		}
	}
	return game.ValidAction{}, false
}

func logDecision(logger *log.Logger, name string, state game.TableState, d game.Decision, reason string) {
	logger.Debug("bot decision",
		"bot", name,
		"hand", state.HandID,
		"street", state.Street,
		"toCall", state.ToCall(),
		"action", d.Action,
		"amount", d.Amount,
		"reason", reason)
}
