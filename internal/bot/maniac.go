package bot

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/game"
)

// Maniac is an extremely aggressive bot. Given the chance to bet it
// usually does, shoving outright when short; facing a bet it mostly
// raises or calls and only occasionally folds.
type Maniac struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewManiac creates a new Maniac instance. rng must not be nil.
func NewManiac(rng *rand.Rand, logger *log.Logger) *Maniac {
	if rng == nil {
		panic("bot: nil rng")
	}
	return &Maniac{rng: rng, logger: logger.WithPrefix("maniac")}
}

func (m *Maniac) MakeDecision(state game.TableState, valid []game.ValidAction) game.Decision {
	raise, hasRaise := find(game.Raise, valid)
	hasAllIn := has(game.AllIn, valid)

	if has(game.Check, valid) {
		if m.rng.Float64() < 0.85 {
			short := state.Hero().Chips <= 20*state.BigBlind
			if short || m.rng.Float64() < 0.3 {
				if hasAllIn {
					return m.decide(state, game.Decision{Action: game.AllIn}, "shoving")
				}
			}
			if hasRaise {
				// Bet towards the top of the legal range.
				amount := raise.MinAmount + (raise.MaxAmount-raise.MinAmount)*3/4
				return m.decide(state, game.Decision{Action: game.Raise, Amount: amount}, "betting big")
			}
		}
		return m.decide(state, game.Decision{Action: game.Check}, "trapping")
	}

	roll := m.rng.Float64()
	if roll < 0.4 {
		if hasAllIn {
			return m.decide(state, game.Decision{Action: game.AllIn}, "shoving over the bet")
		}
		if hasRaise {
			return m.decide(state, game.Decision{Action: game.Raise, Amount: raise.MaxAmount}, "raising the roof")
		}
	}
	if roll < 0.8 && has(game.Call, valid) {
		return m.decide(state, game.Decision{Action: game.Call}, "peeling")
	}
	return m.decide(state, game.Decision{Action: game.Fold}, "rare fold")
}

func (m *Maniac) decide(state game.TableState, d game.Decision, reason string) game.Decision {
	logDecision(m.logger, "maniac", state, d, reason)
	return d
}
