package bot

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/game"
)

// Random picks a uniform random legal action. Raise amounts are uniform
// across the legal range.
type Random struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandom creates a new Random instance. rng must not be nil.
func NewRandom(rng *rand.Rand, logger *log.Logger) *Random {
	if rng == nil {
		panic("bot: nil rng")
	}
	return &Random{rng: rng, logger: logger.WithPrefix("random")}
}

func (r *Random) MakeDecision(state game.TableState, valid []game.ValidAction) game.Decision {
	va := valid[r.rng.IntN(len(valid))]

	amount := va.MinAmount
	if va.Action == game.Raise && va.MaxAmount > va.MinAmount {
		amount = va.MinAmount + r.rng.IntN(va.MaxAmount-va.MinAmount+1)
	}

	d := game.Decision{Action: va.Action, Amount: amount}
	logDecision(r.logger, "random", state, d, "dice")
	return d
}
