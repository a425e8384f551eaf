package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/game"
)

// Caller checks when it is free and calls any bet it can, shoving only
// when calling already requires the whole stack. It never raises and
// never folds.
type Caller struct {
	logger *log.Logger
}

// NewCaller creates a new Caller instance.
func NewCaller(logger *log.Logger) *Caller {
	return &Caller{logger: logger.WithPrefix("caller")}
}

func (c *Caller) MakeDecision(state game.TableState, valid []game.ValidAction) game.Decision {
	var d game.Decision
	var reason string
	switch {
	case has(game.Check, valid):
		d, reason = game.Decision{Action: game.Check}, "free card"
	case has(game.Call, valid):
		d, reason = game.Decision{Action: game.Call}, "calling station"
	case has(game.AllIn, valid):
		d, reason = game.Decision{Action: game.AllIn}, "call is all-in"
	default:
		d, reason = game.Decision{Action: game.Fold}, "nothing callable"
	}
	logDecision(c.logger, "caller", state, d, reason)
	return d
}
