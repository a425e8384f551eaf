package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/game"
)

// Folder checks when it is free and folds to any bet.
type Folder struct {
	logger *log.Logger
}

// NewFolder creates a new Folder instance.
func NewFolder(logger *log.Logger) *Folder {
	return &Folder{logger: logger.WithPrefix("folder")}
}

func (f *Folder) MakeDecision(state game.TableState, valid []game.ValidAction) game.Decision {
	d := game.Decision{Action: game.Fold}
	reason := "facing a bet"
	if has(game.Check, valid) {
		d = game.Decision{Action: game.Check}
		reason = "free card"
	}
	logDecision(f.logger, "folder", state, d, reason)
	return d
}
