package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/holdem/internal/game"
)

// sender is the slice of *tea.Program the agent needs. An interface so
// tests can capture prompts without a terminal.
type sender interface {
	Send(tea.Msg)
}

// Agent bridges the engine to the UI. Prompts go in as messages and the
// chosen decision comes back on the model's channel; MakeDecision blocks
// the engine goroutine, never the UI loop.
type Agent struct {
	model  *Model
	ui     sender
	logger *log.Logger
}

// NewAgent creates the game agent for a model running inside ui.
func NewAgent(model *Model, ui sender, logger *log.Logger) *Agent {
	return &Agent{
		model:  model,
		ui:     ui,
		logger: logger.WithPrefix("tui").With("player", model.name),
	}
}

// MakeDecision implements game.Agent.
func (a *Agent) MakeDecision(state game.TableState, valid []game.ValidAction) game.Decision {
	// Drop a decision left over from a prompt the player quit out of.
	select {
	case <-a.model.decisions:
	default:
	}

	select {
	case <-a.model.quit:
		return quitFallback(valid)
	default:
	}

	a.ui.Send(PromptMsg{State: state, Valid: valid})

	select {
	case d := <-a.model.decisions:
		a.logger.Debug("decision", "action", d.Action, "amount", d.Amount)
		return d
	case <-a.model.quit:
		a.logger.Info("player quit mid-hand")
		return quitFallback(valid)
	}
}

// quitFallback checks when it is free and folds otherwise, so a player
// who has left cannot stall the table.
func quitFallback(valid []game.ValidAction) game.Decision {
	for _, va := range valid {
		if va.Action == game.Check {
			return game.Decision{Action: game.Check}
		}
	}
	return game.Decision{Action: game.Fold}
}

// NewSubscriber adapts the UI loop into a game event subscriber.
func NewSubscriber(ui sender) game.EventSubscriber {
	return game.SubscriberFunc(func(ev game.GameEvent) {
		ui.Send(EventMsg{Event: ev})
	})
}
