package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/protocol"
)

// messenger delivers protocol messages to connected players. *Server
// implements it; table tests substitute their own.
type messenger interface {
	SendToPlayer(name string, msg *protocol.Message) error
	Broadcast(msg *protocol.Message)
}

// NetworkAgent adapts a remote player to game.Agent. Each decision is
// requested over the wire and awaited with a deadline; if the player
// times out, drops, or cannot be reached, the agent checks when that is
// free and folds otherwise, so one silent client never stalls the
// table.
type NetworkAgent struct {
	name    string
	wire    messenger
	logger  *log.Logger
	clock   quartz.Clock
	timeout time.Duration

	decisions chan game.Decision
	gone      chan struct{}
	goneOnce  sync.Once

	mu    sync.Mutex
	valid []game.ValidAction
}

// NewNetworkAgent creates the agent for one remote player.
func NewNetworkAgent(name string, wire messenger, logger *log.Logger, timeout time.Duration, clock quartz.Clock) *NetworkAgent {
	return &NetworkAgent{
		name:      name,
		wire:      wire,
		logger:    logger.WithPrefix("agent").With("player", name),
		clock:     clock,
		timeout:   timeout,
		decisions: make(chan game.Decision, 1),
		gone:      make(chan struct{}),
	}
}

// MakeDecision sends an action_required message and waits for the
// answer, the decision window, or the player's disconnect, whichever
// comes first.
func (na *NetworkAgent) MakeDecision(state game.TableState, valid []game.ValidAction) game.Decision {
	na.mu.Lock()
	na.valid = valid
	na.mu.Unlock()

	// Discard any answer left over from an earlier prompt.
	select {
	case <-na.decisions:
	default:
	}

	select {
	case <-na.gone:
		return na.actFor(valid, "disconnected")
	default:
	}

	infos := make([]protocol.ValidActionInfo, len(valid))
	for i, va := range valid {
		infos[i] = protocol.ValidActionInfoFromGame(va)
	}
	msg, err := protocol.NewMessage(protocol.TypeActionRequired, protocol.ActionRequiredData{
		HandID:         state.HandID,
		PlayerName:     na.name,
		ValidActions:   infos,
		TableState:     protocol.TableStateFromGame(state),
		TimeoutSeconds: int(na.timeout / time.Second),
	})
	if err != nil {
		na.logger.Error("building action request failed", "err", err)
		return na.actFor(valid, "internal error")
	}
	if err := na.wire.SendToPlayer(na.name, msg); err != nil {
		na.logger.Warn("player unreachable", "err", err)
		return na.actFor(valid, "unreachable")
	}

	timedOut := make(chan struct{})
	timer := na.clock.AfterFunc(na.timeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	select {
	case d := <-na.decisions:
		na.logger.Debug("decision received", "action", d.Action, "amount", d.Amount)
		return d

	case <-na.gone:
		return na.actFor(valid, "disconnected")

	case <-timedOut:
		fallback := na.actFor(valid, "timeout")
		if msg, err := protocol.NewMessage(protocol.TypePlayerTimeout, protocol.PlayerTimeoutData{
			PlayerName:     na.name,
			TimeoutSeconds: int(na.timeout / time.Second),
			Action:         fallback.Action.String(),
		}); err == nil {
			na.wire.Broadcast(msg)
		}
		return fallback
	}
}

// HandleDecision feeds a client's answer to the waiting MakeDecision.
// It rejects actions outside the current prompt so a stale or malicious
// client cannot push the engine into its illegal-action handling.
func (na *NetworkAgent) HandleDecision(data protocol.DecisionData) error {
	action, err := protocol.ParseAction(data.Action)
	if err != nil {
		return err
	}
	if !na.actionValid(action, data.Amount) {
		return fmt.Errorf("%s is not available right now", data.Action)
	}

	select {
	case na.decisions <- game.Decision{Action: action, Amount: data.Amount}:
		return nil
	default:
		return fmt.Errorf("no decision pending for %s", na.name)
	}
}

// Disconnect marks the player gone. Pending and future decision
// requests resolve immediately with the safe fallback.
func (na *NetworkAgent) Disconnect() {
	na.goneOnce.Do(func() {
		close(na.gone)
	})
}

func (na *NetworkAgent) actionValid(action game.Action, amount int) bool {
	na.mu.Lock()
	defer na.mu.Unlock()
	for _, va := range na.valid {
		if va.Action != action {
			continue
		}
		if action != game.Raise {
			return true
		}
		return amount >= va.MinAmount && amount <= va.MaxAmount
	}
	return false
}

// actFor picks the action taken on the player's behalf: check when
// free, otherwise fold.
func (na *NetworkAgent) actFor(valid []game.ValidAction, reason string) game.Decision {
	for _, va := range valid {
		if va.Action == game.Check {
			na.logger.Info("checking for player", "reason", reason)
			return game.Decision{Action: game.Check}
		}
	}
	na.logger.Info("folding for player", "reason", reason)
	return game.Decision{Action: game.Fold}
}
