package game

import (
	"time"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/evaluator"
)

// EventType identifies a game event.
type EventType string

const (
	EventTypeHandStart    EventType = "hand_start"
	EventTypeHoleCards    EventType = "hole_cards"
	EventTypePlayerAction EventType = "player_action"
	EventTypeStreetChange EventType = "street_change"
	EventTypeShowdown     EventType = "showdown"
	EventTypeHandEnd      EventType = "hand_end"
)

func (et EventType) String() string {
	return string(et)
}

// GameEvent is any event published while a hand runs.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// HandStartEvent is published once blinds are posted, before cards go
// out. Players carries the public view only.
type HandStartEvent struct {
	HandID     string
	Players    []PlayerState
	Button     int
	SmallBlind int
	BigBlind   int
	timestamp  time.Time
}

func (e HandStartEvent) EventType() EventType { return EventTypeHandStart }
func (e HandStartEvent) Timestamp() time.Time { return e.timestamp }

// NewHandStartEvent creates a new hand start event.
func NewHandStartEvent(handID string, players []PlayerState, button, smallBlind, bigBlind int) HandStartEvent {
	return HandStartEvent{
		HandID:     handID,
		Players:    players,
		Button:     button,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		timestamp:  time.Now(),
	}
}

// HoleCardsEvent carries one seat's private cards. Anything fanning
// events out to multiple players must filter these by seat.
type HoleCardsEvent struct {
	HandID    string
	Seat      int
	Name      string
	Cards     []deck.Card
	timestamp time.Time
}

func (e HoleCardsEvent) EventType() EventType { return EventTypeHoleCards }
func (e HoleCardsEvent) Timestamp() time.Time { return e.timestamp }

// NewHoleCardsEvent creates a new hole cards event.
func NewHoleCardsEvent(handID string, seat int, name string, cards []deck.Card) HoleCardsEvent {
	return HoleCardsEvent{
		HandID:    handID,
		Seat:      seat,
		Name:      name,
		Cards:     append([]deck.Card(nil), cards...),
		timestamp: time.Now(),
	}
}

// PlayerActionEvent is published after each accepted action. Amount is
// the chips the action moved; To is the street commitment afterwards,
// which is what a raise was raised to.
type PlayerActionEvent struct {
	HandID    string
	Seat      int
	Name      string
	Street    Street
	Action    Action
	Amount    int
	To        int
	Pot       int
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerActionEvent creates a new player action event.
func NewPlayerActionEvent(handID string, seat int, name string, street Street, action Action, amount, to, pot int) PlayerActionEvent {
	return PlayerActionEvent{
		HandID:    handID,
		Seat:      seat,
		Name:      name,
		Street:    street,
		Action:    action,
		Amount:    amount,
		To:        to,
		Pot:       pot,
		timestamp: time.Now(),
	}
}

// StreetChangeEvent is published when a street's betting closes and the
// next cards hit the board.
type StreetChangeEvent struct {
	HandID    string
	Street    Street
	Board     []deck.Card
	Pots      []Pot
	timestamp time.Time
}

func (e StreetChangeEvent) EventType() EventType { return EventTypeStreetChange }
func (e StreetChangeEvent) Timestamp() time.Time { return e.timestamp }

// NewStreetChangeEvent creates a new street change event.
func NewStreetChangeEvent(handID string, street Street, board []deck.Card, pots []Pot) StreetChangeEvent {
	return StreetChangeEvent{
		HandID:    handID,
		Street:    street,
		Board:     append([]deck.Card(nil), board...),
		Pots:      append([]Pot(nil), pots...),
		timestamp: time.Now(),
	}
}

// ShowdownHand is one hand revealed at showdown.
type ShowdownHand struct {
	Seat      int
	Name      string
	HoleCards []deck.Card
	Rank      evaluator.HandRank
}

// ShowdownEvent is published when the remaining hands are revealed,
// before the pot is paid.
type ShowdownEvent struct {
	HandID    string
	Board     []deck.Card
	Hands     []ShowdownHand
	timestamp time.Time
}

func (e ShowdownEvent) EventType() EventType { return EventTypeShowdown }
func (e ShowdownEvent) Timestamp() time.Time { return e.timestamp }

// NewShowdownEvent creates a new showdown event.
func NewShowdownEvent(handID string, board []deck.Card, hands []ShowdownHand) ShowdownEvent {
	return ShowdownEvent{
		HandID:    handID,
		Board:     append([]deck.Card(nil), board...),
		Hands:     hands,
		timestamp: time.Now(),
	}
}

// HandEndEvent is published once the pot has been paid out.
type HandEndEvent struct {
	Result    *HandResult
	timestamp time.Time
}

func (e HandEndEvent) EventType() EventType { return EventTypeHandEnd }
func (e HandEndEvent) Timestamp() time.Time { return e.timestamp }

// NewHandEndEvent creates a new hand end event.
func NewHandEndEvent(result *HandResult) HandEndEvent {
	return HandEndEvent{Result: result, timestamp: time.Now()}
}

// EventSubscriber can subscribe to game events.
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription.
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus. Delivery is
// synchronous and in subscription order; it is not safe for concurrent
// publishers, which suits the single-goroutine hand loop.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus.
func NewEventBus() EventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events.
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers.
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}

// SubscriberFunc adapts a function to the EventSubscriber interface.
type SubscriberFunc func(event GameEvent)

// OnEvent calls f.
func (f SubscriberFunc) OnEvent(event GameEvent) {
	f(event)
}
