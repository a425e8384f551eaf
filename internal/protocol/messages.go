// Package protocol defines the JSON messages the table server and its
// clients exchange, together with the converters between wire payloads
// and the engine's own types. Both internal/server and internal/client
// speak exactly this vocabulary.
package protocol

import (
	"encoding/json"
	"time"
)

// MessageType identifies a WebSocket message. Game events share their
// wire names with game.EventType so clients see one vocabulary.
type MessageType string

const (
	// Client to server.
	TypeAuth     MessageType = "auth"
	TypeDecision MessageType = "decision"

	// Server to client.
	TypeAuthResponse   MessageType = "auth_response"
	TypeError          MessageType = "error"
	TypeTableStart     MessageType = "table_start"
	TypeActionRequired MessageType = "action_required"
	TypePlayerTimeout  MessageType = "player_timeout"
	TypeSessionEnd     MessageType = "session_end"

	// Mirrored game events.
	TypeHandStart    MessageType = "hand_start"
	TypeHoleCards    MessageType = "hole_cards"
	TypePlayerAction MessageType = "player_action"
	TypeStreetChange MessageType = "street_change"
	TypeShowdown     MessageType = "showdown"
	TypeHandEnd      MessageType = "hand_end"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope every WebSocket frame carries, in both
// directions. Data holds the type-specific payload.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in an envelope stamped with the current
// time.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client to server payloads.

// AuthData names the player and seats them at the table. The name keys
// everything else in the protocol; Token is only needed when the server
// gates joins.
type AuthData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

// DecisionData answers an action_required message. Action uses the
// lowercase forms of game.Action; Amount is the raise-to total and is
// ignored for other actions.
type DecisionData struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Server to client payloads.

type AuthResponseData struct {
	Success bool   `json:"success"`
	Seat    int    `json:"seat"`
	Error   string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlayerStateData is a seat as clients see it. HoleCards is set only in
// views belonging to that seat's own player.
type PlayerStateData struct {
	Seat      int      `json:"seat"`
	Name      string   `json:"name"`
	Chips     int      `json:"chips"`
	Bet       int      `json:"bet"`
	TotalBet  int      `json:"totalBet"`
	Folded    bool     `json:"folded"`
	AllIn     bool     `json:"allIn"`
	HoleCards []string `json:"holeCards,omitempty"`
}

type TableStateData struct {
	HandID     string            `json:"handId"`
	Street     string            `json:"street"`
	Board      []string          `json:"board"`
	Pot        int               `json:"pot"`
	CurrentBet int               `json:"currentBet"`
	MinRaise   int               `json:"minRaise"`
	SmallBlind int               `json:"smallBlind"`
	BigBlind   int               `json:"bigBlind"`
	Button     int               `json:"button"`
	Players    []PlayerStateData `json:"players"`
	Acting     int               `json:"acting"`
}

type ValidActionInfo struct {
	Action    string `json:"action"`
	MinAmount int    `json:"minAmount"`
	MaxAmount int    `json:"maxAmount"`
}

type ActionRequiredData struct {
	HandID         string            `json:"handId"`
	PlayerName     string            `json:"playerName"`
	ValidActions   []ValidActionInfo `json:"validActions"`
	TableState     TableStateData    `json:"tableState"`
	TimeoutSeconds int               `json:"timeoutSeconds"`
}

// PlayerTimeoutData reports the action the server took for a player who
// let the decision window lapse or dropped their connection.
type PlayerTimeoutData struct {
	PlayerName     string `json:"playerName"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	Action         string `json:"action"`
}

type TableStartData struct {
	Players    []PlayerStateData `json:"players"`
	SmallBlind int               `json:"smallBlind"`
	BigBlind   int               `json:"bigBlind"`
	HandLimit  int               `json:"handLimit,omitempty"`
}

type StandingData struct {
	Seat       int    `json:"seat"`
	Name       string `json:"name"`
	Chips      int    `json:"chips"`
	BustedHand int    `json:"bustedHand,omitempty"`
}

type SessionEndData struct {
	Hands     int            `json:"hands"`
	Winner    string         `json:"winner"`
	Standings []StandingData `json:"standings"`
}

// Mirrored game event payloads.

type HandStartData struct {
	HandID     string            `json:"handId"`
	Players    []PlayerStateData `json:"players"`
	Button     int               `json:"button"`
	SmallBlind int               `json:"smallBlind"`
	BigBlind   int               `json:"bigBlind"`
}

type HoleCardsData struct {
	HandID string   `json:"handId"`
	Seat   int      `json:"seat"`
	Name   string   `json:"name"`
	Cards  []string `json:"cards"`
}

type PlayerActionData struct {
	HandID string `json:"handId"`
	Seat   int    `json:"seat"`
	Name   string `json:"name"`
	Street string `json:"street"`
	Action string `json:"action"`
	Amount int    `json:"amount"`
	To     int    `json:"to"`
	Pot    int    `json:"pot"`
}

type PotData struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

type StreetChangeData struct {
	HandID string    `json:"handId"`
	Street string    `json:"street"`
	Board  []string  `json:"board"`
	Pots   []PotData `json:"pots"`
}

type ShowdownHandData struct {
	Seat      int      `json:"seat"`
	Name      string   `json:"name"`
	HoleCards []string `json:"holeCards"`
	Hand      string   `json:"hand"`
}

type ShowdownData struct {
	HandID string             `json:"handId"`
	Board  []string           `json:"board"`
	Hands  []ShowdownHandData `json:"hands"`
}

type WinnerData struct {
	Seat   int    `json:"seat"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Hand   string `json:"hand,omitempty"`
}

type DeltaData struct {
	Seat int    `json:"seat"`
	Name string `json:"name"`
	Net  int    `json:"net"`
}

type HandEndData struct {
	HandID   string       `json:"handId"`
	Board    []string     `json:"board"`
	Pot      int          `json:"pot"`
	Winners  []WinnerData `json:"winners"`
	Deltas   []DeltaData  `json:"deltas"`
	Showdown bool         `json:"showdown"`
}
