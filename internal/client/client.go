// Package client plays one seat on a remote table server. It dials the
// WebSocket endpoint, authenticates, answers every action_required
// prompt with its agent's decision and returns the final standings when
// the session ends.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/protocol"
)

const (
	// Time allowed to write a message to the server.
	writeWait = 10 * time.Second

	// Time allowed between reads. The server pings well inside this, so
	// a quiet healthy connection never trips it.
	readWait = 60 * time.Second
)

// Config describes one remote seat.
type Config struct {
	URL    string // server URL; http(s) is normalized to ws(s)
	Name   string // name to claim at the table
	Token  string // join token, when the server requires one
	Agent  game.Agent
	Logger *log.Logger
}

// Client connects an agent to a remote table.
type Client struct {
	cfg    Config
	url    string
	logger *log.Logger
}

// New validates the configuration and normalizes the server URL.
func New(cfg Config) (*Client, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("player name required")
	}
	if cfg.Agent == nil {
		return nil, fmt.Errorf("agent required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	wsURL, err := normalizeURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		url:    wsURL,
		logger: cfg.Logger.WithPrefix("client").With("player", cfg.Name),
	}, nil
}

// normalizeURL turns a server address into its WebSocket endpoint,
// converting http(s) schemes and defaulting the path to /ws.
func normalizeURL(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("server URL required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in server URL", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Run plays the session to completion and returns the final standings.
// It errors if the server rejects the join, the connection drops
// mid-session, or ctx is cancelled.
func (c *Client) Run(ctx context.Context) (*protocol.SessionEndData, error) {
	c.logger.Info("connecting", "url", c.url)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.url, err)
	}
	defer conn.Close()

	// Reads only unblock when the socket dies, so close it when the
	// caller gives up.
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-finished:
		}
	}()

	// Answer the server's keepalive pings and stretch the read deadline
	// each time one arrives.
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	})

	if err := c.write(conn, protocol.TypeAuth, protocol.AuthData{
		PlayerName: c.cfg.Name,
		Token:      c.cfg.Token,
	}); err != nil {
		return nil, err
	}

	// The protocol is strictly prompt and answer from here on: one
	// reader, one writer, no pumps needed.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		var msg protocol.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("connection lost: %w", err)
		}

		res, err := c.handle(conn, &msg)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
}

// handle processes one server message. A non-nil result means the
// session is over.
func (c *Client) handle(conn *websocket.Conn, msg *protocol.Message) (*protocol.SessionEndData, error) {
	switch msg.Type {
	case protocol.TypeAuthResponse:
		var data protocol.AuthResponseData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("bad auth response: %w", err)
		}
		if !data.Success {
			return nil, fmt.Errorf("join rejected: %s", data.Error)
		}
		c.logger.Info("seated", "seat", data.Seat)

	case protocol.TypeActionRequired:
		var data protocol.ActionRequiredData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("bad action request: %w", err)
		}
		return nil, c.decide(conn, data)

	case protocol.TypeSessionEnd:
		var data protocol.SessionEndData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("bad session end: %w", err)
		}
		c.logger.Info("session over", "hands", data.Hands, "winner", data.Winner)
		return &data, nil

	case protocol.TypeError:
		var data protocol.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err == nil {
			c.logger.Warn("server reported an error", "code", data.Code, "message", data.Message)
		}

	default:
		// hand_start, hole_cards, street_change and friends narrate the
		// game, but every prompt carries full table state, so an agent
		// needs none of them to act.
		c.logger.Debug("event", "type", msg.Type)
	}
	return nil, nil
}

// decide converts the prompt, asks the agent, and sends the answer.
func (c *Client) decide(conn *websocket.Conn, data protocol.ActionRequiredData) error {
	state, err := protocol.TableStateToGame(data.TableState)
	if err != nil {
		return fmt.Errorf("bad table state: %w", err)
	}
	valid := make([]game.ValidAction, len(data.ValidActions))
	for i, va := range data.ValidActions {
		v, err := protocol.ValidActionToGame(va)
		if err != nil {
			return fmt.Errorf("bad action menu: %w", err)
		}
		valid[i] = v
	}

	d := c.cfg.Agent.MakeDecision(state, valid)
	c.logger.Debug("acting", "hand", data.HandID, "action", d.Action, "amount", d.Amount)
	return c.write(conn, protocol.TypeDecision, protocol.DecisionData{
		Action: d.Action.String(),
		Amount: d.Amount,
	})
}

func (c *Client) write(conn *websocket.Conn, mt protocol.MessageType, payload any) error {
	msg, err := protocol.NewMessage(mt, payload)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("sending %s: %w", mt, err)
	}
	return nil
}
