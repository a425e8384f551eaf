package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem/internal/auth"
	"github.com/lox/holdem/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one client's WebSocket. Reads and writes each run on
// their own pump goroutine; SendMessage only queues.
type Connection struct {
	conn   *websocket.Conn
	send   chan *protocol.Message
	server *Server
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	name      string
	closeOnce sync.Once
}

// NewConnection wraps an upgraded WebSocket.
func NewConnection(conn *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:   conn,
		send:   make(chan *protocol.Message, 256),
		server: server,
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close tears the connection down. Safe to call more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client. A full buffer closes the
// connection rather than blocking the sender.
func (c *Connection) SendMessage(msg *protocol.Message) error {
	defer func() {
		if r := recover(); r != nil {
			// The send channel closed mid-select during shutdown.
			c.logger.Debug("send on closed connection", "recovered", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection", "player", c.PlayerName())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// PlayerName returns the authenticated name, or "" before auth.
func (c *Connection) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Connection) setPlayerName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read failed", "err", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("websocket write failed", "err", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *protocol.Message) {
	c.logger.Debug("message received", "type", msg.Type, "player", c.PlayerName())

	switch msg.Type {
	case protocol.TypeAuth:
		var data protocol.AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case protocol.TypeDecision:
		var data protocol.DecisionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse decision data")
			return
		}
		c.handleDecision(data)

	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleAuth(data protocol.AuthData) {
	c.logger.Info("auth request", "player", data.PlayerName)

	fail := func(reason string) {
		response, _ := protocol.NewMessage(protocol.TypeAuthResponse, protocol.AuthResponseData{
			Success: false,
			Error:   reason,
		})
		_ = c.SendMessage(response)
	}

	if data.PlayerName == "" {
		fail("player name required")
		return
	}
	if c.PlayerName() != "" {
		fail("already authenticated as " + c.PlayerName())
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	err := c.server.auth.Validate(ctx, data.PlayerName, data.Token)
	cancel()
	if err != nil {
		// Fail closed: a validator that cannot reach a verdict rejects
		// the join rather than waving it through.
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			fail("invalid token")
		case errors.Is(err, auth.ErrUnavailable):
			c.logger.Warn("auth verdict unavailable", "player", data.PlayerName, "err", err)
			fail("authentication unavailable")
		default:
			c.logger.Error("auth validation failed", "player", data.PlayerName, "err", err)
			fail("authentication failed")
		}
		return
	}

	// Name the connection before joining: the last seat filling starts
	// the game, and its first broadcasts must already reach us.
	c.setPlayerName(data.PlayerName)
	seat, err := c.server.table.Join(data.PlayerName)
	if err != nil {
		c.setPlayerName("")
		fail(err.Error())
		return
	}

	response, _ := protocol.NewMessage(protocol.TypeAuthResponse, protocol.AuthResponseData{
		Success: true,
		Seat:    seat,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleDecision(data protocol.DecisionData) {
	name := c.PlayerName()
	if name == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return
	}

	c.logger.Debug("decision", "player", name, "action", data.Action, "amount", data.Amount)
	if err := c.server.table.HandleDecision(name, data); err != nil {
		c.sendError("decision_rejected", err.Error())
	}
}

func (c *Connection) sendError(code, message string) {
	msg, err := protocol.NewMessage(protocol.TypeError, protocol.ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("building error message failed", "err", err)
		return
	}
	_ = c.SendMessage(msg)
}
