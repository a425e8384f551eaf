// Package server exposes a table over WebSockets. Remote players
// authenticate with a name, receive the game's event stream as JSON
// messages and answer action_required prompts; NPC bots fill the seats
// the configuration reserves for the house.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem/internal/auth"
	"github.com/lox/holdem/internal/protocol"
)

// Server accepts WebSocket connections and routes their traffic to the
// table.
type Server struct {
	cfg      *Config
	upgrader websocket.Upgrader
	logger   *log.Logger
	clock    quartz.Clock
	auth     auth.Validator

	mu          sync.RWMutex
	connections map[*Connection]bool

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc

	httpServer *http.Server
	table      *Table
}

// Option configures a Server.
type Option func(*Server)

// WithClock substitutes the clock timing the decision windows. Tests
// use a quartz mock to fire timeouts deterministically.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// New creates a server for cfg. Call Start to begin listening.
func New(cfg *Config, logger *log.Logger, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			// Origin checks are left to the deployment; bots connect
			// from anywhere.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		clock:       quartz.NewReal(),
		auth:        cfg.AuthValidator(),
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.table = NewTable(cfg, s, logger, s.clock)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	s.httpServer = &http.Server{Addr: cfg.Address(), Handler: mux}

	return s
}

// Table returns the table this server hosts.
func (s *Server) Table() *Table {
	return s.table
}

// Start listens for connections until Stop is called. It blocks.
func (s *Server) Start() error {
	go s.run()

	s.logger.Info("listening", "addr", s.cfg.Address(),
		"seats", s.cfg.Table.Seats, "npcs", len(s.cfg.NPCs))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop closes the listener and every connection.
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return s.httpServer.Close()
}

// run owns the connection set.
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			if ok {
				delete(s.connections, conn)
			}
			total := len(s.connections)
			s.mu.Unlock()

			if ok {
				if name := conn.PlayerName(); name != "" {
					s.table.HandleDisconnect(name)
				}
				_ = conn.Close()
				s.logger.Info("client disconnected", "total", total)
			}

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	client := NewConnection(conn, s, s.logger)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// SendToPlayer delivers a message to one named connection.
func (s *Server) SendToPlayer(name string, msg *protocol.Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.PlayerName() == name {
			return conn.SendMessage(msg)
		}
	}
	return fmt.Errorf("player not connected: %s", name)
}

// Broadcast delivers a message to every authenticated connection.
func (s *Server) Broadcast(msg *protocol.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.PlayerName() == "" {
			continue
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("broadcast delivery failed", "player", conn.PlayerName(), "err", err)
		}
	}
}

// ConnectedPlayers returns the names on authenticated connections.
func (s *Server) ConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for conn := range s.connections {
		if name := conn.PlayerName(); name != "" {
			names = append(names, name)
		}
	}
	return names
}
