package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/protocol"
)

// scriptedAgent records what it is shown and answers with a fixed
// decision.
type scriptedAgent struct {
	mu       sync.Mutex
	states   []game.TableState
	menus    [][]game.ValidAction
	decision game.Decision
}

func (a *scriptedAgent) MakeDecision(state game.TableState, valid []game.ValidAction) game.Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.states = append(a.states, state)
	a.menus = append(a.menus, valid)
	return a.decision
}

func (a *scriptedAgent) seen() []game.TableState {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]game.TableState, len(a.states))
	copy(out, a.states)
	return out
}

// tableSide is the scripted server's half of a conversation. It runs on
// the handler goroutine, so failures report through t.Errorf.
type tableSide struct {
	t  *testing.T
	ws *websocket.Conn
}

func (s *tableSide) read() *protocol.Message {
	_ = s.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg protocol.Message
	if err := s.ws.ReadJSON(&msg); err != nil {
		s.t.Errorf("scripted server read: %v", err)
		return nil
	}
	return &msg
}

func (s *tableSide) send(mt protocol.MessageType, payload any) {
	msg, err := protocol.NewMessage(mt, payload)
	if err != nil {
		s.t.Errorf("scripted server marshal: %v", err)
		return
	}
	_ = s.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := s.ws.WriteJSON(msg); err != nil {
		s.t.Errorf("scripted server send: %v", err)
	}
}

// scriptedServer runs script against each connecting client and returns
// the http URL to dial, exercising the client's scheme normalization.
func scriptedServer(t *testing.T, script func(s *tableSide)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			t.Errorf("client dialed %s, want /ws", r.URL.Path)
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer ws.Close()
		script(&tableSide{t: t, ws: ws})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func promptData() protocol.ActionRequiredData {
	return protocol.ActionRequiredData{
		HandID:     "h1",
		PlayerName: "alice",
		ValidActions: []protocol.ValidActionInfo{
			{Action: "fold"},
			{Action: "call", MinAmount: 5, MaxAmount: 5},
			{Action: "raise", MinAmount: 20, MaxAmount: 995},
		},
		TableState: protocol.TableStateData{
			HandID:     "h1",
			Street:     "preflop",
			Pot:        15,
			CurrentBet: 10,
			MinRaise:   10,
			SmallBlind: 5,
			BigBlind:   10,
			Button:     1,
			Players: []protocol.PlayerStateData{
				{Seat: 0, Name: "alice", Chips: 995, Bet: 5, TotalBet: 5, HoleCards: []string{"As", "Kd"}},
				{Seat: 1, Name: "bob", Chips: 990, Bet: 10, TotalBet: 10},
			},
			Acting: 0,
		},
		TimeoutSeconds: 30,
	}
}

func TestClientPlaysSession(t *testing.T) {
	decisions := make(chan protocol.DecisionData, 1)

	serverURL := scriptedServer(t, func(s *tableSide) {
		msg := s.read()
		if msg == nil {
			return
		}
		if msg.Type != protocol.TypeAuth {
			s.t.Errorf("first message was %s, want auth", msg.Type)
			return
		}
		var auth protocol.AuthData
		if err := json.Unmarshal(msg.Data, &auth); err != nil {
			s.t.Errorf("bad auth payload: %v", err)
			return
		}
		if auth.PlayerName != "alice" || auth.Token != "open-sesame" {
			s.t.Errorf("auth carried %q/%q", auth.PlayerName, auth.Token)
		}

		s.send(protocol.TypeAuthResponse, protocol.AuthResponseData{Success: true, Seat: 0})
		s.send(protocol.TypeHandStart, protocol.HandStartData{HandID: "h1"})
		s.send(protocol.TypeActionRequired, promptData())

		msg = s.read()
		if msg == nil {
			return
		}
		if msg.Type != protocol.TypeDecision {
			s.t.Errorf("answer was %s, want decision", msg.Type)
			return
		}
		var d protocol.DecisionData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			s.t.Errorf("bad decision payload: %v", err)
			return
		}
		decisions <- d

		s.send(protocol.TypeSessionEnd, protocol.SessionEndData{
			Hands:  1,
			Winner: "alice",
			Standings: []protocol.StandingData{
				{Seat: 0, Name: "alice", Chips: 1005},
				{Seat: 1, Name: "bob", Chips: 995},
			},
		})
	})

	agent := &scriptedAgent{decision: game.Decision{Action: game.Raise, Amount: 60}}
	c, err := New(Config{
		URL:    serverURL,
		Name:   "alice",
		Token:  "open-sesame",
		Agent:  agent,
		Logger: log.New(io.Discard),
	})
	require.NoError(t, err)

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Hands)
	assert.Equal(t, "alice", res.Winner)
	require.Len(t, res.Standings, 2)

	d := <-decisions
	assert.Equal(t, "raise", d.Action)
	assert.Equal(t, 60, d.Amount)

	// The agent saw the prompt converted back into engine terms.
	states := agent.seen()
	require.Len(t, states, 1)
	assert.Equal(t, game.PreFlop, states[0].Street)
	assert.Equal(t, 15, states[0].Pot)
	assert.Equal(t, "alice", states[0].Hero().Name)
	assert.Equal(t, deck.MustParseAll("As Kd"), states[0].Hero().HoleCards)
	assert.Equal(t, 5, states[0].ToCall())
}

func TestClientRejectedJoin(t *testing.T) {
	serverURL := scriptedServer(t, func(s *tableSide) {
		if msg := s.read(); msg == nil {
			return
		}
		s.send(protocol.TypeAuthResponse, protocol.AuthResponseData{Success: false, Error: "invalid token"})
	})

	c, err := New(Config{
		URL:    serverURL,
		Name:   "alice",
		Token:  "wrong",
		Agent:  &scriptedAgent{},
		Logger: log.New(io.Discard),
	})
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestClientContextCancel(t *testing.T) {
	seated := make(chan struct{})
	serverURL := scriptedServer(t, func(s *tableSide) {
		if msg := s.read(); msg == nil {
			return
		}
		s.send(protocol.TypeAuthResponse, protocol.AuthResponseData{Success: true, Seat: 0})
		close(seated)
		// Then go quiet: the client should leave when its caller does.
		time.Sleep(2 * time.Second)
	})

	c, err := New(Config{
		URL:    serverURL,
		Name:   "alice",
		Agent:  &scriptedAgent{},
		Logger: log.New(io.Discard),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := c.Run(ctx)
		errs <- err
	}()

	<-seated
	cancel()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("client did not stop on cancel")
	}
}

func TestNewValidatesConfig(t *testing.T) {
	agent := &scriptedAgent{}

	_, err := New(Config{URL: "ws://localhost:8080", Agent: agent})
	assert.ErrorContains(t, err, "name")

	_, err = New(Config{URL: "ws://localhost:8080", Name: "alice"})
	assert.ErrorContains(t, err, "agent")

	_, err = New(Config{URL: "ftp://localhost", Name: "alice", Agent: agent})
	assert.ErrorContains(t, err, "unsupported scheme")

	_, err = New(Config{Name: "alice", Agent: agent})
	assert.ErrorContains(t, err, "URL required")
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://example.com", "ws://example.com/ws"},
		{"https://example.com", "wss://example.com/ws"},
		{"ws://example.com", "ws://example.com/ws"},
		{"wss://example.com/", "wss://example.com/ws"},
		{"ws://example.com:9090/custom", "ws://example.com:9090/custom"},
		{"http://example.com:8080/ws", "ws://example.com:8080/ws"},
	}
	for _, tt := range tests {
		got, err := normalizeURL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
