package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/protocol"
)

func testServerConfig() *Config {
	cfg := DefaultConfig()
	cfg.Table.Seats = 2
	cfg.Table.StartingChips = 1000
	cfg.Table.HandLimit = 2
	cfg.Table.Seed = 42
	cfg.NPCs = []NPCConfig{{Name: "station", Kind: "caller"}}
	return cfg
}

// startTestServer brings up the connection loop and an httptest
// listener for the WebSocket endpoint, without binding a real port.
func startTestServer(t *testing.T, cfg *Config) (*Server, string) {
	t.Helper()
	require.NoError(t, cfg.Validate())

	srv := New(cfg, log.New(io.Discard))
	go srv.run()
	t.Cleanup(func() { _ = srv.Stop() })

	httpSrv := httptest.NewServer(http.HandlerFunc(srv.handleWebSocket))
	t.Cleanup(httpSrv.Close)

	return srv, "ws" + strings.TrimPrefix(httpSrv.URL, "http")
}

type wsClient struct {
	t  *testing.T
	ws *websocket.Conn
}

func dialServer(t *testing.T, wsURL string) *wsClient {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return &wsClient{t: t, ws: ws}
}

func (c *wsClient) send(mt protocol.MessageType, payload any) {
	c.t.Helper()
	msg, err := protocol.NewMessage(mt, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.ws.WriteJSON(msg))
}

func (c *wsClient) read() *protocol.Message {
	c.t.Helper()
	require.NoError(c.t, c.ws.SetReadDeadline(time.Now().Add(10*time.Second)))
	var msg protocol.Message
	require.NoError(c.t, c.ws.ReadJSON(&msg))
	return &msg
}

// readUntil consumes messages until one of the wanted type arrives.
func (c *wsClient) readUntil(mt protocol.MessageType) *protocol.Message {
	c.t.Helper()
	for {
		msg := c.read()
		if msg.Type == mt {
			return msg
		}
	}
}

func TestServerHealth(t *testing.T) {
	srv := New(testServerConfig(), log.New(io.Discard))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestServerPlaysSessionOverWebSocket(t *testing.T) {
	_, wsURL := startTestServer(t, testServerConfig())

	client := dialServer(t, wsURL)
	client.send(protocol.TypeAuth, protocol.AuthData{PlayerName: "alice"})

	var (
		authed     bool
		handStarts int
		holeCards  int
		sessionEnd *protocol.SessionEndData
	)
	for sessionEnd == nil {
		msg := client.read()
		switch msg.Type {
		case protocol.TypeAuthResponse:
			var data protocol.AuthResponseData
			require.NoError(t, json.Unmarshal(msg.Data, &data))
			require.True(t, data.Success, data.Error)
			assert.Equal(t, 0, data.Seat)
			authed = true

		case protocol.TypeHandStart:
			handStarts++

		case protocol.TypeHoleCards:
			var data protocol.HoleCardsData
			require.NoError(t, json.Unmarshal(msg.Data, &data))
			require.Equal(t, "alice", data.Name, "only our own hole cards may arrive")
			require.Len(t, data.Cards, 2)
			holeCards++

		case protocol.TypeActionRequired:
			var data protocol.ActionRequiredData
			require.NoError(t, json.Unmarshal(msg.Data, &data))
			require.Equal(t, "alice", data.PlayerName)
			require.NotEmpty(t, data.ValidActions)
			client.send(protocol.TypeDecision, protocol.DecisionData{Action: pickAction(data.ValidActions)})

		case protocol.TypeSessionEnd:
			var data protocol.SessionEndData
			require.NoError(t, json.Unmarshal(msg.Data, &data))
			sessionEnd = &data
		}
	}

	require.True(t, authed)
	assert.Equal(t, 2, handStarts)
	assert.Equal(t, 2, holeCards)
	assert.Equal(t, 2, sessionEnd.Hands)
	require.Len(t, sessionEnd.Standings, 2)

	total := 0
	for _, st := range sessionEnd.Standings {
		total += st.Chips
	}
	assert.Equal(t, 2000, total, "chips conserved over the wire too")
}

func TestServerRejectsDuplicateName(t *testing.T) {
	cfg := testServerConfig()
	cfg.Table.Seats = 3 // two human seats, so the game stays pending
	srv, wsURL := startTestServer(t, cfg)

	first := dialServer(t, wsURL)
	first.send(protocol.TypeAuth, protocol.AuthData{PlayerName: "alice"})
	msg := first.readUntil(protocol.TypeAuthResponse)
	var ok protocol.AuthResponseData
	require.NoError(t, json.Unmarshal(msg.Data, &ok))
	require.True(t, ok.Success)

	assert.Eventually(t, func() bool {
		players := srv.ConnectedPlayers()
		return len(players) == 1 && players[0] == "alice"
	}, 2*time.Second, 10*time.Millisecond)

	second := dialServer(t, wsURL)
	second.send(protocol.TypeAuth, protocol.AuthData{PlayerName: "alice"})
	msg = second.readUntil(protocol.TypeAuthResponse)
	var dup protocol.AuthResponseData
	require.NoError(t, json.Unmarshal(msg.Data, &dup))
	assert.False(t, dup.Success)
	assert.Contains(t, dup.Error, "taken")
}

func TestServerWithAuthTokenGatesJoins(t *testing.T) {
	cfg := testServerConfig()
	cfg.Table.Seats = 3 // keep the game pending
	cfg.Server.AuthToken = "hunter2"
	_, wsURL := startTestServer(t, cfg)

	intruder := dialServer(t, wsURL)
	intruder.send(protocol.TypeAuth, protocol.AuthData{PlayerName: "mallory", Token: "wrong"})
	msg := intruder.readUntil(protocol.TypeAuthResponse)
	var rejected protocol.AuthResponseData
	require.NoError(t, json.Unmarshal(msg.Data, &rejected))
	assert.False(t, rejected.Success)
	assert.Contains(t, rejected.Error, "invalid token")

	player := dialServer(t, wsURL)
	player.send(protocol.TypeAuth, protocol.AuthData{PlayerName: "alice", Token: "hunter2"})
	msg = player.readUntil(protocol.TypeAuthResponse)
	var admitted protocol.AuthResponseData
	require.NoError(t, json.Unmarshal(msg.Data, &admitted))
	assert.True(t, admitted.Success, admitted.Error)
}

func TestServerRequiresAuthBeforeDecisions(t *testing.T) {
	_, wsURL := startTestServer(t, testServerConfig())

	client := dialServer(t, wsURL)
	client.send(protocol.TypeDecision, protocol.DecisionData{Action: "fold"})

	msg := client.readUntil(protocol.TypeError)
	var data protocol.ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "not_authenticated", data.Code)
}

func TestServerRejectsUnknownMessageType(t *testing.T) {
	_, wsURL := startTestServer(t, testServerConfig())

	client := dialServer(t, wsURL)
	client.send(protocol.MessageType("gossip"), map[string]string{"hot": "take"})

	msg := client.readUntil(protocol.TypeError)
	var data protocol.ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "unknown_message_type", data.Code)
}
