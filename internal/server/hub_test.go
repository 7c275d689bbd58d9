package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ultma/ultma-server-go/internal/game"
	"github.com/ultma/ultma-server-go/internal/game/rules"
	"go.uber.org/zap"
)

type received struct {
	Type  string          `json:"type"`
	Event *rules.Event    `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func startHubServer(t *testing.T) (*httptest.Server, context.CancelFunc) {
	t.Helper()
	// The hub logs from its own goroutines, which may outlive the test.
	logger := zap.NewNop()
	svc := newTestMatchService(t, game.DefaultOptions())
	hub := NewHub(svc, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(NewRouter(svc, hub, logger))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv, cancel
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubStreamsEventsAndState(t *testing.T) {
	srv, _ := startHubServer(t)
	conn := dial(t, srv)

	first := readMessage(t, conn)
	assert.Equal(t, "state", first.Type)
	assert.Equal(t, "null", string(first.Data))

	resp, err := http.PostForm(srv.URL+APIPrefix+"/join", url.Values{"playerName": {"Alice"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Creating the match and joining it are two commits, each followed by
	// its state.
	var kinds []string
	var states []game.Match
	for len(states) < 2 {
		msg := readMessage(t, conn)
		switch msg.Type {
		case "event":
			require.NotNil(t, msg.Event)
			kinds = append(kinds, string(msg.Event.Type))
		case "state":
			var m game.Match
			require.NoError(t, json.Unmarshal(msg.Data, &m))
			states = append(states, m)
			kinds = append(kinds, "state")
		}
	}
	assert.Equal(t, []string{
		string(rules.EventMatchCreated), "state",
		string(rules.EventPlayerJoined), "state",
	}, kinds)
	assert.Empty(t, states[0].Players)
	require.Len(t, states[1].Players, 1)
	assert.Equal(t, "Alice", states[1].Players[0].Name)
}

func TestHubStateFollowsCommitOrder(t *testing.T) {
	srv, _ := startHubServer(t)

	resp, err := http.PostForm(srv.URL+APIPrefix+"/join", url.Values{"playerName": {"Alice"}})
	require.NoError(t, err)
	var joined game.Match
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&joined))
	resp.Body.Close()
	alice := joined.Players[0].ID

	conn := dial(t, srv)
	readMessage(t, conn)

	const gifts = 10
	var wg sync.WaitGroup
	for i := 0; i < gifts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.PostForm(srv.URL+APIPrefix+"/potion/give", url.Values{"playerId": {alice}, "color": {"red"}})
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	// Every grant is followed by the state it produced, so potion counts
	// only ever grow and the last state matches the store.
	granted, last := 0, -1
	for granted < gifts || last < gifts {
		msg := readMessage(t, conn)
		switch msg.Type {
		case "event":
			if msg.Event.Type == rules.EventPotionGranted {
				granted++
			}
		case "state":
			var m game.Match
			require.NoError(t, json.Unmarshal(msg.Data, &m))
			count := len(m.Players[0].Potions)
			require.Greater(t, count, last)
			require.Equal(t, granted, count)
			last = count
		}
	}

	resp, err = http.Get(srv.URL + APIPrefix)
	require.NoError(t, err)
	var stored game.Match
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stored))
	resp.Body.Close()
	assert.Len(t, stored.Players[0].Potions, last)
}

func TestHubSendsCurrentStateOnConnect(t *testing.T) {
	srv, _ := startHubServer(t)

	resp, err := http.PostForm(srv.URL+APIPrefix+"/new", nil)
	require.NoError(t, err)
	resp.Body.Close()

	conn := dial(t, srv)
	first := readMessage(t, conn)
	assert.Equal(t, "state", first.Type)
	var m game.Match
	require.NoError(t, json.Unmarshal(first.Data, &m))
	assert.NotEmpty(t, m.ID)
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	srv, cancel := startHubServer(t)
	conn := dial(t, srv)
	readMessage(t, conn)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
}
