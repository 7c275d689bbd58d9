package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ultma/ultma-server-go/internal/game"
	"github.com/ultma/ultma-server-go/internal/game/rules"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsMessage is the envelope pushed to subscribers. Type is "event" or
// "state"; state messages carry the whole match (null once reset).
type wsMessage struct {
	Type  string          `json:"type"`
	Event *rules.Event    `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	initial []byte
}

// Hub fans match events and state out to websocket subscribers. It listens
// to the service for as long as Run is executing. Both feeds are delivered
// under the service lock, so clients see them in commit order.
type Hub struct {
	svc    *game.MatchService
	logger *zap.Logger

	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
}

// NewHub creates a hub bound to svc. Call Run to start delivering messages.
func NewHub(svc *game.MatchService, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		svc:        svc,
		logger:     logger,
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run delivers messages until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	handle := h.svc.Events().Subscribe(h.publishEvent)
	removeState := h.svc.OnStateChange(h.publishState)
	defer func() {
		h.svc.Events().Unsubscribe(handle)
		removeState()
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = true
			if c.initial != nil {
				c.send <- c.initial
			}
			h.logger.Debug("websocket client registered", zap.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("websocket client unregistered", zap.Int("clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.logger.Warn("dropping slow websocket client")
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// publishEvent runs inside the service lock, so it must never block.
func (h *Hub) publishEvent(e rules.Event) {
	data, err := json.Marshal(wsMessage{Type: "event", Event: &e})
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("event", string(e.Type)), zap.Error(err))
		return
	}
	h.enqueue(data)
}

// publishState sends the committed match to every subscriber. A nil match is
// sent as null so clients can clear their view after a reset. Like
// publishEvent it runs inside the service lock.
func (h *Hub) publishState(m *game.Match) {
	data, err := stateMessage(m)
	if err != nil {
		h.logger.Error("failed to encode match state", zap.Error(err))
		return
	}
	h.enqueue(data)
}

func (h *Hub) enqueue(data []byte) {
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.logger.Warn("websocket broadcast queue full, message dropped")
	}
}

func stateMessage(m *game.Match) ([]byte, error) {
	state, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wsMessage{Type: "state", Data: state})
}

// ServeWS upgrades the request and subscribes the connection. The first
// message a client receives is the current state.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.State(r.Context())
	if err != nil {
		h.logger.Error("failed to load state for websocket client", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	initial, err := stateMessage(m)
	if err != nil {
		h.logger.Error("failed to encode match state", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		initial: initial,
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

// readPump discards inbound messages; it only exists to notice disconnects.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
