// file: internal/handlers/ws/hub.go
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"careerquest/internal/contextutils"
	"careerquest/internal/events"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

// Message is the frame pushed to subscribers
type Message struct {
	Type  string       `json:"type"`
	Event events.Event `json:"event"`
}

// Hub fans bus events out to connected websocket clients. A client may
// narrow its feed to one mission with ?mission_id=.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	bus          events.EventBus
	subscription events.EventHandler
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	missionID string
	userID    string
}

// NewHub creates a hub. allowedOrigin "*" or "" accepts any origin.
func NewHub(allowedOrigin string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Attach subscribes the hub to every event on the bus. Close removes the
// subscription.
func (h *Hub) Attach(bus events.EventBus) error {
	handler := events.NewEventHandlerFunc("ws-hub", func(ctx context.Context, event events.Event) error {
		h.Broadcast(event)
		return nil
	})
	if err := bus.SubscribePattern("*", handler); err != nil {
		return err
	}

	h.mu.Lock()
	h.bus = bus
	h.subscription = handler
	h.mu.Unlock()
	return nil
}

// Broadcast sends event to every interested client. Clients that cannot
// keep up are disconnected.
func (h *Hub) Broadcast(event events.Event) {
	payload, err := json.Marshal(Message{Type: event.GetEventType(), Event: event})
	if err != nil {
		h.logger.Error("Failed to encode event for websocket clients",
			zap.Error(err),
			zap.String("event_type", event.GetEventType()),
		)
		return
	}
	missionID := missionOf(event)

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		if c.missionID != "" && c.missionID != missionID {
			continue
		}
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow websocket client", zap.String("user_id", c.userID))
		h.unregister(c)
	}
}

func missionOf(event events.Event) string {
	switch e := event.(type) {
	case *events.MissionEvent:
		return e.MissionID
	case *events.TaskEvent:
		return e.MissionID
	}
	return ""
}

// ServeHTTP upgrades the connection and streams events until the client
// goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		missionID: r.URL.Query().Get("mission_id"),
		userID:    contextutils.GetUserID(r.Context()),
	}
	if !h.register(c) {
		conn.Close()
		return
	}

	h.logger.Debug("WebSocket client connected",
		zap.String("user_id", c.userID),
		zap.String("mission_id", c.missionID),
	)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones. The bus
// subscription made by Attach is dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	bus, handler := h.bus, h.subscription
	h.bus, h.subscription = nil, nil
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if bus != nil {
		if err := bus.Unsubscribe("*", handler); err != nil {
			h.logger.Warn("Failed to unsubscribe websocket hub", zap.Error(err))
		}
	}
}

// readPump only handles control frames; the feed is one-way
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read failed", zap.Error(err), zap.String("user_id", c.userID))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
