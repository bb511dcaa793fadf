// Package ws streams live match state to observer tooling over
// WebSocket. Watchers join a per-match room and receive the events the
// game manager publishes on the Redis bus.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // observer tooling, no browser origin policy
	},
}

const (
	watchSendBuffer = 64
	pingInterval    = 30 * time.Second
	writeDeadline   = 10 * time.Second
)

// WatchClient is one connected watcher.
type WatchClient struct {
	conn    *websocket.Conn
	matchID string
	send    chan []byte
}

// Hub maintains the per-match watch rooms.
type Hub struct {
	rooms map[string]map[*WatchClient]bool
	mu    sync.RWMutex
}

// MatchHub is the global watch hub.
var MatchHub = NewHub()

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*WatchClient]bool)}
}

func (h *Hub) register(c *WatchClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.matchID] == nil {
		h.rooms[c.matchID] = make(map[*WatchClient]bool)
	}
	h.rooms[c.matchID][c] = true
}

func (h *Hub) unregister(c *WatchClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[c.matchID]; ok {
		if room[c] {
			delete(room, c)
			close(c.send)
		}
		if len(room) == 0 {
			delete(h.rooms, c.matchID)
		}
	}
}

// BroadcastToMatch fans one payload out to every watcher of a match.
// Delivery is best-effort per watcher; a full buffer drops the frame.
func (h *Hub) BroadcastToMatch(matchID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[matchID] {
		select {
		case c.send <- payload:
		default:
			log.Printf("[WS] watcher buffer full for match %s, dropping event", matchID)
		}
	}
}

// ServeWatch upgrades the request and attaches the watcher to a match
// room. snapshot is sent first so the watcher starts from a consistent
// board.
func (h *Hub) ServeWatch(w http.ResponseWriter, r *http.Request, matchID string, snapshot interface{}) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed: %v", err)
		return
	}

	c := &WatchClient{
		conn:    conn,
		matchID: matchID,
		send:    make(chan []byte, watchSendBuffer),
	}
	h.register(c)

	if b, err := json.Marshal(map[string]interface{}{"type": "snapshot", "match": snapshot}); err == nil {
		c.send <- b
	}

	go c.writePump()
	go c.readPump(h)
}

// writePump pushes queued events and keeps the connection alive with
// pings.
func (c *WatchClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages; watchers are read-only. It exists
// to notice the close.
func (c *WatchClient) readPump(h *Hub) {
	defer h.unregister(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
