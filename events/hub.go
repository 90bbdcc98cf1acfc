// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickpoll/poll"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// SnapshotFunc returns the payload pushed to a poll's subscribers.
type SnapshotFunc func(pollID uint64) (any, error)

// Message is what subscribers receive.
type Message struct {
	Type    string `json:"type"`
	PollID  uint64 `json:"poll_id"`
	Payload any    `json:"payload"`
}

type client struct {
	pollID uint64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks websocket subscribers grouped by poll id.
type Hub struct {
	upgrader websocket.Upgrader
	snapshot SnapshotFunc

	mu      sync.RWMutex
	clients map[uint64]map[*client]struct{}
}

func NewHub(snapshot SnapshotFunc) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// same policy as the CORS middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		snapshot: snapshot,
		clients:  make(map[uint64]map[*client]struct{}),
	}
}

// Listener rebroadcasts results whenever a poll's tallies or status change.
func (h *Hub) Listener() poll.Listener {
	return func(e poll.Event) {
		if e.Kind == poll.EventVoteCast || e.Kind == poll.EventPollEnded {
			h.Broadcast(e.PollID)
		}
	}
}

// Subscribers returns how many clients are watching pollID.
func (h *Hub) Subscribers(pollID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[pollID])
}

// ServeWS upgrades the request and blocks until the subscriber goes away.
// The caller is expected to have checked that pollID exists.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, pollID uint64) error {
	msg, err := h.encode(pollID)
	if err != nil {
		http.Error(w, "failed to build live results", http.StatusInternalServerError)
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		return err
	}

	c := &client{pollID: pollID, conn: conn, send: make(chan []byte, sendBuffer)}
	c.send <- msg
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// Broadcast pushes fresh results to every subscriber of pollID.
// Subscribers whose buffer is full are dropped.
func (h *Hub) Broadcast(pollID uint64) {
	if h.Subscribers(pollID) == 0 {
		return
	}

	msg, err := h.encode(pollID)
	if err != nil {
		slog.Error("failed to build live results", "poll_id", pollID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[pollID] {
		select {
		case c.send <- msg:
		default:
			h.removeLocked(c)
		}
	}
}

// Shutdown disconnects every subscriber.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) encode(pollID uint64) ([]byte, error) {
	payload, err := h.snapshot(pollID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: "results", PollID: pollID, Payload: payload})
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.pollID] == nil {
		h.clients[c.pollID] = make(map[*client]struct{})
	}
	h.clients[c.pollID][c] = struct{}{}
	slog.Debug("live subscriber joined", "poll_id", c.pollID, "subscribers", len(h.clients[c.pollID]))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked is a no-op for clients already removed, so send is closed once.
func (h *Hub) removeLocked(c *client) {
	set, ok := h.clients[c.pollID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.pollID)
	}
}

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

	// subscribers have nothing to say; reading only detects disconnects
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("live subscriber read error", "poll_id", c.pollID, "error", err)
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
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
