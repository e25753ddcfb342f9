// Package live streams AppState snapshots to connected views over WebSocket.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/growwise/growwise-client/internal/domain"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Message is the envelope written to clients.
type Message struct {
	Type  string           `json:"type"`
	State *domain.AppState `json:"state,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan Message
	once sync.Once
	done chan struct{}

	status websocket.StatusCode
	reason string

	// Until the initial snapshot is queued, published states are held
	// back so they cannot be overtaken by an older snapshot.
	mu      sync.Mutex
	pending bool
	held    *Message
}

// offer queues msg, or holds it while the initial snapshot is pending.
func (c *client) offer(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		c.held = &msg
		return
	}
	c.enqueue(msg)
}

// ready queues the initial snapshot followed by the newest state published
// while it was being read.
func (c *client) ready(initial Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	c.enqueue(initial)
	if c.held != nil {
		c.enqueue(*c.held)
		c.held = nil
	}
}

func (c *client) enqueue(msg Message) {
	select {
	case c.send <- msg:
	default:
		slog.Warn("Live client too slow, disconnecting")
		c.stop(websocket.StatusPolicyViolation, "client too slow")
	}
}

func (c *client) stop(status websocket.StatusCode, reason string) {
	c.once.Do(func() {
		c.status, c.reason = status, reason
		close(c.done)
	})
}

// Hub fans snapshots out to every connected client. A client that cannot
// keep up is disconnected instead of stalling publishers.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	snapshot      func() domain.AppState
	allowedOrigin string
	isDev         bool
}

// NewHub creates a hub. snapshot supplies the state sent to new clients.
func NewHub(snapshot func() domain.AppState, allowedOrigin string, isDev bool) *Hub {
	return &Hub{
		clients:       make(map[*client]struct{}),
		snapshot:      snapshot,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// Publish queues st for every client. It never blocks.
func (h *Hub) Publish(st domain.AppState) {
	msg := Message{Type: "state", State: &st}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.offer(msg)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.stop(websocket.StatusGoingAway, "server shutting down")
		delete(h.clients, c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	slog.Info("Live client registered", "clients", len(h.clients))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		slog.Info("Live client unregistered", "clients", len(h.clients))
	}
}

// ServeHTTP upgrades the request and streams snapshots until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}

	c := &client{
		conn:    ws,
		send:    make(chan Message, sendBuffer),
		done:    make(chan struct{}),
		pending: true,
	}
	// Register before reading the snapshot so no commit falls in between.
	h.register(c)
	defer h.unregister(c)
	st := h.snapshot()
	c.ready(Message{Type: "state", State: &st})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		h.readLoop(ctx, c)
	}()

	status, reason := h.writeLoop(ctx, c)
	if closeErr := ws.Close(status, reason); closeErr != nil {
		slog.Debug("Failed to close websocket", "error", closeErr)
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

// readLoop answers pings and notices when the client disconnects.
func (h *Hub) readLoop(ctx context.Context, c *client) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client")
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			select {
			case c.send <- Message{Type: "pong"}:
			default:
			}
		}
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *client) (websocket.StatusCode, string) {
	for {
		select {
		case <-ctx.Done():
			return websocket.StatusNormalClosure, "session ended"
		case <-c.done:
			return c.status, c.reason
		case msg := <-c.send:
			if err := writeJSON(ctx, c.conn, msg); err != nil {
				slog.Debug("WebSocket write error", "error", err)
				return websocket.StatusInternalError, "write failed"
			}
		}
	}
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
