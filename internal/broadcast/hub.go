// Package broadcast fans real-time events out to WebSocket subscribers.
package broadcast

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/utils/logging"

	"golang.org/x/net/websocket"
)

const connectedStatus = "connected"

// subscriber is one open WebSocket connection.
type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// write sends one text frame, bounded by a deadline.
func (s *subscriber) write(msg []byte, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return websocket.Message.Send(s.conn, string(msg))
}

// Hub holds the live subscribers.
//
// Delivery is at most once: there is no queue and no replay for late subscribers.
type Hub struct {
	mu           sync.RWMutex
	subs         map[*subscriber]struct{}
	writeTimeout time.Duration
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:         make(map[*subscriber]struct{}),
		writeTimeout: consts.WSWriteTimeout,
	}
}

// Handler returns the HTTP handler that upgrades requests to subscriber connections.
func (h *Hub) Handler() http.Handler {
	return websocket.Server{
		// Accept any origin; the API is meant for cross-origin clients.
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   h.serve,
	}
}

// Broadcast serializes ev once and writes it to every subscriber, dropping any that fail.
//
// Writes run on the caller's goroutine, so a stalled subscriber holds the caller
// for at most the write timeout before it is dropped.
func (h *Hub) Broadcast(ev models.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logging.E("Failed to marshal %s event: %v", ev.Type, err)
		return
	}

	for _, s := range h.snapshot() {
		if err := s.write(msg, h.writeTimeout); err != nil {
			logging.D(1, "Dropping subscriber %v after write error: %v", s.conn.Request().RemoteAddr, err)
			h.remove(s)
			_ = s.conn.Close()
		}
	}
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for s := range subs {
		_ = s.conn.Close()
	}
}

// serve runs for the lifetime of one connection.
func (h *Hub) serve(conn *websocket.Conn) {
	s := &subscriber{conn: conn}
	defer func() {
		h.remove(s)
		_ = conn.Close()
	}()

	remote := conn.Request().RemoteAddr
	logging.D(1, "WebSocket client %s connected", remote)

	hello, err := json.Marshal(models.Event{
		Type:    consts.EventConnection,
		Payload: models.ConnectionStatus{Status: connectedStatus},
	})
	if err != nil {
		logging.E("Failed to marshal connection event: %v", err)
		return
	}
	if err := s.write(hello, h.writeTimeout); err != nil {
		logging.D(1, "WebSocket client %s unreachable: %v", remote, err)
		return
	}

	// Registered after the confirmation so it is always the first message.
	h.add(s)

	// Client messages are read and ignored; the read fails once the client goes away.
	for {
		var msg string
		if err := websocket.Message.Receive(conn, &msg); err != nil {
			logging.D(1, "WebSocket client %s disconnected: %v", remote, err)
			return
		}
		logging.D(3, "WebSocket client %s sent %q", remote, msg)
	}
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

func (h *Hub) snapshot() []*subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		out = append(out, s)
	}
	return out
}
