// Package matchrealtime pushes match events to browsers over WebSockets. An
// event router consumes the bus and the hub fans each message out to the
// sockets watching its match.
package matchrealtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/google/uuid"
)

// sendBuffer is how many frames a client may lag behind before it is dropped.
const sendBuffer = 32

// Frame is the JSON envelope written to the socket.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client is one socket subscribed to a match.
type Client struct {
	matchID uuid.UUID
	send    chan []byte
}

// Send is closed when the hub drops the client.
func (c *Client) Send() <-chan []byte { return c.send }

// Hub tracks the sockets of every match.
type Hub struct {
	mu     sync.Mutex
	rooms  map[uuid.UUID]map[*Client]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[*Client]struct{}), logger: logger}
}

// Join registers a new client for matchID.
func (h *Hub) Join(matchID uuid.UUID) *Client {
	c := &Client{matchID: matchID, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[matchID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[matchID] = room
	}
	room[c] = struct{}{}
	h.logger.Debug("Realtime client joined", attr.UUID("match_id", matchID), attr.Int("clients", len(room)))
	return c
}

// Leave unregisters c. Calling it for a dropped client is a no-op.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c)
}

// remove must be called with mu held.
func (h *Hub) remove(c *Client) {
	room, ok := h.rooms[c.matchID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.matchID)
	}
}

// Broadcast queues data for every client of matchID and returns how many
// received it. A client whose buffer is full is dropped.
func (h *Hub) Broadcast(matchID uuid.UUID, data []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for c := range h.rooms[matchID] {
		select {
		case c.send <- data:
			delivered++
		default:
			h.logger.Warn("Dropping slow realtime client", attr.UUID("match_id", matchID))
			h.remove(c)
		}
	}
	return delivered
}

// Count returns the number of clients watching matchID.
func (h *Hub) Count(matchID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[matchID])
}

// Close drops every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for c := range room {
			h.remove(c)
		}
	}
}
