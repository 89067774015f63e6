package server

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// #region events
// Event is one websocket frame: an event name plus its payload.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Websocket event names shared with clients.
const (
	eventSubscribed = "subscribed"
	eventSend       = "message:send"
	eventAck        = "message:ack"
	eventReceived   = "message:received"
	eventError      = "message:error"
)

// #endregion events

// #region client
// wsClient is one subscriber connection. Writes are serialized through mu
// because hub broadcasts and direct replies come from different goroutines.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(event)
}

// #endregion client

// #region hub
// Hub fans conversation events out to websocket subscribers, one room per
// conversation.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]map[*wsClient]bool
	logger *slog.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[string]map[*wsClient]bool),
		logger: logger,
	}
}

// Subscribe registers a connection for a conversation's events.
func (h *Hub) Subscribe(conversationID string, cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[conversationID]
	if room == nil {
		room = make(map[*wsClient]bool)
		h.rooms[conversationID] = room
	}
	room[cl] = true
}

// Unsubscribe drops a connection; emptied rooms are deleted.
func (h *Hub) Unsubscribe(conversationID string, cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[conversationID]
	delete(room, cl)
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
}

// Subscribers reports the current audience for a conversation.
func (h *Hub) Subscribers(conversationID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[conversationID])
}

// Broadcast sends an event to every subscriber of a conversation.
// Connections whose write fails are closed and dropped.
func (h *Hub) Broadcast(conversationID string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[conversationID]
	for cl := range room {
		if err := cl.send(event); err != nil {
			h.logger.Warn("websocket write failed, dropping subscriber",
				"conversation", conversationID, "error", err)
			cl.conn.Close()
			delete(room, cl)
		}
	}
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
}

// Close disconnects every subscriber, typically at shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for cl := range room {
			cl.conn.Close()
		}
		delete(h.rooms, id)
	}
}

// #endregion hub
