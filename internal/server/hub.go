package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/storage"
)

// writeWait bounds how long a single subscriber write may block.
const writeWait = 5 * time.Second

// eventMessage is the wire format pushed to websocket subscribers.
type eventMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id"`
	Seq       int64       `json:"seq"`
	Event     event.Event `json:"event"`
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub fans appended events out to per-session websocket subscribers.
// Subscribers that fail a write are dropped and their connection
// closed; a slow client never blocks the append path for longer than
// the write deadline.
type Hub struct {
	log *zap.Logger

	mu          sync.Mutex
	subscribers map[string]map[*subscriber]bool
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:         log,
		subscribers: make(map[string]map[*subscriber]bool),
	}
}

// Subscribe registers a connection for a session's event feed and
// returns the handle used to unsubscribe.
func (h *Hub) Subscribe(sessionID string, conn *websocket.Conn) *subscriber {
	sub := &subscriber{conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[*subscriber]bool)
	}
	h.subscribers[sessionID][sub] = true
	return sub
}

// Unsubscribe removes a connection from a session's feed.
func (h *Hub) Unsubscribe(sessionID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sessionID, sub)
}

func (h *Hub) removeLocked(sessionID string, sub *subscriber) {
	subs, ok := h.subscribers[sessionID]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, sessionID)
	}
}

// SubscriberCount reports the number of live subscribers for a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[sessionID])
}

// Broadcast pushes one stored event to every subscriber of its
// session. The signature matches the game service's broadcaster hook.
func (h *Hub) Broadcast(sessionID string, stored storage.StoredEvent) {
	data, err := json.Marshal(eventMessage{
		Type:      "event",
		SessionID: sessionID,
		Seq:       stored.Seq,
		Event:     stored.Event,
	})
	if err != nil {
		h.log.Error("encode broadcast", zap.Error(err))
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers[sessionID]))
	for sub := range h.subscribers[sessionID] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			h.log.Debug("drop subscriber",
				zap.String("session_id", sessionID),
				zap.Error(err))
			_ = sub.conn.Close()
			h.mu.Lock()
			h.removeLocked(sessionID, sub)
			h.mu.Unlock()
		}
	}
}
