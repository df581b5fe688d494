// Package realtime implements the event emitter over websockets. Connected
// clients join rooms named after the event channels; publishing fans the
// envelope out to every member of the matching room. Delivery is fire and
// forget: a slow client loses messages instead of slowing the publisher.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/logger"
)

// envelope is the wire frame every published event is wrapped in.
type envelope struct {
	Channel   string    `json:"channel"`
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub tracks sessions and the rooms they joined.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Session]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Session]struct{}),
	}
}

var _ ports.EventPublisher = (*Hub)(nil)

// Publish sends the event to every session in the channel's room. Marshal
// failures and full client buffers are logged and swallowed; the caller has
// already committed its state change and must not be rolled back by the
// push path.
func (h *Hub) Publish(channel string, event string, payload any) {
	frame, err := json.Marshal(envelope{
		Channel:   channel,
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.L().Warn("drop realtime event, marshal failed",
			zap.String("channel", channel),
			zap.String("event", event),
			zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for session := range h.rooms[channel] {
		select {
		case session.send <- frame:
		default:
			// Slow consumer, do not block the publisher.
			logger.L().Warn("drop realtime event, client buffer full",
				zap.String("channel", channel),
				zap.String("event", event))
		}
	}
}

// join adds the session to the channel's room.
func (h *Hub) join(session *Session, channel string) {
	if channel == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[channel]
	if !ok {
		room = make(map[*Session]struct{})
		h.rooms[channel] = room
	}
	room[session] = struct{}{}
	session.channels[channel] = struct{}{}
}

// leave removes the session from the channel's room.
func (h *Hub) leave(session *Session, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(session, channel)
}

// drop removes the session from every room and releases its send queue.
func (h *Hub) drop(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel := range session.channels {
		h.removeLocked(session, channel)
	}
	close(session.send)
}

func (h *Hub) removeLocked(session *Session, channel string) {
	room, ok := h.rooms[channel]
	if !ok {
		return
	}
	delete(room, session)
	delete(session.channels, channel)
	if len(room) == 0 {
		delete(h.rooms, channel)
	}
}

// RoomSize reports the number of sessions joined to a channel.
func (h *Hub) RoomSize(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[channel])
}
