package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"fulfillment/internal/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 32
)

// controlMessage is what clients send upstream: room membership changes.
type controlMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// Session is one websocket connection and its room memberships.
type Session struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// channels is guarded by hub.mu.
	channels map[string]struct{}
}

// Serve owns conn until it closes: it registers the session, pumps outbound
// frames on a goroutine and reads membership commands until the peer drops.
func (h *Hub) Serve(conn *websocket.Conn) {
	session := &Session{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		channels: make(map[string]struct{}),
	}

	go session.writePump()
	session.readPump()
}

func (s *Session) readPump() {
	defer func() {
		s.hub.drop(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		var msg controlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.L().Debug("ignore malformed control message", zap.Error(err))
			continue
		}

		switch msg.Action {
		case "join":
			s.hub.join(s, msg.Channel)
		case "leave":
			s.hub.leave(s, msg.Channel)
		default:
			logger.L().Debug("ignore unknown control action", zap.String("action", msg.Action))
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
