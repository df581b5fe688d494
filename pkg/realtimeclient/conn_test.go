package realtimeclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/pkg/realtimeclient"
)

// wsServer is a minimal realtime endpoint that records tokens and joined
// channels and can push frames or drop clients on demand.
type wsServer struct {
	t        *testing.T
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu     sync.Mutex
	tokens []string
	joins  []string
	conns  []*websocket.Conn
	reject bool
}

func newWSServer(t *testing.T) *wsServer {
	s := &wsServer{t: t}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.tokens = append(s.tokens, r.URL.Query().Get("token"))
		reject := s.reject
		s.mu.Unlock()

		if reject {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		go func() {
			for {
				var msg struct {
					Action  string `json:"action"`
					Channel string `json:"channel"`
				}
				if err := conn.ReadJSON(&msg); err != nil {
					return
				}
				if msg.Action == "join" {
					s.mu.Lock()
					s.joins = append(s.joins, msg.Channel)
					s.mu.Unlock()
				}
			}
		}()
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *wsServer) url() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func (s *wsServer) setReject(reject bool) {
	s.mu.Lock()
	s.reject = reject
	s.mu.Unlock()
}

func (s *wsServer) joined() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.joins...)
}

func (s *wsServer) seenTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tokens...)
}

func (s *wsServer) dropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
}

func (s *wsServer) push(envelope realtimeclient.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		data, err := json.Marshal(envelope)
		require.NoError(s.t, err)
		require.NoError(s.t, conn.WriteMessage(websocket.TextMessage, data))
	}
}

func TestConn(t *testing.T) {
	ctx := t.Context()

	t.Run("should connect and deliver events", func(t *testing.T) {
		server := newWSServer(t)

		received := make(chan realtimeclient.Envelope, 1)
		conn, err := realtimeclient.Dial(ctx, realtimeclient.Options{
			URL:     server.url(),
			Token:   "token-1",
			OnEvent: func(e realtimeclient.Envelope) { received <- e },
		})
		require.NoError(t, err)
		defer conn.Close()

		assert.Equal(t, realtimeclient.StateConnected, conn.State())
		assert.Equal(t, []string{"token-1"}, server.seenTokens())

		server.push(realtimeclient.Envelope{
			Channel: "order:o1",
			Event:   realtimeclient.EventOrderStatusUpdate,
			Payload: json.RawMessage(`{"orderId":"o1","status":"CONFIRMED"}`),
		})

		select {
		case envelope := <-received:
			assert.Equal(t, realtimeclient.EventOrderStatusUpdate, envelope.Event)
		case <-time.After(2 * time.Second):
			t.Fatal("no event delivered")
		}
	})

	t.Run("should stay disconnected after a manual close", func(t *testing.T) {
		server := newWSServer(t)

		states := make(chan realtimeclient.State, 8)
		conn, err := realtimeclient.Dial(ctx, realtimeclient.Options{
			URL:            server.url(),
			ReconnectDelay: 10 * time.Millisecond,
			OnStateChange:  func(s realtimeclient.State) { states <- s },
		})
		require.NoError(t, err)

		require.NoError(t, conn.Close())

		require.Eventually(t, func() bool {
			return conn.State() == realtimeclient.StateDisconnected
		}, 2*time.Second, 10*time.Millisecond)

		// No reconnect follows a manual close.
		time.Sleep(100 * time.Millisecond)
		assert.Len(t, server.seenTokens(), 1)
	})

	t.Run("should reconnect after a drop and re-join rooms", func(t *testing.T) {
		server := newWSServer(t)

		conn, err := realtimeclient.Dial(ctx, realtimeclient.Options{
			URL:            server.url(),
			ReconnectDelay: 10 * time.Millisecond,
		})
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.Join("order:o1"))
		require.Eventually(t, func() bool {
			return len(server.joined()) == 1
		}, 2*time.Second, 10*time.Millisecond)

		server.dropAll()

		require.Eventually(t, func() bool {
			return conn.State() == realtimeclient.StateConnected && len(server.seenTokens()) == 2
		}, 2*time.Second, 10*time.Millisecond)

		// The order room subscription came back without a new Join call.
		require.Eventually(t, func() bool {
			return len(server.joined()) == 2
		}, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, []string{"order:o1", "order:o1"}, server.joined())
	})

	t.Run("should refresh the token once on an auth failure", func(t *testing.T) {
		server := newWSServer(t)

		refreshes := 0
		conn, err := realtimeclient.Dial(ctx, realtimeclient.Options{
			URL:            server.url(),
			Token:          "stale",
			ReconnectDelay: 10 * time.Millisecond,
			RefreshToken: func(context.Context) (string, error) {
				refreshes++
				server.setReject(false)
				return "fresh", nil
			},
		})
		require.NoError(t, err)
		defer conn.Close()

		server.setReject(true)
		server.dropAll()

		require.Eventually(t, func() bool {
			return conn.State() == realtimeclient.StateConnected
		}, 2*time.Second, 10*time.Millisecond)

		assert.Equal(t, 1, refreshes)
		tokens := server.seenTokens()
		assert.Equal(t, "fresh", tokens[len(tokens)-1])
	})

	t.Run("should give up after the attempt budget", func(t *testing.T) {
		server := newWSServer(t)

		errs := make(chan error, 1)
		conn, err := realtimeclient.Dial(ctx, realtimeclient.Options{
			URL:                  server.url(),
			MaxReconnectAttempts: 2,
			ReconnectDelay:       10 * time.Millisecond,
			OnError:              func(e error) { errs <- e },
		})
		require.NoError(t, err)
		defer conn.Close()

		// CloseClientConnections does not reach hijacked (upgraded) websocket
		// conns, so shut the listener down and drop the sockets directly.
		server.server.Close()
		server.dropAll()

		select {
		case err := <-errs:
			assert.ErrorIs(t, err, realtimeclient.ErrReconnectExhausted)
		case <-time.After(5 * time.Second):
			t.Fatal("reconnect never gave up")
		}
		assert.Equal(t, realtimeclient.StateDisconnected, conn.State())
	})

	t.Run("should reject a missing URL", func(t *testing.T) {
		_, err := realtimeclient.Dial(ctx, realtimeclient.Options{})

		assert.Error(t, err)
	})
}
