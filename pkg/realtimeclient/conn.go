package realtimeclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State is the connection lifecycle position.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

const (
	defaultMaxReconnectAttempts = 5
	defaultReconnectDelay       = time.Second
)

// ErrReconnectExhausted is reported through OnError when the bounded
// reconnection budget runs out.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// Options configures a realtime connection.
type Options struct {
	// URL is the websocket endpoint, ws:// or wss://.
	URL string

	// Token authenticates the connection; it is sent as a query parameter
	// because browsers cannot set headers on websocket upgrades.
	Token string

	// RefreshToken, when set, is called once per reconnection sequence after
	// an authentication-class handshake failure, before the next attempt.
	RefreshToken func(ctx context.Context) (string, error)

	// MaxReconnectAttempts bounds one reconnection sequence after an
	// unexpected drop. Zero means the default of 5.
	MaxReconnectAttempts int

	// ReconnectDelay is the pause between attempts. Zero means one second.
	ReconnectDelay time.Duration

	OnEvent       func(Envelope)
	OnStateChange func(State)
	OnError       func(error)
}

// Conn is a realtime connection with bounded reconnection. A manual Close
// never reconnects; an unexpected drop starts one reconnection sequence with
// a capped attempt counter, and previously joined rooms are re-established
// when the connection resumes.
type Conn struct {
	opts Options

	mu          sync.Mutex
	state       State
	ws          *websocket.Conn
	channels    map[string]struct{}
	inFlight    bool
	manualClose bool
}

type controlMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// Dial establishes the connection and starts reading events. The initial
// dial is synchronous: a failure is returned, not retried.
func Dial(ctx context.Context, opts Options) (*Conn, error) {
	if opts.URL == "" {
		return nil, errors.New("realtimeclient: URL is required")
	}
	if opts.MaxReconnectAttempts == 0 {
		opts.MaxReconnectAttempts = defaultMaxReconnectAttempts
	}
	if opts.ReconnectDelay == 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}

	c := &Conn{
		opts:     opts,
		channels: make(map[string]struct{}),
	}

	c.setState(StateConnecting)
	ws, _, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected)
		return nil, err
	}

	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
	c.setState(StateConnected)

	go c.readLoop(ws)
	return c, nil
}

// State returns the current lifecycle position.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Join subscribes to a room. The subscription is remembered and re-sent
// after a reconnect.
func (c *Conn) Join(channel string) error {
	if channel == "" {
		return errors.New("realtimeclient: channel is required")
	}

	c.mu.Lock()
	c.channels[channel] = struct{}{}
	ws := c.ws
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected {
		return nil
	}
	return ws.WriteJSON(controlMessage{Action: "join", Channel: channel})
}

// Leave unsubscribes from a room.
func (c *Conn) Leave(channel string) error {
	c.mu.Lock()
	delete(c.channels, channel)
	ws := c.ws
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected {
		return nil
	}
	return ws.WriteJSON(controlMessage{Action: "leave", Channel: channel})
}

// Close shuts the connection down for good. No reconnection follows.
func (c *Conn) Close() error {
	c.mu.Lock()
	c.manualClose = true
	ws := c.ws
	c.mu.Unlock()

	if ws != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		return ws.Close()
	}
	return nil
}

func (c *Conn) dial(ctx context.Context) (*websocket.Conn, *http.Response, error) {
	endpoint, err := url.Parse(c.opts.URL)
	if err != nil {
		return nil, nil, err
	}

	query := endpoint.Query()
	c.mu.Lock()
	query.Set("token", c.opts.Token)
	c.mu.Unlock()
	endpoint.RawQuery = query.Encode()

	return websocket.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
}

func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		var envelope Envelope
		if err := ws.ReadJSON(&envelope); err != nil {
			break
		}
		if c.opts.OnEvent != nil {
			c.opts.OnEvent(envelope)
		}
	}
	c.handleDrop()
}

// handleDrop decides what a terminated read loop means: a manual close ends
// the connection, anything else starts a single reconnection sequence.
func (c *Conn) handleDrop() {
	c.mu.Lock()
	if c.manualClose {
		c.state = StateDisconnected
		c.mu.Unlock()
		c.notifyState(StateDisconnected)
		return
	}
	if c.inFlight {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.mu.Unlock()

	go c.reconnect()
}

func (c *Conn) reconnect() {
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	refreshed := false
	for attempt := 1; attempt <= c.opts.MaxReconnectAttempts; attempt++ {
		c.setState(StateConnecting)
		time.Sleep(c.opts.ReconnectDelay)

		c.mu.Lock()
		if c.manualClose {
			c.mu.Unlock()
			c.setState(StateDisconnected)
			return
		}
		c.mu.Unlock()

		ws, resp, err := c.dial(context.Background())
		if err == nil {
			c.resume(ws)
			return
		}

		if isAuthFailure(resp) {
			if refreshed || c.opts.RefreshToken == nil {
				break
			}
			refreshed = true
			token, refreshErr := c.opts.RefreshToken(context.Background())
			if refreshErr != nil {
				c.notifyError(refreshErr)
				break
			}
			c.mu.Lock()
			c.opts.Token = token
			c.mu.Unlock()
		}
	}

	c.setState(StateDisconnected)
	c.notifyError(ErrReconnectExhausted)
}

// resume installs the fresh socket and re-joins every remembered room.
func (c *Conn) resume(ws *websocket.Conn) {
	c.mu.Lock()
	c.ws = ws
	channels := make([]string, 0, len(c.channels))
	for channel := range c.channels {
		channels = append(channels, channel)
	}
	c.mu.Unlock()

	c.setState(StateConnected)
	for _, channel := range channels {
		if err := ws.WriteJSON(controlMessage{Action: "join", Channel: channel}); err != nil {
			c.notifyError(err)
			break
		}
	}

	go c.readLoop(ws)
}

func (c *Conn) setState(state State) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	c.mu.Unlock()
	if changed {
		c.notifyState(state)
	}
}

func (c *Conn) notifyState(state State) {
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(state)
	}
}

func (c *Conn) notifyError(err error) {
	if c.opts.OnError != nil {
		c.opts.OnError(err)
	}
}

func isAuthFailure(resp *http.Response) bool {
	return resp != nil &&
		(resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden)
}
