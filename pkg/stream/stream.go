// Package stream is the Go client for sysmonify's WebSocket streams. It
// dials one resource kind's endpoint, decodes frames into typed payload
// messages, and quietly redials with backoff when the server goes away,
// so a viewer keeps its last data on screen across a server restart.
package stream

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/k3y5tr0k3/sysmonify/internal/errors"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// DefaultDialTimeout bounds the WebSocket handshake.
const DefaultDialTimeout = 5 * time.Second

// Reconnect backoff bounds. Vars so tests can tighten them.
var (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 10 * time.Second
)

// Client is one live subscription to a resource kind's stream.
type Client struct {
	kind    payload.Kind
	host    string
	url     string
	timeout time.Duration
	log     logger.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	msgs chan payload.Message
	done chan struct{}
}

// Dial connects to one resource kind's stream on a sysmonify server.
// host is the listen address (e.g. "127.0.0.1:8793"); http/https URLs are
// accepted and mapped to ws/wss.
func Dial(host string, kind payload.Kind, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	c := &Client{
		kind:    kind,
		host:    host,
		url:     streamURL(host, kind),
		timeout: timeout,
		log:     logger.Default(),
		msgs:    make(chan payload.Message, 8),
		done:    make(chan struct{}),
	}

	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	c.conn = conn

	go c.run()
	return c, nil
}

// Kind returns the resource kind this client is subscribed to.
func (c *Client) Kind() payload.Kind {
	return c.kind
}

// Messages returns the delivery channel. Decoded messages arrive in
// publish order; when the consumer falls behind, the oldest undelivered
// message is dropped for the newest. The channel closes when the client
// is closed.
func (c *Client) Messages() <-chan payload.Message {
	return c.msgs
}

// Close tears the connection down and closes the message channel. Safe to
// call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	close(c.done)
	if conn == nil {
		return nil
	}

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return conn.Close()
}

// run reads frames until the client closes, redialing as needed.
func (c *Client) run() {
	defer close(c.msgs)

	for {
		conn := c.current()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.isClosed() {
				return
			}
			c.log.Debug("[stream] %s connection lost: %v", c.kind, err)
			if !c.reconnect() {
				return
			}
			continue
		}

		msg, err := payload.Decode(c.kind, data)
		if err != nil {
			c.log.Debug("[stream] %s frame decode failed: %v", c.kind, err)
			continue
		}
		c.deliver(msg)
	}
}

// deliver enqueues without blocking, evicting the oldest buffered message
// when the consumer is behind.
func (c *Client) deliver(msg payload.Message) {
	for {
		select {
		case c.msgs <- msg:
			return
		default:
		}
		select {
		case <-c.msgs:
		default:
		}
	}
}

// reconnect redials with capped exponential backoff until it succeeds or
// the client closes.
func (c *Client) reconnect() bool {
	delay := reconnectBaseDelay

	for attempt := 1; ; attempt++ {
		select {
		case <-c.done:
			return false
		case <-time.After(delay):
		}

		conn, err := c.dial()
		if err == nil {
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				conn.Close()
				return false
			}
			c.conn = conn
			c.mu.Unlock()
			c.log.Debug("[stream] %s reconnected after %d attempt(s)", c.kind, attempt)
			return true
		}
		c.log.Debug("[stream] %s reconnect attempt %d failed: %v", c.kind, attempt, err)

		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

func (c *Client) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.timeout}
	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStream,
			fmt.Sprintf("Can't reach the %s stream at %s", c.kind, c.host),
			"Check that `sysmonify serve` is running there")
	}
	return conn, nil
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.conn
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// streamURL maps a host or URL to the kind's ws endpoint.
func streamURL(host string, kind payload.Kind) string {
	base := host
	switch {
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case !strings.Contains(base, "://"):
		base = "ws://" + base
	}
	return strings.TrimRight(base, "/") + "/ws/" + kind.String()
}
