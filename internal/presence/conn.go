package presence

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"worldchat/internal/auth"

	"github.com/gorilla/websocket"
)

// Conn is one live WebSocket owned by the gateway. It is never persisted.
type Conn struct {
	ID        string
	Identity  auth.Identity
	CreatedAt time.Time

	state atomic.Int32
	ws    *websocket.Conn
	send  chan []byte
	done  chan struct{}

	stopOnce sync.Once
	mu       sync.Mutex
	reason   string // set when the server initiates the close
	code     int
}

// ConnInfo is a read-only snapshot of a connection.
type ConnInfo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	State     string    `json:"state"`
}

func newConn(id string) *Conn {
	return &Conn{ID: id, CreatedAt: time.Now()}
}

func (c *Conn) State() State {
	return State(c.state.Load())
}

func (c *Conn) transition(to State) error {
	for {
		from := c.State()
		if !canTransition(from, to) {
			return fmt.Errorf("presence: illegal transition %s -> %s", from, to)
		}
		if c.state.CompareAndSwap(int32(from), int32(to)) {
			return nil
		}
	}
}

func (c *Conn) info() ConnInfo {
	return ConnInfo{ID: c.ID, UserID: c.Identity.UserID, CreatedAt: c.CreatedAt, State: c.State().String()}
}

// enqueue queues payload for the write pump; it drops the message when the buffer is full.
func (c *Conn) enqueue(payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Conn) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// closeWith sends a close frame carrying reason and tears the transport down. Only the first
// reason is kept.
func (c *Conn) closeWith(code int, reason string, wait time.Duration) {
	c.mu.Lock()
	if c.reason == "" {
		c.reason = reason
		c.code = code
	}
	c.mu.Unlock()
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(wait))
	_ = c.ws.Close()
}

// closeReason turns the error that ended the read loop into the human-readable reason and close
// code that get logged. A server-initiated reason wins over whatever the transport reported.
func (c *Conn) closeReason(err error) (string, int) {
	c.mu.Lock()
	reason, code := c.reason, c.code
	c.mu.Unlock()
	if reason != "" {
		return reason, code
	}

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		if ce.Code == websocket.CloseAbnormalClosure {
			// Peer vanished without a close frame.
			return "transport close", ce.Code
		}
		if ce.Text != "" {
			return ce.Text, ce.Code
		}
		return "client closed connection", ce.Code
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "ping timeout", websocket.CloseAbnormalClosure
	}
	return "transport close", websocket.CloseAbnormalClosure
}
