package presence

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"worldchat/config"
	"worldchat/internal/auth"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	sendBufferSize = 16
	maxMessageSize = 4096

	reasonShutdown = "server shutting down"
)

type Options struct {
	// AllowedOrigin is the only browser origin accepted; requests without an Origin header
	// (non-browser clients) are always accepted.
	AllowedOrigin string
	WriteWait     time.Duration
	PongWait      time.Duration
	PingPeriod    time.Duration
}

// OptionsFromConfig restricts origins to the public base URL.
func OptionsFromConfig(cfg *config.Config) Options {
	origin := cfg.Server.BaseURL
	if u, err := url.Parse(cfg.Server.BaseURL); err == nil && u.Host != "" {
		origin = u.Scheme + "://" + u.Host
	}
	return Options{
		AllowedOrigin: origin,
		WriteWait:     cfg.WebSocket.WriteWait,
		PongWait:      cfg.WebSocket.PongWait,
		PingPeriod:    cfg.WebSocket.PingPeriod,
	}
}

// connectedEvent is the first frame an authenticated client receives.
type connectedEvent struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connection_id"`
	UserID       string `json:"user_id"`
}

// Gateway accepts WebSocket connections, authenticates them and tracks their lifecycle.
// It never reads or writes the data store.
type Gateway struct {
	resolver auth.Resolver
	opts     Options
	log      *slog.Logger
	upgrader websocket.Upgrader
	tracker  *Tracker

	mu      sync.RWMutex
	conns   map[string]*Conn
	closing bool
	wg      sync.WaitGroup
}

func NewGateway(resolver auth.Resolver, opts Options, log *slog.Logger) *Gateway {
	if opts.WriteWait <= 0 {
		opts.WriteWait = 10 * time.Second
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}
	g := &Gateway{
		resolver: resolver,
		opts:     opts,
		log:      log.With("component", "presence"),
		tracker:  NewTracker(),
		conns:    make(map[string]*Conn),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || g.opts.AllowedOrigin == "" || g.opts.AllowedOrigin == "*" {
		return true
	}
	return strings.EqualFold(origin, g.opts.AllowedOrigin)
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.RLock()
	closing := g.closing
	g.mu.RUnlock()
	if closing {
		http.Error(w, reasonShutdown, http.StatusServiceUnavailable)
		return
	}

	c := newConn(uuid.NewString())
	id, ok := g.resolver.Resolve(r)

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered with an HTTP error.
		_ = c.transition(StateClosed)
		g.log.Debug("websocket upgrade failed", "conn_id", c.ID, "error", err)
		return
	}
	c.ws = ws

	if !ok {
		_ = c.transition(StateClosed)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ""),
			time.Now().Add(g.opts.WriteWait))
		_ = ws.Close()
		g.log.Info("rejected unauthenticated connection", "conn_id", c.ID, "remote_addr", r.RemoteAddr)
		return
	}

	c.Identity = id
	c.send = make(chan []byte, sendBufferSize)
	c.done = make(chan struct{})
	_ = c.transition(StateAuthenticated)
	if !g.register(c) {
		c.closeWith(websocket.CloseGoingAway, reasonShutdown, g.opts.WriteWait)
		return
	}
	defer g.wg.Done()
	_ = c.transition(StateActive)
	g.log.Info("new connection", "conn_id", c.ID, "user_id", id.UserID)

	c.enqueue(connectedEvent{Type: "connected", ConnectionID: c.ID, UserID: id.UserID})
	go g.writePump(c)
	reason, code := g.readPump(c)

	_ = c.transition(StateDisconnecting)
	g.log.Info("disconnecting", "conn_id", c.ID, "user_id", id.UserID, "reason", reason)
	c.stop()
	g.unregister(c)
	_ = ws.Close()
	_ = c.transition(StateClosed)
	g.log.Info("disconnect", "conn_id", c.ID, "user_id", id.UserID, "reason", reason, "close_code", code)
}

func (g *Gateway) register(c *Conn) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closing {
		return false
	}
	g.conns[c.ID] = c
	g.tracker.Increment(c.Identity.UserID)
	g.wg.Add(1)
	return true
}

func (g *Gateway) unregister(c *Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.conns[c.ID]; !ok {
		return
	}
	delete(g.conns, c.ID)
	g.tracker.Decrement(c.Identity.UserID)
}

// readPump drains inbound frames until the transport ends and reports why it ended.
// Inbound payloads are ignored; the gateway only tracks presence.
func (g *Gateway) readPump(c *Conn) (string, int) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(g.opts.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(g.opts.PongWait))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return c.closeReason(err)
		}
	}
}

// writePump copies queued messages to the connection and keeps it alive with pings.
func (g *Gateway) writePump(c *Conn) {
	ticker := time.NewTicker(g.opts.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(g.opts.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = c.ws.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(g.opts.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.ws.Close()
				return
			}
		}
	}
}

// Lookup returns a snapshot of the live connection with the given id.
func (g *Gateway) Lookup(id string) (ConnInfo, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.conns[id]
	if !ok {
		return ConnInfo{}, false
	}
	return c.info(), true
}

func (g *Gateway) Connections() []ConnInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	list := make([]ConnInfo, 0, len(g.conns))
	for _, c := range g.conns {
		list = append(list, c.info())
	}
	return list
}

func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

func (g *Gateway) Tracker() *Tracker {
	return g.tracker
}

// Disconnect closes one connection from the server side; reason is logged as the disconnect reason.
func (g *Gateway) Disconnect(connID, reason string) bool {
	g.mu.RLock()
	c, ok := g.conns[connID]
	g.mu.RUnlock()
	if !ok {
		return false
	}
	c.closeWith(websocket.CloseNormalClosure, reason, g.opts.WriteWait)
	return true
}

// Shutdown stops accepting connections, closes the live ones and waits for their handlers to
// finish or for ctx to expire.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closing = true
	conns := make([]*Conn, 0, len(g.conns))
	for _, c := range g.conns {
		conns = append(conns, c)
	}
	g.mu.Unlock()

	for _, c := range conns {
		c.closeWith(websocket.CloseGoingAway, reasonShutdown, g.opts.WriteWait)
	}

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
