package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Identity is the authenticated user behind a request or connection.
type Identity struct {
	UserID    string
	SessionID string // empty when authenticated by bearer token
}

// Resolver maps an inbound request to an identity. ok is false when the request carries no
// usable credentials; malformed, expired and unknown credentials all count as absent.
// HTTP middleware and the presence gateway resolve through the same Resolver.
type Resolver interface {
	Resolve(r *http.Request) (id Identity, ok bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(r *http.Request) (Identity, bool)

func (f ResolverFunc) Resolve(r *http.Request) (Identity, bool) { return f(r) }

// SessionStore looks up server-held sessions. Active returns "" for unknown or expired tokens.
type SessionStore interface {
	Active(ctx context.Context, token string, now time.Time) (string, error)
}

const maxTokenLen = 128

// SessionResolver authenticates by session cookie.
type SessionResolver struct {
	cookie string
	store  SessionStore
	log    *slog.Logger
	now    func() time.Time
}

func NewSessionResolver(cookieName string, store SessionStore, log *slog.Logger) *SessionResolver {
	return &SessionResolver{cookie: cookieName, store: store, log: log, now: time.Now}
}

func (s *SessionResolver) Resolve(r *http.Request) (Identity, bool) {
	c, err := r.Cookie(s.cookie)
	if err != nil {
		return Identity{}, false
	}
	token := strings.TrimSpace(c.Value)
	if token == "" || len(token) > maxTokenLen {
		return Identity{}, false
	}
	userID, err := s.store.Active(r.Context(), token, s.now())
	if err != nil {
		s.log.Warn("session lookup failed", "error", err)
		return Identity{}, false
	}
	if userID == "" {
		return Identity{}, false
	}
	return Identity{UserID: userID, SessionID: token}, true
}

// TokenResolver authenticates by "Authorization: Bearer <jwt>".
type TokenResolver struct {
	parse func(string) (*Claims, error)
}

func NewTokenResolver(parse func(string) (*Claims, error)) *TokenResolver {
	return &TokenResolver{parse: parse}
}

func (t *TokenResolver) Resolve(r *http.Request) (Identity, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, false
	}
	claims, err := t.parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return Identity{}, false
	}
	return Identity{UserID: claims.Subject}, true
}

// Chain tries each resolver in order and returns the first identity found.
type Chain []Resolver

func (c Chain) Resolve(r *http.Request) (Identity, bool) {
	for _, res := range c {
		if id, ok := res.Resolve(r); ok {
			return id, true
		}
	}
	return Identity{}, false
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}
