package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"worldchat/config"
	"worldchat/internal/auth"
	"worldchat/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

var headerResolver = auth.ResolverFunc(func(r *http.Request) (auth.Identity, bool) {
	uid := r.Header.Get("X-Test-User")
	return auth.Identity{UserID: uid}, uid != ""
})

func TestAuthenticate_AttachesIdentity(t *testing.T) {
	r := gin.New()
	r.Use(Authenticate(headerResolver))
	r.GET("/whoami", func(c *gin.Context) {
		fromReq, _ := auth.IdentityFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"gin": GetUserID(c), "ctx": fromReq.UserID})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Test-User", "user-7")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"gin":"user-7","ctx":"user-7"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.JSONEq(t, `{"gin":"","ctx":""}`, w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	r := gin.New()
	r.Use(Authenticate(headerResolver), AuthRequired())
	r.GET("/private", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "not authorized")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-Test-User", "user-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiter_Window(t *testing.T) {
	l := NewInMemoryRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys are independent")

	now = now.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("a"))

	now = now.Add(2 * time.Minute)
	l.sweep()
	assert.Zero(t, l.keys())
}

func TestRateLimiter_RunStopsWithContext(t *testing.T) {
	l := NewInMemoryRateLimiter(1, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRateLimit_KeysByUserThenIP(t *testing.T) {
	r := gin.New()
	r.Use(Authenticate(headerResolver), RateLimit(NewInMemoryRateLimiter(1, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(user string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do(""))
	assert.Equal(t, http.StatusTooManyRequests, do(""))
	assert.Equal(t, http.StatusOK, do("user-1"), "authenticated callers get their own bucket")
	assert.Equal(t, http.StatusTooManyRequests, do("user-1"))
	assert.Equal(t, http.StatusOK, do("user-2"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, config.LogConfig{Level: "debug", Format: "json"})
	r := gin.New()
	r.Use(Authenticate(headerResolver), RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Test-User", "user-3")
	r.ServeHTTP(w, req)
	id := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
	assert.Contains(t, buf.String(), `"user_id":"user-3"`)

	buf.Reset()
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
	line := buf.String()
	assert.True(t, strings.Contains(line, `"level":"ERROR"`), line)
	assert.Contains(t, line, `"status":500`)
}
