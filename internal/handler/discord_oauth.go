package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"worldchat/config"
	"worldchat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const oauthStateCookie = "worldchat.oauth_state"

type DiscordOAuthHandler struct {
	cfg     *config.Config
	authSvc *service.AuthService
	log     *slog.Logger
}

func NewDiscordOAuthHandler(cfg *config.Config, authSvc *service.AuthService, log *slog.Logger) *DiscordOAuthHandler {
	return &DiscordOAuthHandler{cfg: cfg, authSvc: authSvc, log: log.With("component", "oauth")}
}

func (h *DiscordOAuthHandler) OAuth2Config() *oauth2.Config {
	base := h.cfg.OAuth.DiscordAPIBase
	return &oauth2.Config{
		ClientID:     h.cfg.OAuth.DiscordClientID,
		ClientSecret: h.cfg.OAuth.DiscordClientSecret,
		RedirectURL:  h.cfg.OAuth.DiscordCallbackURL,
		Scopes:       []string{"identify", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/oauth2/authorize",
			TokenURL:  base + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Redirect sends the browser to the Discord consent screen.
func (h *DiscordOAuthHandler) Redirect(c *gin.Context) {
	if h.cfg.OAuth.DiscordClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Discord OAuth not configured"})
		return
	}
	state := uuid.NewString()
	setCookie(c, h.cfg, oauthStateCookie, state, 10*time.Minute)
	c.Redirect(http.StatusFound, h.OAuth2Config().AuthCodeURL(state))
}

// Callback exchanges the code, signs the Discord user in and starts a session.
func (h *DiscordOAuthHandler) Callback(c *gin.Context) {
	if h.cfg.OAuth.DiscordClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Discord OAuth not configured"})
		return
	}
	want, err := c.Cookie(oauthStateCookie)
	if err != nil || want == "" || c.Query("state") != want {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	setCookie(c, h.cfg, oauthStateCookie, "", -1)
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	ctx := c.Request.Context()
	conf := h.OAuth2Config()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		h.log.Warn("code exchange failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "exchange failed"})
		return
	}
	resp, err := conf.Client(ctx, tok).Get(h.cfg.OAuth.DiscordAPIBase + "/users/@me")
	if err != nil {
		h.log.Error("fetch discord profile", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		h.log.Error("fetch discord profile", "status", resp.StatusCode)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	var profile service.DiscordProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid user info"})
		return
	}

	u, created, err := h.authSvc.LoginWithDiscord(ctx, profile)
	if err != nil {
		if errors.Is(err, service.ErrDiscordProfile) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("discord login failed", "account_id", profile.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	sess, err := h.authSvc.StartSession(ctx, u.ID, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.log.Error("start session failed", "user_id", u.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	h.log.Info("signed in", "user_id", u.ID, "new_user", created)
	setCookie(c, h.cfg, h.cfg.Session.CookieName, sess.ID, h.cfg.Session.TTL)
	c.Redirect(http.StatusFound, h.cfg.Server.BaseURL+"/")
}

// setCookie writes an HttpOnly, SameSite=Lax cookie; a negative maxAge deletes it.
func setCookie(c *gin.Context, cfg *config.Config, name, value string, maxAge time.Duration) {
	age := int(maxAge / time.Second)
	if maxAge < 0 {
		age = -1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   age,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}
