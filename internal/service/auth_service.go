package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"worldchat/config"
	"worldchat/internal/auth"
	"worldchat/internal/models"
	"worldchat/internal/repository"

	"gorm.io/gorm"
)

var ErrDiscordProfile = errors.New("discord profile is missing id or username")

// DiscordProfile is the subset of GET /users/@me used for sign-in.
type DiscordProfile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	Email         string `json:"email"`
	Verified      bool   `json:"verified"`
}

// DisplayName is "username#discriminator", or just the username for accounts on the
// discriminator-less naming scheme.
func (p DiscordProfile) DisplayName() string {
	if p.Discriminator == "" || p.Discriminator == "0" {
		return p.Username
	}
	return p.Username + "#" + p.Discriminator
}

// AvatarURL returns the CDN URL of the avatar, or "" when the account has none.
func (p DiscordProfile) AvatarURL() string {
	if p.Avatar == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", p.ID, p.Avatar)
}

type AuthService struct {
	cfg         *config.Config
	userRepo    *repository.UserRepository
	accountRepo *repository.AccountRepository
	sessions    *repository.SessionRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, accountRepo *repository.AccountRepository, sessions *repository.SessionRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, accountRepo: accountRepo, sessions: sessions}
}

// LoginWithDiscord upserts the Discord account, then the user linked to it, and reports whether
// the user was created.
func (s *AuthService) LoginWithDiscord(ctx context.Context, p DiscordProfile) (*models.User, bool, error) {
	if p.ID == "" || p.Username == "" {
		return nil, false, ErrDiscordProfile
	}
	err := s.accountRepo.Upsert(ctx, &models.Account{
		ID:            p.ID,
		Username:      p.Username,
		Discriminator: p.Discriminator,
		Avatar:        p.Avatar,
		Email:         p.Email,
		EmailVerified: p.Verified,
	})
	if err != nil {
		return nil, false, err
	}

	u, err := s.userRepo.GetByAccountID(ctx, p.ID)
	if err == nil {
		u.Name = p.DisplayName()
		if img := p.AvatarURL(); img != "" {
			u.Image = img
		}
		if err := s.userRepo.UpdateProfile(ctx, u); err != nil {
			return nil, false, err
		}
		return u, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	accountID := p.ID
	u = &models.User{
		AccountID: &accountID,
		Name:      p.DisplayName(),
		Image:     p.AvatarURL(),
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// StartSession issues a session for userID using the configured TTL.
func (s *AuthService) StartSession(ctx context.Context, userID, userAgent, ip string) (*models.Session, error) {
	return s.sessions.Create(ctx, userID, s.cfg.Session.TTL, userAgent, ip)
}

func (s *AuthService) EndSession(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// IssueAccessToken signs a bearer token for an existing user.
func (s *AuthService) IssueAccessToken(ctx context.Context, userID string) (string, time.Time, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Name)
}
