package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/ideaswipe/horosafe"
	"github.com/hazyhaar/ideaswipe/idgen"
	"golang.org/x/oauth2"
)

// GatewayConfig configures a Gateway.
type GatewayConfig struct {
	OAuth        *oauth2.Config
	UserInfoURL  string        // default GoogleUserInfoURL
	Secret       []byte        // HS256 key, at least horosafe.MinSecretLen bytes
	TTL          time.Duration // session lifetime, default 24h
	CookieDomain string
	// LandingPath is where the callback redirects after sign-in. Default "/".
	LandingPath string
}

// Gateway turns provider credentials into ideaswipe sessions.
type Gateway struct {
	oauth        *oauth2.Config
	userInfoURL  string
	secret       []byte
	ttl          time.Duration
	cookieDomain string
	landing      string
	newState     idgen.Generator
	logger       *slog.Logger
}

// NewGateway validates cfg and builds a Gateway.
func NewGateway(cfg GatewayConfig, logger *slog.Logger) (*Gateway, error) {
	if cfg.OAuth == nil {
		return nil, fmt.Errorf("auth: OAuth config is required")
	}
	if err := horosafe.ValidateSecret(cfg.Secret); err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = GoogleUserInfoURL
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.LandingPath == "" {
		cfg.LandingPath = "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		oauth:        cfg.OAuth,
		userInfoURL:  cfg.UserInfoURL,
		secret:       cfg.Secret,
		ttl:          cfg.TTL,
		cookieDomain: cfg.CookieDomain,
		landing:      cfg.LandingPath,
		newState:     idgen.NanoID(32),
		logger:       logger,
	}, nil
}

// LoginURL returns the provider consent URL carrying state.
func (g *Gateway) LoginURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// SignIn exchanges an authorization code for a Session and its signed token.
// Fails with ErrUnverifiedEmail when the provider returns no verified email.
func (g *Gateway) SignIn(ctx context.Context, code string) (*Session, string, error) {
	user, tok, err := FetchUser(ctx, g.oauth, g.userInfoURL, code)
	if err != nil {
		return nil, "", err
	}
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" || !user.VerifiedEmail {
		return nil, "", ErrUnverifiedEmail
	}

	claims := &SessionClaims{
		Email:        email,
		DisplayName:  user.Name,
		AvatarURL:    user.AvatarURL,
		AuthProvider: "google",
	}
	signed, err := GenerateToken(g.secret, claims, g.ttl)
	if err != nil {
		return nil, "", err
	}

	g.logger.Info("auth: signed in", "email", email)
	return &Session{
		Email:       email,
		AccessToken: tok.AccessToken,
		Name:        user.Name,
		AvatarURL:   user.AvatarURL,
	}, signed, nil
}
