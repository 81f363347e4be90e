// Package auth runs the Google OAuth2 authorization code flow and turns its
// result into a session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/idtoken"

	"github.com/hal9000y/mail-triage/internal/session"
)

var (
	// ErrInvalidState indicates the callback state was never issued, was
	// already used or has expired.
	ErrInvalidState = errors.New("invalid or expired state parameter")

	// ErrMissingIDToken indicates the token response carried no id_token.
	ErrMissingIDToken = errors.New("token response has no id_token")
)

const defaultExchangeTimeout = 15 * time.Second

// Scopes requested at login.
var Scopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	gmail.GmailReadonlyScope,
}

// NewGoogleConfig builds the OAuth2 client configuration for Google.
func NewGoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

type idTokenVerifier interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier checks ID token signatures against Google's public keys.
type GoogleVerifier struct{}

// Validate verifies idToken was issued by Google for audience.
func (GoogleVerifier) Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, idToken, audience)
}

// Option configures a Flow.
type Option func(*Flow)

// WithStateValidation toggles the state check on callback. It is on by default.
func WithStateValidation(enabled bool) Option {
	return func(f *Flow) { f.validateState = enabled }
}

// WithExchangeTimeout bounds the code exchange and ID token verification.
func WithExchangeTimeout(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.exchangeTimeout = d
		}
	}
}

// WithStateStore replaces the default five minute state store.
func WithStateStore(s *StateStore) Option {
	return func(f *Flow) { f.states = s }
}

// Flow drives the authorization code flow. It is safe for concurrent use.
type Flow struct {
	cfg             *oauth2.Config
	verifier        idTokenVerifier
	states          *StateStore
	validateState   bool
	exchangeTimeout time.Duration
}

// NewFlow creates a Flow for cfg, verifying ID tokens with verifier.
func NewFlow(cfg *oauth2.Config, verifier idTokenVerifier, opts ...Option) *Flow {
	f := &Flow{
		cfg:             cfg,
		verifier:        verifier,
		states:          NewStateStore(defaultStateTTL),
		validateState:   true,
		exchangeTimeout: defaultExchangeTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// AuthURL returns the consent page URL together with its state.
func (f *Flow) AuthURL() (authURL, state string, err error) {
	state, err = f.states.Generate()
	if err != nil {
		return "", "", fmt.Errorf("states.Generate failed: %w", err)
	}

	authURL = f.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	return authURL, state, nil
}

// Callback exchanges an authorization code for tokens, verifies the ID
// token and returns the session to store under Profile.Sub.
func (f *Flow) Callback(ctx context.Context, code, state string) (session.Session, error) {
	if f.validateState && !f.states.Consume(state) {
		return session.Session{}, ErrInvalidState
	}

	ctx, cancel := context.WithTimeout(ctx, f.exchangeTimeout)
	defer cancel()

	tok, err := f.cfg.Exchange(ctx, code)
	if err != nil {
		return session.Session{}, fmt.Errorf("cfg.Exchange failed: %w", err)
	}

	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		return session.Session{}, ErrMissingIDToken
	}

	payload, err := f.verifier.Validate(ctx, rawID, f.cfg.ClientID)
	if err != nil {
		return session.Session{}, fmt.Errorf("verifier.Validate failed: %w", err)
	}

	return session.Session{
		Credentials: f.credentials(tok),
		Profile: session.Profile{
			Email:   claim(payload, "email"),
			Name:    claim(payload, "name"),
			Picture: claim(payload, "picture"),
			Sub:     payload.Subject,
		},
	}, nil
}

func (f *Flow) credentials(tok *oauth2.Token) session.Credentials {
	scopes := f.cfg.Scopes
	if granted, _ := tok.Extra("scope").(string); granted != "" {
		scopes = strings.Fields(granted)
	}

	return session.Credentials{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     f.cfg.Endpoint.TokenURL,
		ClientID:     f.cfg.ClientID,
		ClientSecret: f.cfg.ClientSecret,
		Scopes:       scopes,
		Expiry:       tok.Expiry,
	}
}

func claim(p *idtoken.Payload, name string) string {
	v, _ := p.Claims[name].(string)
	return v
}
