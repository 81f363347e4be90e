// Package session keeps the server-side association between a signed-in
// Google account and the OAuth credentials used to read its mailbox.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotAuthenticated indicates no session exists for the requested subject.
var ErrNotAuthenticated = errors.New("user not authenticated")

// Credentials is the token bundle needed to call Gmail on a user's behalf.
// It never leaves the backend.
type Credentials struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Profile is the identity extracted from the verified ID token.
type Profile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Sub     string `json:"sub"`
}

// Session binds credentials to the profile they were issued for.
type Session struct {
	Credentials Credentials `json:"credentials"`
	Profile     Profile     `json:"user_info"`
}

// Store maps a stable subject identifier to its Session.
// Put overwrites any previous session for the same subject.
type Store interface {
	Get(ctx context.Context, subject string) (Session, error)
	Put(ctx context.Context, subject string, s Session) error
}
