package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/hal9000y/mail-triage/internal/auth"
	"github.com/hal9000y/mail-triage/internal/logger"
	"github.com/hal9000y/mail-triage/internal/session"
)

type loginResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

func (s *Server) handleLogin(w http.ResponseWriter, _ *http.Request) error {
	authURL, state, err := s.deps.Auth.AuthURL()
	if err != nil {
		return internal("Error initiating OAuth", err)
	}

	writeJSON(w, http.StatusOK, loginResponse{AuthorizationURL: authURL, State: state})
	return nil
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) error {
	code := r.URL.Query().Get("code")
	if code == "" {
		return badRequest("No authorization code received")
	}

	sess, err := s.deps.Auth.Callback(r.Context(), code, r.URL.Query().Get("state"))
	if errors.Is(err, auth.ErrInvalidState) {
		return badRequest("Invalid or expired state parameter")
	}
	if err != nil {
		return internal("OAuth callback error", err)
	}

	if err := s.deps.Sessions.Put(r.Context(), sess.Profile.Sub, sess); err != nil {
		return internal("OAuth callback error", fmt.Errorf("sessions.Put failed: %w", err))
	}

	target, err := frontendRedirect(s.cfg.FrontendURL, sess.Profile)
	if err != nil {
		return internal("OAuth callback error", err)
	}

	logger.WithRequest(r.Context(), s.log).Info("user signed in", zap.String("sub", sess.Profile.Sub))

	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	return nil
}

// frontendRedirect appends the profile as a percent-encoded JSON "user"
// query parameter. Spaces become %20 so decodeURIComponent restores them.
func frontendRedirect(frontendURL string, p session.Profile) (string, error) {
	u, err := url.Parse(frontendURL)
	if err != nil {
		return "", fmt.Errorf("url.Parse failed: %w", err)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("json.Marshal failed: %w", err)
	}

	user := "user=" + strings.ReplaceAll(url.QueryEscape(string(raw)), "+", "%20")
	if u.RawQuery != "" {
		u.RawQuery += "&" + user
	} else {
		u.RawQuery = user
	}

	return u.String(), nil
}
