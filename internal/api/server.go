// Package api serves the HTTP endpoints used by the web frontend.
package api

import (
	"context"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mail-triage/internal/llm"
	"github.com/hal9000y/mail-triage/internal/mail"
	"github.com/hal9000y/mail-triage/internal/session"
	"github.com/hal9000y/mail-triage/internal/triage"
)

const maxBodyBytes = 1 << 20

type authFlow interface {
	AuthURL() (authURL, state string, err error)
	Callback(ctx context.Context, code, state string) (session.Session, error)
}

type mailbox interface {
	UnreadMessages(ctx context.Context, sess session.Session) ([]*gmail.Message, error)
}

type prioritizer interface {
	Prioritize(ctx context.Context, emails []mail.Email) (triage.Result, error)
}

type completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
	Model() string
}

// Config holds the settings the HTTP layer needs.
type Config struct {
	// FrontendURL receives the browser after a successful login.
	FrontendURL      string
	AllowedOrigins   []string
	GoogleConfigured bool
	OpenAIConfigured bool
}

// Deps are the collaborators behind the endpoints.
type Deps struct {
	Auth        authFlow
	Sessions    session.Store
	Mailbox     mailbox
	Normalizer  mail.Normalizer
	Prioritizer prioritizer
	LLM         completer
}

type Server struct {
	cfg  Config
	deps Deps
	log  *zap.Logger
	mux  *http.ServeMux
}

// NewServer registers every frontend route on a fresh mux.
func NewServer(cfg Config, deps Deps, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:  cfg,
		deps: deps,
		log:  log,
		mux:  http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /login", s.handle(s.handleLogin))
	s.mux.HandleFunc("GET /auth/google", s.handle(s.handleLogin))
	s.mux.HandleFunc("GET /oauth2callback", s.handle(s.handleCallback))

	s.mux.HandleFunc("POST /api/fetch-emails", s.handle(s.handleFetchEmails))
	s.mux.HandleFunc("POST /api/prioritize-emails", s.handle(s.handlePrioritizeEmails))
	s.mux.HandleFunc("POST /api/chat", s.handle(s.handleChat))

	return s
}

// Mount serves h under pattern next to the frontend routes.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Handler returns the mux wrapped in CORS and request observation.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(s.observe(s.mux))
}

type rootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Message: "Mail Triage API", Status: "running"})
}

type healthResponse struct {
	Status      string `json:"status"`
	GoogleOAuth string `json:"google_oauth"`
	OpenAI      string `json:"openai"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		GoogleOAuth: configured(s.cfg.GoogleConfigured),
		OpenAI:      configured(s.cfg.OpenAIConfigured),
	})
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
