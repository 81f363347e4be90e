package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mail-triage/internal/api"
	"github.com/hal9000y/mail-triage/internal/llm"
	"github.com/hal9000y/mail-triage/internal/mail"
	"github.com/hal9000y/mail-triage/internal/session"
	"github.com/hal9000y/mail-triage/internal/triage"
)

// countingStore counts writes to the wrapped store.
type countingStore struct {
	session.Store
	puts atomic.Int32
}

func (s *countingStore) Put(ctx context.Context, subject string, sess session.Session) error {
	s.puts.Add(1)
	return s.Store.Put(ctx, subject, sess)
}

type authFlowMock struct {
	AuthURLFunc  func() (string, string, error)
	CallbackFunc func(ctx context.Context, code, state string) (session.Session, error)
}

func (m *authFlowMock) AuthURL() (string, string, error) {
	return m.AuthURLFunc()
}

func (m *authFlowMock) Callback(ctx context.Context, code, state string) (session.Session, error) {
	return m.CallbackFunc(ctx, code, state)
}

type mailboxMock struct {
	UnreadMessagesFunc func(ctx context.Context, sess session.Session) ([]*gmail.Message, error)
	calls              atomic.Int32
}

func (m *mailboxMock) UnreadMessages(ctx context.Context, sess session.Session) ([]*gmail.Message, error) {
	m.calls.Add(1)
	return m.UnreadMessagesFunc(ctx, sess)
}

type prioritizerMock struct {
	PrioritizeFunc func(ctx context.Context, emails []mail.Email) (triage.Result, error)
}

func (m *prioritizerMock) Prioritize(ctx context.Context, emails []mail.Email) (triage.Result, error) {
	return m.PrioritizeFunc(ctx, emails)
}

type completerMock struct {
	CompleteFunc func(ctx context.Context, req llm.Request) (string, error)
	ModelFunc    func() string
}

func (m *completerMock) Complete(ctx context.Context, req llm.Request) (string, error) {
	return m.CompleteFunc(ctx, req)
}

func (m *completerMock) Model() string {
	return m.ModelFunc()
}

// newDeps returns collaborators that fail the test if reached unexpectedly.
func newDeps(t *testing.T) api.Deps {
	t.Helper()
	unexpected := func(name string) { t.Helper(); t.Errorf("unexpected call to %s", name) }

	return api.Deps{
		Auth: &authFlowMock{
			AuthURLFunc: func() (string, string, error) {
				unexpected("AuthURL")
				return "", "", nil
			},
			CallbackFunc: func(context.Context, string, string) (session.Session, error) {
				unexpected("Callback")
				return session.Session{}, nil
			},
		},
		Sessions: session.NewMemory(0),
		Mailbox: &mailboxMock{
			UnreadMessagesFunc: func(context.Context, session.Session) ([]*gmail.Message, error) {
				unexpected("UnreadMessages")
				return nil, nil
			},
		},
		Prioritizer: &prioritizerMock{
			PrioritizeFunc: func(context.Context, []mail.Email) (triage.Result, error) {
				unexpected("Prioritize")
				return triage.Result{}, nil
			},
		},
		LLM: &completerMock{
			CompleteFunc: func(context.Context, llm.Request) (string, error) {
				unexpected("Complete")
				return "", nil
			},
			ModelFunc: func() string { return "gpt-3.5-turbo" },
		},
	}
}

func newConfig() api.Config {
	return api.Config{
		FrontendURL:    "http://localhost:5173/",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:5174", "http://localhost:3000"},
	}
}

func serve(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type detail struct {
	Detail string `json:"detail"`
}
