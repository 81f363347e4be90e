// Package gservice calls the Gmail API on behalf of a signed-in user.
package gservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hal9000y/mail-triage/internal/metrics"
	"github.com/hal9000y/mail-triage/internal/session"
)

const (
	gmailUserID = "me"
	unreadQuery = "is:unread"

	defaultMaxResults  = 10
	defaultCallTimeout = 20 * time.Second
)

// sessionPutter receives credentials refreshed during a fetch.
type sessionPutter interface {
	Put(ctx context.Context, subject string, s session.Session) error
}

// NewGmail creates a Gmail gateway. When sessions is not nil, access tokens
// refreshed while fetching are written back to it. Extra client options are
// appended to every service it builds.
func NewGmail(maxResults int64, callTimeout time.Duration, sessions sessionPutter, log *zap.Logger, opts ...option.ClientOption) *GMail {
	if log == nil {
		log = zap.NewNop()
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}

	return &GMail{
		maxResults: maxResults,
		timeout:    callTimeout,
		sessions:   sessions,
		log:        log,
		opts:       opts,
	}
}

type GMail struct {
	maxResults int64
	timeout    time.Duration
	sessions   sessionPutter
	log        *zap.Logger
	opts       []option.ClientOption
}

// UnreadMessages lists the newest unread messages of sess and fetches each
// in full.
func (m *GMail) UnreadMessages(ctx context.Context, sess session.Session) ([]*gmail.Message, error) {
	svc, err := m.newSvc(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	list, err := m.listMessages(ctx, svc, unreadQuery, m.maxResults)
	if err != nil {
		return nil, err
	}

	messages := make([]*gmail.Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := m.getMessage(ctx, svc, ref.Id)
		if err != nil {
			return nil, fmt.Errorf("get message %s failed: %w", ref.Id, err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

func (m *GMail) listMessages(ctx context.Context, svc *gmail.Service, q string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	result, err := svc.Users.Messages.List(gmailUserID).
		Q(q).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	metrics.RecordGmailCall("messages.list", metrics.Outcome(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", err)
	}

	return result, nil
}

func (m *GMail) getMessage(ctx context.Context, svc *gmail.Service, msgID string) (*gmail.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).
		Format("full").
		Context(ctx).
		Do()
	metrics.RecordGmailCall("messages.get", metrics.Outcome(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	return msg, nil
}

func (m *GMail) newSvc(ctx context.Context, sess session.Session) (*gmail.Service, error) {
	creds := sess.Credentials
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: creds.TokenURI},
		Scopes:       creds.Scopes,
	}
	tok := &oauth2.Token{
		AccessToken:  creds.Token,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       creds.Expiry,
	}

	var ts oauth2.TokenSource = cfg.TokenSource(ctx, tok)
	if m.sessions != nil {
		ts = &savingTokenSource{
			base: ts,
			last: tok.AccessToken,
			save: func(t *oauth2.Token) { m.saveRefreshed(ctx, sess, t) },
		}
	}

	clt := oauth2.NewClient(ctx, ts)

	opts := append([]option.ClientOption{option.WithHTTPClient(clt)}, m.opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}

// saveRefreshed stores the refreshed token. A failed write only costs
// another refresh on the next fetch, so the fetch goes on.
func (m *GMail) saveRefreshed(ctx context.Context, sess session.Session, t *oauth2.Token) {
	sess.Credentials.Token = t.AccessToken
	sess.Credentials.Expiry = t.Expiry
	if t.RefreshToken != "" {
		sess.Credentials.RefreshToken = t.RefreshToken
	}

	if err := m.sessions.Put(ctx, sess.Profile.Sub, sess); err != nil {
		m.log.Warn("refreshed token not saved", zap.String("sub", sess.Profile.Sub), zap.Error(err))
		return
	}
	m.log.Debug("refreshed token saved", zap.String("sub", sess.Profile.Sub))
}

// savingTokenSource calls save once per new access token from base.
type savingTokenSource struct {
	base oauth2.TokenSource
	save func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := t.AccessToken != s.last
	s.last = t.AccessToken
	s.mu.Unlock()

	if changed {
		s.save(t)
	}

	return t, nil
}
