package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mail-triage/internal/mail"
	"github.com/hal9000y/mail-triage/internal/session"
)

type FetchUnreadRequest struct {
	UserID string `json:"user_id" jsonschema:"subject of the signed-in Google user"`
}

type FetchUnreadResponse struct {
	Emails []Email `json:"emails" jsonschema:"unread emails, newest first"`
	Count  int     `json:"count" jsonschema:"number of emails returned"`
}

func NewFetchUnread(sessions sessionGetter, mb mailbox, norm mail.Normalizer) *FetchUnread {
	return &FetchUnread{
		sessions: sessions,
		mailbox:  mb,
		norm:     norm,
	}
}

type FetchUnread struct {
	sessions sessionGetter
	mailbox  mailbox
	norm     mail.Normalizer
}

func (t *FetchUnread) FetchUnread(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FetchUnreadRequest,
) (*mcp.CallToolResult, FetchUnreadResponse, error) {
	if input.UserID == "" {
		return nil, FetchUnreadResponse{}, errors.New("user_id is required")
	}

	sess, err := t.sessions.Get(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return nil, FetchUnreadResponse{}, fmt.Errorf("user %s: %w", input.UserID, err)
		}
		return nil, FetchUnreadResponse{}, fmt.Errorf("sessions.Get failed: %w", err)
	}

	msgs, err := t.mailbox.UnreadMessages(ctx, sess)
	if err != nil {
		return nil, FetchUnreadResponse{}, fmt.Errorf("mailbox.UnreadMessages failed: %w", err)
	}

	emails := make([]Email, 0, len(msgs))
	for _, msg := range msgs {
		emails = append(emails, fromMail(t.norm.Normalize(msg)))
	}

	return nil, FetchUnreadResponse{
		Emails: emails,
		Count:  len(emails),
	}, nil
}
