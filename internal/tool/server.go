// Package tool exposes mail triage over the Model Context Protocol.
package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mail-triage/internal/llm"
	"github.com/hal9000y/mail-triage/internal/mail"
	"github.com/hal9000y/mail-triage/internal/session"
	"github.com/hal9000y/mail-triage/internal/triage"
)

type sessionGetter interface {
	Get(ctx context.Context, subject string) (session.Session, error)
}

type mailbox interface {
	UnreadMessages(ctx context.Context, sess session.Session) ([]*gmail.Message, error)
}

type prioritizer interface {
	Prioritize(ctx context.Context, emails []mail.Email) (triage.Result, error)
	Summarize(ctx context.Context, e mail.Email) string
}

type completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
	Model() string
}

// Deps are the collaborators behind the tools.
type Deps struct {
	Sessions    sessionGetter
	Mailbox     mailbox
	Normalizer  mail.Normalizer
	Prioritizer prioritizer
	LLM         completer
}

// NewServer creates an MCP server with mail triage tools.
func NewServer(deps Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "mail-triage", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch_unread_emails",
		Description: "Fetch the newest unread Gmail messages of a signed-in user",
	}, NewFetchUnread(deps.Sessions, deps.Mailbox, deps.Normalizer).FetchUnread)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "prioritize_emails",
		Description: "Classify emails as RED, YELLOW or GREEN, summarize them and sort most urgent first",
	}, NewPrioritizeEmails(deps.Prioritizer).PrioritizeEmails)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_email",
		Description: "Summarize a single email in a few sentences",
	}, NewSummarizeEmail(deps.Prioritizer).SummarizeEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat",
		Description: "Ask the assistant model a free-form question",
	}, NewChat(deps.LLM).Chat)

	return server
}
