package tool_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mail-triage/internal/llm"
	"github.com/hal9000y/mail-triage/internal/session"
	"github.com/hal9000y/mail-triage/internal/tool"
	"github.com/hal9000y/mail-triage/internal/triage"
)

type mailboxMock struct {
	UnreadMessagesFunc func(ctx context.Context, sess session.Session) ([]*gmail.Message, error)
}

func (m *mailboxMock) UnreadMessages(ctx context.Context, sess session.Session) ([]*gmail.Message, error) {
	return m.UnreadMessagesFunc(ctx, sess)
}

type completerMock struct {
	CompleteFunc func(ctx context.Context, req llm.Request) (string, error)
}

func (m *completerMock) Complete(ctx context.Context, req llm.Request) (string, error) {
	return m.CompleteFunc(ctx, req)
}

func (m *completerMock) Model() string {
	return "gpt-3.5-turbo"
}

// keywordCompleter classifies by the first tier word found in the prompt
// and summarizes as "summary: <subject line>".
func keywordCompleter() *completerMock {
	return &completerMock{
		CompleteFunc: func(_ context.Context, req llm.Request) (string, error) {
			switch req.Kind {
			case "classify":
				subject := promptLine(req.Prompt, "EMAIL SUBJECT: ")
				switch {
				case strings.Contains(subject, "URGENT"):
					return "RED", nil
				case strings.Contains(subject, "Reminder"):
					return "yellow", nil
				default:
					return "GREEN", nil
				}
			case "summarize":
				return "summary: " + promptLine(req.Prompt, "EMAIL SUBJECT: "), nil
			case "chat":
				return "echo: " + req.Prompt, nil
			}
			return "", nil
		},
	}
}

func promptLine(prompt, prefix string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return rest
		}
	}
	return ""
}

func newDeps(c *completerMock) tool.Deps {
	return tool.Deps{
		Sessions:    session.NewMemory(0),
		Mailbox:     &mailboxMock{},
		Prioritizer: triage.NewPrioritizer(c, 1, nil),
		LLM:         c,
	}
}

func connect(t *testing.T, deps tool.Deps) *mcp.ClientSession {
	t.Helper()

	server := tool.NewServer(deps)
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx := context.Background()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

// callTool returns the decoded result, or the error text when the tool
// reported a failure.
func callTool[T any](t *testing.T, cs *mcp.ClientSession, name string, args any) (T, string) {
	t.Helper()

	var out T
	result, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text := result.Content[0].(*mcp.TextContent).Text
	if result.IsError {
		return out, text
	}

	require.NoError(t, json.Unmarshal([]byte(text), &out))
	return out, ""
}
