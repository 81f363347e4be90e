package tool_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-triage/internal/llm"
	"github.com/hal9000y/mail-triage/internal/tool"
)

func TestChat(t *testing.T) {
	cs := connect(t, newDeps(keywordCompleter()))

	got, errText := callTool[tool.ChatResponse](t, cs, "chat", tool.ChatRequest{Message: "hello"})
	require.Empty(t, errText)
	assert.Equal(t, tool.ChatResponse{Reply: "echo: hello", Model: "gpt-3.5-turbo"}, got)

	_, errText = callTool[tool.ChatResponse](t, cs, "chat", tool.ChatRequest{})
	assert.Contains(t, errText, "message is required")
}

func TestChatModelError(t *testing.T) {
	down := &completerMock{
		CompleteFunc: func(context.Context, llm.Request) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	cs := connect(t, newDeps(down))

	_, errText := callTool[tool.ChatResponse](t, cs, "chat", tool.ChatRequest{Message: "hello"})
	assert.Contains(t, errText, "quota exceeded")
}
