package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mail-triage/internal/llm"
)

type ChatRequest struct {
	Message string `json:"message" jsonschema:"the question for the assistant"`
}

type ChatResponse struct {
	Reply string `json:"reply" jsonschema:"the assistant reply"`
	Model string `json:"model" jsonschema:"model that produced the reply"`
}

func NewChat(c completer) *Chat {
	return &Chat{c: c}
}

type Chat struct {
	c completer
}

func (t *Chat) Chat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatRequest,
) (*mcp.CallToolResult, ChatResponse, error) {
	if input.Message == "" {
		return nil, ChatResponse{}, errors.New("message is required")
	}

	reply, err := t.c.Complete(ctx, llm.ChatRequest(input.Message))
	if err != nil {
		return nil, ChatResponse{}, fmt.Errorf("c.Complete failed: %w", err)
	}

	return nil, ChatResponse{
		Reply: reply,
		Model: t.c.Model(),
	}, nil
}
