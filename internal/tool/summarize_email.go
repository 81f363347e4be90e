package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SummarizeEmailRequest struct {
	Email Email `json:"email" jsonschema:"the email to summarize"`
}

type SummarizeEmailResponse struct {
	ID      string `json:"id" jsonschema:"message ID"`
	Summary string `json:"summary" jsonschema:"summary, or the snippet when the model is unavailable"`
}

func NewSummarizeEmail(p prioritizer) *SummarizeEmail {
	return &SummarizeEmail{p: p}
}

type SummarizeEmail struct {
	p prioritizer
}

// SummarizeEmail never fails on model errors; the summary falls back to the
// snippet instead.
func (t *SummarizeEmail) SummarizeEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeEmailRequest,
) (*mcp.CallToolResult, SummarizeEmailResponse, error) {
	return nil, SummarizeEmailResponse{
		ID:      input.Email.ID,
		Summary: t.p.Summarize(ctx, toMail(input.Email)),
	}, nil
}
