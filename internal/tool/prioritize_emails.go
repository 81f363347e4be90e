package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mail-triage/internal/mail"
)

// PrioritizeEmailsRequest contains the emails to triage.
type PrioritizeEmailsRequest struct {
	Emails []Email `json:"emails" jsonschema:"emails to classify and summarize"`
}

// PrioritizeEmailsResponse lists emails most urgent first.
type PrioritizeEmailsResponse struct {
	Emails  []PrioritizedEmail `json:"emails" jsonschema:"emails sorted RED, YELLOW, GREEN"`
	Summary UrgencyCounts      `json:"summary" jsonschema:"number of emails per tier"`
}

func NewPrioritizeEmails(p prioritizer) *PrioritizeEmails {
	return &PrioritizeEmails{p: p}
}

type PrioritizeEmails struct {
	p prioritizer
}

func (t *PrioritizeEmails) PrioritizeEmails(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PrioritizeEmailsRequest,
) (*mcp.CallToolResult, PrioritizeEmailsResponse, error) {
	emails := make([]mail.Email, 0, len(input.Emails))
	for _, e := range input.Emails {
		emails = append(emails, toMail(e))
	}

	res, err := t.p.Prioritize(ctx, emails)
	if err != nil {
		return nil, PrioritizeEmailsResponse{}, fmt.Errorf("p.Prioritize failed: %w", err)
	}

	out := make([]PrioritizedEmail, 0, len(res.Emails))
	for _, e := range res.Emails {
		out = append(out, fromPrioritized(e))
	}

	return nil, PrioritizeEmailsResponse{
		Emails: out,
		Summary: UrgencyCounts{
			Red:    res.Summary.Red,
			Yellow: res.Summary.Yellow,
			Green:  res.Summary.Green,
		},
	}, nil
}
