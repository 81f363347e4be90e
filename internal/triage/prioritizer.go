// Package triage ranks emails by urgency and summarizes them through a
// completion API.
package triage

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hal9000y/mail-triage/internal/llm"
	"github.com/hal9000y/mail-triage/internal/mail"
	"github.com/hal9000y/mail-triage/internal/metrics"
)

// SummaryUnavailable is used when neither the model nor the snippet can
// provide a summary.
const SummaryUnavailable = "Summary not available"

// ErrNoEmails is returned for an empty batch.
var ErrNoEmails = errors.New("no emails provided")

// PrioritizedEmail is an Email annotated with its tier and a summary.
type PrioritizedEmail struct {
	mail.Email
	Urgency      Urgency `json:"urgency"`
	UrgencyColor string  `json:"urgency_color"`
	Summary      string  `json:"summary"`
}

// Counts is the number of emails per tier in a batch.
type Counts struct {
	Red    int `json:"red"`
	Yellow int `json:"yellow"`
	Green  int `json:"green"`
}

// Result is a prioritized batch, most urgent first.
type Result struct {
	Emails  []PrioritizedEmail `json:"emails"`
	Summary Counts             `json:"summary"`
}

type completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Prioritizer classifies and summarizes batches of emails. Model failures
// never fail a batch; they are replaced by fallback values.
type Prioritizer struct {
	llm         completer
	concurrency int
	log         *zap.Logger
}

// NewPrioritizer creates a Prioritizer processing up to concurrency emails
// at a time; values below 1 mean one at a time.
func NewPrioritizer(c completer, concurrency int, log *zap.Logger) *Prioritizer {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Prioritizer{
		llm:         c,
		concurrency: concurrency,
		log:         log,
	}
}

// Prioritize classifies and summarizes every email, then orders the batch
// RED, YELLOW, GREEN keeping input order within a tier.
func (p *Prioritizer) Prioritize(ctx context.Context, emails []mail.Email) (Result, error) {
	if len(emails) == 0 {
		return Result{}, ErrNoEmails
	}

	out := make([]PrioritizedEmail, len(emails))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, e := range emails {
		g.Go(func() error {
			out[i] = p.prioritizeOne(ctx, e)
			return nil
		})
	}
	_ = g.Wait()

	slices.SortStableFunc(out, func(a, b PrioritizedEmail) int {
		return cmp.Compare(a.Urgency.Rank(), b.Urgency.Rank())
	})

	var counts Counts
	for _, e := range out {
		switch e.Urgency {
		case Red:
			counts.Red++
		case Yellow:
			counts.Yellow++
		case Green:
			counts.Green++
		}
		metrics.IncrementPrioritized(string(e.Urgency))
	}

	return Result{Emails: out, Summary: counts}, nil
}

func (p *Prioritizer) prioritizeOne(ctx context.Context, e mail.Email) PrioritizedEmail {
	urgency := p.Classify(ctx, e)

	return PrioritizedEmail{
		Email:        e,
		Urgency:      urgency,
		UrgencyColor: urgency.Color(),
		Summary:      p.Summarize(ctx, e),
	}
}

// Classify asks the model for the email's tier, falling back to Yellow on
// a failed call or an unrecognized reply.
func (p *Prioritizer) Classify(ctx context.Context, e mail.Email) Urgency {
	reply, err := p.llm.Complete(ctx, classifyRequest(e))
	if err != nil {
		p.log.Warn("classification failed, using fallback",
			zap.String("email_id", e.ID), zap.Error(err))
		metrics.IncrementFallback("urgency")
		return Yellow
	}

	u, ok := ParseUrgency(reply)
	if !ok {
		p.log.Info("unrecognized classification, using fallback",
			zap.String("email_id", e.ID), zap.String("reply", reply))
		metrics.IncrementFallback("urgency")
	}

	return u
}

// Summarize asks the model for a short summary, falling back to the
// snippet, then to SummaryUnavailable.
func (p *Prioritizer) Summarize(ctx context.Context, e mail.Email) string {
	reply, err := p.llm.Complete(ctx, summarizeRequest(e))
	if err != nil {
		p.log.Warn("summarization failed, using fallback",
			zap.String("email_id", e.ID), zap.Error(err))
	}

	if summary := strings.TrimSpace(reply); err == nil && summary != "" {
		return summary
	}

	metrics.IncrementFallback("summary")
	if e.Snippet != "" {
		return e.Snippet
	}
	return SummaryUnavailable
}
