package triage

import (
	"fmt"

	"github.com/hal9000y/mail-triage/internal/llm"
	"github.com/hal9000y/mail-triage/internal/mail"
)

const (
	classifySystem = "You are an expert email priority classifier. You must check for specific urgency " +
		"keywords in both subject and content. First look for RED keywords, then YELLOW, otherwise GREEN. " +
		"Respond only with RED, YELLOW, or GREEN."

	classifyTemplate = `Analyze this email's SUBJECT and CONTENT to determine urgency level.

EMAIL SUBJECT: %s
FROM: %s
EMAIL CONTENT: %s

Specifically check for these urgency keywords in BOTH subject and content:

RED (URGENT) - Label as RED if ANY of these words/phrases are present:
- "urgent", "ASAP", "immediate", "critical", "emergency", "deadline today", "action required", "important", "time-sensitive", "overdue", "final notice"

YELLOW (LESS URGENT) - Label as YELLOW if these words are present:
- "reminder", "follow-up", "meeting", "review", "update", "please respond", "FYI", "scheduled", "upcoming"

GREEN (NON-URGENT) - Label as GREEN if it's:
- Newsletters, promotional emails, automated notifications, informational updates, social media notifications

First, check if any RED keywords are present in subject or content. If found, classify as RED.
If no RED keywords, check for YELLOW keywords. If found, classify as YELLOW.
If no RED or YELLOW keywords, classify as GREEN.

Respond with ONLY one word: RED, YELLOW, or GREEN.`

	summarizeSystem = "You are an expert at summarizing emails concisely. " +
		"Create summaries that are 30-40% of the original length."

	summarizeTemplate = `Summarize the following email concisely. The summary should be 30-40%% of the original email length, capturing only the key points and main message.

EMAIL SUBJECT: %s
EMAIL CONTENT: %s

Provide a clear, concise summary that highlights:
- Main purpose of the email
- Key information or requests
- Important details or deadlines

Summary:`

	classifyMaxTokens    = 10
	summarizeMaxTokens   = 200
	summarizeTemperature = 0.3
)

func classifyRequest(e mail.Email) llm.Request {
	return llm.Request{
		Kind:      "classify",
		System:    classifySystem,
		Prompt:    fmt.Sprintf(classifyTemplate, orDefault(e.Subject, mail.NoSubject), orDefault(e.From, mail.UnknownHeader), e.Content()),
		MaxTokens: classifyMaxTokens,
	}
}

func summarizeRequest(e mail.Email) llm.Request {
	return llm.Request{
		Kind:        "summarize",
		System:      summarizeSystem,
		Prompt:      fmt.Sprintf(summarizeTemplate, orDefault(e.Subject, mail.NoSubject), e.Content()),
		MaxTokens:   summarizeMaxTokens,
		Temperature: summarizeTemperature,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
