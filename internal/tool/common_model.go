package tool

import (
	"strings"

	"github.com/hal9000y/mail-triage/internal/mail"
	"github.com/hal9000y/mail-triage/internal/triage"
)

// EmailAddress represents an email address with optional display name.
type EmailAddress struct {
	Name  string `json:"name,omitempty" jsonschema:"the display name"`
	Email string `json:"email" jsonschema:"the email address"`
}

// Email is a normalized message as exchanged with tool clients.
type Email struct {
	ID          string        `json:"id" jsonschema:"message ID"`
	Subject     string        `json:"subject,omitempty" jsonschema:"email subject"`
	From        string        `json:"from,omitempty" jsonschema:"raw From header"`
	Sender      *EmailAddress `json:"sender,omitempty" jsonschema:"parsed From header"`
	Date        string        `json:"date,omitempty" jsonschema:"raw Date header"`
	Snippet     string        `json:"snippet,omitempty" jsonschema:"message preview"`
	FullContent string        `json:"full_content,omitempty" jsonschema:"plain text body, at most 2000 characters"`
}

// PrioritizedEmail is an email with its urgency tier and summary.
type PrioritizedEmail struct {
	Email        Email  `json:"email" jsonschema:"the email"`
	Urgency      string `json:"urgency" jsonschema:"RED, YELLOW or GREEN"`
	UrgencyColor string `json:"urgency_color" jsonschema:"lowercase urgency"`
	Summary      string `json:"summary" jsonschema:"short summary of the email"`
}

// UrgencyCounts is the number of emails per tier.
type UrgencyCounts struct {
	Red    int `json:"red" jsonschema:"number of RED emails"`
	Yellow int `json:"yellow" jsonschema:"number of YELLOW emails"`
	Green  int `json:"green" jsonschema:"number of GREEN emails"`
}

func toMail(e Email) mail.Email {
	return mail.Email{
		ID:          e.ID,
		Subject:     e.Subject,
		From:        e.From,
		Date:        e.Date,
		Snippet:     e.Snippet,
		FullContent: e.FullContent,
	}
}

func fromMail(e mail.Email) Email {
	out := Email{
		ID:          e.ID,
		Subject:     e.Subject,
		From:        e.From,
		Date:        e.Date,
		Snippet:     e.Snippet,
		FullContent: e.FullContent,
	}

	if e.From != "" && e.From != mail.UnknownHeader {
		addr := parseEmailAddress(e.From)
		out.Sender = &addr
	}

	return out
}

func fromPrioritized(p triage.PrioritizedEmail) PrioritizedEmail {
	return PrioritizedEmail{
		Email:        fromMail(p.Email),
		Urgency:      string(p.Urgency),
		UrgencyColor: p.UrgencyColor,
		Summary:      p.Summary,
	}
}

func parseEmailAddress(from string) EmailAddress {
	addr := EmailAddress{}

	if idx := strings.Index(from, "<"); idx != -1 {
		addr.Name = strings.TrimSpace(from[:idx])
		if endIdx := strings.Index(from[idx:], ">"); endIdx != -1 {
			addr.Email = strings.TrimSpace(from[idx+1 : idx+endIdx])
		}
	} else {
		addr.Email = strings.TrimSpace(from)
	}

	addr.Name = strings.Trim(addr.Name, "\"")

	return addr
}
