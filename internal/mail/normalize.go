package mail

import (
	"strings"

	"google.golang.org/api/gmail/v1"
)

const (
	// MaxContentLength is the cap, in characters, applied to Email.FullContent.
	MaxContentLength = 2000

	NoSubject     = "No Subject"
	UnknownHeader = "Unknown"
)

// Email is the provider-agnostic view of one message.
type Email struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	From        string `json:"from"`
	Date        string `json:"date"`
	Snippet     string `json:"snippet"`
	FullContent string `json:"full_content"`
}

// Content returns the text fed to the model: the full content, or the
// snippet when the full content is empty.
func (e Email) Content() string {
	if e.FullContent != "" {
		return e.FullContent
	}
	return e.Snippet
}

// Normalizer builds Email records from Gmail messages.
type Normalizer struct {
	// HTMLToText, when set, renders the text/html body of messages that
	// carry no text/plain part, before the snippet is used instead. A
	// single-part text/html payload is rendered too instead of kept raw.
	HTMLToText func(raw []byte) string
}

// Normalize builds an Email with the default Normalizer.
func Normalize(msg *gmail.Message) Email {
	return Normalizer{}.Normalize(msg)
}

// Normalize is pure: the same message always yields the same Email.
func (n Normalizer) Normalize(msg *gmail.Message) Email {
	email := Email{
		ID:      msg.Id,
		Snippet: msg.Snippet,
		Subject: NoSubject,
		From:    UnknownHeader,
		Date:    UnknownHeader,
	}

	if msg.Payload == nil {
		email.FullContent = truncate(email.Snippet, MaxContentLength)
		return email
	}

	headers := msg.Payload.Headers
	email.Subject = headerValue(headers, "Subject", NoSubject)
	email.From = headerValue(headers, "From", UnknownHeader)
	email.Date = headerValue(headers, "Date", UnknownHeader)

	content := ExtractPlainText(msg.Payload)
	if n.HTMLToText != nil && len(msg.Payload.Parts) == 0 && strings.EqualFold(msg.Payload.MimeType, mimeTextHTML) {
		// A single-part HTML payload comes back raw from ExtractPlainText.
		content = ""
	}
	if content == "" && n.HTMLToText != nil {
		if raw := ExtractHTML(msg.Payload); raw != "" {
			content = n.HTMLToText([]byte(raw))
		}
	}
	if content == "" {
		content = msg.Snippet
	}

	email.FullContent = truncate(content, MaxContentLength)

	return email
}

func headerValue(headers []*gmail.MessagePartHeader, name, def string) string {
	for _, h := range headers {
		if h != nil && h.Name == name {
			return h.Value
		}
	}
	return def
}

// truncate cuts s to at most limit characters, ignoring word boundaries.
func truncate(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
