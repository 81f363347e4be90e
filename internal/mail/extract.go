// Package mail turns raw Gmail API messages into normalized Email records.
package mail

import (
	"encoding/base64"
	"strings"

	"google.golang.org/api/gmail/v1"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"

	// maxPartDepth bounds the payload walk; deeper subtrees are ignored.
	maxPartDepth = 32
)

// ExtractPlainText returns the first text/plain body of payload, decoded,
// or an empty string when there is none. Parts are searched depth-first,
// left to right. A payload without parts yields its own inline data.
func ExtractPlainText(payload *gmail.MessagePart) string {
	return extractPlainText(payload, 0)
}

func extractPlainText(part *gmail.MessagePart, depth int) string {
	if part == nil || depth > maxPartDepth {
		return ""
	}

	if len(part.Parts) == 0 {
		body, _ := decodeBody(part)
		return body
	}

	for _, p := range part.Parts {
		if p == nil {
			continue
		}

		if p.MimeType == mimeTextPlain {
			if body, ok := decodeBody(p); ok && body != "" {
				return body
			}
			continue
		}

		if len(p.Parts) > 0 {
			if body := extractPlainText(p, depth+1); body != "" {
				return body
			}
		}
	}

	return ""
}

// ExtractHTML returns the first text/html body of payload, decoded, or an
// empty string. It walks the tree in the same order as ExtractPlainText.
func ExtractHTML(payload *gmail.MessagePart) string {
	return extractByMime(payload, mimeTextHTML, 0)
}

func extractByMime(part *gmail.MessagePart, mime string, depth int) string {
	if part == nil || depth > maxPartDepth {
		return ""
	}

	if strings.EqualFold(part.MimeType, mime) {
		if body, ok := decodeBody(part); ok && body != "" {
			return body
		}
	}

	for _, p := range part.Parts {
		if body := extractByMime(p, mime, depth+1); body != "" {
			return body
		}
	}

	return ""
}

func decodeBody(part *gmail.MessagePart) (string, bool) {
	if part.Body == nil || part.Body.Data == "" {
		return "", false
	}

	return decodeBase64URL(part.Body.Data)
}

// decodeBase64URL accepts both padded and unpadded URL-safe base64; Gmail
// has been seen to send either.
func decodeBase64URL(data string) (string, bool) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return "", false
		}
	}

	return string(decoded), true
}
