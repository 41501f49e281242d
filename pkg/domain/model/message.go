package model

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// IngestMessage is the inbound queue payload: {"url": "...", "timestamp": "..."}.
// A bare URL string is accepted as a fallback for older producers.
type IngestMessage struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NewIngestMessage builds a message stamped with t
func NewIngestMessage(articleURL string, t time.Time) *IngestMessage {
	return &IngestMessage{
		URL:       articleURL,
		Timestamp: t.UTC().Format(time.RFC3339),
	}
}

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// closingPairs maps a closing bracket to its opener
var closingPairs = map[byte]byte{')': '(', ']': '[', '}': '{'}

// ExtractURL returns the first http(s) URL in text, or "" if there is none.
// Sentence punctuation and unbalanced closing brackets after the URL are not
// part of it.
func ExtractURL(text string) string {
	return trimURLSuffix(urlPattern.FindString(text))
}

func trimURLSuffix(u string) string {
	for len(u) > 0 {
		last := u[len(u)-1]
		if strings.IndexByte(".,;:!?", last) >= 0 {
			u = u[:len(u)-1]
			continue
		}
		if open, ok := closingPairs[last]; ok && strings.Count(u, string(open)) < strings.Count(u, string(last)) {
			u = u[:len(u)-1]
			continue
		}
		break
	}
	return u
}

// ParseIngestMessage decodes a queue payload. JSON objects are preferred;
// anything else is scanned for the first http(s) URL.
func ParseIngestMessage(payload []byte) (*IngestMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, goerr.New("empty message payload")
	}

	if trimmed[0] == '{' {
		var msg IngestMessage
		if err := json.Unmarshal(trimmed, &msg); err != nil {
			return nil, goerr.Wrap(err, "failed to decode message payload", goerr.V("payload", string(trimmed)))
		}
		if err := ValidateArticleURL(msg.URL); err != nil {
			return nil, goerr.Wrap(err, "invalid URL in message payload")
		}
		return &msg, nil
	}

	// JSON string literal, e.g. "\"https://example.com\""
	text := string(trimmed)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			text = s
		}
	}

	found := ExtractURL(text)
	if found == "" {
		return nil, goerr.New("no URL in message payload", goerr.V("payload", text))
	}
	if err := ValidateArticleURL(found); err != nil {
		return nil, goerr.Wrap(err, "invalid URL in message payload")
	}
	return &IngestMessage{URL: found}, nil
}
