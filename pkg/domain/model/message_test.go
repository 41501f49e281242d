package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
)

func TestParseIngestMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantURL string
		wantErr bool
	}{
		{
			name:    "structured payload",
			payload: `{"url":"https://example.com/a","timestamp":"2024-01-01T00:00:00Z"}`,
			wantURL: "https://example.com/a",
		},
		{
			name:    "structured payload without timestamp",
			payload: `{"url":"http://example.com/b"}`,
			wantURL: "http://example.com/b",
		},
		{
			name:    "bare URL",
			payload: "https://example.com/news/1",
			wantURL: "https://example.com/news/1",
		},
		{
			name:    "bare URL with surrounding text",
			payload: "please ingest https://example.com/news/2 thanks",
			wantURL: "https://example.com/news/2",
		},
		{
			name:    "JSON string literal",
			payload: `"https://example.com/c"`,
			wantURL: "https://example.com/c",
		},
		{
			name:    "empty payload",
			payload: "   ",
			wantErr: true,
		},
		{
			name:    "broken JSON",
			payload: `{"url":`,
			wantErr: true,
		},
		{
			name:    "structured payload with non-http URL",
			payload: `{"url":"ftp://example.com/a"}`,
			wantErr: true,
		},
		{
			name:    "structured payload without URL",
			payload: `{"timestamp":"2024-01-01T00:00:00Z"}`,
			wantErr: true,
		},
		{
			name:    "angle-bracketed URL in text",
			payload: "new article <https://example.com/a>",
			wantURL: "https://example.com/a",
		},
		{
			name:    "URL followed by sentence punctuation",
			payload: "see https://example.com/a).",
			wantURL: "https://example.com/a",
		},
		{
			name:    "text without URL",
			payload: "hello world",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := model.ParseIngestMessage([]byte(tt.payload))
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, msg.URL).Equal(tt.wantURL)
		})
	}
}

func TestNewIngestMessage(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("JST", 9*60*60))
	msg := model.NewIngestMessage("https://example.com/a", ts)
	gt.Value(t, msg.URL).Equal("https://example.com/a")
	gt.Value(t, msg.Timestamp).Equal("2024-03-01T03:00:00Z")
}

func TestExtractURL(t *testing.T) {
	gt.Value(t, model.ExtractURL("see https://example.com/x and http://example.org")).Equal("https://example.com/x")
	gt.Value(t, model.ExtractURL("nothing here")).Equal("")

	tests := []struct {
		text string
		want string
	}{
		{"<https://example.com/a>", "https://example.com/a"},
		{"see https://example.com/a).", "https://example.com/a"},
		{"(https://example.com/a)", "https://example.com/a"},
		{"read https://example.com/a, then https://example.com/b", "https://example.com/a"},
		{"done: https://example.com/a?!", "https://example.com/a"},
		{"[link](https://example.com/a)", "https://example.com/a"},
		{"https://en.wikipedia.org/wiki/Foo_(bar)", "https://en.wikipedia.org/wiki/Foo_(bar)"},
		{"(see https://en.wikipedia.org/wiki/Foo_(bar)).", "https://en.wikipedia.org/wiki/Foo_(bar)"},
		{"https://example.com/search?q=a.b", "https://example.com/search?q=a.b"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			gt.Value(t, model.ExtractURL(tt.text)).Equal(tt.want)
		})
	}
}
