package crawler

import "context"

// Service fetches a web page and extracts its article text
type Service interface {
	// Extract fetches url and returns a best-effort title and body text.
	// Network errors, timeouts and non-2xx responses are model.ErrFetch.
	Extract(ctx context.Context, url string) (*Extraction, error)
}

// Extraction is the raw text extracted from a page
type Extraction struct {
	Title   string
	Content string
}

// DefaultTitleSelectors are tried in order, most specific first
var DefaultTitleSelectors = []string{
	"article h1",
	".article-title",
	".post-title",
	".entry-title",
	"h1",
}

// DefaultContentSelectors are tried in order, most specific first
var DefaultContentSelectors = []string{
	"article",
	".article-content",
	".post-content",
	".entry-content",
	"main",
	"#content",
}

// removedElements never carry article text
var removedElements = "script, style, noscript, nav, header, footer, iframe"
