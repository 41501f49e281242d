package crawler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
	"github.com/secmon-lab/newsagent/pkg/utils/safe"
	"golang.org/x/net/html/charset"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = 10 << 20
	defaultUserAgent   = "Mozilla/5.0 (compatible; newsagent/1.0; +https://github.com/secmon-lab/newsagent)"
)

// client implements Service interface
type client struct {
	httpClient       *http.Client
	userAgent        string
	maxBodySize      int64
	titleSelectors   []string
	contentSelectors []string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the HTTP client (its Timeout bounds each fetch)
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of a single fetch
func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		c.httpClient.Timeout = timeout
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *client) {
		c.userAgent = userAgent
	}
}

func WithMaxBodySize(size int64) Option {
	return func(c *client) {
		c.maxBodySize = size
	}
}

// WithTitleSelectors overrides DefaultTitleSelectors. Empty keeps the default.
func WithTitleSelectors(selectors []string) Option {
	return func(c *client) {
		if len(selectors) > 0 {
			c.titleSelectors = selectors
		}
	}
}

// WithContentSelectors overrides DefaultContentSelectors. Empty keeps the default.
func WithContentSelectors(selectors []string) Option {
	return func(c *client) {
		if len(selectors) > 0 {
			c.contentSelectors = selectors
		}
	}
}

// New creates a new crawler service
func New(opts ...Option) Service {
	c := &client{
		httpClient:       &http.Client{Timeout: defaultTimeout},
		userAgent:        defaultUserAgent,
		maxBodySize:      defaultMaxBodySize,
		titleSelectors:   DefaultTitleSelectors,
		contentSelectors: DefaultContentSelectors,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *client) Extract(ctx context.Context, url string) (*Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, goerr.Wrap(model.Classify(model.ErrFetch, err), "failed to create request", goerr.V("url", url))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(model.Classify(model.ErrFetch, err), "failed to fetch article", goerr.V("url", url))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.Wrap(model.ErrFetch, "unexpected status code",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode))
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, c.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, goerr.Wrap(model.Classify(model.ErrFetch, err), "failed to decode response charset", goerr.V("url", url))
	}

	extraction, err := parse(body, c.titleSelectors, c.contentSelectors)
	if err != nil {
		return nil, goerr.Wrap(model.Classify(model.ErrFetch, err), "failed to parse article", goerr.V("url", url))
	}

	logging.From(ctx).Debug("article extracted",
		"url", url,
		"title", extraction.Title,
		"content_length", len(extraction.Content))

	return extraction, nil
}
