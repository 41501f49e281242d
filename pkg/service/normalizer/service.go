package normalizer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
)

// DefaultSystemPrompt instructs the model to clean the article and reply with the fixed shape
const DefaultSystemPrompt = `You are a helpful assistant that cleans and structures news article content.
Extract the main article content, remove navigation text, advertisements, share buttons and other noise, and format it properly.
Keep the original language of the article. Do not summarize and do not add information that is not in the source.
Reply with a single JSON object with exactly two string fields: "title" and "content".`

// client implements Service interface
type client struct {
	llmClient    gollem.LLMClient
	systemPrompt string
	maxInputLen  int
}

// Option is a functional option for client configuration
type Option func(*client)

// WithSystemPrompt overrides DefaultSystemPrompt. Empty keeps the default.
func WithSystemPrompt(prompt string) Option {
	return func(c *client) {
		if prompt != "" {
			c.systemPrompt = prompt
		}
	}
}

// WithMaxInputLength truncates raw content to n runes before sending it to the model
func WithMaxInputLength(n int) Option {
	return func(c *client) {
		c.maxInputLen = n
	}
}

// New creates a new normalizer service with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient:    llmClient,
		systemPrompt: DefaultSystemPrompt,
		maxInputLen:  100000,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) Normalize(ctx context.Context, rawTitle, rawContent string) (*Normalized, error) {
	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(responseSchema()),
		gollem.WithSessionSystemPrompt(c.systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(buildUserPrompt(rawTitle, truncate(rawContent, c.maxInputLen)))})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}

	return parseResponse(resp)
}

func parseResponse(resp *gollem.Response) (*Normalized, error) {
	if resp == nil || len(resp.Texts) == 0 {
		return nil, goerr.Wrap(model.ErrMalformedModelOutput, "LLM returned no text")
	}

	reply := strings.Join(resp.Texts, "")
	var out Normalized
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &out); err != nil {
		return nil, goerr.Wrap(model.Classify(model.ErrMalformedModelOutput, err), "failed to parse LLM response",
			goerr.V("response", reply))
	}

	out.Title = strings.TrimSpace(out.Title)
	out.Content = strings.TrimSpace(out.Content)
	if out.Content == "" {
		return nil, goerr.Wrap(model.ErrMalformedModelOutput, "LLM response has no content",
			goerr.V("response", reply))
	}

	return &out, nil
}

func buildUserPrompt(title, content string) string {
	var sb strings.Builder
	sb.WriteString("Clean and structure this article content:\n\n")
	sb.WriteString("Title: ")
	sb.WriteString(title)
	sb.WriteString("\n\nContent: ")
	sb.WriteString(content)
	return sb.String()
}

func responseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "NormalizedArticle",
		Description: "Cleaned and structured article",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"title": {
				Type:        gollem.TypeString,
				Description: "The article headline",
				Required:    true,
			},
			"content": {
				Type:        gollem.TypeString,
				Description: "The cleaned article body",
				Required:    true,
			},
		},
	}
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite JSON mode
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
