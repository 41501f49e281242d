package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
)

// NoAnswer is returned when the model replies with empty text
const NoAnswer = "No answer available."

const (
	answerSystemPrompt = `You are a helpful assistant that provides accurate and concise answers based on the provided news articles.
Answer using only the information in the articles. Always cite your sources by title and URL.
If the articles do not contain the answer, say that you do not have information about it.`

	summarySystemPrompt = `You are a helpful assistant that summarizes news articles.
Write a concise summary of the article in the same language as the article. Cite the article URL at the end.`
)

// Service synthesizes natural-language answers with a completion model
type Service interface {
	// Answer replies to question using only sources as context
	Answer(ctx context.Context, question string, sources []*model.SourceMatch) (string, error)
	// Summarize writes a summary of a single article
	Summarize(ctx context.Context, article *model.Article) (string, error)
}

// client implements Service interface
type client struct {
	llmClient gollem.LLMClient
}

// New creates a new answer service with the provided LLM client
func New(llmClient gollem.LLMClient) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &client{llmClient: llmClient}, nil
}

func (c *client) Answer(ctx context.Context, question string, sources []*model.SourceMatch) (string, error) {
	return c.complete(ctx, answerSystemPrompt, BuildAnswerPrompt(question, sources))
}

func (c *client) Summarize(ctx context.Context, article *model.Article) (string, error) {
	return c.complete(ctx, summarySystemPrompt, BuildSummaryPrompt(article))
}

func (c *client) complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	session, err := c.llmClient.NewSession(ctx, gollem.WithSessionSystemPrompt(systemPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(prompt)})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil {
		return NoAnswer, nil
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, ""))
	if text == "" {
		return NoAnswer, nil
	}
	return text, nil
}

// BuildAnswerPrompt lists the question followed by every source in rank order
func BuildAnswerPrompt(question string, sources []*model.SourceMatch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\n", question)

	if len(sources) == 0 {
		sb.WriteString("Relevant articles: none were found in the knowledge base.\n")
		return sb.String()
	}

	sb.WriteString("Relevant articles:\n")
	for i, src := range sources {
		fmt.Fprintf(&sb, "\n[%d]\n", i+1)
		fmt.Fprintf(&sb, "Title: %s\n", src.Title)
		fmt.Fprintf(&sb, "Content: %s\n", src.Content)
		fmt.Fprintf(&sb, "URL: %s\n", src.URL)
		fmt.Fprintf(&sb, "Date: %s\n", src.Date)
	}
	return sb.String()
}

// BuildSummaryPrompt renders one article for summarization
func BuildSummaryPrompt(article *model.Article) string {
	var sb strings.Builder
	sb.WriteString("Summarize this article:\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", article.Title)
	fmt.Fprintf(&sb, "URL: %s\n", article.URL)
	fmt.Fprintf(&sb, "Content: %s\n", article.Content)
	return sb.String()
}
