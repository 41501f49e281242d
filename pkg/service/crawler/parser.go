package crawler

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"golang.org/x/net/html"
)

var (
	horizontalSpaces = regexp.MustCompile(`[ \t\r\f\v\x{00a0}]+`)
	spacedNewlines   = regexp.MustCompile(` ?\n ?`)
	newlineRuns      = regexp.MustCompile(`\n+`)
)

// blockElements end a line of text
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "hr": true,
	"li": true, "main": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

func parse(r io.Reader, titleSelectors, contentSelectors []string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse HTML")
	}

	doc.Find(removedElements).Remove()

	title := ""
	var headline *html.Node
	for _, selector := range titleSelectors {
		sel := doc.Find(selector).First()
		if text := cleanTitle(textOf(sel, nil)); text != "" {
			title = text
			headline = sel.Nodes[0]
			break
		}
	}
	if title == "" {
		title = cleanTitle(doc.Find("title").First().Text())
	}
	if title == "" {
		title = model.UntitledArticle
	}

	content := ""
	for _, selector := range contentSelectors {
		if text := contentOf(doc.Find(selector), headline); text != "" {
			content = text
			break
		}
	}
	if content == "" {
		content = contentOf(doc.Find("body"), headline)
	}

	return &Extraction{
		Title:   title,
		Content: content,
	}, nil
}

// contentOf returns the text of sel without the headline. A container holding
// nothing but the headline keeps it.
func contentOf(sel *goquery.Selection, headline *html.Node) string {
	full := cleanText(textOf(sel, nil))
	if full == "" || headline == nil {
		return full
	}
	if body := cleanText(textOf(sel, headline)); body != "" {
		return body
	}
	return full
}

// textOf renders the text of all nodes in sel with line breaks after block
// elements. The skip subtree is left out.
func textOf(sel *goquery.Selection, skip *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == skip {
			return
		}
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "title" || n.Data == "head" {
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			sb.WriteString("\n")
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	return sb.String()
}

// cleanText collapses whitespace runs to one space and newline runs to one newline
func cleanText(s string) string {
	s = horizontalSpaces.ReplaceAllString(s, " ")
	s = spacedNewlines.ReplaceAllString(s, "\n")
	s = newlineRuns.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
