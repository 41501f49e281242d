package crawler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/service/crawler"
)

func newPageServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract(t *testing.T) {
	t.Run("extracts title and content from article element", func(t *testing.T) {
		srv := newPageServer(t, http.StatusOK, `<html><body><article><h1>Foo</h1><p>Bar baz</p></article></body></html>`)

		got, err := crawler.New().Extract(context.Background(), srv.URL+"/a")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Foo")
		gt.Value(t, got.Content).Equal("Bar baz")
	})

	t.Run("404 is a fetch error", func(t *testing.T) {
		srv := newPageServer(t, http.StatusNotFound, "not found")

		_, err := crawler.New().Extract(context.Background(), srv.URL+"/missing")
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, model.ErrFetch)).True()
	})

	t.Run("500 is a fetch error", func(t *testing.T) {
		srv := newPageServer(t, http.StatusInternalServerError, "oops")

		_, err := crawler.New().Extract(context.Background(), srv.URL)
		gt.Bool(t, errors.Is(err, model.ErrFetch)).True()
	})

	t.Run("connection failure is a fetch error", func(t *testing.T) {
		srv := newPageServer(t, http.StatusOK, "")
		url := srv.URL
		srv.Close()

		_, err := crawler.New().Extract(context.Background(), url)
		gt.Bool(t, errors.Is(err, model.ErrFetch)).True()
	})

	t.Run("timeout is a fetch error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(srv.Close)

		_, err := crawler.New(crawler.WithTimeout(50*time.Millisecond)).Extract(context.Background(), srv.URL)
		gt.Bool(t, errors.Is(err, model.ErrFetch)).True()
	})

	t.Run("sends user agent", func(t *testing.T) {
		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.UserAgent()
			_, _ = w.Write([]byte("<html><body><p>x</p></body></html>"))
		}))
		t.Cleanup(srv.Close)

		_, err := crawler.New(crawler.WithUserAgent("test-agent")).Extract(context.Background(), srv.URL)
		gt.NoError(t, err).Required()
		gt.Value(t, gotUA).Equal("test-agent")
	})

	t.Run("custom selectors take precedence", func(t *testing.T) {
		srv := newPageServer(t, http.StatusOK, `<html><body>
			<h1>Generic</h1>
			<div class="headline">Custom Title</div>
			<div class="story">Custom body</div>
			<article>Article body</article>
		</body></html>`)

		svc := crawler.New(
			crawler.WithTitleSelectors([]string{".headline"}),
			crawler.WithContentSelectors([]string{".story"}),
		)
		got, err := svc.Extract(context.Background(), srv.URL)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Custom Title")
		gt.Value(t, got.Content).Equal("Custom body")
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		wantTitle   string
		wantContent string
	}{
		{
			name:        "removes boilerplate elements",
			html:        `<html><body><nav>Menu</nav><header>Site</header><main><p>Story</p><script>var x=1;</script><style>p{}</style></main><footer>Copyright</footer></body></html>`,
			wantTitle:   model.UntitledArticle,
			wantContent: "Story",
		},
		{
			name:        "falls back to document title",
			html:        `<html><head><title> Page   Title </title></head><body><div id="content">Body text</div></body></html>`,
			wantTitle:   "Page Title",
			wantContent: "Body text",
		},
		{
			name:        "uses title class when there is no h1",
			html:        `<html><body><div class="entry-title">Entry</div><div class="entry-content">Entry body</div></body></html>`,
			wantTitle:   "Entry",
			wantContent: "Entry body",
		},
		{
			name:        "falls back to body text",
			html:        `<html><body><div>Just</div><div>text</div></body></html>`,
			wantTitle:   model.UntitledArticle,
			wantContent: "Just\ntext",
		},
		{
			name:        "skips empty content containers",
			html:        `<html><body><article>   </article><main><p>Main text</p></main></body></html>`,
			wantTitle:   model.UntitledArticle,
			wantContent: "Main text",
		},
		{
			name:        "separates paragraphs with single newlines",
			html:        `<html><body><article><h1>T</h1><p>One   two</p><p></p><p>three</p></article></body></html>`,
			wantTitle:   "T",
			wantContent: "One two\nthree",
		},
		{
			name:        "keeps a headline that is the only content",
			html:        `<html><body><main><h1>Headline only</h1></main></body></html>`,
			wantTitle:   "Headline only",
			wantContent: "Headline only",
		},
		{
			name:        "headline container wins over later selectors",
			html:        `<html><body><article><h1>Quake hits city</h1></article><main><p>Rescue continues</p></main></body></html>`,
			wantTitle:   "Quake hits city",
			wantContent: "Quake hits city",
		},
		{
			name:        "drops the headline from a longer body",
			html:        `<html><body><main><h1>Quake hits city</h1><p>Rescue continues</p></main></body></html>`,
			wantTitle:   "Quake hits city",
			wantContent: "Rescue continues",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := crawler.Parse(strings.NewReader(tt.html), crawler.DefaultTitleSelectors, crawler.DefaultContentSelectors)
			gt.NoError(t, err).Required()
			gt.Value(t, got.Title).Equal(tt.wantTitle)
			gt.Value(t, got.Content).Equal(tt.wantContent)
		})
	}
}

func TestCleanText(t *testing.T) {
	gt.Value(t, crawler.CleanText("  a \t b  \n\n\n  c  ")).Equal("a b\nc")
	gt.Value(t, crawler.CleanText("\n\n")).Equal("")
}
