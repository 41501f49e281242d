package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/newsagent/pkg/service/crawler"
	"github.com/secmon-lab/newsagent/pkg/service/normalizer"
	"github.com/secmon-lab/newsagent/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the optional TOML application configuration
type AppConfig struct {
	Extractor Extractor `toml:"extractor"`
	Query     Query     `toml:"query"`
	Timeouts  Timeouts  `toml:"timeouts"`
	Prompts   Prompts   `toml:"prompts"`
}

// Extractor overrides the content extractor behaviour
type Extractor struct {
	TitleSelectors   []string `toml:"title_selectors"`
	ContentSelectors []string `toml:"content_selectors"`
	UserAgent        string   `toml:"user_agent"`
	MaxBodySize      int64    `toml:"max_body_size"`
}

// Validate checks if the Extractor is valid
func (e *Extractor) Validate() error {
	for i, sel := range e.TitleSelectors {
		if strings.TrimSpace(sel) == "" {
			return goerr.Wrap(ErrInvalidSelector, "empty title selector", goerr.V(SelectorIndexKey, i))
		}
	}
	for i, sel := range e.ContentSelectors {
		if strings.TrimSpace(sel) == "" {
			return goerr.Wrap(ErrInvalidSelector, "empty content selector", goerr.V(SelectorIndexKey, i))
		}
	}
	if e.MaxBodySize < 0 {
		return goerr.New("max_body_size must not be negative", goerr.V("max_body_size", e.MaxBodySize))
	}
	return nil
}

// Options converts the section into crawler options
func (e *Extractor) Options() []crawler.Option {
	var opts []crawler.Option
	if len(e.TitleSelectors) > 0 {
		opts = append(opts, crawler.WithTitleSelectors(e.TitleSelectors))
	}
	if len(e.ContentSelectors) > 0 {
		opts = append(opts, crawler.WithContentSelectors(e.ContentSelectors))
	}
	if e.UserAgent != "" {
		opts = append(opts, crawler.WithUserAgent(e.UserAgent))
	}
	if e.MaxBodySize > 0 {
		opts = append(opts, crawler.WithMaxBodySize(e.MaxBodySize))
	}
	return opts
}

// Query configures the query pipeline
type Query struct {
	TopK int `toml:"top_k"`
}

// Validate checks if the Query is valid. Zero means the default.
func (q *Query) Validate() error {
	if q.TopK < 0 || q.TopK > usecase.MaxTopK {
		return goerr.Wrap(ErrInvalidConfig, "top_k out of range",
			goerr.V("top_k", q.TopK), goerr.V("max", usecase.MaxTopK))
	}
	return nil
}

// Timeouts holds per-stage timeouts as Go duration strings ("30s")
type Timeouts struct {
	Fetch     string `toml:"fetch"`
	Normalize string `toml:"normalize"`
	Embed     string `toml:"embed"`
	Store     string `toml:"store"`
	Complete  string `toml:"complete"`
}

func parseTimeout(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, goerr.Wrap(ErrInvalidDuration, err.Error(), goerr.V(TimeoutKey, name), goerr.V("value", value))
	}
	if d <= 0 {
		return 0, goerr.Wrap(ErrInvalidDuration, "timeout must be positive", goerr.V(TimeoutKey, name), goerr.V("value", value))
	}
	return d, nil
}

// Parse converts the section to usecase timeouts. Unset stages keep their default.
func (t *Timeouts) Parse() (usecase.Timeouts, error) {
	var out usecase.Timeouts
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"fetch", t.Fetch, &out.Fetch},
		{"normalize", t.Normalize, &out.Normalize},
		{"embed", t.Embed, &out.Embed},
		{"store", t.Store, &out.Store},
		{"complete", t.Complete, &out.Complete},
	}
	for _, f := range fields {
		d, err := parseTimeout(f.name, f.value)
		if err != nil {
			return usecase.Timeouts{}, err
		}
		*f.dst = d
	}
	return out, nil
}

// Prompts overrides system prompts
type Prompts struct {
	Normalize string `toml:"normalize"`
}

// NormalizerOptions converts the section into normalizer options
func (p *Prompts) NormalizerOptions() []normalizer.Option {
	if strings.TrimSpace(p.Normalize) == "" {
		return nil
	}
	return []normalizer.Option{normalizer.WithSystemPrompt(p.Normalize)}
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := a.Extractor.Validate(); err != nil {
		return goerr.Wrap(err, "invalid extractor section")
	}
	if err := a.Query.Validate(); err != nil {
		return goerr.Wrap(err, "invalid query section")
	}
	if _, err := a.Timeouts.Parse(); err != nil {
		return goerr.Wrap(err, "invalid timeouts section")
	}
	return nil
}

// UseCaseOptions converts the configuration into usecase options
func (a *AppConfig) UseCaseOptions() ([]usecase.Option, error) {
	timeouts, err := a.Timeouts.Parse()
	if err != nil {
		return nil, err
	}
	opts := []usecase.Option{usecase.WithTimeouts(timeouts)}
	if a.Query.TopK > 0 {
		opts = append(opts, usecase.WithTopK(a.Query.TopK))
	}
	return opts, nil
}

// CrawlerOptions converts the extractor section into crawler options. The
// fetch timeout also bounds the crawler's HTTP client so it never undercuts
// the configured stage timeout.
func (a *AppConfig) CrawlerOptions() ([]crawler.Option, error) {
	timeouts, err := a.Timeouts.Parse()
	if err != nil {
		return nil, err
	}
	opts := a.Extractor.Options()
	if timeouts.Fetch > 0 {
		opts = append(opts, crawler.WithTimeout(timeouts.Fetch))
	}
	return opts, nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V(ConfigPathKey, path), goerr.V("error", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// AppFile holds the --config flag
type AppFile struct {
	path string
}

// Flags returns CLI flags for the application config file
func (a *AppFile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML application config (extractor selectors, topK, timeouts, prompts)",
			Sources:     cli.EnvVars("NEWSAGENT_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured file path
func (a *AppFile) Path() string {
	return a.path
}

// Load reads the config file, or returns an empty configuration when no path is set
func (a *AppFile) Load() (*AppConfig, error) {
	if a.path == "" {
		return &AppConfig{}, nil
	}
	return LoadAppConfiguration(a.path)
}
