package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/service/trace"
	"github.com/urfave/cli/v3"
)

const sentryFlushTimeout = 2 * time.Second

// Sentry holds CLI flags for error reporting and pipeline tracing
type Sentry struct {
	dsn     string
	env     string
	release string
}

// Flags returns CLI flags for Sentry configuration
func (s *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Category:    "Tracing",
			Usage:       "Sentry DSN. Tracing goes to logs only when empty",
			Sources:     cli.EnvVars("NEWSAGENT_SENTRY_DSN"),
			Destination: &s.dsn,
		},
		&cli.StringFlag{
			Name:        "env",
			Category:    "Tracing",
			Usage:       "Runtime environment name [development|production|test]",
			Value:       "development",
			Sources:     cli.EnvVars("NEWSAGENT_ENV"),
			Destination: &s.env,
		},
	}
}

// SetRelease records the application version reported with events
func (s *Sentry) SetRelease(version string) {
	s.release = version
}

// Env returns the runtime environment name
func (s *Sentry) Env() string {
	return s.env
}

// LogValue implements slog.LogValuer
func (s Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", s.dsn != ""),
		slog.String("env", s.env),
		slog.String("release", s.release),
	)
}

// Configure initializes the Sentry SDK when a DSN is set and returns the tracer
// used by pipelines together with a function flushing buffered events.
func (s *Sentry) Configure() (trace.Tracer, func(), error) {
	switch s.env {
	case "development", "production", "test":
	default:
		return nil, func() {}, goerr.Wrap(ErrInvalidConfig, "invalid environment name", goerr.V("env", s.env))
	}

	if s.dsn == "" {
		return trace.NewLogger(), func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              s.dsn,
		Environment:      s.env,
		Release:          s.release,
		AttachStacktrace: true,
	}); err != nil {
		return nil, func() {}, goerr.Wrap(err, "failed to initialize sentry")
	}

	flush := func() { sentry.Flush(sentryFlushTimeout) }
	return trace.Multi(trace.NewLogger(), trace.NewSentry(nil)), flush, nil
}
