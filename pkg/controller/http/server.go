package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/utils/errutil"
	"github.com/secmon-lab/newsagent/pkg/utils/safe"
)

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	Verify(ctx context.Context) error
}

type Server struct {
	router         *chi.Mux
	enableGraphiQL bool
	health         HealthChecker
}

type Options func(*Server)

func WithGraphiQL(enabled bool) Options {
	return func(s *Server) {
		s.enableGraphiQL = enabled
	}
}

// WithHealthCheck makes /health verify the dependency on every call
func WithHealthCheck(checker HealthChecker) Options {
	return func(s *Server) {
		s.health = checker
	}
}

func New(gqlHandler http.Handler, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:         r,
		enableGraphiQL: false,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Route("/graphql", func(r chi.Router) {
		r.Post("/", gqlHandler.ServeHTTP)
		r.Get("/", gqlHandler.ServeHTTP) // Support GET for introspection
	})

	// GraphiQL playground
	if s.enableGraphiQL {
		r.Get("/graphiql", playground.Handler("GraphQL playground", "/graphql").ServeHTTP)
	}

	r.Get("/health", s.healthHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.health.Verify(ctx); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "health check failed"), http.StatusServiceUnavailable)
			return
		}
	}

	data, err := json.Marshal(map[string]string{"status": "ok"})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal health response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}
