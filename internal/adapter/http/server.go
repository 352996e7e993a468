// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"net/http"

	"uigen/internal/app"
	"uigen/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth     *app.AuthService
	projects *app.ProjectService
	anon     *app.AnonWorkService
	sessions *session.Store

	ping             func(ctx context.Context) error
	orchestratorOpts []app.OrchestratorOption
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, projects *app.ProjectService, anon *app.AnonWorkService, sessions *session.Store) *Server {
	return &Server{auth: auth, projects: projects, anon: anon, sessions: sessions}
}

// WithHealthCheck makes /api/health report the result of ping.
func (s *Server) WithHealthCheck(ping func(ctx context.Context) error) *Server {
	s.ping = ping
	return s
}

// WithOrchestratorOptions passes opts to every orchestrator the server builds.
func (s *Server) WithOrchestratorOptions(opts ...app.OrchestratorOption) *Server {
	s.orchestratorOpts = append(s.orchestratorOpts, opts...)
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(s.loggingMiddleware)
	router.Use(cookieJarMiddleware)
	router.Use(withNoCache)

	router.Get("/metrics", promhttp.Handler().ServeHTTP)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)
		r.Post("/auth/signout", s.handleSignOut)
		r.Get("/auth/session", s.handleSession)

		r.Get("/anon-work", s.handleGetAnonWork)
		r.Put("/anon-work", s.handlePutAnonWork)

		r.Route("/projects", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)
			r.Get("/{id}", s.handleGetProject)
		})
	})

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
