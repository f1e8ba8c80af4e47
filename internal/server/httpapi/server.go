// Package httpapi exposes the public HTTP/JSON surface of the bujotrack
// server: user signup and listing, project and entry creation, root entry
// listing, and the completion toggle.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akudrin/bujotrack/internal/logging"
	"github.com/akudrin/bujotrack/internal/server/services"
)

type Server struct {
	address  string
	logger   logging.Logger
	users    *services.UserService
	projects *services.ProjectService
	entries  *services.EntryService
}

func NewServer(a string, l logging.Logger, us *services.UserService, ps *services.ProjectService, es *services.EntryService) *Server {
	return &Server{
		address:  a,
		logger:   l.With("module", "http_server"),
		users:    us,
		projects: ps,
		entries:  es,
	}
}

// Handler builds the route table wrapped with the CORS and request-logging
// middleware. Patterns use {$} so the trailing-slash paths match exactly.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users/{$}", s.createUser)
	mux.HandleFunc("GET /users/{$}", s.listUsers)
	mux.HandleFunc("GET /users/{id}", s.getUser)
	mux.HandleFunc("POST /users/{id}/entries/{$}", s.createEntryForUser)
	mux.HandleFunc("POST /users/{id}/projects/{$}", s.createProjectForUser)
	mux.HandleFunc("GET /entries/{$}", s.listEntries)
	mux.HandleFunc("PUT /entries/{id}/complete/{$}", s.completeEntry)
	mux.HandleFunc("GET /projects/{$}", s.listProjects)

	return s.withRequestLog(s.withCORS(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
