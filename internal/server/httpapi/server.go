// Package httpapi is the REST protocol adapter. It translates HTTP requests
// into domain service calls and service results back into JSON; it performs
// no validation of its own beyond body decoding.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/services"
)

type Server struct {
	address   string
	logger    logging.Logger
	users     *services.UserService
	notes     *services.NoteService
	jwtSecret []byte

	// graph is the GraphQL adapter's handler, mounted at /graphql behind
	// the same guard middleware as the REST routes.
	graph http.Handler
}

func NewServer(address string, l logging.Logger, us *services.UserService, ns *services.NoteService, secretKey string, graph http.Handler) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		notes:     ns,
		jwtSecret: []byte(secretKey),
		graph:     graph,
	}
}

// Handler builds the full route table. REST note listings expose insertion
// order; the GraphQL adapter documents newest-first.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/notes", s.handleListNotes)
	mux.HandleFunc("GET /api/notes/{id}", s.handleGetNote)
	mux.HandleFunc("POST /api/notes", s.handleCreateNote)
	mux.HandleFunc("PUT /api/notes/{id}", s.handleUpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", s.handleDeleteNote)
	mux.HandleFunc("POST /api/notes/{id}/comments", s.handleAddComment)

	mux.HandleFunc("POST /api/users", s.handleRegister)
	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("POST /api/login", s.handleLogin)

	if s.graph != nil {
		mux.Handle("/graphql", s.graph)
	}

	return s.requestLogger(s.withIdentity(mux))
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		errCh <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return <-errCh
}
