// Package server hosts the read-only status HTTP server started by
// `skong serve`.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/skonghq/skong/internal/errors"
	"github.com/skonghq/skong/internal/server/handlers"
	"github.com/skonghq/skong/internal/server/middleware"
)

// Server serves project status over HTTP.
type Server struct {
	host    string
	port    int
	tree    string
	version handlers.VersionInfo
	logger  *zap.Logger

	shutdownTimeout time.Duration
}

// New creates a server exposing the project tree rooted at tree.
func New(host string, port int, tree string) *Server {
	return &Server{
		host:            host,
		port:            port,
		tree:            tree,
		logger:          zap.NewNop(),
		shutdownTimeout: 10 * time.Second,
	}
}

// WithVersion sets the build identity served at /version.
func (s *Server) WithVersion(info handlers.VersionInfo) *Server {
	s.version = info
	return s
}

// WithLogger attaches the server logger.
func (s *Server) WithLogger(logger *zap.Logger) *Server {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithShutdownTimeout sets the graceful shutdown budget.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	if d > 0 {
		s.shutdownTimeout = d
	}
	return s
}

// Port returns the configured listen port.
func (s *Server) Port() int {
	return s.port
}

// Handler builds the router. Exposed separately so tests can drive it
// without binding a socket.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteHTTPError(w, http.StatusNotFound,
			apperrors.CodeNotFound, "resource not found: "+req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteHTTPError(w, http.StatusMethodNotAllowed,
			apperrors.CodeMethodNotAllowed, "method not allowed: "+req.Method)
	})

	hm := handlers.GetHealthManager()
	r.Get("/health", hm.HealthHandler)
	r.Get("/health/live", hm.LivenessHandler)
	r.Get("/health/ready", hm.ReadinessHandler)

	r.Method(http.MethodGet, "/version", &handlers.VersionHandler{Info: s.version})

	ph := handlers.NewProjectsHandler(s.tree, s.logger)
	r.Get("/projects", ph.List)
	r.Get("/projects/{name}/history", ph.History)

	return r
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully within the shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Status server listening",
			zap.String("addr", addr),
			zap.String("tree", s.tree))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	}
}
