// Package docserver serves a generated OpenAPI document and a Swagger UI
// pointing at it.
package docserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Paths served by the handler.
const (
	DocumentPath = "/openapi.json"
	UIPath       = "/docs/"
)

// Handler returns a mux serving document verbatim at DocumentPath and the
// documentation UI under UIPath.
func Handler(document []byte) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+DocumentPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(document)
	})
	mux.HandleFunc("GET /docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, UIPath, http.StatusFound)
	})
	mux.Handle("GET "+UIPath, httpSwagger.Handler(
		httpSwagger.URL(DocumentPath),
		httpSwagger.DeepLinking(true),
	))
	return mux
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a server for document listening on addr.
func NewServer(addr string, document []byte, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:              addr,
			Handler:           Handler(document),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("documentation server starting", "addr", s.server.Addr, "ui", UIPath)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
