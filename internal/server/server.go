// Package server implements the two voicelab web services: the phoneme
// pronunciation scorer and the audio to MIDI converter. Each service is a
// chi router wrapped in an http.Server with graceful shutdown.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"codeberg.org/snonux/voicelab/internal/observe"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Config holds server configuration
type Config struct {
	Host string
	Port int

	// MaxUploadSize bounds request bodies. Defaults to 100MB.
	MaxUploadSize int64

	// Metrics is optional. When set, request latency is recorded and
	// /metrics serves the Prometheus registry.
	Metrics *observe.Metrics

	// Logger defaults to a text logger on stdout.
	Logger *slog.Logger
}

// Server is one HTTP service
type Server struct {
	name      string
	config    Config
	router    *chi.Mux
	templates *template.Template
	logger    *slog.Logger
}

const defaultMaxUploadSize = 100 * 1024 * 1024

func newServer(name string, cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = defaultMaxUploadSize
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		name:      name,
		config:    cfg,
		router:    chi.NewRouter(),
		templates: tmpl,
		logger:    logger.With("service", name),
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(observe.Middleware(cfg.Metrics))
		r.Handle("/metrics", observe.Handler())
	}
	r.Get("/health", s.handleHealth)

	return s, nil
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // model inference can be slow
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()

		s.logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	s.logger.Info("server starting", slog.String("addr", srv.Addr))
	fmt.Printf("\n  voicelab %s service running at: http://localhost:%d\n\n", s.name, s.config.Port)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": s.name})
}

// render renders a template
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// isTooLarge reports whether err came from the request size limit. The
// multipart reader does not always keep the original error in the chain.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
