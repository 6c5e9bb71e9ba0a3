// Package server exposes the generation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KaramelBytes/paperstack-cli/internal/history"
	"github.com/KaramelBytes/paperstack-cli/internal/metrics"
	"github.com/KaramelBytes/paperstack-cli/internal/pipeline"
	"github.com/KaramelBytes/paperstack-cli/internal/runner"
)

// HistoryStore is the read side of the generation log.
type HistoryStore interface {
	List(ctx context.Context, limit int) ([]history.Record, error)
	GetByArchive(ctx context.Context, name string) (history.Record, error)
}

// Options wires the server's collaborators. Pipeline is required; the rest
// enable their endpoints when set.
type Options struct {
	Pipeline *pipeline.Pipeline
	// MaxUploadBytes caps the uploaded file; the request body may exceed
	// it by the multipart framing overhead.
	MaxUploadBytes int64
	History        HistoryStore
	Runner         *runner.Supervisor
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

// Server routes HTTP requests to the pipeline.
type Server struct {
	pipe      *pipeline.Pipeline
	maxUpload int64
	history   HistoryStore
	runner    *runner.Supervisor
	metrics   *metrics.Metrics
	log       *slog.Logger

	// runCtx outlives individual requests so runs survive their POST.
	runCtx    context.Context
	runCancel context.CancelFunc
}

// New builds a Server.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 16 << 20
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		pipe:      opts.Pipeline,
		maxUpload: maxUpload,
		history:   opts.History,
		runner:    opts.Runner,
		metrics:   opts.Metrics,
		log:       log,
		runCtx:    ctx,
		runCancel: cancel,
	}
}

// Handler returns the routed, logged handler. Every route is also served
// under /api for clients of the original paths.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, prefix := range []string{"", "/api"} {
		s.RegisterHTTPHandlers(prefix, mux)
	}
	return s.logRequests(cors(mux))
}

// RegisterHTTPHandlers mounts the routes below prefix (no trailing slash).
func (s *Server) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	mux.HandleFunc("GET "+prefix+"/health", s.handleHealth)
	mux.HandleFunc("POST "+prefix+"/upload", s.handleUpload)
	mux.HandleFunc("GET "+prefix+"/download/{name}", s.handleDownload)
	mux.HandleFunc("GET "+prefix+"/technologies", s.handleTechnologies)
	mux.HandleFunc("GET "+prefix+"/generations", s.handleGenerations)
	mux.HandleFunc("POST "+prefix+"/run/{name}", s.handleRunStart)
	mux.HandleFunc("GET "+prefix+"/runs", s.handleRunList)
	mux.HandleFunc("GET "+prefix+"/runs/{id}", s.handleRunStatus)
	mux.HandleFunc("DELETE "+prefix+"/runs/{id}", s.handleRunCancel)
	if s.metrics != nil {
		mux.Handle("GET "+prefix+"/metrics", s.metrics.Handler())
	}
}

// ListenAndServe serves addr until ctx is canceled, then shuts down
// gracefully and stops any supervised runs.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.runCancel()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	err := srv.Shutdown(shutdownCtx)
	s.runCancel()
	if s.runner != nil {
		if rerr := s.runner.Shutdown(shutdownCtx); rerr != nil {
			s.log.Warn("runs did not stop in time", "error", rerr)
		}
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops supervised runs started through this server.
func (s *Server) Close() { s.runCancel() }
