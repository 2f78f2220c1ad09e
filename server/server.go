// Package server exposes the organizer over a small JSON HTTP API.
//
// Routes:
//
//	POST   /api/organize             {"text": "...", "save": true}
//	POST   /api/render               {"content": "..."}
//	GET    /api/artifacts
//	POST   /api/artifacts            {"content": "..."}
//	GET    /api/artifacts/{id}
//	GET    /api/artifacts/{id}/raw   restructured text as a download
//	DELETE /api/artifacts/{id}
//	GET    /metrics
//	GET    /healthz
//
// When a token hash is configured every route except /healthz requires
// "Authorization: Bearer <token>".
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	tnctx "github.com/randalmurphal/tidynote/context"
)

// Config configures a Server.
type Config struct {
	Addr            string        // Default: 127.0.0.1:8080
	ReadTimeout     time.Duration // Default: 30s
	WriteTimeout    time.Duration // Default: 3m; organize waits on the model
	ShutdownTimeout time.Duration // Default: 10s
	Logger          *slog.Logger

	// TokenHash is the SHA-256 of the required bearer token.
	// Default: the server_token_hash setting. Empty disables the check.
	TokenHash string
}

// Server serves the API for one set of services.
type Server struct {
	services *tnctx.Services
	cfg      Config
	logger   *slog.Logger
	handler  http.Handler
}

// New creates a Server over services.
func New(services *tnctx.Services, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.TokenHash == "" {
		cfg.TokenHash = services.Settings.ServerTokenHash
	}
	logger := cfg.Logger
	if logger == nil {
		logger = services.Logger
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{services: services, cfg: cfg, logger: logger}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/organize", s.handleOrganize)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/artifacts", s.handleList)
	mux.HandleFunc("POST /api/artifacts", s.handleCreate)
	mux.HandleFunc("GET /api/artifacts/{id}", s.handleGet)
	mux.HandleFunc("GET /api/artifacts/{id}/raw", s.handleRaw)
	mux.HandleFunc("DELETE /api/artifacts/{id}", s.handleDelete)
	mux.Handle("GET /metrics", s.services.Metrics.Handler())
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.withServices(s.requireToken(mux))
}

// withServices injects the services and a request logger into every request
// and logs its outcome.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With("method", r.Method, "path", r.URL.Path)

		ctx := s.services.InjectAll(r.Context())
		ctx = tnctx.WithLogger(ctx, logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		level := slog.LevelDebug
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "request", "status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
