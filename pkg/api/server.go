package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yourusername/bgrules/internal/obslog"
	"github.com/yourusername/bgrules/pkg/suggest"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host           string        // Host to bind to (default "localhost")
	Port           int           // Port to listen on (default 8080)
	ReadTimeout    time.Duration // Read timeout (default 30s)
	WriteTimeout   time.Duration // Write timeout (default 30s)
	IdleTimeout    time.Duration // Idle timeout (default 60s)
	MaxFastWorkers int           // Max concurrent rules operations (default 100)
	MaxSlowWorkers int           // Max concurrent suggestion calls (default 4)
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:           "localhost",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: 100,
		MaxSlowWorkers: 4,
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	version  string
	logger   *zap.Logger
}

// NewServer creates a new API server. s may be nil, which disables the
// suggest endpoint.
func NewServer(config ServerConfig, version string, s suggest.Suggester, logger *zap.Logger) *Server {
	if logger == nil {
		logger = obslog.L()
	}
	pool := NewWorkerPool(PoolConfig{
		MaxFastWorkers: config.MaxFastWorkers,
		MaxSlowWorkers: config.MaxSlowWorkers,
	})

	return &Server{
		config:   config,
		handlers: NewHandlers(version, pool, s, logger),
		pool:     pool,
		version:  version,
		logger:   logger,
	}
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs every request with its status and duration.
func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// Handler returns the API routes with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.logger))
	r.Use(corsMiddleware)

	h := s.handlers
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Get("/position/start", h.Start)
		r.Post("/position", h.Decode)
		r.Post("/position/fibs", h.FIBSBoard)

		r.Post("/moves", h.Moves)
		r.Post("/plays", h.Plays)
		r.Post("/validate", h.Validate)
		r.Post("/normalize", h.Normalize)

		r.Route("/turn", func(r chi.Router) {
			r.Post("/roll", h.Roll)
			r.Post("/move", h.Step)
			r.Post("/play", h.Play)
		})

		r.Post("/suggest", h.Suggest)
		r.Get("/ws", h.WebSocket)
	})
	return r
}

func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = s.newHTTPServer()
	return s.listen()
}

func (s *Server) listen() error {
	s.logger.Info("api server listening", zap.String("addr", s.server.Addr), zap.String("version", s.version))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is done, then shuts down within grace.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	s.server = s.newHTTPServer()
	errChan := make(chan error, 1)
	go func() {
		if err := s.listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}
