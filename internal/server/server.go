// Package server exposes races, progression and curriculum over HTTP and
// streams live race views over websockets.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/config"
	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/logging"
	"github.com/abhisek/quizrace/internal/metrics"
	"github.com/abhisek/quizrace/internal/progression"
)

// Deps are the services the API serves.
type Deps struct {
	Engine     *game.Engine
	Progress   *progression.Store
	Curriculum *curriculum.Map
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Server is the HTTP API server.
type Server struct {
	cfg        config.ServerConfig
	engine     *game.Engine
	progress   *progression.Store
	curriculum *curriculum.Map
	metrics    *metrics.Metrics
	logger     *zap.Logger
	sessions   *Registry
	router     *chi.Mux
}

// New creates a server and its router.
func New(cfg config.ServerConfig, deps Deps) *Server {
	logger := logging.OrNop(deps.Logger).Named("server")
	s := &Server{
		cfg:        cfg,
		engine:     deps.Engine,
		progress:   deps.Progress,
		curriculum: deps.Curriculum,
		metrics:    deps.Metrics,
		logger:     logger,
		sessions:   NewRegistry(logger, cfg.SessionLinger),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

// Sessions returns the live session registry.
func (s *Server) Sessions() *Registry {
	return s.sessions
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/curriculum", s.handleCurriculum)

		r.Route("/subjects/{subject}", func(r chi.Router) {
			r.Get("/progress", s.handleSubjectProgress)
			r.Get("/lessons/{lesson}/history", s.handleHistory)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/answer", s.handleAnswer)
				r.Post("/reset", s.handleReset)
				r.Post("/weather", s.handleWeather)
				r.Put("/opponent-timer", s.handleOpponentTimer)
				r.Get("/ws", s.handleSessionWS)
			})
		})

		r.Route("/progression", func(r chi.Router) {
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests with zap.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and closes every live session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.sessions.CloseAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.sessions.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
