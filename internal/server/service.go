// Package server provides the REST API service for ekagra.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ekagra-app/ekagra/internal/auth"
	"github.com/ekagra-app/ekagra/internal/config"
	"github.com/ekagra-app/ekagra/internal/db"
	"github.com/ekagra-app/ekagra/internal/engine"
	"github.com/ekagra-app/ekagra/internal/server/sse"
)

// Service wires the stores, the engine and the router.
type Service struct {
	version string
	cfg     *config.Config
	store   *db.Store
	users   *db.UserStore
	tasks   *db.TaskStore
	engine  *engine.Engine
	auth    *auth.Manager
	events  *sse.Broadcaster
	router  chi.Router
	log     zerolog.Logger
}

// New creates the service and sets up its routes.
func New(version string, cfg *config.Config, store *db.Store, log zerolog.Logger) *Service {
	timers := db.NewTimerStore(store)
	tasks := db.NewTaskStore(store)

	svc := &Service{
		version: version,
		cfg:     cfg,
		store:   store,
		users:   db.NewUserStore(store),
		tasks:   tasks,
		engine:  engine.New(timers, tasks, log),
		auth:    auth.NewManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour),
		events:  sse.NewBroadcaster(),
		router:  chi.NewRouter(),
		log:     log.With().Str("component", "server").Logger(),
	}
	svc.setupRoutes()
	return svc
}

func (s *Service) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger(s.log))

	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/version", s.handleVersion)

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleMe)
			r.Patch("/preferences", s.handleUpdatePreferences)
		})
	})

	s.router.Route("/api/tasks", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/", s.handleCreateTask)
		r.Get("/", s.handleListTasks)
		r.Get("/{id}", s.handleGetTask)
		r.Patch("/{id}", s.handleUpdateTask)
		r.Delete("/{id}", s.handleDeleteTask)
		r.Patch("/{id}/status", s.handleUpdateTaskStatus)
	})

	s.router.Route("/api/timer", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/start", s.handleStartTimer)
		r.Post("/end/{id}", s.handleEndTimer)
		r.Get("/history", s.handleTimerHistory)
		r.Get("/stats", s.handleTimerStats)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/events", s.handleEvents)
	})
}

// Router returns the HTTP handler for tests and embedding.
func (s *Service) Router() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Int("port", s.cfg.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"version": s.version,
	})
}

func (s *Service) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.events.Serve(ownerFromContext(r.Context()), w, r)
}
