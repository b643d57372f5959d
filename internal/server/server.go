// Package server wires the application together: store, services, handlers,
// middleware, and routes. It is the composition root; main.go only loads
// config and calls New/Start.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/nadirh/cannalog/internal/auth"
	"github.com/nadirh/cannalog/internal/config"
	"github.com/nadirh/cannalog/internal/handler"
	"github.com/nadirh/cannalog/internal/middleware"
	"github.com/nadirh/cannalog/internal/repository"
	"github.com/nadirh/cannalog/internal/repository/memory"
	sqliteRepo "github.com/nadirh/cannalog/internal/repository/sqlite"
	"github.com/nadirh/cannalog/internal/service"
)

// Server owns the router, the backing store, and the HTTP lifecycle.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	closer io.Closer // sqlite handle when file-backed, nil for the memory store
}

// New assembles the full dependency chain. DBPath empty selects the
// in-memory store, which is handy for local experiments and tests; anything
// else opens (and migrates) the sqlite file.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	var (
		entryRepo repository.EntryRepository
		userRepo  repository.UserRepository
		closer    io.Closer
	)

	if cfg.DBPath == "" {
		store := memory.New()
		entryRepo, userRepo = store, store
		logger.Warn("no DB_PATH configured, using in-memory store; data is lost on restart")
	} else {
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		entryRepo, userRepo = db, db
		closer = db
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("configuring token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		closer: closer,
	}

	authService := service.NewAuthService(userRepo, tokens, auth.NewPasswordService(), logger)
	entryService := service.NewEntryService(entryRepo, logger)

	s.setupRoutes(tokens, handler.NewAuthHandler(authService), handler.NewEntryHandler(entryService))

	return s, nil
}

// setupRoutes installs global middleware and the route table. Middleware
// order matters: request id first so the logger can include it, Recoverer
// innermost so a panicking handler still produces a logged 500.
func (s *Server) setupRoutes(tokens *auth.TokenService, authHandler *handler.AuthHandler, entryHandler *handler.EntryHandler) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.New(s.config.Cors).Handler)

	s.router.Get("/", handler.HandleRoot)
	s.router.Get("/health", handler.HandleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Put("/me", authHandler.HandleUpdateMe)
			r.Delete("/me", authHandler.HandleDeleteMe)

			r.Post("/entries", entryHandler.HandleCreate)
			r.Get("/entries", entryHandler.HandleList)

			// The literal stats path must be registered before the
			// {id} pattern or chi would treat "stats" as an id.
			r.Get("/entries/stats", entryHandler.HandleStats)

			r.Get("/entries/{id}", entryHandler.HandleGet)
			r.Put("/entries/{id}", entryHandler.HandleUpdate)
			r.Delete("/entries/{id}", entryHandler.HandleDelete)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the store.
func (s *Server) Start() error {
	if s.closer != nil {
		defer s.closer.Close()
	}

	srv := &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("port", s.config.Port),
			slog.String("env", s.config.Environment),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
