// Package server wires the HTTP router, middleware, and all route
// definitions together. It is the composition root: every dependency —
// database handle, forecast client, services, handlers — is constructed
// here and passed down explicitly.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/breakline/surfspots/internal/auth"
	"github.com/breakline/surfspots/internal/forecast"
	"github.com/breakline/surfspots/internal/handler"
	"github.com/breakline/surfspots/internal/middleware"
	"github.com/breakline/surfspots/internal/observability"
	sqliteRepo "github.com/breakline/surfspots/internal/repository/sqlite"
	"github.com/breakline/surfspots/internal/service"
)

// Config holds server configuration, loaded from the environment by main.
type Config struct {
	Port               int
	DBPath             string
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	StormglassAPIKey   string
	FrontendOrigin     string // the single origin allowed by CORS and the post-login redirect target
}

// Server owns the router and the database connection. The connection is
// acquired in New and released during graceful shutdown — never held in a
// lazily-initialized global.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with all dependencies wired.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	google := auth.NewGoogleProvider(
		s.config.GoogleClientID,
		s.config.GoogleClientSecret,
		s.config.GoogleCallbackURL,
	)
	forecastClient := forecast.New(s.config.StormglassAPIKey, metrics, s.logger)

	spotService := service.NewSpotService(s.db, s.db, forecastClient, s.logger)
	commentService := service.NewCommentService(s.db, s.db, s.logger)

	spotHandler := handler.NewSpotHandler(spotService, s.db, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.db, s.logger)
	authHandler := handler.NewAuthHandler(google, tokens, s.db, s.config.FrontendOrigin, s.logger)

	// Global middleware, in order: request ID, real IP, panic recovery,
	// logging, metrics, CORS.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(metrics))

	// One fixed frontend origin; credentials allowed so the session cookie
	// rides along. cors also answers OPTIONS preflights with 200.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))

	// Errors keep the API's standard shape even for routing misses.
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.HandleGoogleLogin)
		r.Get("/google/callback", authHandler.HandleGoogleCallback)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public reads. OptionalAuth resolves the identity when a session
		// cookie is present but never blocks anonymous requests.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))

			r.Get("/spots", spotHandler.HandleList)
			r.Get("/spots/{id}", spotHandler.HandleGet)
			r.Get("/comments", commentHandler.HandleList)
		})

		// Everything else needs a session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Post("/spots", spotHandler.HandleCreate)
			r.Put("/spots/{id}", spotHandler.HandleUpdate)
			r.Delete("/spots/{id}", spotHandler.HandleDelete)

			r.Post("/comments", commentHandler.HandleCreate)
			r.Get("/comments/{id}", commentHandler.HandleGet)
			r.Put("/comments/{id}", commentHandler.HandleUpdate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)

			r.Get("/user", authHandler.HandleCurrentUser)
		})
	})

	return nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}

// Start runs the HTTP server until a shutdown signal arrives, then drains
// in-flight requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("frontendOrigin", s.config.FrontendOrigin),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
