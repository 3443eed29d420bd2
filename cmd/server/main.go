// Package main is the entry point for the surf-spots API server.
//
// main's job is only to read configuration, create the logger, and hand
// off to internal/server — all actual wiring and logic lives there.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/breakline/surfspots/internal/server"
)

func main() {
	// .env is optional — production deployments set real env vars.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded configuration from .env")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/surfspots.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// JWT_SECRET must be a long random string, e.g.
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	googleCallbackURL := os.Getenv("GOOGLE_CALLBACK_URL")
	if googleCallbackURL == "" {
		googleCallbackURL = fmt.Sprintf("http://localhost:%d/auth/google/callback", port)
	}

	frontendOrigin := os.Getenv("FRONTEND_ORIGIN")
	if frontendOrigin == "" {
		frontendOrigin = "http://localhost:3000"
	}

	// STORMGLASS_API_KEY may be empty: the server runs fine without it,
	// spots just never get forecast data.
	stormglassKey := os.Getenv("STORMGLASS_API_KEY")
	if stormglassKey == "" {
		logger.Warn("STORMGLASS_API_KEY not set — forecast data disabled")
	}

	cfg := server.Config{
		Port:               port,
		DBPath:             dbPath,
		JWTSecret:          jwtSecret,
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  googleCallbackURL,
		StormglassAPIKey:   stormglassKey,
		FrontendOrigin:     frontendOrigin,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
