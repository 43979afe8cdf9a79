// Package main is the entry point for the birdwatch server.
//
// main only reads configuration from the environment, builds the logger and
// hands both to internal/server. All actual logic lives in internal/.
//
// ENVIRONMENT:
//
//	PORT            HTTP port (default 8080)
//	STORE_BACKEND   sqlite | mongo | memory (default sqlite)
//	DB_PATH         sqlite file (default data/birds.db)
//	MONGO_URI       mongo connection string (default mongodb://localhost:27017)
//	MONGO_DATABASE  mongo database name (default birds)
//	LOG_LEVEL       debug | info | warn | error (default info)
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/birdwatch/internal/server"
)

func main() {
	// === 1. SET UP LOGGING ===
	level, ok := parseLevel(getenv("LOG_LEVEL", "info"))
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	if !ok {
		logger.Error("invalid LOG_LEVEL value", slog.String("value", os.Getenv("LOG_LEVEL")))
		os.Exit(1)
	}

	// === 2. READ CONFIGURATION ===
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	cfg := server.Config{
		Port:          port,
		StoreBackend:  getenv("STORE_BACKEND", server.BackendSQLite),
		DBPath:        getenv("DB_PATH", "data/birds.db"),
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getenv("MONGO_DATABASE", "birds"),
	}

	// === 3. PREPARE THE STORE ===
	// The sqlite file's directory must exist before the driver opens it.
	if cfg.StoreBackend == server.BackendSQLite {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// Bounded so an unreachable mongo fails startup instead of hanging it.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	srv, err := server.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 4. START ===
	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
