// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer. It opens the configured store, builds
// the services and handlers on top of it, and decides which URL maps to which
// handler. main.go only reads configuration and calls New and Start.
//
// DEPENDENCY INJECTION FLOW:
//
//	Config.StoreBackend → bird + sighting repositories
//	repositories → BirdService → SightingService
//	services → BirdHandler, SightingHandler → routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/birdwatch/internal/handler"
	"github.com/sakif/birdwatch/internal/metrics"
	"github.com/sakif/birdwatch/internal/middleware"
	"github.com/sakif/birdwatch/internal/repository"
	"github.com/sakif/birdwatch/internal/repository/memory"
	mongoRepo "github.com/sakif/birdwatch/internal/repository/mongo"
	sqliteRepo "github.com/sakif/birdwatch/internal/repository/sqlite"
	"github.com/sakif/birdwatch/internal/service"
)

// Store backends accepted in Config.StoreBackend.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

const shutdownTimeout = 30 * time.Second

// Config holds server configuration.
type Config struct {
	Port          int
	StoreBackend  string // sqlite, mongo or memory
	DBPath        string // sqlite file path
	MongoURI      string
	MongoDatabase string
}

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the store connection. Start closes it after the HTTP
// server has drained; callers that never call Start use Close.
type Server struct {
	router     *chi.Mux
	config     Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	closeStore func(context.Context) error
}

// stores is what a backend contributes to the wiring.
type stores struct {
	birds     repository.BirdRepository
	sightings repository.SightingRepository
	close     func(context.Context) error
}

// New opens the configured store and wires every route on top of it.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		router:     chi.NewRouter(),
		config:     cfg,
		logger:     logger,
		registry:   registry,
		closeStore: st.close,
	}
	s.setupRoutes(st, metrics.New(registry))

	return s, nil
}

// openStores connects to the backend named in cfg. Both repositories of a
// backend share one connection, closed once.
func openStores(ctx context.Context, cfg Config) (stores, error) {
	switch cfg.StoreBackend {
	case BackendSQLite, "":
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return stores{}, fmt.Errorf("opening sqlite database: %w", err)
		}
		return stores{
			birds:     db.Birds(),
			sightings: db.Sightings(),
			close:     func(context.Context) error { return db.Close() },
		}, nil

	case BackendMongo:
		db, err := mongoRepo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return stores{}, fmt.Errorf("connecting to mongo: %w", err)
		}
		return stores{
			birds:     db.Birds(),
			sightings: db.Sightings(),
			close:     db.Close,
		}, nil

	case BackendMemory:
		return stores{
			birds:     memory.NewBirdStore(),
			sightings: memory.NewSightingStore(),
			close:     func(context.Context) error { return nil },
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                   → liveness
// GET    /metrics                   → Prometheus exposition
// GET    /api/birds                 → list birds
// GET    /api/birds/search          → birds by name or color
// GET    /api/birds/{id}            → one bird
// POST   /api/birds                 → create bird
// PUT    /api/birds/{id}            → replace bird
// DELETE /api/birds/{id}            → delete bird and its sightings
// GET    /api/sightings             → list sightings
// GET    /api/sightings/search      → sightings by bird, location or time range
// GET    /api/sightings/{id}        → one sighting
// POST   /api/sightings             → create sighting
// PUT    /api/sightings/{id}        → replace sighting
// DELETE /api/sightings/{id}        → delete sighting
//
// The same bird and sighting routes are also served without the /api
// prefix (/birds, /sightings/search, ...).
//
// MIDDLEWARE ORDER MATTERS:
// RequestID runs first so the logger can attach the id to every line.
func (s *Server) setupRoutes(st stores, m *metrics.Metrics) {
	s.router.Use(chimiddleware.RequestID) // Assigns a request id (or keeps X-Request-Id)
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	s.router.Get("/healthz", handler.HandleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	birdService := service.NewBirdService(st.birds, st.sightings, m, s.logger)
	sightingService := service.NewSightingService(st.sightings, birdService, m, s.logger)

	birdHandler := handler.NewBirdHandler(birdService, s.logger)
	sightingHandler := handler.NewSightingHandler(sightingService, s.logger)

	resources := func(r chi.Router) {
		r.Route("/birds", func(r chi.Router) {
			r.Get("/", birdHandler.HandleList)
			r.Post("/", birdHandler.HandleCreate)
			r.Get("/search", birdHandler.HandleSearch)
			r.Get("/{id}", birdHandler.HandleGetByID)
			r.Put("/{id}", birdHandler.HandleUpdate)
			r.Delete("/{id}", birdHandler.HandleDelete)
		})
		r.Route("/sightings", func(r chi.Router) {
			r.Get("/", sightingHandler.HandleList)
			r.Post("/", sightingHandler.HandleCreate)
			r.Get("/search", sightingHandler.HandleSearch)
			r.Get("/{id}", sightingHandler.HandleGetByID)
			r.Put("/{id}", sightingHandler.HandleUpdate)
			r.Delete("/{id}", sightingHandler.HandleDelete)
		})
	}

	s.router.Route("/api", resources)
	resources(s.router)
}

// ServeHTTP lets the Server be used directly as an http.Handler, e.g. with
// httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the store connection.
func (s *Server) Close(ctx context.Context) error {
	return s.closeStore(ctx)
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the store connection
func (s *Server) Start() error {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Close(ctx); err != nil {
			s.logger.Error("failed to close store", slog.String("error", err.Error()))
		}
	}()

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
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("store", s.config.StoreBackend),
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

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
