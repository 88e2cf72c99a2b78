package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fortuna/gridiron/internal/backfill"
	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, db *store.Database, redisCache *cache.RedisCache, pub *publisher.RedisStreamPublisher, refreshService *service.RefreshService, backfillSvc *backfill.Service) *Server {
	handler := NewHandler(db, redisCache, pub, refreshService)
	backfillHandler := NewBackfillHandler(backfillSvc)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Reconciled player-weeks
	api.HandleFunc("/players/trends", handler.GetPlayerTrends).Methods("GET")
	api.HandleFunc("/players", handler.GetPlayers).Methods("GET")
	api.HandleFunc("/top-performers", handler.GetTopPerformers).Methods("GET")
	api.HandleFunc("/stats/summary", handler.GetStatsSummary).Methods("GET")

	// Raw feed rows
	api.HandleFunc("/salaries/ingest", handler.IngestSalaries).Methods("POST")
	api.HandleFunc("/salaries", handler.GetSalaries).Methods("GET")
	api.HandleFunc("/snap-counts", handler.GetSnapCounts).Methods("GET")

	// Name mappings
	api.HandleFunc("/mappings", handler.GetMappings).Methods("GET")
	api.HandleFunc("/mappings", handler.PutMapping).Methods("PUT")
	api.HandleFunc("/mappings", handler.DeleteMapping).Methods("DELETE")

	// Pipeline
	api.HandleFunc("/refresh", handler.TriggerRefresh).Methods("POST")

	// Backfill operations
	api.HandleFunc("/backfill/jobs", backfillHandler.EnqueueJob).Methods("POST")
	api.HandleFunc("/backfill/jobs", backfillHandler.ListJobs).Methods("GET")
	api.HandleFunc("/backfill/jobs/{jobID}", backfillHandler.GetJob).Methods("GET")
	api.HandleFunc("/backfill/jobs/{jobID}", backfillHandler.CancelJob).Methods("DELETE")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
