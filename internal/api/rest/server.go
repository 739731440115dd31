package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewRouter builds the route table. Exposed for tests.
func NewRouter(handler *Handler, corsOrigins []string) *mux.Router {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RequestIDMiddleware)
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware(corsOrigins))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if handler.metrics != nil {
		router.Handle("/metrics", handler.metrics).Methods("GET")
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Catalogue
	api.HandleFunc("/levels", handler.GetLevels).Methods("GET")

	// Rosters
	api.HandleFunc("/rosters/status", handler.GetRosterStatus).Methods("GET")
	api.HandleFunc("/rosters/refresh", handler.RefreshRosters).Methods("POST")

	// Evaluation
	api.HandleFunc("/profile/validate", handler.ValidateProfile).Methods("POST")
	api.HandleFunc("/probability", handler.GetProbability).Methods("POST")
	api.HandleFunc("/comparisons", handler.GetComparisons).Methods("POST")
	api.HandleFunc("/rankings", handler.GetRankings).Methods("GET", "POST")

	// Preflight requests are answered by the CORS middleware, but mux only
	// runs middleware for matched routes
	router.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return router
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, corsOrigins []string) *Server {
	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           NewRouter(handler, corsOrigins),
			ReadHeaderTimeout: 10 * time.Second,
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
