package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fortuna/gridiron/internal/service"
	"github.com/gorilla/mux"
)

const serviceName = "gridiron-api"

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
	router  *mux.Router
}

// NewServer creates a new REST API server
func NewServer(port string, games *service.GameService, stats *service.StatsService, checks map[string]HealthChecker) *Server {
	handler := NewHandler(games, stats, checks)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Games
	api.HandleFunc("/games", handler.ListGames).Methods("GET", "OPTIONS")
	api.HandleFunc("/games", handler.CreateGame).Methods("POST")
	api.HandleFunc("/games/{gameID}", handler.GetGame).Methods("GET", "OPTIONS")
	api.HandleFunc("/games/{gameID}", handler.UpdateGame).Methods("PUT")
	api.HandleFunc("/games/{gameID}", handler.DeleteGame).Methods("DELETE")

	// Stats
	api.HandleFunc("/stats", handler.GetStats).Methods("GET", "OPTIONS")

	return &Server{
		port:    port,
		handler: handler,
		router:  router,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the routed handler, middleware included
func (s *Server) Handler() http.Handler {
	return s.router
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
