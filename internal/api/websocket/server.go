package websocket

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server represents the WebSocket server
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	mux    *http.ServeMux
}

// NewServer creates a new WebSocket server
func NewServer(port string) *Server {
	s := &Server{
		port: port,
		hub:  NewHub(),
		mux:  http.NewServeMux(),
	}

	s.mux.HandleFunc("/ws/games", s.handleGames)
	s.mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Hub returns the hub game changes are published to
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the hub and the WebSocket server
func (s *Server) Start() error {
	go s.hub.Run()

	log.Printf("[ws] listening on :%s", s.port)
	return s.server.ListenAndServe()
}

// handleGames upgrades a watcher and streams game changes to it
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] failed to upgrade connection: %v", err)
		return
	}

	client := newClient(s.hub, conn)
	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// Shutdown stops the hub and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
