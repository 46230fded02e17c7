package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/fortuna/gridiron/internal/publisher"
)

// Hub maintains the set of connected watchers and fans game changes out to them
type Hub struct {
	clients map[*Client]bool

	// Inbound messages to send to every client
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	quit     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("[ws] client connected (%d watching)", h.ClientCount())

		case client := <-h.unregister:
			h.remove(client)
			log.Printf("[ws] client disconnected (%d watching)", h.ClientCount())

		case data := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			// drop clients that cannot keep up; the loop owns the map so no
			// channel round trip is needed
			for _, client := range slow {
				log.Printf("[ws] dropping slow client")
				h.remove(client)
			}

		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and disconnects every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues data for every client. Messages are dropped when the
// queue is full.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		log.Printf("[ws] ⚠️  broadcast queue full, dropping message")
	}
}

// PublishGameChange sends ev to every watcher as JSON
func (h *Hub) PublishGameChange(ctx context.Context, ev publisher.GameEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding game event: %w", err)
	}
	h.Broadcast(data)
	return nil
}
