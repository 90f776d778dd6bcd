package server

import (
	"context"
	"log"
	"sync/atomic"
)

// Hub keeps the set of connected renderers and fans frames out to them.
// Only Run touches the client set.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	count   atomic.Int32
	metrics *Metrics
}

// NewHub creates a hub; start it with Run
func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		metrics:    metrics,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.setCount()
			log.Printf("WS: client %s connected from %s", client.id, client.remote)

		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
				log.Printf("WS: client %s disconnected", client.id)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// a renderer that cannot keep up is cut off
					log.Printf("WS: client %s too slow, dropping", client.id)
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.count.Store(int32(len(h.clients)))
	if h.metrics != nil {
		h.metrics.clients.Set(float64(len(h.clients)))
	}
}

// Count is the number of registered clients
func (h *Hub) Count() int {
	return int(h.count.Load())
}

// Broadcast queues message for every client. It never blocks the caller;
// false means the hub is behind and the message was dropped.
func (h *Hub) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	case <-h.done:
		return false
	default:
		return false
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
