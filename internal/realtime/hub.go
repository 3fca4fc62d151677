// Package realtime fans service events out to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"pokedex-api/internal/models"
	"pokedex-api/internal/observability"
)

// DefaultQueueSize bounds events waiting for Run to deliver them.
const DefaultQueueSize = 64

// Client represents a single subscriber connection.
// The network conn itself is managed by the websocket handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub keeps the set of connected clients and broadcasts events to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[Client]struct{}

	queue  chan []byte
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Hub{
		clients: make(map[Client]struct{}),
		queue:   make(chan []byte, DefaultQueueSize),
		logger:  logger,
	}
}

func (h *Hub) Register(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *Hub) Unregister(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends message to every client. Clients whose write fails are
// left for their handler to clean up.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if ok := c.Send(message); !ok {
			h.logger.Debug("realtime send failed")
		}
	}
}

// Notify queues event for delivery by Run. It never blocks; events are
// dropped when the queue is full.
func (h *Hub) Notify(event models.Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("encode realtime event", slog.Any("error", err))
		return
	}
	select {
	case h.queue <- msg:
	default:
		h.logger.Warn("realtime queue full, dropping event", slog.String("type", string(event.Type)))
	}
}

// Run delivers queued events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.queue:
			h.Broadcast(msg)
		}
	}
}
