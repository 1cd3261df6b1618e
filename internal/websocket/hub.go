package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"realtydash/internal/infrastructure"
	"realtydash/pkg/contracts/events"
)

// Hub tracks the open dashboard sessions so they can be counted and closed
// together on shutdown
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool

	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	totalConnections int64
}

// NewHub creates a new Hub instance with dependency injection
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		metrics: metrics,
		logger:  logger.With(slog.String("component", "websocket.hub")),
	}
}

// Register adds a client and queues its connect message.
// It reports false once the hub is stopped.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = struct{}{}
	h.totalConnections++
	count := len(h.clients)
	h.mu.Unlock()

	ctx := c.context()
	if h.metrics != nil {
		h.metrics.WebSocketConnections.Add(ctx, 1)
	}
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", c.id),
		slog.String("remote_addr", c.remoteAddr))

	connect := events.NewMessage(events.MessageTypeConnect, c.traceID, map[string]interface{}{
		"status":    "connected",
		"client_id": c.id,
	})
	if data, err := json.Marshal(connect); err == nil {
		c.enqueue(data)
	}
	return true
}

// Unregister removes a client and closes its send queue. Calling it twice is safe.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	c.closeSend()
	count := len(h.clients)
	h.mu.Unlock()

	ctx := c.context()
	if h.metrics != nil {
		h.metrics.WebSocketConnections.Add(ctx, -1)
	}
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", c.id),
		slog.Duration("connection_duration", time.Since(c.connectedAt)))
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every open connection and refuses new ones
func (h *Hub) Stop(ctx context.Context) {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	total := h.totalConnections
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
	h.logger.InfoContext(ctx, "Hub stopped",
		slog.Int("closed_clients", len(clients)),
		slog.Int64("total_connections", total))
}
