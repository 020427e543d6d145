package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"msacli/internal/infrastructure"
)

// Message type constants shared with the dashboard client.
const (
	TypeConnection      = "connection"
	TypeRunProgress     = "run:progress"
	TypeRunComplete     = "run:complete"
	TypeRunError        = "run:error"
	TypeSettingsUpdated = "settings:updated"
	TypeFilesUpdated    = "files:updated"
)

// Hub maintains the set of active dashboard clients and broadcasts
// run events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	totalConnections int64
	messagesSent     int64

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub's main loop.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Stop shuts the hub down and disconnects all clients.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

// Run processes register, unregister and broadcast events until the
// hub is stopped.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			h.logger.Info("Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.sendConnectionMessage(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				h.logger.Info("Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// deliver fans one message out to every client, dropping clients
// whose send buffer is full.
func (h *Hub) deliver(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	failCount := 0
	for _, client := range clients {
		select {
		case client.send <- message:
			h.mu.Lock()
			h.messagesSent++
			h.mu.Unlock()
		default:
			failCount++
			h.mu.Lock()
			close(client.send)
			delete(h.clients, client)
			h.mu.Unlock()

			h.logger.Warn("Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}

	if failCount > 0 {
		h.logger.Warn("Some clients failed to receive broadcast",
			slog.Int("client_count", len(clients)),
			slog.Int("fail_count", failCount))
	}
}

func (h *Hub) sendConnectionMessage(client *Client) {
	msg := map[string]interface{}{
		"type": TypeConnection,
		"data": map[string]interface{}{
			"status":    "connected",
			"client_id": client.id,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	}
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.send <- jsonData:
	default:
		h.logger.Warn("Failed to send connection message, client buffer full",
			slog.String("client_id", client.id))
	}
}

// Broadcast sends a pre-encoded message to all connected clients.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.quit:
	}
}

// BroadcastUpdate sends a typed event with an arbitrary payload.
func (h *Hub) BroadcastUpdate(eventType string, data interface{}) {
	message := map[string]interface{}{
		"type":      eventType,
		"data":      data,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	jsonData, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", eventType))
		return
	}
	h.Broadcast(jsonData)
}

// BroadcastProgress reports a run stage's progress to the dashboard.
func (h *Hub) BroadcastProgress(runID, stage string, progress int, message string) {
	h.BroadcastUpdate(TypeRunProgress, map[string]interface{}{
		"run_id":   runID,
		"stage":    stage,
		"progress": progress,
		"message":  message,
	})
}

// BroadcastRunComplete announces a finished run.
func (h *Hub) BroadcastRunComplete(runID string, data interface{}) {
	h.BroadcastUpdate(TypeRunComplete, map[string]interface{}{
		"run_id": runID,
		"result": data,
	})
}

// BroadcastRunError announces a failed run.
func (h *Hub) BroadcastRunError(runID string, err error) {
	h.BroadcastUpdate(TypeRunError, map[string]interface{}{
		"run_id": runID,
		"error":  err.Error(),
	})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns hub counters for the health endpoint.
func (h *Hub) Stats() map[string]int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]int64{
		"active_connections": int64(len(h.clients)),
		"total_connections":  h.totalConnections,
		"messages_sent":      h.messagesSent,
	}
}
