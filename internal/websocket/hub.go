// Package websocket streams pipeline progress events to connected
// clients in real time, so a UI can render a live progress bar while a
// run executes.
package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// ProgressEvent is the wire form of a pipeline progress update
type ProgressEvent struct {
	Type      string                  `json:"type"`
	RunID     string                  `json:"run_id,omitempty"`
	Progress  *types.PipelineProgress `json:"progress,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
	Data      interface{}             `json:"data,omitempty"`
}

// Client represents one WebSocket subscriber
type Client struct {
	ID         string
	Connection *websocket.Conn
	Send       chan ProgressEvent
	Hub        *Hub
	RunID      string // Filter events by run; empty receives everything
	closed     bool
	mu         sync.Mutex
}

// SafeClose closes the client's send channel exactly once
func (c *Client) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed && c.Send != nil {
		close(c.Send)
		c.closed = true
	}
}

// Hub manages WebSocket connections and broadcasts
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan ProgressEvent
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan ProgressEvent, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mutex.Lock()
		for client := range h.clients {
			client.SafeClose()
			if client.Connection != nil {
				if err := client.Connection.Close(); err != nil {
					log.Printf("Error closing client connection: %v", err)
				}
			}
		}
		h.mutex.Unlock()
	}()

	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

			welcome := ProgressEvent{
				Type:      "connection",
				Timestamp: time.Now(),
				Data: map[string]interface{}{
					"client_id": client.ID,
					"message":   "Connected to pipeline progress stream",
				},
			}
			select {
			case client.Send <- welcome:
			default:
				h.removeClient(client)
			}

		case client := <-h.unregister:
			h.removeClient(client)

		case event := <-h.broadcast:
			// Write lock, not read lock: slow clients get removed
			// mid-iteration.
			h.mutex.Lock()
			for client := range h.clients {
				if !h.shouldSendToClient(client, &event) {
					continue
				}
				select {
				case client.Send <- event:
				default:
					// Client's send channel is full, remove them
					h.removeClientUnsafe(client)
				}
			}
			h.mutex.Unlock()

		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeClientUnsafe(client)
}

// removeClientUnsafe removes a client without locking (assumes lock is held)
func (h *Hub) removeClientUnsafe(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.SafeClose()
		if client.Connection != nil {
			if err := client.Connection.Close(); err != nil {
				log.Printf("Error closing client connection: %v", err)
			}
		}
	}
}

// shouldSendToClient applies the client's run filter. Connection and
// system events always go through.
func (h *Hub) shouldSendToClient(client *Client, event *ProgressEvent) bool {
	if event.Type == "connection" || event.Type == "system" {
		return true
	}
	if client.RunID != "" && event.RunID != "" && client.RunID != event.RunID {
		return false
	}
	return true
}

// RegisterClient registers a new client with the hub
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client from the hub
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// BroadcastProgress fans a pipeline progress entry out to subscribers.
// Never blocks the pipeline: if the broadcast buffer is full the event
// is dropped.
func (h *Hub) BroadcastProgress(progress types.PipelineProgress) {
	event := ProgressEvent{
		Type:      "progress",
		RunID:     progress.RunID,
		Progress:  &progress,
		Timestamp: time.Now(),
	}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("Warning: broadcast channel full, dropping progress for run %s", progress.RunID)
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// NewClient creates a new WebSocket client
func NewClient(id string, conn *websocket.Conn, hub *Hub, runID string) *Client {
	return &Client{
		ID:         id,
		Connection: conn,
		Send:       make(chan ProgressEvent, 256),
		Hub:        hub,
		RunID:      runID,
	}
}

// WritePump pumps events from the hub to the websocket connection
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		if err := c.Connection.Close(); err != nil {
			log.Printf("Error closing connection in WritePump: %v", err)
		}
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
				log.Printf("Error setting write deadline: %v", err)
			}
			if !ok {
				// The hub closed the channel
				if err := c.Connection.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					log.Printf("Error writing close message: %v", err)
				}
				return
			}
			if err := c.Connection.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
				log.Printf("Error setting write deadline: %v", err)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// ReadPump drains client messages and unregisters on disconnect
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
	}()

	c.Connection.SetReadLimit(512)
	if err := c.Connection.SetReadDeadline(time.Now().Add(70 * time.Second)); err != nil {
		log.Printf("Error setting read deadline: %v", err)
	}
	c.Connection.SetPongHandler(func(string) error {
		return c.Connection.SetReadDeadline(time.Now().Add(70 * time.Second))
	})

	for {
		if _, _, err := c.Connection.ReadMessage(); err != nil {
			return
		}
	}
}
