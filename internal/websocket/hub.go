package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ca-assistant-be/internal/model"
	"ca-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans pipeline progress updates out to the websocket clients of a
// session. When Redis is available it also bridges updates across
// instances, so a client can be connected to a different instance than
// the one answering the chat.
type Hub struct {
	// Registered clients map: SessionId -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance delivery, may be nil
	rdb *redis.Client

	// Identifies this instance on the Redis channel so it can skip its
	// own publishes.
	instanceID string

	// Dedicated Logger
	logger logger.ILogger
}

const progressChannel = "progress_events"

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionId] = append(h.clients[client.SessionId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionId})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionId]; ok {
				for i, c := range clients {
					if c == client {
						// Remove from slice
						h.clients[client.SessionId] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionId]) == 0 {
					delete(h.clients, client.SessionId)
					h.logger.Info("Hub", "Session completely unregistered", map[string]interface{}{"session_id": client.SessionId})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes one progress update to every client of the session, locally
// and, when Redis is up, on the other instances too.
func (h *Hub) Send(sessionID string, update model.ProgressUpdate) {
	// 1. Serialize
	data, _ := json.Marshal(map[string]interface{}{
		"type": "progress",
		"data": update,
	})

	// 2. Deliver locally
	h.deliverLocal(sessionID, data)

	// 3. Publish to Redis for other instances
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_session_id": sessionID,
			"origin":            h.instanceID,
			"message":           data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), progressChannel, jsonPayload)
	}
}

func (h *Hub) deliverLocal(sessionID string, data []byte) {
	h.mu.RLock()
	clients, found := h.clients[sessionID]
	h.mu.RUnlock()

	if !found {
		return
	}
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
			close(client.Send)
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the same channel; on arrival, each one
	// checks whether it holds clients for the target session and delivers
	// locally if so.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, progressChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetSessionId string          `json:"target_session_id"`
			Origin          string          `json:"origin"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		// Locally delivered at publish time already.
		if payload.Origin == h.instanceID {
			continue
		}

		h.deliverLocal(payload.TargetSessionId, payload.Message)
	}
}
