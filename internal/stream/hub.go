package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is one lifecycle transition of an execution, pushed to anyone
// watching it live.
type Event struct {
	ExecutionID string    `json:"execution_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	ExecutionID string
	Send        chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(executionID string) *Client {
	client := &Client{
		ExecutionID: executionID,
		Send:        make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[executionID] == nil {
		h.clients[executionID] = map[*Client]struct{}{}
	}
	h.clients[executionID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if watchers, ok := h.clients[client.ExecutionID]; ok {
		delete(watchers, client)
		if len(watchers) == 0 {
			delete(h.clients, client.ExecutionID)
		}
	}
	close(client.Send)
}

// Publish fans an event out to local watchers and, when redis is
// configured, to other instances via pub/sub. Best-effort; a nil hub or
// failed publish never affects the lifecycle operation.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.broadcast(event.ExecutionID, payload)

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(event.ExecutionID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) broadcast(executionID string, payload []byte) {
	// sends are non-blocking, so the lock is held across the loop to keep
	// Unregister from deleting watchers or closing Send mid-iteration
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[executionID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "executions:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.broadcast(executionIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(executionID string) string {
	return "executions:" + executionID + ":events"
}

func executionIDFromChannel(ch string) string {
	// executions:{id}:events
	const prefix = "executions:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
