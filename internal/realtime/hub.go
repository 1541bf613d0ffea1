package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains the set of connected calendar clients and broadcasts schedule
// change notifications. Uses Redis pub/sub for horizontal scaling: changes are
// published to Redis and every instance's subscriber delivers them locally.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
	redis   RedisPublisher
	cancel  func() // stops the Redis subscription
}

// RedisPublisher publishes schedule events to Redis for cross-instance broadcast.
type RedisPublisher interface {
	PublishScheduleEvent(event string, payload []byte) error
}

// RedisSubscriber subscribes to the schedule channel and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeSchedule(handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. When redisSub is set the hub subscribes
// to the schedule channel immediately.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	h := &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		redis:   redisPub,
	}
	if redisSub != nil {
		cancel, err := redisSub.SubscribeSchedule(func(event string, payload []byte) {
			h.Broadcast(event, json.RawMessage(payload))
		})
		if err != nil {
			logger.Warn("schedule channel subscribe failed", zap.Error(err))
		} else {
			h.cancel = cancel
		}
	}
	return h
}

// Close stops the Redis subscription.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

// Register adds a connected client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID))
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID))
}

// Broadcast sends a message to all connected clients (local only).
func (h *Hub) Broadcast(event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// ScheduleChanged notifies every calendar client that an event changed so they
// can re-fetch their window. Published to Redis only when available, so the
// subscriber callback broadcasts once for all instances (including this one)
// without duplicate local delivery.
func (h *Hub) ScheduleChanged(action string, eventID uuid.UUID) {
	payload, err := json.Marshal(map[string]string{
		"action":   action,
		"event_id": eventID.String(),
	})
	if err != nil {
		return
	}
	if h.redis != nil {
		if err := h.redis.PublishScheduleEvent("schedule_changed", payload); err != nil {
			h.logger.Warn("publish schedule event failed", zap.Error(err))
		}
		return
	}
	h.Broadcast("schedule_changed", json.RawMessage(payload))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
