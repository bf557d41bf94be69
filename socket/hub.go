// Package socket keeps the live tracking websocket subscribers and pushes
// shipment events to everyone watching an LR number.
package socket

import (
	"context"
	"strings"
	"sync"

	"logitrack-api/events"

	"go.uber.org/zap"
)

// Conn is the part of *websocket.Conn the hub writes to
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type client struct {
	conn Conn
	// websocket connections allow one concurrent writer
	mu sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub maps LR numbers to their watching clients
type Hub struct {
	clients map[string]map[*client]struct{}
	mu      sync.RWMutex
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		log:     log,
	}
}

func hubKey(lrNo string) string {
	return strings.ToUpper(strings.TrimSpace(lrNo))
}

// Register subscribes conn to lrNo and returns the function that removes it
func (h *Hub) Register(lrNo string, conn Conn) (unregister func()) {
	key := hubKey(lrNo)
	c := &client{conn: conn}

	h.mu.Lock()
	if h.clients[key] == nil {
		h.clients[key] = make(map[*client]struct{})
	}
	h.clients[key][c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("tracking subscriber registered", zap.String("lr_no", key))

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients[key], c)
			if len(h.clients[key]) == 0 {
				delete(h.clients, key)
			}
			h.mu.Unlock()
			h.log.Debug("tracking subscriber unregistered", zap.String("lr_no", key))
		})
	}
}

// Subscribers returns how many clients watch lrNo
func (h *Hub) Subscribers(lrNo string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[hubKey(lrNo)])
}

// Broadcast sends v to every client watching lrNo. Clients that fail to
// receive are closed and dropped.
func (h *Hub) Broadcast(lrNo string, v any) {
	key := hubKey(lrNo)

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[key]))
	for c := range h.clients[key] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(v); err != nil {
			h.log.Warn("dropping tracking subscriber", zap.String("lr_no", key), zap.Error(err))
			h.drop(key, c)
		}
	}
}

func (h *Hub) drop(key string, c *client) {
	h.mu.Lock()
	delete(h.clients[key], c)
	if len(h.clients[key]) == 0 {
		delete(h.clients, key)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// PublishShipmentEvent lets the hub sit next to the kafka producer
func (h *Hub) PublishShipmentEvent(_ context.Context, ev events.ShipmentEvent) error {
	h.Broadcast(ev.LRNo, ev)
	return nil
}

// CloseAll disconnects every subscriber
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, set := range h.clients {
		for c := range set {
			_ = c.conn.Close()
		}
		delete(h.clients, key)
	}
}
