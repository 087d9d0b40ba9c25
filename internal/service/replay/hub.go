package replay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"TickBoard/internal/domain/models"
	"TickBoard/pkg/logger"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Hub tracks connected push-channel clients and broadcasts each snapshot
// to all of them. Dead clients are dropped on write error.
type Hub struct {
	log *logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{log: log, clients: make(map[*websocket.Conn]struct{})}
}

// Add registers a client connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("feed client connected", logger.Int("clients", n))
}

// Remove unregisters and closes a client connection. Safe to call twice.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
		h.log.Info("feed client disconnected", logger.Int("clients", n))
	}
}

// Broadcast sends the snapshot to every connected client.
func (h *Hub) Broadcast(snap *models.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		h.log.Error("marshal snapshot", logger.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warn("feed client write failed", logger.Error(err))
			h.Remove(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcaster ticks the replay source on a fixed interval, keeps the
// latest snapshot for the request/response endpoint, and pushes each new
// one through the hub.
type Broadcaster struct {
	source   *Source
	hub      *Hub
	interval time.Duration
	log      *logger.Logger

	mu      sync.RWMutex
	current *models.Snapshot

	lifecycle sync.Mutex
	cancel    context.CancelFunc
}

// NewBroadcaster creates a broadcaster over the given source and hub.
func NewBroadcaster(source *Source, hub *Hub, interval time.Duration, log *logger.Logger) *Broadcaster {
	if interval <= 0 {
		interval = time.Second
	}
	return &Broadcaster{source: source, hub: hub, interval: interval, log: log}
}

// Current returns the latest generated snapshot, or nil before the first
// tick.
func (b *Broadcaster) Current() *models.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Hub returns the underlying hub.
func (b *Broadcaster) Hub() *Hub { return b.hub }

// Start generates the first snapshot immediately, then ticks. Idempotent.
func (b *Broadcaster) Start(ctx context.Context) {
	b.lifecycle.Lock()
	if b.cancel != nil {
		b.lifecycle.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.lifecycle.Unlock()

	b.tick()
	go b.run(runCtx)
}

// Stop halts the tick loop. Idempotent.
func (b *Broadcaster) Stop() {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func (b *Broadcaster) run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.tick()
		}
	}
}

func (b *Broadcaster) tick() {
	snap := b.source.Next()
	b.mu.Lock()
	b.current = snap
	b.mu.Unlock()
	b.hub.Broadcast(snap)
}
