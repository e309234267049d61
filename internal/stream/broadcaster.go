// Package stream pushes each published batch to WebSocket clients.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/snaik/crypto-tracker/internal/analysis"
	"github.com/snaik/crypto-tracker/internal/model"
)

// writeTimeout bounds a single frame write to a client.
const writeTimeout = 10 * time.Second

// Broadcaster fans each cycle's batch out to connected WebSocket
// clients. Every client gets its own outbox queue, so one slow client
// never delays a publish or the other clients.
type Broadcaster struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger
	bufSize  int

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	out  *queue[[]byte]
}

// update is the JSON frame sent to clients each cycle.
type update struct {
	CycleID   string                `json:"cycle_id"`
	FetchedAt time.Time             `json:"fetched_at"`
	Assets    []model.AssetSnapshot `json:"assets"`
	Summary   analysis.Summary      `json:"summary"`
}

// NewBroadcaster creates a broadcaster whose per-client outboxes start
// at bufSize entries.
func NewBroadcaster(bufSize int, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	if bufSize < 1 {
		bufSize = 1
	}
	return &Broadcaster{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger,
		bufSize:  bufSize,
		clients:  make(map[*client]struct{}),
	}
}

func (b *Broadcaster) Name() string { return "stream" }

// Publish queues the batch for every connected client. Delivery is
// best effort; a client that cannot keep up is disconnected by its
// write loop, so Publish itself never fails on client state.
func (b *Broadcaster) Publish(ctx context.Context, batch model.Batch) error {
	frame, err := json.Marshal(update{
		CycleID:   batch.CycleID.String(),
		FetchedAt: batch.FetchedAt,
		Assets:    batch.Assets,
		Summary:   analysis.Summarize(batch),
	})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		c.out.push(frame)
	}
	return nil
}

// Handler accepts WebSocket connections.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			b.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		c := &client{conn: conn, out: newQueue[[]byte](b.bufSize)}

		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			conn.Close()
			return
		}
		b.clients[c] = struct{}{}
		total := len(b.clients)
		b.mu.Unlock()

		b.logger.Debug("stream client connected", "clients", total)

		go b.writeLoop(c)
		go b.readLoop(c)
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close disconnects all clients and rejects new ones.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for c := range b.clients {
		c.out.close()
		c.conn.Close()
		delete(b.clients, c)
	}
}

// writeLoop drains the client's outbox onto the wire.
func (b *Broadcaster) writeLoop(c *client) {
	for {
		frame, ok := c.out.pop()
		if !ok {
			return
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			b.drop(c)
			return
		}
	}
}

// readLoop discards inbound frames and detects disconnects.
func (b *Broadcaster) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			b.drop(c)
			return
		}
	}
}

func (b *Broadcaster) drop(c *client) {
	b.mu.Lock()
	_, present := b.clients[c]
	delete(b.clients, c)
	b.mu.Unlock()

	if present {
		c.out.close()
		c.conn.Close()
		b.logger.Debug("stream client disconnected")
	}
}
