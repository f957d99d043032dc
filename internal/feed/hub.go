package feed

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 16
)

// SnapshotSource returns the current blocked set.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*domain.BlockedResourceView, error)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is the websocket side of the feed. Each subscriber gets the current
// snapshot on connect and every snapshot published afterwards.
type Hub struct {
	source   SnapshotSource
	upgrader websocket.Upgrader

	mu             sync.Mutex
	clients        map[*client]struct{}
	latest         []byte
	latestRevision int64
}

// NewHub creates a Hub. checkOrigin may be nil to accept any origin.
func NewHub(source SnapshotSource, checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Hub{
		source:         source,
		upgrader:       websocket.Upgrader{CheckOrigin: checkOrigin},
		clients:        make(map[*client]struct{}),
		latestRevision: -1,
	}
}

// Publish implements Publisher. Snapshots older than the last one are dropped.
func (h *Hub) Publish(_ context.Context, view *domain.BlockedResourceView) error {
	data, err := Encode(view)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if view.Revision < h.latestRevision {
		return nil
	}
	h.latest = data
	h.latestRevision = view.Revision

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow subscriber; it reconnects and gets a fresh snapshot.
			h.removeLocked(c)
		}
	}
	return nil
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams snapshots until the peer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.loadIfEmpty(r.Context())
	if err != nil {
		slog.Error("failed to load blocked set for feed subscriber", "error", err)
		http.Error(w, "blocked set unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendSize)}
	h.register(c, loaded)

	slog.Info("feed subscriber connected", "remote_addr", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
}

type encodedView struct {
	data     []byte
	revision int64
}

// loadIfEmpty reads the source when nothing was published yet.
func (h *Hub) loadIfEmpty(ctx context.Context) (*encodedView, error) {
	h.mu.Lock()
	empty := h.latest == nil
	h.mu.Unlock()
	if !empty {
		return nil, nil
	}

	view, err := h.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	data, err := Encode(view)
	if err != nil {
		return nil, err
	}
	return &encodedView{data: data, revision: view.Revision}, nil
}

// register queues the newest known snapshot and adds c to the subscribers in
// one critical section, so no Publish can fall between the two.
func (h *Hub) register(c *client, loaded *encodedView) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if loaded != nil && (h.latest == nil || loaded.revision > h.latestRevision) {
		h.latest = loaded.data
		h.latestRevision = loaded.revision
	}

	c.send <- h.latest
	h.clients[c] = struct{}{}
	metrics.FeedClients.Set(float64(len(h.clients)))
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.FeedClients.Set(float64(len(h.clients)))
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}
