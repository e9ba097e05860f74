package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vtree/internal/mirror"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Source is the runtime side of a Hub. *runtime.Runtime implements it.
type Source interface {
	// Snapshot returns a reset batch describing the committed tree.
	Snapshot() vdom.Batch
	// Send queues an event for dispatch.
	Send(ctx context.Context, ev *vdom.Event) error
}

// Hub fans batches out to WebSocket clients. It implements runtime.Backend.
type Hub struct {
	cfg      Config
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	src     Source
	clients map[*client]struct{}
	closed  bool
	nextID  uint64

	// mirror holds the tree as clients see it, for /debug/tree.
	mirror *mirror.Tree
	stale  bool

	dropped prometheus.Counter
}

// NewHub creates a Hub. Call Attach before serving connections.
func NewHub(opts ...Option) *Hub {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	o.cfg.fill()
	if o.logger == nil {
		o.logger = slog.Default()
	}

	h := &Hub{
		cfg:      o.cfg,
		logger:   o.logger,
		gatherer: o.gatherer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  o.cfg.ReadBufferSize,
			WriteBufferSize: o.cfg.WriteBufferSize,
			CheckOrigin:     o.cfg.CheckOrigin,
		},
		clients: make(map[*client]struct{}),
		mirror:  mirror.New(),
	}

	if o.registry != nil {
		factory := promauto.With(o.registry)
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "vtree",
			Subsystem: "remote",
			Name:      "clients",
			Help:      "Number of connected WebSocket clients",
		}, func() float64 { return float64(h.Clients()) })
		h.dropped = factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vtree",
			Subsystem: "remote",
			Name:      "dropped_clients_total",
			Help:      "Total number of clients disconnected for falling behind",
		})
	}
	return h
}

// Attach connects the hub to the runtime that feeds it.
func (h *Hub) Attach(src Source) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.src = src
}

func (h *Hub) source() Source {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.src
}

// Apply implements runtime.Backend. The batch is encoded once and queued to
// every client; a client whose queue is full is disconnected. Apply only
// fails when the batch cannot be encoded.
func (h *Hub) Apply(_ context.Context, batch vdom.Batch) error {
	frame, err := encodeBatch(batch)
	if err != nil {
		return fmt.Errorf("remote: encode batch %d: %w", batch.Seq, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	if err := h.mirror.Apply(batch); err != nil {
		if !h.stale {
			h.logger.Warn("debug mirror out of sync", "seq", batch.Seq, "error", err)
		}
		h.stale = true
	} else if batch.Reset {
		h.stale = false
	}

	for c := range h.clients {
		if !c.enqueue(frame) {
			h.logger.Warn("client too slow, disconnecting", "client", c.id, "seq", batch.Seq)
			delete(h.clients, c)
			c.shutdown()
			if h.dropped != nil {
				h.dropped.Inc()
			}
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TreeHTML renders the tree as the clients see it.
func (h *Hub) TreeHTML() (html string, stale bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mirror.HTML(), h.stale
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.nextID++
	c.id = h.nextID
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// Close disconnects every client. Later batches are discarded.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.shutdown()
	}
	return nil
}
