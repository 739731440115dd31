package websocket

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fortuna/prospect/internal/metrics"
	"github.com/fortuna/prospect/internal/store"
)

// Hub maintains the set of active sessions and broadcasts to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan ServerMessage
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}

	metrics metrics.Metrics
	logger  *log.Logger
}

// NewHub creates a new Hub instance. m may be nil.
func NewHub(m metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan ServerMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		metrics:    m,
		logger:     log.WithPrefix("ws-hub"),
	}
}

// Run starts the hub's main loop and blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.close()
			}
			h.clients = map[*Client]bool{}
			h.reportClients()
			return

		case c := <-h.register:
			h.clients[c] = true
			h.reportClients()
			h.logger.Debug("Session connected", "client", c.ID, "total", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
				h.reportClients()
				h.logger.Debug("Session disconnected", "client", c.ID, "total", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				if !c.TrySend(msg) {
					// Client buffer full - too slow, disconnect
					h.logger.Warn("Session buffer full, disconnecting", "client", c.ID)
					delete(h.clients, c)
					c.close()
					h.reportClients()
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues msg for every connected session. Drops it when the
// queue is full.
func (h *Hub) Broadcast(msg ServerMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Broadcast buffer full, dropping message", "type", msg.Type)
	}
}

// BroadcastRostersRefreshed tells every session that new rosters are loaded
func (h *Hub) BroadcastRostersRefreshed(r store.Rosters) {
	h.Broadcast(ServerMessage{
		Type:      TypeRostersRefreshed,
		Payload:   r.Status(),
		Timestamp: time.Now(),
	})
}

// ClientCount returns the number of connected sessions
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) reportClients() {
	if h.metrics != nil {
		h.metrics.SetWSClients(len(h.clients))
	}
}
