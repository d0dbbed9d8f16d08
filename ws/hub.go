package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// EventPublisher is the part of the hub services depend on.
type EventPublisher interface {
	BroadcastToUser(userID int64, event Event)
	IsOnline(userID int64) bool
}

// UserCallback is invoked with a user ID on connection lifecycle changes.
type UserCallback func(userID int64)

// Hub tracks open connections per user.
//
// Register and unregister go through channels consumed by the single Run
// goroutine, so connection lifecycle changes (and the first-connect and
// fully-disconnected callbacks) are strictly ordered. Sends do not go through
// Run: they take mu for reading and write to the client's buffered channel
// directly, so a broadcast to one user never waits behind another user's
// registration. A client whose buffer is full is dropped rather than blocking
// the sender; the drop is queued back through unregister.
//
// A client's send channel is closed only under mu held for writing, after the
// client has left clients. Senders check membership under the read lock, which
// makes "in clients" equivalent to "send is open".
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once

	seq atomic.Int64
	log *zap.Logger

	onUserFirstConnect      UserCallback
	onUserFullyDisconnected UserCallback
}

// NewHub creates an idle hub; start it with go hub.Run().
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		log:        logger,
	}
}

// OnUserFirstConnect sets the callback run when a user opens their first
// connection. Must be called before Run.
func (h *Hub) OnUserFirstConnect(fn UserCallback) {
	h.onUserFirstConnect = fn
}

// OnUserFullyDisconnected sets the callback run when a user's last
// connection closes. Must be called before Run.
func (h *Hub) OnUserFullyDisconnected(fn UserCallback) {
	h.onUserFullyDisconnected = fn
}

// Run processes registrations until Shutdown.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	first := false
	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
		first = true
	}
	h.clients[client.userID][client] = true
	total := len(h.clients[client.userID])
	h.mu.Unlock()

	h.log.Debug("client connected", zap.Int64("user_id", client.userID), zap.Int("connections", total))

	if first && h.onUserFirstConnect != nil {
		go h.onUserFirstConnect(client.userID)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	last := false
	clients, ok := h.clients[client.userID]
	if ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.clients, client.userID)
				last = true
			}
		}
	}
	h.mu.Unlock()

	if last {
		h.log.Debug("user fully disconnected", zap.Int64("user_id", client.userID))
		if h.onUserFullyDisconnected != nil {
			go h.onUserFullyDisconnected(client.userID)
		}
	}
}

// BroadcastToUser sends event to every connection of userID. Connections
// whose send buffer is full are dropped.
func (h *Hub) BroadcastToUser(userID int64, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal event", zap.String("op", event.Op), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- data:
		default:
			go h.drop(client)
		}
	}
}

// sendToClient queues event for a single connection. It is a no-op once the
// client has been removed or the hub shut down.
func (h *Hub) sendToClient(c *Client, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal event", zap.String("op", event.Op), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[c.userID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
		go h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

// IsOnline reports whether userID has at least one open connection.
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// ConnectionCount returns the number of open connections of userID.
func (h *Hub) ConnectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Shutdown closes every connection and stops Run.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.stop)

		h.mu.Lock()
		defer h.mu.Unlock()
		for _, clients := range h.clients {
			for client := range clients {
				close(client.send)
			}
		}
		h.clients = make(map[int64]map[*Client]bool)
		h.log.Info("hub shut down")
	})
}
