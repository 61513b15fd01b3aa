package ws

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/types"
)

type EventType string

const (
	EventSubscribe      EventType = "subscribe"
	EventSubscribed     EventType = "subscribed"
	EventTreeCreated    EventType = "tree_created"
	EventOperationAdded EventType = "operation_added"
)

type Message struct {
	Type    EventType `json:"type"`
	Data    any       `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
}

// OperationAddedPayload is the data shape of an operation_added event.
type OperationAddedPayload struct {
	TreeID int64           `json:"treeId"`
	Node   *types.NodeView `json:"node"`
}

// Conn is the transport surface the hub needs from a connection. Satisfied
// by *websocket.Conn.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Client is one live subscriber handle. Eligibility for broadcasts begins
// at registration, not at handshake ack.
type Client struct {
	ID   uuid.UUID
	conn Conn

	// Serializes writes: the handshake ack comes from the read loop while
	// broadcasts come from request goroutines.
	writeMu sync.Mutex
}

func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub maintains the set of live subscriber connections and fans events out
// to all of them, best effort. It holds no event history: a subscriber that
// connects late catches up with a full trees fetch, not through the hub.
type Hub struct {
	mu      sync.RWMutex
	log     *logger.Logger
	clients map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:     log.With("component", "Hub"),
		clients: make(map[*Client]bool),
	}
}

func (h *Hub) NewClient(conn Conn) *Client {
	return &Client{ID: uuid.New(), conn: conn}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	h.log.Debug("Client registered", "clientID", client.ID, "clients", len(h.clients))
}

// Unregister is idempotent: removing an already-removed client is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
	h.log.Debug("Client unregistered", "clientID", client.ID, "clients", len(h.clients))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleInbound processes one message read from a client. Only the
// subscribe handshake gets a reply; everything else is ignored.
func (h *Hub) HandleInbound(client *Client, msg Message) {
	if msg.Type != EventSubscribe {
		return
	}
	ack := Message{Type: EventSubscribed, Message: "Successfully subscribed to updates"}
	if err := client.writeJSON(ack); err != nil {
		h.log.Warn("Failed to ack subscribe", "clientID", client.ID, "error", err)
		h.drop(client)
	}
}

func (h *Hub) BroadcastTreeCreated(tree *types.TreeView) {
	h.broadcast(Message{Type: EventTreeCreated, Data: tree})
}

func (h *Hub) BroadcastOperationAdded(treeID int64, node *types.NodeView) {
	h.broadcast(Message{Type: EventOperationAdded, Data: OperationAddedPayload{TreeID: treeID, Node: node}})
}

// broadcast snapshots the registry, then writes outside the lock so a slow
// or failing connection never blocks registration. Delivery is best effort:
// a failed write drops that client and the rest still receive the event.
func (h *Hub) broadcast(msg Message) {
	h.mu.RLock()
	snapshot := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		snapshot = append(snapshot, client)
	}
	h.mu.RUnlock()

	for _, client := range snapshot {
		if err := client.writeJSON(msg); err != nil {
			h.log.Warn("Dropping client after failed write", "clientID", client.ID, "event", msg.Type, "error", err)
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	h.Unregister(client)
	_ = client.conn.Close()
}
