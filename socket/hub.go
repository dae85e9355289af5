package socket

import (
	"context"
	"encoding/json"
	"sync"

	"ruzznotes/pkg/logger"
)

const (
	ViewType        = "VIEW"         // Derived note list after a change
	QueryType       = "QUERY"        // Client changed search, filter or sort
	FormType        = "FORM"         // Form opened, changed or closed
	NoteCreatedType = "NOTE_CREATED" // A note was created
	NoteUpdatedType = "NOTE_UPDATED" // A note was replaced
	NoteDeletedType = "NOTE_DELETED" // A note was removed
	ErrorType       = "ERROR"        // Inbound message was rejected
)

const broadcastBuffer = 64

type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SnapshotFunc builds the message a client receives right after connecting.
type SnapshotFunc func() (WSMessage, error)

// InboundFunc handles a message sent by a client. A non-nil reply is sent
// back to that client only.
type InboundFunc func(msg WSMessage) *WSMessage

type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex

	snapshot SnapshotFunc
	inbound  InboundFunc
	done     chan struct{}

	// pendingView holds the newest VIEW that did not fit in Broadcast.
	pendingMu   sync.Mutex
	pendingView *WSMessage
	viewReady   chan struct{}
}

func NewHub(snapshot SnapshotFunc, inbound InboundFunc) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan WSMessage, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		snapshot:   snapshot,
		inbound:    inbound,
		done:       make(chan struct{}),
		viewReady:  make(chan struct{}, 1),
	}
}

// Publish queues v for every connected client. It never blocks. When the
// queue is full a VIEW is parked and sent once the queue drains, replacing
// any VIEW parked before it; other message types are dropped.
func (h *Hub) Publish(msgType string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s payload: %v", msgType, err)
		return
	}
	msg := WSMessage{Type: msgType, Payload: payload}

	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	select {
	case h.Broadcast <- msg:
		if msgType == ViewType {
			h.pendingView = nil
		}
		return
	default:
	}

	if msgType != ViewType {
		logger.Sugar.Warnf("Broadcast queue full, dropping %s message", msgType)
		return
	}
	logger.Sugar.Warn("Broadcast queue full, parking latest VIEW")
	h.pendingView = &msg
	select {
	case h.viewReady <- struct{}{}:
	default:
	}
}

func (h *Hub) takePendingView() (WSMessage, bool) {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	if h.pendingView == nil || len(h.Broadcast) > 0 {
		return WSMessage{}, false
	}
	msg := *h.pendingView
	h.pendingView = nil
	return msg, true
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Clients)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.Clients {
				delete(h.Clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			h.mu.Unlock()

			// The new client gets the current view straight away.
			if h.snapshot != nil {
				msg, err := h.snapshot()
				if err != nil {
					logger.Sugar.Errorf("Failed to build snapshot for client %s: %v", client.ID, err)
					continue
				}
				h.sendTo(client, msg)
			}
			logger.Sugar.Infof("Client %s connected", client.ID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				logger.Sugar.Infof("Client %s disconnected", client.ID)
			}
			h.mu.Unlock()

		case msg := <-h.Broadcast:
			h.broadcast(msg)
			if pending, ok := h.takePendingView(); ok {
				h.broadcast(pending)
			}

		case <-h.viewReady:
			// Still queued messages flush the parked VIEW after they drain.
			if pending, ok := h.takePendingView(); ok {
				h.broadcast(pending)
			}
		}
	}
}

func (h *Hub) broadcast(msg WSMessage) {
	// Marshal the message once to be sent to all clients.
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
		return
	}

	// Collect recipients to avoid holding the lock during I/O.
	h.mu.Lock()
	clientsToSend := make([]*Client, 0, len(h.Clients))
	for client := range h.Clients {
		clientsToSend = append(clientsToSend, client)
	}
	h.mu.Unlock()

	for _, client := range clientsToSend {
		select {
		case client.Send <- payload:
		default:
			// The client is lagging; drop it instead of blocking the hub.
			logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.ID)
			h.mu.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) sendTo(client *Client, msg WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s message: %v", msg.Type, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.Clients[client]; !ok {
		return
	}
	select {
	case client.Send <- payload:
	default:
		logger.Sugar.Warnf("Client %s's send buffer was full, dropping %s.", client.ID, msg.Type)
	}
}
