package app

import (
	"sync"
	"time"

	"medical_chat_service/internal/chat/domain"
	"medical_chat_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const clientSendBuffer = 64

// Client one live websocket connection and its outbound queue. No
// message state lives here; a reconnecting client recovers everything
// through the durable read paths.
type Client struct {
	UserID string

	conn      *websocket.Conn
	send      chan domain.WSResponse
	closeOnce sync.Once
}

// NewClient wrap a websocket connection
func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan domain.WSResponse, clientSendBuffer),
	}
}

// Enqueue queue an event for delivery; a full queue drops the event
// instead of stalling the caller
func (c *Client) Enqueue(resp domain.WSResponse) bool {
	select {
	case c.send <- resp:
		return true
	default:
		logger.Log.Warn("client send queue full, event dropped", zap.String("userID", c.UserID))
		return false
	}
}

// WritePump drain the queue onto the wire until the queue closes or a
// write fails. Run as the connection's single writer goroutine.
func (c *Client) WritePump() {
	for resp := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteJSON(resp); err != nil {
			logger.Log.Errorf("write message error:", err)
			return
		}
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// Hub the live-path connection registry: which connections are joined to
// which room groups. Created at service start, injected into the
// websocket handler, torn down at shutdown. Broadcast is fire-and-forget
// and never touches persisted state.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	joined map[*Client]map[string]struct{}
}

// NewHub create the registry
func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		joined: make(map[*Client]map[string]struct{}),
	}
}

// Register track a fresh connection; it starts joined to no room
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joined[c] = make(map[string]struct{})
}

// Unregister drop the connection from every room group and close its queue
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	for roomID := range h.joined[c] {
		delete(h.rooms[roomID], c)
		if len(h.rooms[roomID]) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(h.joined, c)
	h.mu.Unlock()

	c.closeSend()
}

// JoinRoom add the connection to the room's broadcast group
func (h *Hub) JoinRoom(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.joined[c]; !ok {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
	h.joined[c][roomID] = struct{}{}
}

// LeaveRoom remove the connection from the room's broadcast group
func (h *Hub) LeaveRoom(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[roomID], c)
	if len(h.rooms[roomID]) == 0 {
		delete(h.rooms, roomID)
	}
	if joined, ok := h.joined[c]; ok {
		delete(joined, roomID)
	}
}

// Broadcast fan the event out to every connection joined to the room
// except origin. No recipient is not an error; a slow one is dropped.
func (h *Hub) Broadcast(roomID string, origin *Client, event domain.WSResponse) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		if c != origin {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.Enqueue(event)
	}
}

// RoomSize connections currently joined to the room's group
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Shutdown close every connection queue
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.joined))
	for c := range h.joined {
		clients = append(clients, c)
	}
	h.rooms = make(map[string]map[*Client]struct{})
	h.joined = make(map[*Client]map[string]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.closeSend()
	}
}
