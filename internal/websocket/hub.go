// Package websocket pushes question change events to connected clients.
package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/logging"
	"github.com/zizouhuweidi/trivia/internal/metrics"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Outbound messages buffered per client
	sendBufferSize = 256
)

// Message is the envelope written to clients
type Message struct {
	Type    string          `json:"type"`
	Payload domain.Question `json:"payload"`
}

type event struct {
	category int
	data     []byte
}

// Client is a middleman between the websocket connection and the hub.
// A zero CategoryID subscribes to every category.
type Client struct {
	Hub        *Hub
	Conn       *websocket.Conn
	CategoryID int
	Send       chan []byte
}

// NewClient creates a client for conn
func NewClient(hub *Hub, conn *websocket.Conn, categoryID int) *Client {
	return &Client{
		Hub:        hub,
		Conn:       conn,
		CategoryID: categoryID,
		Send:       make(chan []byte, sendBufferSize),
	}
}

// Hub maintains the set of active clients and broadcasts question events
type Hub struct {
	// Registered clients
	clients map[*Client]struct{}

	// Events waiting to be fanned out
	broadcast chan event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new hub instance
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan event, sendBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

// Run dispatches events until ctx is done, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			metrics.WebSocketClients.Inc()

		case client := <-h.unregister:
			h.remove(client)

		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.CategoryID != 0 && client.CategoryID != ev.category {
			continue
		}
		select {
		case client.Send <- ev.data:
		default:
			// slow consumer
			close(client.Send)
			delete(h.clients, client)
			metrics.WebSocketClients.Dec()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		metrics.WebSocketClients.Dec()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.Send)
		delete(h.clients, client)
		metrics.WebSocketClients.Dec()
	}
}

// PublishQuestion queues a question event for every subscribed client. It
// never blocks; events are dropped while the queue is full.
func (h *Hub) PublishQuestion(eventType string, question domain.Question) {
	data, err := json.Marshal(Message{Type: eventType, Payload: question})
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal question event")
		return
	}

	select {
	case h.broadcast <- event{category: question.Category, data: data}:
	default:
		logging.Warn().Str("type", eventType).Int("question_id", question.ID).Msg("websocket event queue full, dropping event")
	}
}

// Register registers a new client with the hub. After the hub has stopped
// the client's send channel is closed instead.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ReadPump drains the connection so control frames are handled. The feed is
// one-way; client messages are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregisterClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
