// Package realtime pushes live scoreboard updates to WebSocket viewers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/scoreboard/metrics"
	"github.com/gorilla/websocket"
)

type Message struct {
	Type    string      `json:"type"`              // имя события, например "team_updated"
	Payload interface{} `json:"payload"`           // данные события
	RoomID  string      `json:"room_id,omitempty"` // комната, пусто для общих рассылок
}

// clientCommand is what viewers may send: {"action":"join","room":"team_3"}.
type clientCommand struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 256
)

func TeamRoom(teamID int) string {
	return fmt.Sprintf("team_%d", teamID)
}

func RoundRoom(roundNumber int) string {
	return fmt.Sprintf("round_%d", roundNumber)
}

type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
		metrics:    m,
	}
}

// Run owns client registration until ctx is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			for room := range client.rooms {
				h.addToRoomLocked(client, room)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.metrics.WebSocketConnected()
			h.logger.Debug("WebSocket client registered", slog.Int("clients", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				h.removeClientLocked(client)
				h.metrics.WebSocketDisconnected()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("WebSocket client unregistered", slog.Int("clients", total))

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.removeClientLocked(client)
				h.metrics.WebSocketDisconnected()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Serve registers the client with the hub and starts its pumps.
func (h *Hub) Serve(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event string, payload interface{}) error {
	data, err := json.Marshal(Message{Type: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s broadcast: %w", event, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.deliver(data)
	}
	return nil
}

// BroadcastToRoom sends an event to the clients that joined room.
func (h *Hub) BroadcastToRoom(room string, event string, payload interface{}) error {
	data, err := json.Marshal(Message{Type: event, Payload: payload, RoomID: room})
	if err != nil {
		return fmt.Errorf("failed to encode %s broadcast for room %s: %w", event, room, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		client.deliver(data)
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[client] {
		return
	}
	client.rooms[room] = true
	h.addToRoomLocked(client, room)
}

func (h *Hub) leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(client.rooms, room)
	h.removeFromRoomLocked(client, room)
}

func (h *Hub) addToRoomLocked(client *Client, room string) {
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
}

func (h *Hub) removeFromRoomLocked(client *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) removeClientLocked(client *Client) {
	for room := range client.rooms {
		h.removeFromRoomLocked(client, room)
	}
	delete(h.clients, client)
	client.close()
}

type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]bool // защищено hub.mu

	closed bool
	mu     sync.Mutex
}

func NewClient(hub *Hub, conn *websocket.Conn, rooms []string) *Client {
	c := &Client{
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		rooms: make(map[string]bool, len(rooms)),
	}
	for _, room := range rooms {
		if room != "" {
			c.rooms[room] = true
		}
	}
	return c
}

// Enqueue queues an event for this client only, e.g. the initial snapshot.
func (c *Client) Enqueue(event string, payload interface{}) error {
	data, err := json.Marshal(Message{Type: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", event, err)
	}
	if !c.deliver(data) {
		return fmt.Errorf("client send buffer full or closed, %s dropped", event)
	}
	return nil
}

func (c *Client) deliver(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		// Медленный клиент пропускает сообщение
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket read failed", slog.Any("error", err))
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil || cmd.Room == "" {
			c.hub.logger.Debug("Ignoring WebSocket message", slog.String("message", string(data)))
			continue
		}
		switch cmd.Action {
		case "join":
			c.hub.join(c, cmd.Room)
			c.hub.logger.Debug("WebSocket client joined room", slog.String("room", cmd.Room), slog.Int("members", c.hub.RoomSize(cmd.Room)))
		case "leave":
			c.hub.leave(c, cmd.Room)
			c.hub.logger.Debug("WebSocket client left room", slog.String("room", cmd.Room), slog.Int("members", c.hub.RoomSize(cmd.Room)))
		default:
			c.hub.logger.Debug("Unknown WebSocket action", slog.String("action", cmd.Action))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug("WebSocket write failed", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
