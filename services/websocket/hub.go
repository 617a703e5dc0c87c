package websocket

import (
	"encoding/json"
	"sync"
	"time"

	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Hub keeps the connected panel users and fans events out to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// Client is one websocket connection of a user.
type Client struct {
	send   chan []byte
	userID uint
	rol    string
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			logrus.WithFields(logrus.Fields{"user_id": client.userID, "rol": client.rol}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			logrus.WithField("user_id", client.userID).Info("WebSocket client disconnected")
		}
	}
}

// BroadcastToRole sends a message to every connection of users with rol.
func (h *Hub) BroadcastToRole(rol string, message interface{}) {
	h.deliver(message, func(c *Client) bool { return c.rol == rol })
}

// BroadcastToUser sends a message to all connections of one user.
func (h *Hub) BroadcastToUser(userID uint, message interface{}) {
	h.deliver(message, func(c *Client) bool { return c.userID == userID })
}

func (h *Hub) deliver(message interface{}, match func(*Client) bool) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.WithError(err).Error("Error marshaling WebSocket message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		if !match(client) {
			continue
		}
		select {
		case client.send <- data:
		default:
			// slow consumer
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeFiberWS pumps events to a Fiber websocket connection until it closes.
func (h *Hub) ServeFiberWS(c *fiberws.Conn, userID uint, rol string) {
	client := &Client{
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		rol:    rol,
	}
	h.register <- client

	go h.writePump(client, c)
	h.readPump(client, c)
}

func (h *Hub) writePump(client *Client, c *fiberws.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.WriteMessage(fiberws.CloseMessage, []byte{})
				return
			}
			if err := c.WriteMessage(fiberws.TextMessage, message); err != nil {
				logrus.WithError(err).WithField("user_id", client.userID).Warn("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(fiberws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only handles control frames; clients never send events.
func (h *Hub) readPump(client *Client, c *fiberws.Conn) {
	defer func() {
		h.unregister <- client
		c.Close()
	}()

	c.SetReadLimit(maxMessageSize)
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if fiberws.IsUnexpectedCloseError(err, fiberws.CloseGoingAway, fiberws.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("user_id", client.userID).Warn("WebSocket unexpected close")
			}
			return
		}
	}
}
