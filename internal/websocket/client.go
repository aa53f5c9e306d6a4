package websocket

import (
	"sync"
	"time"

	"dropchat/internal/models"
	"dropchat/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256
)

// Client is one viewer connection. It starts in the Connecting state; the
// first join envelope moves it to Joined, and transport close always moves
// it to Closed via Leave, whether or not it ever joined.
type Client struct {
	conn        *websocket.Conn
	send        chan []byte
	authorToken string
	broker      *Broker

	mu      sync.Mutex
	hub     *Hub
	private bool
}

func NewClient(conn *websocket.Conn, authorToken string, broker *Broker) *Client {
	return &Client{
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		authorToken: authorToken,
		broker:      broker,
	}
}

func (c *Client) setHub(h *Hub, private bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hub = h
	c.private = private
}

func (c *Client) currentHub() *Hub {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hub
}

func (c *Client) isPrivate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.private
}

// enqueue hands data to the write pump without blocking. Reports false when
// the client's buffer is full; the caller drops the event for this
// recipient only.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	close(c.send)
}

func (c *Client) sendError(message string) {
	data, err := models.NewErrorEnvelope(message).Encode()
	if err != nil {
		logger.Error("encoding error envelope: %v", err)
		return
	}
	c.enqueue(data)
}

func (c *Client) ReadPump() {
	defer func() {
		c.broker.Leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Error("websocket read error: %v", err)
			}
			break
		}

		env, err := models.DecodeInbound(data)
		if err != nil {
			c.sendError(err.Error())
			continue
		}
		c.handle(env)
	}
}

func (c *Client) handle(env *models.InboundEnvelope) {
	switch env.Type {
	case models.EnvelopeJoin, models.EnvelopePrivateJoin:
		if c.currentHub() != nil {
			c.sendError("already joined a room")
			return
		}
		private := env.Type == models.EnvelopePrivateJoin
		if err := c.broker.Join(c, env.Code, private); err != nil {
			c.sendError("room not found")
		}
	case models.EnvelopeMessage, models.EnvelopePrivateMessage:
		if c.currentHub() == nil {
			c.sendError("join a room first")
			return
		}
		if (env.Type == models.EnvelopePrivateMessage) != c.isPrivate() {
			c.sendError("wrong message type for this room")
			return
		}
		if err := c.broker.Message(c, env.Text); err != nil {
			c.sendError("room not found")
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("websocket write error: %v", err)
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
