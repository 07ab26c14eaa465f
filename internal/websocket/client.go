package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

// MessageHandler answers one inbound text frame. The returned frame is sent
// back on the same connection only.
type MessageHandler interface {
	HandleMessage(ctx context.Context, userID uuid.UUID, payload []byte) Frame
}

type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	UserID uuid.UUID

	// Buffered channel of outbound messages, closed by the hub on unregister.
	Send chan []byte

	handler MessageHandler

	dropOnce sync.Once
}

// enqueue never blocks; a client that cannot keep up is disconnected.
func (c *Client) enqueue(payload []byte) (ok bool) {
	defer func() {
		// Send may already be closed by unregister.
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.Send <- payload:
		return true
	default:
		c.drop()
		return false
	}
}

func (c *Client) drop() {
	c.dropOnce.Do(func() {
		go func() { c.Hub.unregister <- c }()
	})
}

// readPump reads chat frames until the peer goes away.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.drop()
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Hub", "Unexpected websocket close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			return
		}
		if msgType != websocket.TextMessage || c.handler == nil {
			continue
		}

		reply := c.handler.HandleMessage(ctx, c.UserID, payload)
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		if data, err := marshalFrame(reply); err == nil {
			c.enqueue(data)
		}
	}
}

// writePump pumps frames from Send to the connection and keeps it alive with pings.
func (c *Client) writePump() {
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
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One frame per message so clients can JSON.parse each event.
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
