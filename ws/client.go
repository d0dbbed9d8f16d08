package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second

	// pongWait is the read deadline; clients send a heartbeat every 30 s.
	pongWait = 90 * time.Second

	maxMessageSize = 4096

	sendBufferSize = 64
)

// Client is one WebSocket connection. ReadPump and WritePump each run in
// their own goroutine.
//
// send is owned by the hub: only the hub closes it, and only while holding
// h.mu for writing after removing the client from h.clients. Every send on it
// therefore happens under h.mu.RLock with a membership check, otherwise a
// heartbeat ack could land on a channel that a concurrent drop just closed.
// WritePump is the single reader; it exits when the channel is closed.
//
// mu serializes writes on conn, which gorilla/websocket does not allow
// concurrently.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	send   chan []byte
	mu     sync.Mutex
}

// ReadPump reads client frames until the connection fails, then unregisters.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stop:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.hub.log.Warn("failed to set read deadline", zap.Int64("user_id", c.userID), zap.Error(err))
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("unexpected close", zap.Int64("user_id", c.userID), zap.Error(err))
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.hub.log.Debug("invalid frame", zap.Int64("user_id", c.userID), zap.Error(err))
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})
	default:
		c.hub.log.Debug("unknown op", zap.Int64("user_id", c.userID), zap.String("op", event.Op))
	}
}

// sendEvent queues event for this connection only. The send goes through
// the hub so it never races with removeClient or Shutdown closing c.send.
func (c *Client) sendEvent(event Event) {
	c.hub.sendToClient(c, event)
}

// WritePump writes queued frames until send is closed.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.writeMessage(websocket.CloseMessage, nil)
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
