package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID

	closeMu sync.Mutex
	closed  bool
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

func (c *Client) authenticated() bool {
	return c.userID != uuid.Nil
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Debug("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("INVALID_MESSAGE", "Malformed message")
			continue
		}

		c.handleMessage(&msg)
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
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
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

func (c *Client) handleMessage(msg *Message) {
	if msg.Type == EventAuthenticate {
		c.handleAuthenticate(msg.Payload)
		return
	}

	if !c.authenticated() {
		c.sendError("NOT_AUTHENTICATED", "Authenticate before sending events")
		return
	}

	ctx := context.Background()

	switch msg.Type {
	case EventSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid sendMessage payload")
			return
		}
		sent, err := c.hub.messages.SendMessage(ctx, c.userID, payload.ReceiverID, payload.Content)
		if err != nil {
			c.sendError("SEND_FAILED", err.Error())
			return
		}
		c.SendEvent(EventMessageSent, sent)

	case EventMarkAsRead:
		var payload MarkAsReadPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid markAsRead payload")
			return
		}
		if _, err := c.hub.messages.MarkRead(ctx, payload.MessageID, c.userID); err != nil {
			c.sendError("MARK_READ_FAILED", err.Error())
		}

	case EventTyping, EventStopTyping:
		var payload TypingPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid typing payload")
			return
		}
		// Ephemeral: dropped when the target has no live connection.
		c.hub.Deliver(payload.ReceiverID, string(EventUserTyping), UserTypingPayload{
			UserID:   c.userID,
			IsTyping: msg.Type == EventTyping,
		})

	case EventIsOnline:
		var payload IsOnlinePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid isOnline payload")
			return
		}
		c.SendEvent(EventOnlineStatus, OnlineStatusPayload{
			UserID:   payload.UserID,
			IsOnline: c.hub.IsOnline(payload.UserID),
		})

	default:
		c.sendError("UNKNOWN_EVENT", "Unknown event type")
	}
}

// handleAuthenticate terminates the connection on a bad token; nothing is
// registered for it.
func (c *Client) handleAuthenticate(raw json.RawMessage) {
	var payload AuthenticatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.sendError("INVALID_PAYLOAD", "Invalid authenticate payload")
		return
	}

	userID, err := c.hub.Authenticate(c, payload.Token)
	if err != nil {
		c.sendError("AUTH_FAILED", "Invalid or expired token")
		// Closing the send channel lets the write pump flush the error
		// before the close frame goes out.
		c.Close()
		return
	}

	c.SendEvent(EventAuthenticated, AuthenticatedPayload{UserID: userID})
}

func (c *Client) SendEvent(eventType EventType, payload interface{}) {
	msg, err := NewMessage(eventType, payload)
	if err != nil {
		c.hub.log.WithError(err).Error("failed to build websocket event")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.log.WithError(err).Error("failed to marshal websocket event")
		return
	}

	// Non-blocking: a client that cannot drain its buffer loses events
	// rather than stalling delivery for everyone else.
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.log.Warn("dropping event for slow websocket client")
	}
}

func (c *Client) sendError(code, message string) {
	c.SendEvent(EventError, ErrorPayload{Code: code, Message: message})
}

// Close releases the write pump; safe to call more than once.
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
