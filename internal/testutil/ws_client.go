package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/jortiz/teammatch/internal/websocket"
)

// WSClient is a test client for the live channel
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *websocket.Message
	done     chan struct{}
	mu       sync.Mutex
}

// NewWSClient connects to the live channel endpoint
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 100),
		done:     make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func (c *WSClient) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		select {
		case c.messages <- &msg:
		case <-c.done:
			return
		}
	}
}

// Close closes the connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

func (c *WSClient) sendEvent(eventType websocket.EventType, payload interface{}) {
	c.t.Helper()

	msg, err := websocket.NewMessage(eventType, payload)
	if err != nil {
		c.t.Fatalf("failed to build event: %v", err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("failed to marshal event: %v", err)
	}

	c.mu.Lock()
	err = c.conn.WriteMessage(gorillaWS.TextMessage, data)
	c.mu.Unlock()

	if err != nil {
		c.t.Fatalf("failed to send event: %v", err)
	}
}

// Authenticate sends the authenticate event
func (c *WSClient) Authenticate(token string) {
	c.sendEvent(websocket.EventAuthenticate, websocket.AuthenticatePayload{Token: token})
}

// SendMessage sends a direct message over the live channel
func (c *WSClient) SendMessage(receiverID uuid.UUID, content string) {
	c.sendEvent(websocket.EventSendMessage, websocket.SendMessagePayload{
		ReceiverID: receiverID,
		Content:    content,
	})
}

// MarkAsRead marks a message read over the live channel
func (c *WSClient) MarkAsRead(messageID uuid.UUID) {
	c.sendEvent(websocket.EventMarkAsRead, websocket.MarkAsReadPayload{MessageID: messageID})
}

// Typing reports a typing indicator
func (c *WSClient) Typing(receiverID uuid.UUID, typing bool) {
	eventType := websocket.EventTyping
	if !typing {
		eventType = websocket.EventStopTyping
	}
	c.sendEvent(eventType, websocket.TypingPayload{ReceiverID: receiverID})
}

// IsOnline queries another user's presence
func (c *WSClient) IsOnline(userID uuid.UUID) {
	c.sendEvent(websocket.EventIsOnline, websocket.IsOnlinePayload{UserID: userID})
}

// WaitFor returns the next message of the given type, skipping others.
func (c *WSClient) WaitFor(eventType websocket.EventType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg := <-c.messages:
			if msg.Type == eventType {
				return msg
			}
		case <-deadline:
			c.t.Fatalf("timed out waiting for %s event", eventType)
			return nil
		}
	}
}

// ExpectSilence asserts no message of the given type arrives within d.
func (c *WSClient) ExpectSilence(eventType websocket.EventType, d time.Duration) {
	c.t.Helper()

	deadline := time.After(d)
	for {
		select {
		case msg := <-c.messages:
			if msg.Type == eventType {
				c.t.Fatalf("unexpected %s event", eventType)
			}
		case <-deadline:
			return
		}
	}
}
