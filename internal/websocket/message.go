package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// Client to Server
	EventAuthenticate EventType = "authenticate"
	EventSendMessage  EventType = "sendMessage"
	EventMarkAsRead   EventType = "markAsRead"
	EventTyping       EventType = "typing"
	EventStopTyping   EventType = "stopTyping"
	EventIsOnline     EventType = "isOnline"

	// Server to Client
	EventAuthenticated   EventType = "authenticated"
	EventUserOnline      EventType = "userOnline"
	EventUserOffline     EventType = "userOffline"
	EventNewMessage      EventType = "newMessage"
	EventMessageSent     EventType = "messageSent"
	EventMessageRead     EventType = "messageRead"
	EventUserTyping      EventType = "userTyping"
	EventOnlineStatus    EventType = "onlineStatus"
	EventNewNotification EventType = "newNotification"
	EventError           EventType = "error"
)

type Message struct {
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(eventType EventType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      eventType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type AuthenticatePayload struct {
	Token string `json:"token"`
}

type SendMessagePayload struct {
	ReceiverID uuid.UUID `json:"receiverId"`
	Content    string    `json:"content"`
}

type MarkAsReadPayload struct {
	MessageID uuid.UUID `json:"messageId"`
}

type TypingPayload struct {
	ReceiverID uuid.UUID `json:"receiverId"`
}

type IsOnlinePayload struct {
	UserID uuid.UUID `json:"userId"`
}

// Server to Client payloads

type AuthenticatedPayload struct {
	UserID uuid.UUID `json:"userId"`
}

type PresencePayload struct {
	UserID uuid.UUID `json:"userId"`
}

type UserTypingPayload struct {
	UserID   uuid.UUID `json:"userId"`
	IsTyping bool      `json:"isTyping"`
}

type OnlineStatusPayload struct {
	UserID   uuid.UUID `json:"userId"`
	IsOnline bool      `json:"isOnline"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
