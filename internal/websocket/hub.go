package websocket

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/identity"
	"github.com/jortiz/teammatch/internal/service"
	"github.com/sirupsen/logrus"
)

// Hub owns the presence registry: userId -> one live connection. It is
// empty at startup and torn down with the process; every user is offline
// after a restart. The mutex serializes operations on the registry so a
// rapid reconnect can never lose a registration to a stale disconnect.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	stopped bool

	verifier identity.Verifier
	messages *service.MessageService
	log      *logrus.Logger
}

func NewHub(verifier identity.Verifier, messages *service.MessageService, log *logrus.Logger) *Hub {
	return &Hub{
		clients:  make(map[uuid.UUID]*Client),
		verifier: verifier,
		messages: messages,
		log:      log,
	}
}

// Authenticate verifies the token and registers the connection under the
// resolved user id. Last authenticate wins: an existing connection for the
// same user is closed and replaced. A connection re-authenticating as a
// different user gives up its old registration first, so the old id never
// keeps a live entry pointing at someone else's connection.
func (h *Hub) Authenticate(c *Client, token string) (uuid.UUID, error) {
	userID, err := h.verifier.VerifyIdentity(token)
	if err != nil {
		return uuid.Nil, err
	}

	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%w: hub is shutting down", domain.ErrAuth)
	}
	oldID := c.userID
	if oldID != uuid.Nil && oldID != userID {
		if current, ok := h.clients[oldID]; ok && current == c {
			delete(h.clients, oldID)
		}
	}
	previous := h.clients[userID]
	h.clients[userID] = c
	c.userID = userID
	h.mu.Unlock()

	if previous != nil && previous != c {
		previous.Close()
	}
	if oldID != uuid.Nil && oldID != userID {
		h.log.WithField("userId", oldID).Info("user disconnected")
		h.broadcast(EventUserOffline, PresencePayload{UserID: oldID}, userID)
	}

	h.log.WithField("userId", userID).Info("user connected")
	h.broadcast(EventUserOnline, PresencePayload{UserID: userID}, userID)
	return userID, nil
}

// Unregister removes the connection from the registry if it is still the
// registered one for its user, then broadcasts the offline event. A newer
// connection for the same user is left untouched.
func (h *Hub) Unregister(c *Client) {
	if c.userID == uuid.Nil {
		return
	}

	h.mu.Lock()
	current, ok := h.clients[c.userID]
	if !ok || current != c {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.userID)
	h.mu.Unlock()

	h.log.WithField("userId", c.userID).Info("user disconnected")
	h.broadcast(EventUserOffline, PresencePayload{UserID: c.userID}, c.userID)
}

// Deliver pushes an event to the user's live connection. Without one the
// event is dropped; durable fallbacks are the caller's concern.
func (h *Hub) Deliver(userID uuid.UUID, event string, payload interface{}) {
	h.mu.RLock()
	client := h.clients[userID]
	h.mu.RUnlock()

	if client == nil {
		return
	}
	client.SendEvent(EventType(event), payload)
}

func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// broadcast sends an event to every live connection except the one it is
// about. Best-effort, at-most-once.
func (h *Hub) broadcast(event EventType, payload interface{}, exclude uuid.UUID) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for userID, client := range h.clients {
		if userID == exclude {
			continue
		}
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.SendEvent(event, payload)
	}
}

// Stop closes every live connection and rejects further registrations.
func (h *Hub) Stop() {
	h.mu.Lock()
	h.stopped = true
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
