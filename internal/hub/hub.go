package hub

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Event types pushed to connected users.
const (
	EventFriendRequestCreated  = "friend_request.created"
	EventFriendRequestResolved = "friend_request.resolved"
)

// Event is a real-time notification sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one open connection of a user. The hub closes it on Unsubscribe.
type Client chan []byte

// ClientBuffer is the capacity NewClient gives each connection.
const ClientBuffer = 16

// NewClient returns a buffered Client.
func NewClient() Client {
	return make(Client, ClientBuffer)
}

// Hub fans events out to every connection of a user.
type Hub struct {
	users map[string]map[Client]bool
	mu    sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[string]map[Client]bool),
	}
}

// Subscribe registers client for events addressed to userID.
func (h *Hub) Subscribe(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes client and closes it.
func (h *Hub) Unsubscribe(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.users[userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client)
	if len(clients) == 0 {
		delete(h.users, userID)
	}
}

// Connections returns the number of open connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Publish sends event to every connection of each listed user. Slow clients
// whose buffer is full miss the event rather than block the publisher.
func (h *Hub) Publish(event Event, userIDs ...string) {
	message, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).WithField("type", event.Type).Error("Failed to encode event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool, len(userIDs))
	for _, userID := range userIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true

		for client := range h.users[userID] {
			select {
			case client <- message:
			default:
				logrus.WithFields(logrus.Fields{
					"userID": userID,
					"type":   event.Type,
				}).Warn("Dropping event for slow client")
			}
		}
	}
}
