// Package events defines the user domain events published to the message bus.
package events

import (
	"encoding/json"

	"github.com/louisbranch/recordmesh/internal/services/users/storage"
)

// Topic carries all user domain events.
const Topic = "users-topic"

// Event types, one per store mutation.
const (
	TypeCreated = "UserCreated"
	TypeUpdated = "UserUpdated"
	TypeDeleted = "UserDeleted"
)

// Event records one completed user mutation. The user field holds the
// post-mutation snapshot.
type Event struct {
	Type string       `json:"type"`
	User storage.User `json:"user"`
}

// Marshal serializes the event payload for publication.
func Marshal(eventType string, user storage.User) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, User: user})
}
