// Package events defines the product domain events published to the message bus.
package events

import (
	"encoding/json"

	"github.com/louisbranch/recordmesh/internal/services/products/storage"
)

// Topic carries all product domain events.
const Topic = "products-topic"

// Event types, one per store mutation.
const (
	TypeCreated = "ProductCreated"
	TypeUpdated = "ProductUpdated"
	TypeDeleted = "ProductDeleted"
)

// Event records one completed product mutation. The product field holds
// the post-mutation snapshot.
type Event struct {
	Type    string          `json:"type"`
	Product storage.Product `json:"product"`
}

// Marshal serializes the event payload for publication.
func Marshal(eventType string, product storage.Product) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Product: product})
}
