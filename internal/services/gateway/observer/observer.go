// Package observer consumes the entity topics so the gateway sees every
// domain event the backends publish.
package observer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/louisbranch/recordmesh/internal/platform/bus"
	productevents "github.com/louisbranch/recordmesh/internal/services/products/events"
	userevents "github.com/louisbranch/recordmesh/internal/services/users/events"
)

// GroupID names the gateway's consumer group. All gateway replicas
// share it, so each event is observed by exactly one replica.
const GroupID = "api-gateway-group"

// Observer tails the entity topics and records each event.
type Observer struct {
	consumer *bus.Consumer
	observe  bus.HandlerFunc
}

// New subscribes to both entity topics on the broker.
func New(broker string) *Observer {
	o := &Observer{
		consumer: bus.NewConsumer(broker, GroupID, []string{userevents.Topic, productevents.Topic}),
	}
	o.observe = o.logEvent
	return o
}

// Run consumes events until ctx is cancelled. Cancellation is a clean stop.
func (o *Observer) Run(ctx context.Context) error {
	if o == nil || o.consumer == nil {
		return nil
	}
	return o.consumer.Run(ctx, o.observe)
}

// logEvent records one consumed event. Malformed payloads are logged
// and skipped; consumption continues.
func (o *Observer) logEvent(topic string, payload []byte) {
	var event struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &event); err != nil || event.Type == "" {
		log.Printf("skipping malformed event on %s: %s", topic, payload)
		return
	}
	log.Printf("observed %s event on %s: %s", event.Type, topic, payload)
}
