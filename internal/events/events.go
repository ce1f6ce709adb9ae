// Package events carries domain change notifications to the live dashboard
// and to RabbitMQ.
package events

import (
	"context"
	"log"
	"strings"
	"time"
)

// Event types. The part before the dot selects the topic.
const (
	OrderCreated = "order.created"
	OrderUpdated = "order.updated"
	OrderDeleted = "order.deleted"
	BillCreated  = "bill.created"
	BillUpdated  = "bill.updated"
	BillDeleted  = "bill.deleted"
	StockLow     = "stock.low"
)

// Event is one domain change.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// New stamps an event with the current UTC time.
func New(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Topic maps the event to its dashboard room: orders, bills or stock.
func (e Event) Topic() string {
	entity, _, _ := strings.Cut(e.Type, ".")
	switch entity {
	case "order":
		return "orders"
	case "bill":
		return "bills"
	}
	return entity
}

// Publisher delivers an event to one destination.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Notifier fans an event out to every publisher. Failures are logged and
// never returned: a mutation that committed stays committed.
type Notifier struct {
	publishers []Publisher
}

// NewNotifier returns a Notifier that publishes to each of publishers in
// order. Publishers must not block on slow destinations.
func NewNotifier(publishers ...Publisher) *Notifier {
	return &Notifier{publishers: publishers}
}

// Notify hands ev to every publisher and logs the ones that fail.
func (n *Notifier) Notify(ctx context.Context, ev Event) {
	for _, p := range n.publishers {
		if err := p.Publish(ctx, ev); err != nil {
			log.Printf("ERROR: publish %s: %v", ev.Type, err)
		}
	}
}
