package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brewline/coffee-pos/internal/ws"
)

// HubPublisher forwards events to WebSocket dashboards.
type HubPublisher struct {
	hub *ws.Hub
}

// NewHubPublisher returns a publisher for hub.
func NewHubPublisher(hub *ws.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

// Publish broadcasts ev to the room named by its topic. It never blocks.
func (p *HubPublisher) Publish(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	p.hub.Broadcast(ev.Topic(), ws.Event{Type: ev.Type, Payload: payload})
	return nil
}
