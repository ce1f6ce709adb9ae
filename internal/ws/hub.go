package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Topics clients can subscribe to.
const (
	TopicOrders = "orders"
	TopicBills  = "bills"
	TopicStock  = "stock"
)

// ValidTopic reports whether topic is one of the known rooms.
func ValidTopic(topic string) bool {
	switch topic {
	case TopicOrders, TopicBills, TopicStock:
		return true
	}
	return false
}

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type topicEvent struct {
	Topic string
	Event Event
}

// Hub keeps one room of clients per topic and fans events out to them.
type Hub struct {
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *topicEvent
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *topicEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return nil

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.topic] == nil {
				h.rooms[client.topic] = make(map[*Client]bool)
			}
			h.rooms[client.topic][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case ev := <-h.broadcast:
			message, err := json.Marshal(ev.Event)
			if err != nil {
				log.Printf("ERROR: marshal ws event %s: %v", ev.Event.Type, err)
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[ev.Topic] {
				select {
				case client.send <- message:
				default:
					// slow consumer
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops client from its room and closes its send channel.
// Callers hold h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.topic]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.topic)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, clients := range h.rooms {
		for client := range clients {
			close(client.send)
		}
		delete(h.rooms, topic)
	}
}

// Broadcast queues event for every client subscribed to topic. It never
// blocks: when the queue is full the event is dropped and logged.
func (h *Hub) Broadcast(topic string, event Event) {
	select {
	case h.broadcast <- &topicEvent{Topic: topic, Event: event}:
	default:
		log.Printf("WARN: ws broadcast queue full, dropping %s", event.Type)
	}
}

// ClientCount returns the number of clients subscribed to topic.
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topic])
}

func (h *Hub) addClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) removeClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
