package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventSlotsAdded       = "slots_added"
	EventSlotDeleted      = "slot_deleted"
	EventBroadcastSent    = "broadcast_sent"
	EventReminderSent     = "reminder_sent"
)

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID   int64  `json:"booking_id"`
	SlotID      int64  `json:"slot_id"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	CancelledBy int64  `json:"cancelled_by,omitempty"`
}

// SlotEventPayload describes slot inventory changes.
type SlotEventPayload struct {
	SlotID int64    `json:"slot_id,omitempty"`
	Date   string   `json:"date"`
	Times  []string `json:"times,omitempty"`
	Time   string   `json:"time,omitempty"`
}

// BroadcastEventPayload summarizes a finished broadcast run.
type BroadcastEventPayload struct {
	AdminID   int64 `json:"admin_id"`
	Delivered int   `json:"delivered"`
	Failed    int   `json:"failed"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
