package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got BookingEventPayload
	calls := 0
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		calls++
		return json.Unmarshal(event.Payload, &got)
	})

	payload := BookingEventPayload{
		BookingID: 1,
		SlotID:    2,
		UserID:    100,
		Date:      "2025-06-01",
		Time:      "10:00",
		Status:    "confirmed",
	}
	err := bus.PublishJSON(EventBookingCreated, payload)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, payload, got)
}

func TestEventBusIgnoresUnsubscribedType(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventBookingCancelled, func(event *Event) error {
		calls++
		return nil
	})

	err := bus.PublishJSON(EventSlotsAdded, SlotEventPayload{Date: "2025-06-01"})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestEventBusNilSafe(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventSlotDeleted, nil))
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventReminderSent, func(event *Event) error {
			calls++
			return nil
		})
	}

	require.NoError(t, bus.PublishJSON(EventReminderSent, BookingEventPayload{BookingID: 7}))
	assert.Equal(t, 3, calls)
}
