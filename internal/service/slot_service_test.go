package service

import (
	"context"
	"os"
	"testing"

	"barberbot/internal/database"
	"barberbot/internal/events"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServices(t *testing.T) (*SlotService, *BookingService, *database.DB) {
	logger := zerolog.New(os.Stdout)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := events.NewEventBus()
	return NewSlotService(db, bus, &logger), NewBookingService(db, bus, &logger), db
}

func TestParseTimes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "space separated", input: "10:00 11:30 14:00", want: []string{"10:00", "11:30", "14:00"}},
		{name: "comma separated", input: "10:00,11:30, 14:00", want: []string{"10:00", "11:30", "14:00"}},
		{name: "duplicates collapse", input: "10:00 10:00 11:00", want: []string{"10:00", "11:00"}},
		{name: "midnight edge", input: "00:00 23:59", want: []string{"00:00", "23:59"}},
		{name: "bad hour", input: "24:00", wantErr: true},
		{name: "bad minutes", input: "10:60", wantErr: true},
		{name: "single digit hour", input: "9:00", wantErr: true},
		{name: "one bad token rejects all", input: "10:00 25:00 11:00", wantErr: true},
		{name: "garbage", input: "завтра", wantErr: true},
		{name: "empty", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimes(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddSlots(t *testing.T) {
	slots, _, _ := setupServices(t)
	ctx := context.Background()

	added, existing, err := slots.AddSlots(ctx, "2025-06-01", []string{"10:00", "11:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "11:00"}, added)
	assert.Empty(t, existing)

	// Повторное добавление сообщает о существующих, не ломаясь
	added, existing, err = slots.AddSlots(ctx, "2025-06-01", []string{"10:00", "12:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"12:00"}, added)
	assert.Equal(t, []string{"10:00"}, existing)
}

func TestRemoveSlot(t *testing.T) {
	slots, bookings, db := setupServices(t)
	ctx := context.Background()

	added, _, err := slots.AddSlots(ctx, "2025-06-01", []string{"10:00"})
	require.NoError(t, err)
	require.Len(t, added, 1)

	slot, err := db.GetSlotByDateTime(ctx, "2025-06-01", "10:00")
	require.NoError(t, err)

	// Занятый слот не удаляется
	_, err = bookings.Reserve(ctx, "2025-06-01", "10:00", 100, "user", "Имя")
	require.NoError(t, err)

	_, err = slots.RemoveSlot(ctx, slot.ID)
	assert.ErrorIs(t, err, database.ErrSlotBooked)

	// После отмены записи удаление проходит
	userBookings, err := bookings.UserBookings(ctx, 100)
	require.NoError(t, err)
	require.Len(t, userBookings, 1)

	_, err = bookings.Cancel(ctx, userBookings[0].ID, 100, false)
	require.NoError(t, err)

	removed, err := slots.RemoveSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", removed.Time)

	_, err = db.GetSlot(ctx, slot.ID)
	assert.ErrorIs(t, err, database.ErrSlotNotFound)
}

func TestRemoveSlotByDateTime(t *testing.T) {
	slots, _, _ := setupServices(t)
	ctx := context.Background()

	_, _, err := slots.AddSlots(ctx, "2025-06-01", []string{"10:00"})
	require.NoError(t, err)

	removed, err := slots.RemoveSlotByDateTime(ctx, "2025-06-01", "10:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", removed.Date)

	_, err = slots.RemoveSlotByDateTime(ctx, "2025-06-01", "10:00")
	assert.ErrorIs(t, err, database.ErrSlotNotFound)
}
