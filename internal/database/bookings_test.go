package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"barberbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBooking(userID int64) *models.Booking {
	return &models.Booking{
		UserID:   userID,
		Username: fmt.Sprintf("user%d", userID),
		FullName: "Тестовый Пользователь",
	}
}

func TestReserveSlot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	slot, err := db.CreateSlot(ctx, "2025-06-01", "10:00")
	require.NoError(t, err)

	booking := testBooking(100)
	err = db.ReserveSlot(ctx, slot.ID, booking)
	require.NoError(t, err)
	assert.NotZero(t, booking.ID)
	assert.Equal(t, models.StatusConfirmed, booking.Status)
	assert.False(t, booking.CreatedAt.IsZero())

	// Слот помечен занятым
	got, err := db.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, got.Booked)

	// Повторная бронь того же слота
	err = db.ReserveSlot(ctx, slot.ID, testBooking(101))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Несуществующий слот
	err = db.ReserveSlot(ctx, 9999, testBooking(102))
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestCancelBooking(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	slot, err := db.CreateSlot(ctx, "2025-06-01", "10:00")
	require.NoError(t, err)

	booking := testBooking(100)
	err = db.ReserveSlot(ctx, slot.ID, booking)
	require.NoError(t, err)

	// Чужую запись отменить нельзя
	_, err = db.CancelBooking(ctx, booking.ID, 200, false)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	cancelled, err := db.CancelBooking(ctx, booking.ID, 100, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "2025-06-01", cancelled.Date)
	assert.Equal(t, "10:00", cancelled.Time)

	// Слот снова свободен
	got, err := db.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, got.Booked)

	// Повторная отмена
	_, err = db.CancelBooking(ctx, booking.ID, 100, false)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBookingOverride(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	slot, err := db.CreateSlot(ctx, "2025-06-01", "10:00")
	require.NoError(t, err)

	booking := testBooking(100)
	err = db.ReserveSlot(ctx, slot.ID, booking)
	require.NoError(t, err)

	// Админская отмена без проверки владельца
	cancelled, err := db.CancelBooking(ctx, booking.ID, 0, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
}

func TestCancelThenRebook(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	slot, err := db.CreateSlot(ctx, "2025-06-01", "10:00")
	require.NoError(t, err)

	first := testBooking(100)
	require.NoError(t, db.ReserveSlot(ctx, slot.ID, first))

	_, err = db.CancelBooking(ctx, first.ID, 100, false)
	require.NoError(t, err)

	// Освобождённый слот доступен другому пользователю
	second := testBooking(200)
	require.NoError(t, db.ReserveSlot(ctx, slot.ID, second))

	active, err := db.CountActiveBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active)

	users, err := db.CountDistinctUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, users)
}

func TestGetUserBookings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	for _, s := range [][2]string{
		{"2025-06-02", "10:00"},
		{"2025-06-01", "15:00"},
	} {
		slot, err := db.CreateSlot(ctx, s[0], s[1])
		require.NoError(t, err)
		require.NoError(t, db.ReserveSlot(ctx, slot.ID, testBooking(100)))
	}

	bookings, err := db.GetUserBookings(ctx, 100)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "2025-06-01", bookings[0].Date)
	assert.Equal(t, "15:00", bookings[0].Time)
	assert.Equal(t, "2025-06-02", bookings[1].Date)

	bookings, err = db.GetUserBookings(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestGetBookingsByDateRange(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	for i, s := range [][2]string{
		{"2025-06-01", "10:00"},
		{"2025-06-03", "10:00"},
		{"2025-06-10", "10:00"},
	} {
		slot, err := db.CreateSlot(ctx, s[0], s[1])
		require.NoError(t, err)
		require.NoError(t, db.ReserveSlot(ctx, slot.ID, testBooking(int64(100+i))))
	}

	bookings, err := db.GetBookingsByDateRange(ctx, "2025-06-01", "2025-06-07")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "2025-06-01", bookings[0].Date)
	assert.Equal(t, "2025-06-03", bookings[1].Date)
}

func TestGetUnremindedBookings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	mustReserve := func(date, timeStr string, userID int64) *models.Booking {
		slot, err := db.CreateSlot(ctx, date, timeStr)
		require.NoError(t, err)
		b := testBooking(userID)
		require.NoError(t, db.ReserveSlot(ctx, slot.ID, b))
		return b
	}

	inWindow := mustReserve("2025-06-01", "10:00", 1)
	mustReserve("2025-06-01", "13:00", 2) // за окном
	mustReserve("2025-06-02", "10:00", 3) // другой день

	from := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)

	due, err := db.GetUnremindedBookings(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, inWindow.ID, due[0].ID)

	// После отметки запись больше не попадает в выборку
	require.NoError(t, db.MarkReminded(ctx, inWindow.ID, time.Now()))

	due, err = db.GetUnremindedBookings(ctx, from, to)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestGetUnremindedBookingsCrossMidnight(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	mustReserve := func(date, timeStr string, userID int64) *models.Booking {
		slot, err := db.CreateSlot(ctx, date, timeStr)
		require.NoError(t, err)
		b := testBooking(userID)
		require.NoError(t, db.ReserveSlot(ctx, slot.ID, b))
		return b
	}

	late := mustReserve("2025-06-01", "23:30", 1)
	early := mustReserve("2025-06-02", "00:30", 2)
	mustReserve("2025-06-01", "22:00", 3) // до окна
	mustReserve("2025-06-02", "02:00", 4) // после окна

	// Окно 23:00 - 01:00 через полночь
	from := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)

	due, err := db.GetUnremindedBookings(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, late.ID, due[0].ID)
	assert.Equal(t, early.ID, due[1].ID)
}

func TestMarkRemindedNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.MarkReminded(context.Background(), 12345, time.Now())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
