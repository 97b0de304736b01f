package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"barberbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUpcomingBooking(t *testing.T, b *Bot, in time.Duration) *models.Booking {
	t.Helper()
	ctx := context.Background()

	target := time.Now().In(b.config.Timezone()).Add(in)
	slot, err := b.repo.CreateSlot(ctx, target.Format("2006-01-02"), target.Format("15:04"))
	require.NoError(t, err)

	booking := &models.Booking{SlotID: slot.ID, UserID: testUserID, Username: "ivan", FullName: "Иван"}
	require.NoError(t, b.repo.ReserveSlot(ctx, slot.ID, booking))
	return booking
}

func TestSweepRemindersDelivers(t *testing.T) {
	b, tg, _, db := newTestBot(t)
	ctx := context.Background()

	booking := seedUpcomingBooking(t, b, time.Hour)

	b.sweepReminders(ctx)

	require.Len(t, tg.sent, 1)
	assert.Equal(t, testUserID, tg.sent[0].chatID)
	assert.Contains(t, tg.sent[0].text, "Напоминание")

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RemindedAt)

	// Повторный проход не шлёт дубль
	b.sweepReminders(ctx)
	assert.Len(t, tg.sent, 1)
}

func TestSweepRemindersSkipsOutsideWindow(t *testing.T) {
	b, tg, _, _ := newTestBot(t)
	ctx := context.Background()

	// Визит позже окна напоминания (ReminderHours = 2)
	seedUpcomingBooking(t, b, 5*time.Hour)

	b.sweepReminders(ctx)
	assert.Empty(t, tg.sent)
}

func TestSweepRemindersFailedSendRetriesNextPass(t *testing.T) {
	b, tg, _, db := newTestBot(t)
	ctx := context.Background()

	booking := seedUpcomingBooking(t, b, time.Hour)

	tg.sendErr = errors.New("telegram: 502")
	b.sweepReminders(ctx)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RemindedAt, "сбой доставки не должен помечать запись")

	// Следующий проход доставляет
	tg.sendErr = nil
	b.sweepReminders(ctx)

	require.Len(t, tg.sent, 1)
	got, err = db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.RemindedAt)
}

func TestSweepRemindersSkipsCancelled(t *testing.T) {
	b, tg, _, db := newTestBot(t)
	ctx := context.Background()

	booking := seedUpcomingBooking(t, b, time.Hour)
	_, err := db.CancelBooking(ctx, booking.ID, testUserID, false)
	require.NoError(t, err)

	b.sweepReminders(ctx)
	assert.Empty(t, tg.sent)
}
