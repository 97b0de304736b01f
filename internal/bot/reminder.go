package bot

import (
	"context"
	"fmt"
	"time"

	"barberbot/internal/events"
	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
)

// StartReminderSweep запускает периодический обход записей, которым
// пора отправить напоминание. Повторный запуск невозможен: второй
// вызов просто не создаёт новый cron.
func (b *Bot) StartReminderSweep(ctx context.Context) error {
	if b == nil || b.tgService == nil || b.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(models.ReminderSweepSpec, func() {
		b.sweepReminders(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}

	c.Start()
	b.cron = c
	b.logger.Info().Str("spec", models.ReminderSweepSpec).Msg("Обход напоминаний запущен")

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return nil
}

// sweepReminders шлёт напоминания о визитах в ближайшие
// ReminderHours часов. Окно может пересекать полночь, выборка это
// учитывает. Отметка reminded_at ставится только после успешной
// отправки: при сбое запись попадёт в следующий проход.
func (b *Bot) sweepReminders(ctx context.Context) {
	loc := b.config.Timezone()
	now := time.Now().In(loc)
	until := now.Add(time.Duration(b.config.Bot.ReminderHours) * time.Hour)

	bookings, err := b.repo.GetUnremindedBookings(ctx, now, until)
	if err != nil {
		b.logger.Error().Err(err).Msg("reminder: get bookings error")
		return
	}

	for _, booking := range bookings {
		text := fmt.Sprintf("⏰ Напоминание: сегодня в %s вы записаны в барбершоп (%s).",
			booking.Time, formatDateDMY(booking.Date))
		if booking.Date != now.Format("2006-01-02") {
			text = fmt.Sprintf("⏰ Напоминание: %s (%s) в %s вы записаны в барбершоп.",
				formatDateDMY(booking.Date), weekdayRu(booking.Date), booking.Time)
		}

		msg := tgbotapi.NewMessage(booking.UserID, text)
		if _, err := b.tgService.Send(msg); err != nil {
			b.logger.Error().Err(err).Int64("user_id", booking.UserID).
				Int64("booking_id", booking.ID).Msg("reminder: send error")
			continue
		}

		if err := b.repo.MarkReminded(ctx, booking.ID, time.Now()); err != nil {
			b.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("reminder: mark error")
			continue
		}

		if b.metrics != nil {
			b.metrics.RemindersSent.Inc()
		}
		if err := b.eventBus.PublishJSON(events.EventReminderSent, events.BookingEventPayload{
			BookingID: booking.ID,
			SlotID:    booking.SlotID,
			UserID:    booking.UserID,
			Date:      booking.Date,
			Time:      booking.Time,
			Status:    booking.Status,
		}); err != nil {
			b.logger.Warn().Err(err).Msg("publish reminder event error")
		}
	}
}
