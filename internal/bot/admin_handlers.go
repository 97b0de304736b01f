package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showBookingsForDay - записи на сегодня (offset 0) или завтра (1).
func (b *Bot) showBookingsForDay(ctx context.Context, chatID int64, offsetDays int) {
	date := time.Now().In(b.config.Timezone()).AddDate(0, 0, offsetDays).Format("2006-01-02")

	bookings, err := b.bookingService.BookingsByDateRange(ctx, date, date)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	title := fmt.Sprintf("📅 %s (%s)", formatDateDMY(date), weekdayRu(date))
	if len(bookings) == 0 {
		b.sendMessage(chatID, title+"\nЗаписей нет.")
		return
	}

	var message strings.Builder
	message.WriteString(title + "\n\n")
	for _, booking := range bookings {
		fmt.Fprintf(&message, "%s - %s\n", booking.Time, displayName(booking.Username, booking.FullName))
	}
	b.sendMessage(chatID, message.String())
}

// showBookingsForRange - записи на период, сгруппированные по дням.
func (b *Bot) showBookingsForRange(ctx context.Context, chatID int64, days int) {
	now := time.Now().In(b.config.Timezone())
	from := now.Format("2006-01-02")
	to := now.AddDate(0, 0, days-1).Format("2006-01-02")

	bookings, err := b.bookingService.BookingsByDateRange(ctx, from, to)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	title := fmt.Sprintf("🗓 Записи с %s по %s", formatDateDMY(from), formatDateDMY(to))
	if len(bookings) == 0 {
		b.sendMessage(chatID, title+"\nЗаписей нет.")
		return
	}

	var message strings.Builder
	message.WriteString(title + "\n")
	currentDate := ""
	for _, booking := range bookings {
		if booking.Date != currentDate {
			currentDate = booking.Date
			fmt.Fprintf(&message, "\n📅 %s (%s):\n", formatDateDMY(currentDate), weekdayRu(currentDate))
		}
		fmt.Fprintf(&message, "  %s - %s\n", booking.Time, displayName(booking.Username, booking.FullName))
	}
	b.sendMessage(chatID, message.String())
}

// showFreeSlots - свободные слоты начиная с сегодня, по дням.
func (b *Bot) showFreeSlots(ctx context.Context, chatID int64) {
	slots, err := b.slotService.FreeSlots(ctx, b.today())
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(slots) == 0 {
		b.sendMessage(chatID, "🆓 Свободных слотов нет.")
		return
	}

	dates, byDate := groupSlotsByDate(slots)
	var message strings.Builder
	message.WriteString("🆓 Свободные слоты:\n")
	for _, date := range dates {
		fmt.Fprintf(&message, "\n📅 %s (%s): ", formatDateDMY(date), weekdayRu(date))
		for i, slot := range byDate[date] {
			if i > 0 {
				message.WriteString(", ")
			}
			message.WriteString(slot.Time)
		}
	}
	b.sendMessage(chatID, message.String())
}

func (b *Bot) showStats(ctx context.Context, chatID int64) {
	stats, err := b.bookingService.Stats(ctx)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.sendMessage(chatID, fmt.Sprintf(
		"📊 Статистика\n\n👥 Клиентов: %d\n✅ Активных записей: %d\n🆓 Свободных слотов: %d",
		stats.DistinctUsers, stats.ActiveBookings, stats.FreeSlots))
}

// startDeleteSlotFlow показывает дни, в которых есть слоты.
func (b *Bot) startDeleteSlotFlow(ctx context.Context, chatID int64) {
	dates, err := b.slotService.SlotDates(ctx)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(dates) == 0 {
		b.sendMessage(chatID, "В расписании нет слотов.")
		return
	}

	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(dates))
	for _, date := range dates {
		label := fmt.Sprintf("%s (%s)", formatDateDMY(date), weekdayRu(date))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, "delslot_date:"+date))
	}

	rows := buttonRows(buttons, 2)
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "flow_cancel"),
	})
	keyboard := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}

	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "➖ Из какого дня удалить слот?", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send delete slot dates error")
	}
}

// showDeleteSlotTimes - слоты дня, занятые помечены и не удаляются.
func (b *Bot) showDeleteSlotTimes(ctx context.Context, update tgbotapi.Update, date string) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID

	slots, err := b.slotService.SlotsByDate(ctx, date)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(slots) == 0 {
		b.sendMessage(chatID, "В этом дне слотов не осталось.")
		return
	}

	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(slots))
	for _, slot := range slots {
		label := slot.Time
		if slot.Booked {
			label = "🔒 " + label
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("delslot:%d", slot.ID)))
	}

	rows := buttonRows(buttons, 3)
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "flow_cancel"),
	})
	keyboard := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}

	text := fmt.Sprintf("➖ %s (%s). 🔒 - есть запись, такой слот сначала надо освободить.",
		formatDateDMY(date), weekdayRu(date))
	if _, err := b.tgService.EditMessage(chatID, messageID, text, &keyboard); err != nil {
		b.logger.Error().Err(err).Msg("edit delete slot times error")
	}
}

// handleDeleteSlot удаляет свободный слот. Занятый слот защищён на
// уровне сервиса, здесь только показывается отказ.
func (b *Bot) handleDeleteSlot(ctx context.Context, update tgbotapi.Update, idStr string) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID

	slotID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	slot, err := b.slotService.RemoveSlot(ctx, slotID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	text := fmt.Sprintf("Слот %s (%s) %s удалён.",
		formatDateDMY(slot.Date), weekdayRu(slot.Date), slot.Time)
	if _, err := b.tgService.EditMessage(chatID, messageID, text, nil); err != nil {
		b.logger.Error().Err(err).Msg("edit delete slot error")
	}
}
