package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"barberbot/internal/database"
	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// startBookingFlow показывает календарь с датами, где есть свободные
// слоты, и переводит пользователя на шаг выбора даты.
func (b *Bot) startBookingFlow(ctx context.Context, chatID, userID int64) {
	today := b.today()
	now := time.Now().In(b.config.Timezone())

	available, err := b.availableDates(ctx, today)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(available) == 0 {
		b.sendMessage(chatID, "Свободных окошек пока нет. Загляните позже!")
		return
	}

	if err := b.stateService.SetUserState(ctx, userID, models.StateBookingSelectDate, nil); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("set state error")
	}

	keyboard := generateCalendarKeyboard(now.Year(), int(now.Month()), today, available, nil, "date")
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "📅 Выберите дату:", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send calendar error")
	}
}

// futureSlots отбрасывает времена, которые уже прошли по часам салона.
// Актуально только для сегодняшней даты.
func (b *Bot) futureSlots(slots []*models.Slot) []*models.Slot {
	loc := b.config.Timezone()
	now := time.Now().In(loc)
	out := make([]*models.Slot, 0, len(slots))
	for _, slot := range slots {
		ts, err := slot.DateTime(loc)
		if err != nil || !ts.After(now) {
			continue
		}
		out = append(out, slot)
	}
	return out
}

func (b *Bot) availableDates(ctx context.Context, fromDate string) (map[string]bool, error) {
	dates, err := b.slotService.DatesWithFreeSlots(ctx, fromDate)
	if err != nil {
		return nil, err
	}
	m := make(map[string]bool, len(dates))
	for _, d := range dates {
		m[d] = true
	}
	return m, nil
}

// handleBookingNav перелистывает месяц в календаре записи.
func (b *Bot) handleBookingNav(ctx context.Context, update tgbotapi.Update, yearMonth string) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID

	year, month, ok := parseYearMonth(yearMonth)
	if !ok {
		return
	}

	today := b.today()
	available, err := b.availableDates(ctx, today)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	keyboard := generateCalendarKeyboard(year, month, today, available, nil, "date")
	if _, err := b.tgService.EditMessage(chatID, messageID, "📅 Выберите дату:", &keyboard); err != nil {
		b.logger.Error().Err(err).Msg("edit calendar error")
	}
}

// handleBookingDateChosen показывает свободные времена выбранного дня.
func (b *Bot) handleBookingDateChosen(ctx context.Context, update tgbotapi.Update, date string) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID
	userID := update.CallbackQuery.From.ID

	slots, err := b.slotService.FreeSlotsByDate(ctx, date)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if date == b.today() {
		slots = b.futureSlots(slots)
	}
	if len(slots) == 0 {
		// Последний слот дня заняли, пока пользователь думал
		b.showBookingCalendarAgain(ctx, chatID, messageID, "На эту дату уже всё занято. Выберите другую:")
		return
	}

	times := make([]string, 0, len(slots))
	for _, slot := range slots {
		times = append(times, slot.Time)
	}

	if err := b.stateService.SetUserState(ctx, userID, models.StateBookingSelectTime,
		map[string]interface{}{"date": date}); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("set state error")
	}

	text := fmt.Sprintf("🕐 Свободное время на %s (%s):", formatDateDMY(date), weekdayRu(date))
	keyboard := generateTimesKeyboard(times, "time")
	if _, err := b.tgService.EditMessage(chatID, messageID, text, &keyboard); err != nil {
		b.logger.Error().Err(err).Msg("edit times error")
	}
}

func (b *Bot) showBookingCalendarAgain(ctx context.Context, chatID int64, messageID int, text string) {
	today := b.today()
	now := time.Now().In(b.config.Timezone())

	available, err := b.availableDates(ctx, today)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	keyboard := generateCalendarKeyboard(now.Year(), int(now.Month()), today, available, nil, "date")
	if _, err := b.tgService.EditMessage(chatID, messageID, text, &keyboard); err != nil {
		b.logger.Error().Err(err).Msg("edit calendar error")
	}
}

// handleBookingTimeChosen просит подтвердить выбранные дату и время.
func (b *Bot) handleBookingTimeChosen(ctx context.Context, update tgbotapi.Update, timeStr string) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID
	userID := update.CallbackQuery.From.ID

	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil || state == nil || state.GetString("date") == "" {
		// Состояние истекло, начинаем сначала
		b.sendMessage(chatID, "Сессия истекла, начните запись заново.")
		return
	}
	date := state.GetString("date")

	if err := b.stateService.SetUserState(ctx, userID, models.StateBookingConfirm,
		map[string]interface{}{"date": date, "time": timeStr}); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("set state error")
	}

	text := fmt.Sprintf("Записать вас на %s (%s) в %s?", formatDateDMY(date), weekdayRu(date), timeStr)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", "booking_confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "flow_cancel"),
		),
	)
	if _, err := b.tgService.EditMessage(chatID, messageID, text, &keyboard); err != nil {
		b.logger.Error().Err(err).Msg("edit confirm error")
	}
}

// handleBookingConfirm создаёт запись. Проигрыш гонки за слот не
// роняет сценарий: пользователь возвращается к выбору времени.
func (b *Bot) handleBookingConfirm(ctx context.Context, update tgbotapi.Update) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID
	from := update.CallbackQuery.From

	state, err := b.stateService.GetUserState(ctx, from.ID)
	if err != nil || state == nil || state.CurrentStep != models.StateBookingConfirm {
		b.sendMessage(chatID, "Сессия истекла, начните запись заново.")
		return
	}
	date := state.GetString("date")
	timeStr := state.GetString("time")

	fullName := strings.TrimSpace(from.FirstName + " " + from.LastName)
	booking, err := b.bookingService.Reserve(ctx, date, timeStr, from.ID, from.UserName, fullName)
	if err != nil {
		if errors.Is(err, database.ErrSlotTaken) || errors.Is(err, database.ErrSlotNotFound) {
			b.handleBookingDateChosen(ctx, update, date)
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if b.metrics != nil {
		b.metrics.BookingsCreated.Inc()
	}
	if err := b.stateService.ClearUserState(ctx, from.ID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", from.ID).Msg("clear state error")
	}

	text := fmt.Sprintf("✅ Вы записаны на %s (%s) в %s.\nЗа %d ч. до визита пришлём напоминание.",
		formatDateDMY(date), weekdayRu(date), timeStr, b.config.Bot.ReminderHours)
	if _, err := b.tgService.EditMessage(chatID, messageID, text, nil); err != nil {
		b.logger.Error().Err(err).Msg("edit success error")
	}

	b.notifyAdmins(fmt.Sprintf("🆕 Новая запись: %s (%s) в %s\n👤 %s",
		formatDateDMY(date), weekdayRu(date), timeStr, displayName(booking.Username, booking.FullName)))
}

// startCancelFlow показывает активные записи пользователя с кнопками
// отмены.
func (b *Bot) startCancelFlow(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	bookings, err := b.bookingService.UserBookings(ctx, userID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(bookings) == 0 {
		b.sendMessage(chatID, "У вас нет активных записей.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, booking := range bookings {
		label := fmt.Sprintf("%s (%s) в %s", formatDateDMY(booking.Date), weekdayRu(booking.Date), booking.Time)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ "+label, fmt.Sprintf("cancel_booking:%d", booking.ID)),
		))
	}
	keyboard := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}

	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "Какую запись отменить?", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send cancel list error")
	}
}

// handleCancelBooking отменяет запись по кнопке.
func (b *Bot) handleCancelBooking(ctx context.Context, update tgbotapi.Update, idStr string) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID
	userID := update.CallbackQuery.From.ID

	bookingID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	booking, err := b.bookingService.Cancel(ctx, bookingID, userID, false)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if b.metrics != nil {
		b.metrics.BookingsCancelled.Inc()
	}

	text := fmt.Sprintf("Запись на %s (%s) в %s отменена.",
		formatDateDMY(booking.Date), weekdayRu(booking.Date), booking.Time)
	if _, err := b.tgService.EditMessage(chatID, messageID, text, nil); err != nil {
		b.logger.Error().Err(err).Msg("edit cancel error")
	}

	b.notifyAdmins(fmt.Sprintf("❌ Отмена записи: %s (%s) в %s\n👤 %s",
		formatDateDMY(booking.Date), weekdayRu(booking.Date), booking.Time,
		displayName(booking.Username, booking.FullName)))
}

// notifyAdmins ставит уведомление каждому админу в очередь.
func (b *Bot) notifyAdmins(text string) {
	if b.notifier == nil {
		return
	}
	for _, adminID := range b.config.Admins {
		if err := b.notifier.Enqueue(adminID, text); err != nil {
			b.logger.Warn().Err(err).Int64("admin_id", adminID).Msg("admin notification dropped")
		}
	}
}

func displayName(username, fullName string) string {
	switch {
	case username != "" && fullName != "":
		return fmt.Sprintf("%s (@%s)", fullName, username)
	case username != "":
		return "@" + username
	case fullName != "":
		return fullName
	default:
		return "без имени"
	}
}

func parseYearMonth(s string) (year, month int, ok bool) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), int(t.Month()), true
}
