package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Кнопки главного меню
const (
	btnBook       = "✂️ Записаться"
	btnMyBookings = "📋 Мои записи"
	btnCancel     = "❌ Отменить запись"
	btnHelp       = "ℹ️ Помощь"
)

// Кнопки админского меню
const (
	btnAdminToday     = "📅 Сегодня"
	btnAdminTomorrow  = "📅 Завтра"
	btnAdminWeek      = "🗓 Неделя"
	btnAdminMonth     = "🗓 Месяц"
	btnAdminFreeSlots = "🆓 Свободные слоты"
	btnAdminStats     = "📊 Статистика"
	btnAdminAddSlots  = "➕ Добавить слоты"
	btnAdminDelSlot   = "➖ Удалить слот"
	btnAdminBroadcast = "📣 Рассылка"
	btnAdminExport    = "💾 Экспорт недели"
	btnBackToMenu     = "⬅️ Главное меню"
)

func (b *Bot) isAdmin(userID int64) bool {
	return b.config.IsAdmin(userID)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message error")
	}
}

// isControlLabel сообщает, является ли текст кнопкой меню или командой.
// Такой текст никогда не трактуется как ввод внутри сценария.
func isControlLabel(text string) bool {
	if strings.HasPrefix(text, "/") {
		return true
	}
	switch text {
	case btnBook, btnMyBookings, btnCancel, btnHelp,
		btnAdminToday, btnAdminTomorrow, btnAdminWeek, btnAdminMonth,
		btnAdminFreeSlots, btnAdminStats, btnAdminAddSlots, btnAdminDelSlot,
		btnAdminBroadcast, btnAdminExport, btnBackToMenu:
		return true
	}
	return false
}

func (b *Bot) mainMenuKeyboard(userID int64) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBook),
			tgbotapi.NewKeyboardButton(btnMyBookings),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
			tgbotapi.NewKeyboardButton(btnHelp),
		),
	}

	if b.isAdmin(userID) {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminToday),
			tgbotapi.NewKeyboardButton(btnAdminTomorrow),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminWeek),
			tgbotapi.NewKeyboardButton(btnAdminMonth),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminFreeSlots),
			tgbotapi.NewKeyboardButton(btnAdminStats),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminAddSlots),
			tgbotapi.NewKeyboardButton(btnAdminDelSlot),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminBroadcast),
			tgbotapi.NewKeyboardButton(btnAdminExport),
		))
	}

	return tgbotapi.NewReplyKeyboard(rows...)
}

// handleMainMenu - главное меню
func (b *Bot) handleMainMenu(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	if err := b.stateService.SetUserState(ctx, userID, models.StateMainMenu, nil); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("set state error")
	}

	if _, err := b.tgService.SendWithKeyboard(update.Message.Chat.ID,
		"Здравствуйте! Это запись в барбершоп. Выберите действие:",
		b.mainMenuKeyboard(userID)); err != nil {
		b.logger.Error().Err(err).Msg("send main menu error")
	}
}

// showUserBookings показывает активные записи пользователя
func (b *Bot) showUserBookings(ctx context.Context, update tgbotapi.Update) {
	bookings, err := b.bookingService.UserBookings(ctx, update.Message.From.ID)
	if err != nil {
		b.logger.Error().Err(err).Msg("get user bookings error")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if len(bookings) == 0 {
		b.sendMessage(update.Message.Chat.ID, "У вас пока нет активных записей.")
		return
	}

	var message strings.Builder
	message.WriteString("📋 Ваши записи:\n\n")
	for _, booking := range bookings {
		message.WriteString(fmt.Sprintf("✅ %s (%s) в %s\n",
			formatDateDMY(booking.Date), weekdayRu(booking.Date), booking.Time))
	}

	b.sendMessage(update.Message.Chat.ID, message.String())
}

func (b *Bot) showHelp(update tgbotapi.Update) {
	b.sendMessage(update.Message.Chat.ID,
		"✂️ Записаться - выбрать дату и время визита\n"+
			"📋 Мои записи - посмотреть активные записи\n"+
			"❌ Отменить запись - отменить свою запись\n\n"+
			"За "+fmt.Sprintf("%d", b.config.Bot.ReminderHours)+" ч. до визита придёт напоминание.")
}

// formatDateDMY переводит YYYY-MM-DD в привычное DD.MM.YYYY.
func formatDateDMY(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("02.01.2006")
}

var weekdaysRu = [...]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"}

func weekdayRu(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return weekdaysRu[int(t.Weekday())]
}

// groupSlotsByDate сохраняет порядок дат из отсортированной выборки.
func groupSlotsByDate(slots []*models.Slot) (dates []string, byDate map[string][]*models.Slot) {
	byDate = make(map[string][]*models.Slot)
	for _, slot := range slots {
		if _, ok := byDate[slot.Date]; !ok {
			dates = append(dates, slot.Date)
		}
		byDate[slot.Date] = append(byDate[slot.Date], slot)
	}
	return dates, byDate
}

// buttonRows раскладывает кнопки по rowSize в ряд.
func buttonRows(buttons []tgbotapi.InlineKeyboardButton, rowSize int) [][]tgbotapi.InlineKeyboardButton {
	if rowSize <= 0 {
		rowSize = 3
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for len(buttons) > 0 {
		n := rowSize
		if n > len(buttons) {
			n = len(buttons)
		}
		rows = append(rows, buttons[:n])
		buttons = buttons[n:]
	}
	return rows
}

func joinTokens(tokens []string) string {
	if len(tokens) == 0 {
		return "пустой ввод"
	}
	return strings.Join(tokens, ", ")
}

// today возвращает текущую дату в часовом поясе салона.
func (b *Bot) today() string {
	return time.Now().In(b.config.Timezone()).Format("2006-01-02")
}
