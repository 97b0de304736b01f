package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barberbot/internal/models"
	"barberbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// startAddSlotFlow открывает админу календарь без ограничения по
// свободным слотам: добавлять можно на любой день начиная с сегодня.
// Дни, где слоты уже есть, помечены звёздочкой.
func (b *Bot) startAddSlotFlow(ctx context.Context, chatID, userID int64) {
	if err := b.stateService.SetUserState(ctx, userID, models.StateAddSlotSelectDate, nil); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("set state error")
	}

	now := time.Now().In(b.config.Timezone())
	keyboard := generateCalendarKeyboard(now.Year(), int(now.Month()), b.today(), nil, b.slotDateMarks(ctx), "adate")
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "📅 На какую дату добавить слоты?", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send admin calendar error")
	}
}

func (b *Bot) handleAddSlotNav(ctx context.Context, update tgbotapi.Update, yearMonth string) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID

	year, month, ok := parseYearMonth(yearMonth)
	if !ok {
		return
	}

	keyboard := generateCalendarKeyboard(year, month, b.today(), nil, b.slotDateMarks(ctx), "adate")
	if _, err := b.tgService.EditMessage(chatID, messageID, "📅 На какую дату добавить слоты?", &keyboard); err != nil {
		b.logger.Error().Err(err).Msg("edit admin calendar error")
	}
}

func (b *Bot) slotDateMarks(ctx context.Context) map[string]bool {
	dates, err := b.slotService.SlotDates(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("list slot dates error")
		return nil
	}
	marks := make(map[string]bool, len(dates))
	for _, d := range dates {
		marks[d] = true
	}
	return marks
}

// handleAddSlotDateChosen запрашивает времена текстом.
func (b *Bot) handleAddSlotDateChosen(ctx context.Context, update tgbotapi.Update, date string) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID
	userID := update.CallbackQuery.From.ID

	if err := b.stateService.SetUserState(ctx, userID, models.StateAddSlotEnterTimes,
		map[string]interface{}{"date": date}); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("set state error")
	}

	existing, err := b.slotService.SlotTimes(ctx, date)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Дата: %s (%s)\n", formatDateDMY(date), weekdayRu(date))
	if len(existing) > 0 {
		fmt.Fprintf(&text, "Уже в расписании: %s\n", strings.Join(existing, ", "))
	}
	text.WriteString("\nОтправьте времена через пробел или запятую, например:\n10:00 11:30 14:00")

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adate_back"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "flow_cancel"),
		),
	)
	if _, err := b.tgService.EditMessage(chatID, messageID, text.String(), &keyboard); err != nil {
		b.logger.Error().Err(err).Msg("edit addslot prompt error")
	}
}

// handleAddSlotBack возвращает из ввода времён к выбору даты. Все
// накопленные выборы сбрасываются, сценарий начинается с чистого листа.
func (b *Bot) handleAddSlotBack(ctx context.Context, update tgbotapi.Update) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID
	userID := update.CallbackQuery.From.ID

	if err := b.stateService.SetUserState(ctx, userID, models.StateAddSlotSelectDate, nil); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("set state error")
	}

	now := time.Now().In(b.config.Timezone())
	keyboard := generateCalendarKeyboard(now.Year(), int(now.Month()), b.today(), nil, b.slotDateMarks(ctx), "adate")
	if _, err := b.tgService.EditMessage(chatID, messageID, "📅 На какую дату добавить слоты?", &keyboard); err != nil {
		b.logger.Error().Err(err).Msg("edit admin calendar error")
	}
}

// handleAddSlotTimesInput разбирает присланные времена. Любой
// невалидный токен отвергает весь ввод целиком; времена, уже
// существующие на дате, отсеиваются здесь же, и если новых не
// осталось, шаг не двигается.
func (b *Bot) handleAddSlotTimesInput(ctx context.Context, update tgbotapi.Update, state *models.UserState) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	date := state.GetString("date")
	if date == "" {
		b.sendMessage(chatID, "Сессия истекла, начните заново: ➕ Добавить слоты.")
		return
	}

	times, err := service.ParseTimes(update.Message.Text)
	if err != nil {
		// Остаёмся на том же шаге, админ исправит ввод
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	existing, err := b.slotService.SlotTimes(ctx, date)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t] = true
	}

	var newTimes, duplicates []string
	for _, t := range times {
		if taken[t] {
			duplicates = append(duplicates, t)
			continue
		}
		newTimes = append(newTimes, t)
	}

	if len(newTimes) == 0 {
		b.sendMessage(chatID, fmt.Sprintf(
			"Все указанные времена уже в расписании: %s\nОтправьте другие времена.",
			strings.Join(duplicates, ", ")))
		return
	}

	if err := b.stateService.SetUserState(ctx, userID, models.StateAddSlotConfirm,
		map[string]interface{}{"date": date, "times": newTimes}); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("set state error")
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Добавить %d слот(ов) на %s (%s)?\n%s",
		len(newTimes), formatDateDMY(date), weekdayRu(date), strings.Join(newTimes, ", "))
	if len(duplicates) > 0 {
		fmt.Fprintf(&text, "\n⏭ Уже в расписании: %s", strings.Join(duplicates, ", "))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Добавить", "slots_confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "flow_cancel"),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send addslot confirm error")
	}
}

// handleAddSlotConfirm создаёт слоты и отчитывается: что добавлено,
// что уже существовало.
func (b *Bot) handleAddSlotConfirm(ctx context.Context, update tgbotapi.Update) {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID
	userID := update.CallbackQuery.From.ID

	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil || state == nil || state.CurrentStep != models.StateAddSlotConfirm {
		b.sendMessage(chatID, "Сессия истекла, начните заново: ➕ Добавить слоты.")
		return
	}
	date := state.GetString("date")
	times := state.GetStrings("times")

	added, existing, err := b.slotService.AddSlots(ctx, date, times)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if b.metrics != nil {
		b.metrics.SlotsCreated.Add(float64(len(added)))
	}
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("clear state error")
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Готово. %s (%s):\n", formatDateDMY(date), weekdayRu(date))
	if len(added) > 0 {
		fmt.Fprintf(&text, "➕ Добавлено: %s\n", strings.Join(added, ", "))
	}
	if len(existing) > 0 {
		fmt.Fprintf(&text, "⏭ Уже были: %s\n", strings.Join(existing, ", "))
	}
	if len(added) == 0 && len(existing) == 0 {
		text.WriteString("Ничего не добавлено.")
	}

	if _, err := b.tgService.EditMessage(chatID, messageID, text.String(), nil); err != nil {
		b.logger.Error().Err(err).Msg("edit addslot result error")
	}
}
