package bot

import (
	"context"

	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	text := update.Message.Text
	userID := update.Message.From.ID

	// Кнопка меню или команда обрывает текущий сценарий: ввод времён
	// или текст рассылки не должны пережить смену контекста
	if isControlLabel(text) {
		if err := b.stateService.ClearUserState(ctx, userID); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("clear state error")
		}
	}

	if update.Message.IsCommand() {
		b.handleCommand(ctx, update)
		return
	}

	switch text {
	case btnBook:
		b.startBookingFlow(ctx, update.Message.Chat.ID, userID)
		return
	case btnMyBookings:
		b.showUserBookings(ctx, update)
		return
	case btnCancel:
		b.startCancelFlow(ctx, update)
		return
	case btnHelp:
		b.showHelp(update)
		return
	case btnBackToMenu:
		b.handleMainMenu(ctx, update)
		return
	}

	if b.isAdmin(userID) {
		switch text {
		case btnAdminToday:
			b.showBookingsForDay(ctx, update.Message.Chat.ID, 0)
			return
		case btnAdminTomorrow:
			b.showBookingsForDay(ctx, update.Message.Chat.ID, 1)
			return
		case btnAdminWeek:
			b.showBookingsForRange(ctx, update.Message.Chat.ID, 7)
			return
		case btnAdminMonth:
			b.showBookingsForRange(ctx, update.Message.Chat.ID, 30)
			return
		case btnAdminFreeSlots:
			b.showFreeSlots(ctx, update.Message.Chat.ID)
			return
		case btnAdminStats:
			b.showStats(ctx, update.Message.Chat.ID)
			return
		case btnAdminAddSlots:
			b.startAddSlotFlow(ctx, update.Message.Chat.ID, userID)
			return
		case btnAdminDelSlot:
			b.startDeleteSlotFlow(ctx, update.Message.Chat.ID)
			return
		case btnAdminBroadcast:
			b.startBroadcastFlow(ctx, update.Message.Chat.ID, userID)
			return
		case btnAdminExport:
			b.exportWeek(ctx, update.Message.Chat.ID)
			return
		}
	}

	// Текст вне кнопок трактуется по текущему шагу сценария
	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("get state error")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if state == nil {
		b.handleMainMenu(ctx, update)
		return
	}

	switch state.CurrentStep {
	case models.StateAddSlotEnterTimes:
		b.handleAddSlotTimesInput(ctx, update, state)
	case models.StateBroadcastEnterText:
		b.handleBroadcastInput(ctx, update)
	default:
		b.handleMainMenu(ctx, update)
	}
}

func (b *Bot) handleCommand(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	switch update.Message.Command() {
	case "start":
		b.handleMainMenu(ctx, update)
		return
	case "help":
		b.showHelp(update)
		return
	case "book":
		b.startBookingFlow(ctx, chatID, userID)
		return
	case "mybookings":
		b.showUserBookings(ctx, update)
		return
	case "cancel":
		b.startCancelFlow(ctx, update)
		return
	}

	if !b.isAdmin(userID) {
		b.sendMessage(chatID, "Неизвестная команда. Нажмите /start.")
		return
	}

	switch update.Message.Command() {
	case "admin":
		b.handleMainMenu(ctx, update)
	case "today":
		b.showBookingsForDay(ctx, chatID, 0)
	case "tomorrow":
		b.showBookingsForDay(ctx, chatID, 1)
	case "week":
		b.showBookingsForRange(ctx, chatID, 7)
	case "month":
		b.showBookingsForRange(ctx, chatID, 30)
	case "freeslots":
		b.showFreeSlots(ctx, chatID)
	case "stats":
		b.showStats(ctx, chatID)
	case "addslot":
		b.startAddSlotFlow(ctx, chatID, userID)
	case "deleteslot":
		b.startDeleteSlotFlow(ctx, chatID)
	case "broadcast":
		b.startBroadcastFlow(ctx, chatID, userID)
	case "export":
		b.exportWeek(ctx, chatID)
	default:
		b.sendMessage(chatID, "Неизвестная команда. Нажмите /start.")
	}
}
