package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleCallbackQuery маршрутизирует нажатия инлайн-кнопок. Callback
// подтверждается сразу, иначе у пользователя крутится спиннер.
func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	data := callback.Data

	if err := b.tgService.AnswerCallback(callback.ID, ""); err != nil {
		b.logger.Warn().Err(err).Msg("answer callback error")
	}

	if data == "noop" {
		return
	}

	userID := callback.From.ID

	switch {
	case data == "flow_cancel":
		b.handleFlowCancel(ctx, update)
	case data == "booking_confirm":
		b.handleBookingConfirm(ctx, update)
	case data == "back_to_dates":
		b.showBookingCalendarAgain(ctx, callback.Message.Chat.ID, callback.Message.MessageID, "📅 Выберите дату:")
	case strings.HasPrefix(data, "date_nav:"):
		b.handleBookingNav(ctx, update, strings.TrimPrefix(data, "date_nav:"))
	case strings.HasPrefix(data, "date:"):
		b.handleBookingDateChosen(ctx, update, strings.TrimPrefix(data, "date:"))
	case strings.HasPrefix(data, "time:"):
		b.handleBookingTimeChosen(ctx, update, strings.TrimPrefix(data, "time:"))
	case strings.HasPrefix(data, "cancel_booking:"):
		b.handleCancelBooking(ctx, update, strings.TrimPrefix(data, "cancel_booking:"))

	// Админские кнопки
	case strings.HasPrefix(data, "adate_nav:") && b.isAdmin(userID):
		b.handleAddSlotNav(ctx, update, strings.TrimPrefix(data, "adate_nav:"))
	case strings.HasPrefix(data, "adate:") && b.isAdmin(userID):
		b.handleAddSlotDateChosen(ctx, update, strings.TrimPrefix(data, "adate:"))
	case data == "adate_back" && b.isAdmin(userID):
		b.handleAddSlotBack(ctx, update)
	case data == "slots_confirm" && b.isAdmin(userID):
		b.handleAddSlotConfirm(ctx, update)
	case strings.HasPrefix(data, "delslot_date:") && b.isAdmin(userID):
		b.showDeleteSlotTimes(ctx, update, strings.TrimPrefix(data, "delslot_date:"))
	case strings.HasPrefix(data, "delslot:") && b.isAdmin(userID):
		b.handleDeleteSlot(ctx, update, strings.TrimPrefix(data, "delslot:"))

	default:
		b.logger.Debug().Str("data", data).Msg("unknown callback")
	}
}

// handleFlowCancel прерывает любой сценарий и чистит состояние.
func (b *Bot) handleFlowCancel(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	userID := callback.From.ID

	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("clear state error")
	}

	if _, err := b.tgService.EditMessage(callback.Message.Chat.ID, callback.Message.MessageID,
		"Действие отменено.", nil); err != nil {
		b.logger.Error().Err(err).Msg("edit cancel flow error")
	}
}
