package bot

import (
	"context"
	"fmt"

	"barberbot/internal/events"
	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// startBroadcastFlow переводит админа в режим ввода текста рассылки.
func (b *Bot) startBroadcastFlow(ctx context.Context, chatID, userID int64) {
	if err := b.stateService.SetUserState(ctx, userID, models.StateBroadcastEnterText, nil); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("set state error")
	}

	b.sendMessage(chatID, "📣 Отправьте текст рассылки одним сообщением.\nКнопка меню или команда отменит рассылку.")
}

// handleBroadcastInput рассылает текст всем, кто хоть раз записывался.
// Нажатие кнопки меню сюда не попадает: его перехватывает роутер,
// поэтому случайной рассылки "📊 Статистика" не будет.
func (b *Bot) handleBroadcastInput(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	adminID := update.Message.From.ID
	text := update.Message.Text

	if err := b.stateService.ClearUserState(ctx, adminID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", adminID).Msg("clear state error")
	}

	audience, err := b.bookingService.BroadcastAudience(ctx)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(audience) == 0 {
		b.sendMessage(chatID, "Рассылать некому: ещё никто не записывался.")
		return
	}

	delivered, failed := 0, 0
	for _, userID := range audience {
		if err := b.notifier.Enqueue(userID, text); err != nil {
			failed++
			continue
		}
		delivered++
	}

	if b.metrics != nil {
		b.metrics.BroadcastsSent.Add(float64(delivered))
	}
	if b.eventBus != nil {
		_ = b.eventBus.PublishJSON(events.EventBroadcastSent, events.BroadcastEventPayload{
			AdminID:   adminID,
			Delivered: delivered,
			Failed:    failed,
		})
	}

	report := fmt.Sprintf("📣 Рассылка поставлена в очередь: %d получателей.", delivered)
	if failed > 0 {
		report += fmt.Sprintf("\n⚠️ Не влезло в очередь: %d.", failed)
	}
	b.sendMessage(chatID, report)
}
