package bot

import (
	"errors"

	"barberbot/internal/database"
	"barberbot/internal/service"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, database.ErrSlotTaken) {
		return "⚠️ Это время только что заняли. Пожалуйста, выберите другое."
	}

	if errors.Is(err, database.ErrSlotNotFound) {
		return "⚠️ Такого времени больше нет в расписании. Пожалуйста, выберите другое."
	}

	if errors.Is(err, database.ErrSlotBooked) {
		return "⚠️ На это время есть активная запись. Сначала отмените запись, потом удаляйте слот."
	}

	if errors.Is(err, database.ErrBookingNotFound) {
		return "⚠️ Запись не найдена или уже отменена."
	}

	var invalidTimes *service.ErrInvalidTimes
	if errors.As(err, &invalidTimes) {
		return "⚠️ Не понимаю время: " + joinTokens(invalidTimes.Tokens) + "\nФормат: ЧЧ:ММ, например 10:00 11:30 14:00. Ничего не добавлено."
	}

	// Default error message
	return "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже."
}
