package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var monthsRu = [...]string{
	"", "Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// generateCalendarKeyboard строит инлайн-календарь месяца.
// availableDates - ключи YYYY-MM-DD; nil означает, что выбирать можно
// любую дату начиная с today (режим админа). markedDates помечает дни
// звёздочкой, не ограничивая выбор: так админ видит, где уже есть
// слоты. prefix задаёт префикс callback-данных выбранной даты.
func generateCalendarKeyboard(year, month int, today string, availableDates, markedDates map[string]bool, prefix string) tgbotapi.InlineKeyboardMarkup {
	firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	weekdayOffset := int(firstDay.Weekday())
	if weekdayOffset == 0 {
		weekdayOffset = 7 // сетка с понедельника
	}
	daysInMonth := daysIn(time.Month(month), year)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0)

	// Шапка: месяц и навигация
	prevYear, prevMon := prevMonth(year, month)
	nextYear, nextMon := nextMonth(year, month)
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("◀️", fmt.Sprintf("%s_nav:%04d-%02d", prefix, prevYear, prevMon)),
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d", monthsRu[month], year), "noop"),
		tgbotapi.NewInlineKeyboardButtonData("▶️", fmt.Sprintf("%s_nav:%04d-%02d", prefix, nextYear, nextMon)),
	})

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Пн", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Вт", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Ср", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Чт", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Пт", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Сб", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Вс", "noop"),
	})

	day := 1
	for day <= daysInMonth {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
		for col := 1; col <= 7; col++ {
			if len(rows) == 2 && col < weekdayOffset {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
				continue
			}
			if day > daysInMonth {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
				continue
			}

			dateStr := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			label := fmt.Sprintf("%d", day)
			if markedDates[dateStr] {
				label += "*"
			}
			selectable := dateStr >= today && (availableDates == nil || availableDates[dateStr])
			if !selectable {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData("·", "noop"))
			} else {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%s", prefix, dateStr)))
			}
			day++
		}
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "flow_cancel"),
	})

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// generateTimesKeyboard строит клавиатуру свободных времён дня,
// по три кнопки в ряд.
func generateTimesKeyboard(times []string, prefix string) tgbotapi.InlineKeyboardMarkup {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(times))
	for _, t := range times {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(t, fmt.Sprintf("%s:%s", prefix, t)))
	}

	rows := buttonRows(buttons, 3)
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "back_to_dates"),
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "flow_cancel"),
	})
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func prevMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

func nextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

func daysIn(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
