package bot

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCalendarKeyboard(t *testing.T) {
	available := map[string]bool{
		"2026-03-10": true,
		"2026-03-25": true,
	}
	kb := generateCalendarKeyboard(2026, 3, "2026-03-15", available, nil, "date")

	rows := kb.InlineKeyboard
	require.GreaterOrEqual(t, len(rows), 4)

	// Шапка: навигация и название месяца
	header := rows[0]
	require.Len(t, header, 3)
	assert.Equal(t, "date_nav:2026-02", *header[0].CallbackData)
	assert.Equal(t, "Март 2026", header[1].Text)
	assert.Equal(t, "date_nav:2026-04", *header[2].CallbackData)

	// Ряд дней недели начинается с понедельника
	require.Len(t, rows[1], 7)
	assert.Equal(t, "Пн", rows[1][0].Text)
	assert.Equal(t, "Вс", rows[1][6].Text)

	// Каждый ряд сетки ровно из семи кнопок
	dayRows := rows[2 : len(rows)-1]
	byData := map[string]string{}
	for _, row := range dayRows {
		assert.Len(t, row, 7)
		for _, btn := range row {
			if btn.CallbackData != nil {
				byData[*btn.CallbackData] = btn.Text
			}
		}
	}

	// Доступная будущая дата кликабельна
	assert.Equal(t, "25", byData["date:2026-03-25"])
	// Доступная, но прошедшая - нет
	_, ok := byData["date:2026-03-10"]
	assert.False(t, ok, "прошедшая дата не должна быть кликабельной")
	// Будущая дата без свободных слотов - нет
	_, ok = byData["date:2026-03-20"]
	assert.False(t, ok, "дата без слотов не должна быть кликабельной")

	// Последний ряд - отмена сценария
	cancelRow := rows[len(rows)-1]
	require.Len(t, cancelRow, 1)
	assert.Equal(t, "flow_cancel", *cancelRow[0].CallbackData)
}

func TestGenerateCalendarKeyboardAdminMode(t *testing.T) {
	// nil availableDates: любой день начиная с today кликабелен;
	// дни с существующими слотами помечены звёздочкой
	marked := map[string]bool{"2026-03-20": true}
	kb := generateCalendarKeyboard(2026, 3, "2026-03-15", nil, marked, "adate")

	var selectable int
	for _, row := range kb.InlineKeyboard[2 : len(kb.InlineKeyboard)-1] {
		for _, btn := range row {
			if btn.CallbackData != nil && btn.Text != "·" && btn.Text != " " && *btn.CallbackData != "noop" {
				selectable++
				assert.Contains(t, *btn.CallbackData, "adate:2026-03-")
				if *btn.CallbackData == "adate:2026-03-20" {
					assert.Equal(t, "20*", btn.Text)
				}
			}
		}
	}
	// С 15 по 31 марта включительно
	assert.Equal(t, 17, selectable)
}

func TestGenerateCalendarKeyboardYearRollover(t *testing.T) {
	kb := generateCalendarKeyboard(2026, 12, "2026-12-01", nil, nil, "date")
	header := kb.InlineKeyboard[0]
	assert.Equal(t, "date_nav:2026-11", *header[0].CallbackData)
	assert.Equal(t, "date_nav:2027-01", *header[2].CallbackData)

	kb = generateCalendarKeyboard(2026, 1, "2026-01-01", nil, nil, "date")
	header = kb.InlineKeyboard[0]
	assert.Equal(t, "date_nav:2025-12", *header[0].CallbackData)
	assert.Equal(t, "date_nav:2026-02", *header[2].CallbackData)
}

func TestGenerateTimesKeyboard(t *testing.T) {
	times := []string{"10:00", "11:00", "12:00", "13:00"}
	kb := generateTimesKeyboard(times, "time")

	rows := kb.InlineKeyboard
	require.Len(t, rows, 3) // 3+1 кнопки и служебный ряд
	assert.Len(t, rows[0], 3)
	assert.Len(t, rows[1], 1)
	assert.Equal(t, "time:10:00", *rows[0][0].CallbackData)
	assert.Equal(t, "time:13:00", *rows[1][0].CallbackData)

	nav := rows[2]
	require.Len(t, nav, 2)
	assert.Equal(t, "back_to_dates", *nav[0].CallbackData)
	assert.Equal(t, "flow_cancel", *nav[1].CallbackData)
}

func TestDaysIn(t *testing.T) {
	tests := []struct {
		year, month, want int
	}{
		{2026, 1, 31},
		{2026, 2, 28},
		{2024, 2, 29},
		{2000, 2, 29},
		{1900, 2, 28},
		{2026, 4, 30},
		{2026, 12, 31},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%02d", tt.year, tt.month), func(t *testing.T) {
			assert.Equal(t, tt.want, daysIn(time.Month(tt.month), tt.year))
		})
	}
}
