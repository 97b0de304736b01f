package bot

import (
	"testing"

	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDateDMY(t *testing.T) {
	assert.Equal(t, "05.03.2026", formatDateDMY("2026-03-05"))
	assert.Equal(t, "31.12.2025", formatDateDMY("2025-12-31"))
	// Непарсящаяся строка возвращается как есть
	assert.Equal(t, "мусор", formatDateDMY("мусор"))
}

func TestWeekdayRu(t *testing.T) {
	assert.Equal(t, "пн", weekdayRu("2026-03-02"))
	assert.Equal(t, "вс", weekdayRu("2026-03-01"))
	assert.Equal(t, "сб", weekdayRu("2026-03-07"))
	assert.Equal(t, "", weekdayRu("мусор"))
}

func TestParseYearMonth(t *testing.T) {
	year, month, ok := parseYearMonth("2026-03")
	require.True(t, ok)
	assert.Equal(t, 2026, year)
	assert.Equal(t, 3, month)

	_, _, ok = parseYearMonth("март")
	assert.False(t, ok)
}

func TestIsControlLabel(t *testing.T) {
	assert.True(t, isControlLabel("/start"))
	assert.True(t, isControlLabel("/что-угодно"))
	assert.True(t, isControlLabel(btnBook))
	assert.True(t, isControlLabel(btnAdminBroadcast))
	assert.True(t, isControlLabel(btnBackToMenu))

	assert.False(t, isControlLabel("10:00 11:30"))
	assert.False(t, isControlLabel("привет"))
}

func TestButtonRows(t *testing.T) {
	buttons := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("1", "1"),
		tgbotapi.NewInlineKeyboardButtonData("2", "2"),
		tgbotapi.NewInlineKeyboardButtonData("3", "3"),
		tgbotapi.NewInlineKeyboardButtonData("4", "4"),
		tgbotapi.NewInlineKeyboardButtonData("5", "5"),
	}

	rows := buttonRows(buttons, 2)
	require.Len(t, rows, 3)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[2], 1)

	assert.Nil(t, buttonRows(nil, 3))
}

func TestGroupSlotsByDate(t *testing.T) {
	slots := []*models.Slot{
		{ID: 1, Date: "2026-03-01", Time: "10:00"},
		{ID: 2, Date: "2026-03-01", Time: "11:00"},
		{ID: 3, Date: "2026-03-02", Time: "10:00"},
	}

	dates, byDate := groupSlotsByDate(slots)
	require.Equal(t, []string{"2026-03-01", "2026-03-02"}, dates)
	assert.Len(t, byDate["2026-03-01"], 2)
	assert.Len(t, byDate["2026-03-02"], 1)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Иван Петров (@ivan)", displayName("ivan", "Иван Петров"))
	assert.Equal(t, "@ivan", displayName("ivan", ""))
	assert.Equal(t, "Иван Петров", displayName("", "Иван Петров"))
	assert.Equal(t, "без имени", displayName("", ""))
}
