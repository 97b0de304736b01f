package domain

import (
	"context"
	"time"

	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository - хранилище слотов и записей. Две реализации:
// SQLite (database.DB) и PostgreSQL (database.PostgresDB). Различия
// представления дат/времени и булевых значений нормализуются внутри
// адаптеров, наружу всегда отдаются строки YYYY-MM-DD и HH:MM.
type Repository interface {
	// Слоты
	CreateSlot(ctx context.Context, date, timeStr string) (*models.Slot, error)
	GetSlot(ctx context.Context, id int64) (*models.Slot, error)
	GetSlotByDateTime(ctx context.Context, date, timeStr string) (*models.Slot, error)
	DeleteSlot(ctx context.Context, id int64) error
	ListFreeSlots(ctx context.Context, fromDate string) ([]*models.Slot, error)
	ListFreeSlotsByDate(ctx context.Context, date string) ([]*models.Slot, error)
	ListSlotsByDate(ctx context.Context, date string) ([]*models.Slot, error)
	ListAllSlots(ctx context.Context) ([]*models.Slot, error)
	ListDatesWithFreeSlots(ctx context.Context, fromDate string) ([]string, error)
	ListSlotDates(ctx context.Context) ([]string, error)
	ListSlotTimes(ctx context.Context, date string) ([]string, error)
	CountFreeSlots(ctx context.Context) (int, error)

	// Бронирования. ReserveSlot и CancelBooking атомарны: флаг слота и
	// строка записи меняются в одной транзакции.
	ReserveSlot(ctx context.Context, slotID int64, booking *models.Booking) error
	CancelBooking(ctx context.Context, bookingID, userID int64, override bool) (*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, fromDate, toDate string) ([]*models.Booking, error)
	GetDistinctBookingUserIDs(ctx context.Context) ([]int64, error)
	CountDistinctUsers(ctx context.Context) (int, error)
	CountActiveBookings(ctx context.Context) (int, error)

	// Напоминания
	GetUnremindedBookings(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
	MarkReminded(ctx context.Context, bookingID int64, at time.Time) error

	Close() error
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier - очередь исходящих уведомлений: доставка best-effort,
// сбой по одному получателю не задевает остальных.
type Notifier interface {
	Enqueue(chatID int64, text string) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// SlotManager управляет инвентарём слотов (админские операции).
type SlotManager interface {
	AddSlots(ctx context.Context, date string, times []string) (added, existing []string, err error)
	RemoveSlot(ctx context.Context, slotID int64) (*models.Slot, error)
	RemoveSlotByDateTime(ctx context.Context, date, timeStr string) (*models.Slot, error)
	FreeSlots(ctx context.Context, fromDate string) ([]*models.Slot, error)
	FreeSlotsByDate(ctx context.Context, date string) ([]*models.Slot, error)
	SlotsByDate(ctx context.Context, date string) ([]*models.Slot, error)
	AllSlots(ctx context.Context) ([]*models.Slot, error)
	DatesWithFreeSlots(ctx context.Context, fromDate string) ([]string, error)
	SlotDates(ctx context.Context) ([]string, error)
	SlotTimes(ctx context.Context, date string) ([]string, error)
}

// BookingManager - движок резервирования: единственная точка, через
// которую меняется связка слот/запись.
type BookingManager interface {
	Reserve(ctx context.Context, date, timeStr string, userID int64, username, fullName string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, userID int64, admin bool) (*models.Booking, error)
	UserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	BookingsByDateRange(ctx context.Context, fromDate, toDate string) ([]*models.Booking, error)
	BroadcastAudience(ctx context.Context) ([]int64, error)
	Stats(ctx context.Context) (*models.Stats, error)
}
