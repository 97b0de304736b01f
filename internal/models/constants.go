package models

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Шаги интерактивных сценариев. Состояние хранится в StateRepository
// и переживает перезапуск бота при использовании Redis.
const (
	StateMainMenu = "main_menu"

	StateBookingSelectDate = "booking_select_date"
	StateBookingSelectTime = "booking_select_time"
	StateBookingConfirm    = "booking_confirm"

	StateAddSlotSelectDate = "addslot_select_date"
	StateAddSlotEnterTimes = "addslot_enter_times"
	StateAddSlotConfirm    = "addslot_confirm"

	StateBroadcastEnterText = "broadcast_enter_text"
)

const (
	// DefaultStateTTL время жизни состояния сценария: брошенный на
	// полпути визард не должен жить вечно
	DefaultStateTTL = 30 * 60 // 30 минут в секундах

	// DefaultReminderHours за сколько часов до записи напоминать
	DefaultReminderHours = 2

	// ReminderSweepSpec расписание обхода напоминаний
	ReminderSweepSpec = "@every 10m"

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений в секундах
	RateLimitWindow = 60

	// NotifyQueueSize размер очереди исходящих уведомлений
	NotifyQueueSize = 1000

	// SeedDays на сколько дней вперёд создаются стартовые слоты
	SeedDays = 7
	// SeedFromHour и SeedToHour границы стартовых слотов (включительно)
	SeedFromHour = 9
	SeedToHour   = 18
)
