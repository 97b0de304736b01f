package models

import "time"

type Booking struct {
	ID         int64      `json:"id"`
	SlotID     int64      `json:"slot_id"`
	UserID     int64      `json:"user_id"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name"`
	Status     string     `json:"status"` // confirmed, cancelled
	CreatedAt  time.Time  `json:"created_at"`
	RemindedAt *time.Time `json:"reminded_at,omitempty"`

	// Дата и время слота, заполняются при выборке с JOIN.
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`
}

// Stats - сводка для админского отчёта.
type Stats struct {
	DistinctUsers  int `json:"distinct_users"`
	ActiveBookings int `json:"active_bookings"`
	FreeSlots      int `json:"free_slots"`
}
