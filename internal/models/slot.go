package models

import (
	"fmt"
	"time"
)

// Slot - единица записи: одна дата и одно время, один клиент.
type Slot struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"` // YYYY-MM-DD
	Time   string `json:"time"` // HH:MM
	Booked bool   `json:"booked"`
}

// DateTime combines the stored date and time into a single timestamp
// in the given location.
func (s *Slot) DateTime(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", s.Date+" "+s.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot datetime %q %q: %w", s.Date, s.Time, err)
	}
	return t, nil
}
