package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserStateGetters(t *testing.T) {
	state := &UserState{
		UserID:      1,
		CurrentStep: StateBookingSelectTime,
		TempData: map[string]interface{}{
			"date":  "2025-03-05",
			"times": []interface{}{"10:00", "11:30"}, // так приходит из JSON
		},
	}

	assert.Equal(t, "2025-03-05", state.GetString("date"))
	assert.Equal(t, []string{"10:00", "11:30"}, state.GetStrings("times"))

	assert.Equal(t, "", state.GetString("missing"))
	assert.Nil(t, state.GetStrings("missing"))
}

func TestUserStateNil(t *testing.T) {
	var state *UserState
	assert.Equal(t, "", state.GetString("date"))
	assert.Nil(t, state.GetStrings("times"))
}

func TestSlotDateTime(t *testing.T) {
	slot := &Slot{Date: "2025-03-06", Time: "00:15"}
	ts, err := slot.DateTime(time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 6, 0, 15, 0, 0, time.UTC), ts)

	bad := &Slot{Date: "2025-03-06", Time: "25:99"}
	_, err = bad.DateTime(time.UTC)
	assert.Error(t, err)
}
