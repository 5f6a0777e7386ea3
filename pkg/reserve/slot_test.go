package reserve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDateWindow(t *testing.T) {
	start := time.Date(2026, 8, 24, 18, 45, 12, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		window, err := NewDateWindow(start, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, window.Days)
		// Start is truncated to the calendar date
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), window.Start)
	})

	t.Run("offset dates", func(t *testing.T) {
		window, err := NewDateWindow(start, 3)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), window.Date(2))
	})

	t.Run("bounds", func(t *testing.T) {
		for _, days := range []int{0, -1, MaxWindowDays + 1} {
			_, err := NewDateWindow(start, days)
			assert.Error(t, err, "days=%d", days)
		}
		_, err := NewDateWindow(start, MaxWindowDays)
		assert.NoError(t, err)
	})
}

func TestSlotKeyAndDisplay(t *testing.T) {
	slot := Slot{
		Date:      time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		TimeOfDay: "6:00 PM",
		Seating:   "Dining Room",
	}
	assert.Equal(t, "2026-08-24|6:00 PM|Dining Room", slot.Key())
	assert.Equal(t, "Monday, August 24 at 6:00 PM (Dining Room)", slot.Display())

	bare := Slot{Date: slot.Date, TimeOfDay: "6:00 PM"}
	assert.NotContains(t, bare.Display(), "(")
}

func TestSlotSetContains(t *testing.T) {
	slots := chooserSlots()
	assert.True(t, slots.Contains(slots[1]))

	outsider := slots[1]
	outsider.TimeOfDay = "11:00 PM"
	assert.False(t, slots.Contains(outsider))
}

func TestAttemptStatus(t *testing.T) {
	tests := []struct {
		status   AttemptStatus
		display  string
		terminal bool
	}{
		{AttemptPending, "PENDING", false},
		{AttemptRetrying, "RETRYING", false},
		{AttemptConfirmed, "CONFIRMED", true},
		{AttemptSlotLost, "SLOT_LOST", true},
		{AttemptFailed, "FAILED", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.display, tt.status.String())
		assert.Equal(t, tt.terminal, tt.status.Terminal())
	}
}
