package reserve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefSlots() SlotSet {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	return SlotSet{
		{Date: day, TimeOfDay: "6:00 PM", Seating: "Bar"},
		{Date: day, TimeOfDay: "7:00 PM", Seating: "Dining Room"},
		{Date: day, TimeOfDay: "7:00 PM", Seating: "Patio"},
		{Date: day, TimeOfDay: "9:30 PM", Seating: "Dining Room"},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		prefs Preferences
		want  []string // expected Key() suffixes as "time|seating"
	}{
		{
			name:  "no preferences pass everything through",
			prefs: Preferences{},
			want:  []string{"6:00 PM|Bar", "7:00 PM|Dining Room", "7:00 PM|Patio", "9:30 PM|Dining Room"},
		},
		{
			name:  "time filter keeps order",
			prefs: Preferences{TimeSlots: []string{"7:00 PM"}},
			want:  []string{"7:00 PM|Dining Room", "7:00 PM|Patio"},
		},
		{
			name:  "seating applied after time",
			prefs: Preferences{TimeSlots: []string{"7:00 PM", "9:30 PM"}, Seating: []string{"Dining Room"}},
			want:  []string{"7:00 PM|Dining Room", "9:30 PM|Dining Room"},
		},
		{
			name:  "matching is case-insensitive and trims whitespace",
			prefs: Preferences{TimeSlots: []string{" 6:00 pm "}},
			want:  []string{"6:00 PM|Bar"},
		},
		{
			name:  "time preference nobody matches falls back to the full set",
			prefs: Preferences{TimeSlots: []string{"11:45 PM"}},
			want:  []string{"6:00 PM|Bar", "7:00 PM|Dining Room", "7:00 PM|Patio", "9:30 PM|Dining Room"},
		},
		{
			name:  "seating fallback still honors the time filter",
			prefs: Preferences{TimeSlots: []string{"7:00 PM"}, Seating: []string{"Rooftop"}},
			want:  []string{"7:00 PM|Dining Room", "7:00 PM|Patio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(prefSlots(), tt.prefs)
			require.Len(t, got, len(tt.want))
			for i, slot := range got {
				assert.Equal(t, tt.want[i], slot.TimeOfDay+"|"+slot.Seating)
			}
		})
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	prefs := Preferences{TimeSlots: []string{"7:00 PM"}, Seating: []string{"Patio"}}
	once := Filter(prefSlots(), prefs)
	twice := Filter(once, prefs)
	assert.Equal(t, once, twice)
}

func TestFilterEmptyInput(t *testing.T) {
	got := Filter(nil, Preferences{TimeSlots: []string{"7:00 PM"}})
	assert.True(t, got.Empty())
}
