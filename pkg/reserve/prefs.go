package reserve

import "strings"

// Preferences narrows and orders the aggregated slot list. Zero-value
// preferences pass everything through unchanged.
type Preferences struct {
	// TimeSlots keeps only slots whose time of day matches one of these
	TimeSlots []string

	// Seating keeps only slots whose seating label matches one of these,
	// applied after the time filter
	Seating []string
}

// Filter applies the time preference, then the seating preference, each
// preserving the original relative order. A preference that would eliminate
// every slot falls back to its input instead of failing: preferences steer,
// they never strand the user with nothing. Pure and idempotent.
func Filter(slots SlotSet, prefs Preferences) SlotSet {
	out := keepMatching(slots, prefs.TimeSlots, func(s Slot) string { return s.TimeOfDay })
	out = keepMatching(out, prefs.Seating, func(s Slot) string { return s.Seating })
	return out
}

// keepMatching retains slots whose field matches any of the wanted values
// (case-insensitive). An empty wanted list, or a result that would be empty,
// returns the input untouched.
func keepMatching(slots SlotSet, wanted []string, field func(Slot) string) SlotSet {
	if len(wanted) == 0 || slots.Empty() {
		return slots
	}

	var kept SlotSet
	for _, slot := range slots {
		if matchesAny(field(slot), wanted) {
			kept = append(kept, slot)
		}
	}

	if kept.Empty() {
		return slots
	}
	return kept
}

func matchesAny(value string, wanted []string) bool {
	for _, w := range wanted {
		if strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(w)) {
			return true
		}
	}
	return false
}
