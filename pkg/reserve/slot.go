package reserve

import (
	"fmt"
	"time"

	"github.com/entrhq/maitred/pkg/browser"
)

// DateWindow is a bounded range of calendar days to sweep, starting at Start.
// Immutable once constructed.
type DateWindow struct {
	Start time.Time
	Days  int
}

// MaxWindowDays bounds how far ahead a sweep may look.
const MaxWindowDays = 30

// NewDateWindow constructs a window of days calendar days beginning at start.
// The start is truncated to its date.
func NewDateWindow(start time.Time, days int) (DateWindow, error) {
	if days < 1 || days > MaxWindowDays {
		return DateWindow{}, fmt.Errorf("window must cover between 1 and %d days (got %d)", MaxWindowDays, days)
	}
	y, m, d := start.Date()
	return DateWindow{
		Start: time.Date(y, m, d, 0, 0, 0, 0, start.Location()),
		Days:  days,
	}, nil
}

// Date returns the calendar day at the given offset into the window.
func (w DateWindow) Date(offset int) time.Time {
	return w.Start.AddDate(0, 0, offset)
}

// Slot is a single bookable date/time/seating combination observed on the
// restaurant page. Handle is a weak reference into the page state the slot
// was scraped from: it is valid only until the next navigation and is never
// reused across a re-scan.
type Slot struct {
	Date      time.Time
	TimeOfDay string
	Seating   string
	Handle    browser.Handle
}

// Key returns the stable semantic identity of the slot, independent of any
// page handle. Bookings re-resolve elements by this key, never by a cached
// handle.
func (s Slot) Key() string {
	return fmt.Sprintf("%s|%s|%s", s.Date.Format("2006-01-02"), s.TimeOfDay, s.Seating)
}

// Display returns the human-readable form shown in slot listings and the
// outcome report.
func (s Slot) Display() string {
	label := fmt.Sprintf("%s at %s", s.Date.Format("Monday, January 2"), s.TimeOfDay)
	if s.Seating != "" {
		label += fmt.Sprintf(" (%s)", s.Seating)
	}
	return label
}

// SlotSet is an ordered sequence of slots: chronological by date, page
// presentation order within a date. The scanner appends day by day and never
// reorders across days.
type SlotSet []Slot

// Empty reports whether the set contains no slots.
func (s SlotSet) Empty() bool {
	return len(s) == 0
}

// Contains reports whether the set holds a slot with the same semantic key.
func (s SlotSet) Contains(slot Slot) bool {
	for _, candidate := range s {
		if candidate.Key() == slot.Key() {
			return true
		}
	}
	return false
}

// Session is the authenticated browsing state for a run. Authenticated is
// set once by the session gate and never reverts within a run.
type Session struct {
	Authenticated bool
}

// AttemptStatus is the state of a booking transaction attempt.
type AttemptStatus int

const (
	// AttemptPending means the attempt has started but not yet resolved
	AttemptPending AttemptStatus = iota
	// AttemptRetrying means a transient step failure triggered another pass
	AttemptRetrying
	// AttemptConfirmed means the confirmation marker was observed (terminal)
	AttemptConfirmed
	// AttemptSlotLost means the slot vanished before it could be booked
	// (terminal for the transaction; the caller must re-scan)
	AttemptSlotLost
	// AttemptFailed means retries were exhausted or the user declined (terminal)
	AttemptFailed
)

// String returns the status name.
func (s AttemptStatus) String() string {
	switch s {
	case AttemptPending:
		return "PENDING"
	case AttemptRetrying:
		return "RETRYING"
	case AttemptConfirmed:
		return "CONFIRMED"
	case AttemptSlotLost:
		return "SLOT_LOST"
	case AttemptFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("AttemptStatus(%d)", int(s))
	}
}

// Terminal reports whether the status ends the transaction.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptConfirmed || s == AttemptSlotLost || s == AttemptFailed
}

// Attempt records one booking transaction against a target slot. It is
// created when the transaction begins and mutated only by the transaction.
type Attempt struct {
	// ID uniquely identifies the attempt in logs and the outcome report
	ID string

	// Slot is the booking target
	Slot Slot

	// Count is how many passes the transaction has made (1-based)
	Count int

	// Status is the current state; Confirmed and Failed are terminal
	Status AttemptStatus

	// Reference is the booking reference text read from the confirmation
	// marker, set only when Status is AttemptConfirmed
	Reference string
}
