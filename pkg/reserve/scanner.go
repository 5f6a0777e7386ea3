package reserve

import (
	"context"
	"time"

	"github.com/entrhq/maitred/pkg/browser"
)

// DefaultDayTimeout bounds the wait for a day's listing (or its
// no-availability marker) to render.
const DefaultDayTimeout = 10 * time.Second

// AvailabilityScanner sweeps a date window on a venue page and aggregates
// raw slot observations into a normalized, ordered slot list.
type AvailabilityScanner struct {
	surface browser.Surface
	log     Logger

	// DayTimeout bounds the per-day wait for the listing to render
	DayTimeout time.Duration
}

// NewAvailabilityScanner creates a scanner over the given surface.
func NewAvailabilityScanner(surface browser.Surface, log Logger) *AvailabilityScanner {
	return &AvailabilityScanner{
		surface:    surface,
		log:        log,
		DayTimeout: DefaultDayTimeout,
	}
}

// Scan issues exactly one query per day in the window, in ascending date
// order, and returns the aggregated slots: day by day, page order within a
// day. An empty result is a normal outcome, not an error. A day that fails
// to load or times out contributes zero slots; only context cancellation
// stops the sweep early. Cancellation is checked at each day boundary.
func (s *AvailabilityScanner) Scan(ctx context.Context, restaurantURL string, window DateWindow) (SlotSet, error) {
	var slots SlotSet

	for offset := 0; offset < window.Days; offset++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		date := window.Date(offset)
		daySlots, err := s.scanDay(ctx, restaurantURL, date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Restaurants legitimately have days with no inventory, and a
			// flaky day load is not worth aborting the sweep over.
			s.log.Warningf("Skipping %s: %v", date.Format("Jan 2"), err)
			continue
		}

		if len(daySlots) == 0 {
			s.log.Verbosef("%s: no availability", date.Format("Monday, January 2"))
			continue
		}

		s.log.Infof("%s: %d slot(s)", date.Format("Monday, January 2"), len(daySlots))
		slots = append(slots, daySlots...)
	}

	return slots, nil
}

// scanDay loads the venue page for one date and reads its slot listing.
func (s *AvailabilityScanner) scanDay(ctx context.Context, restaurantURL string, date time.Time) (SlotSet, error) {
	dayURL, err := DateURL(restaurantURL, date)
	if err != nil {
		return nil, err
	}

	if err := s.surface.Navigate(ctx, dayURL); err != nil {
		return nil, err
	}

	// Either marker resolves the wait; a timeout just means zero slots.
	markers := append(SlotCascade(), NoAvailabilityCascade()...)
	ok, err := s.surface.WaitUntil(ctx, markers, s.DayTimeout)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Debugf("%s: listing did not render within %s", date.Format("2006-01-02"), s.DayTimeout)
		return nil, nil
	}

	handles, err := s.surface.Locate(ctx, SlotCascade())
	if err != nil {
		return nil, err
	}

	var daySlots SlotSet
	for _, handle := range handles {
		text, err := s.surface.ReadText(ctx, handle)
		if err != nil {
			s.log.Debugf("unreadable slot element: %v", err)
			continue
		}

		timeOfDay, seating, valid := ParseSlotText(text)
		if !valid {
			continue
		}

		daySlots = append(daySlots, Slot{
			Date:      date,
			TimeOfDay: timeOfDay,
			Seating:   seating,
			Handle:    handle,
		})
	}

	return daySlots, nil
}
