package reserve

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/maitred/pkg/browser"
	"github.com/google/uuid"
)

// State tracks where a run is in its pipeline. States only move forward;
// the single slot-lost re-scan re-enters Scanning from Booking exactly once.
type State int

const (
	StateInit State = iota
	StateAuthenticating
	StateScanning
	StateSelecting
	StateBooking
	StateDone
	StateAborted
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateScanning:
		return "SCANNING"
	case StateSelecting:
		return "SELECTING"
	case StateBooking:
		return "BOOKING"
	case StateDone:
		return "DONE"
	case StateAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Status classifies how a run ended.
type Status int

const (
	// StatusConfirmed means a booking was verified against the
	// confirmation marker.
	StatusConfirmed Status = iota

	// StatusNoAvailability means the sweep completed and found nothing to
	// book. A normal outcome, not a failure.
	StatusNoAvailability

	// StatusAborted means the run was cancelled or never got past
	// authentication.
	StatusAborted

	// StatusFailed means booking was attempted and did not succeed.
	StatusFailed
)

// String returns the display name of the status.
func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "CONFIRMED"
	case StatusNoAvailability:
		return "NO AVAILABILITY"
	case StatusAborted:
		return "ABORTED"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Params configures a single end-to-end run.
type Params struct {
	RestaurantURL string
	Window        DateWindow
	Prefs         Preferences
	AutoFirst     bool
	AutoConfirm   bool
}

// Outcome is the terminal report of a run.
type Outcome struct {
	RunID      string
	Status     Status
	Slot       Slot
	Reference  string
	Attempt    Attempt
	Err        error
	FinalState State
}

// Orchestrator sequences one full run: authenticate, scan the window,
// filter, choose, book. It owns the one permitted slot-lost recovery cycle.
type Orchestrator struct {
	surface   browser.Surface
	log       Logger
	gate      *SessionGate
	scanner   *AvailabilityScanner
	picker    SlotPicker
	confirmer Confirmer
}

// NewOrchestrator wires the pipeline stages over a shared surface. picker
// and confirmer may be nil when the corresponding automation preferences
// make them unreachable.
func NewOrchestrator(surface browser.Surface, log Logger, gate *SessionGate, scanner *AvailabilityScanner, picker SlotPicker, confirmer Confirmer) *Orchestrator {
	return &Orchestrator{
		surface:   surface,
		log:       log,
		gate:      gate,
		scanner:   scanner,
		picker:    picker,
		confirmer: confirmer,
	}
}

// Run executes the pipeline to a terminal Outcome. Authentication failure
// aborts before any venue page is touched. An empty (or cancelled) selection
// is reported, never silently swallowed. When the chosen slot vanishes
// mid-booking the orchestrator re-scans and re-selects exactly once; a
// second loss is surfaced as a failure.
func (o *Orchestrator) Run(ctx context.Context, params Params) Outcome {
	outcome := Outcome{RunID: uuid.NewString(), FinalState: StateInit}
	o.log.Verbosef("Run %s starting", outcome.RunID)

	outcome.FinalState = StateAuthenticating
	if _, err := o.gate.Establish(ctx); err != nil {
		outcome.Status = StatusAborted
		outcome.Err = err
		outcome.FinalState = StateAborted
		return outcome
	}

	rescanned := false
	for {
		outcome.FinalState = StateScanning
		slots, err := o.scanner.Scan(ctx, params.RestaurantURL, params.Window)
		if err != nil {
			return o.abort(outcome, err)
		}

		outcome.FinalState = StateSelecting
		filtered := Filter(slots, params.Prefs)
		chosen, err := Choose(filtered, params.AutoFirst, o.picker)
		if err != nil {
			switch {
			case errors.Is(err, ErrNoSlotsAvailable):
				if rescanned {
					// The slot we lost was the only one; report the loss,
					// not a bare empty window.
					outcome.Status = StatusFailed
					outcome.Err = ErrSlotLost
					outcome.FinalState = StateDone
					return outcome
				}
				o.log.Infof("No availability in the next %d day(s)", params.Window.Days)
				outcome.Status = StatusNoAvailability
				outcome.FinalState = StateDone
				return outcome
			case errors.Is(err, ErrSelectionCancelled):
				outcome.Status = StatusAborted
				outcome.Err = err
				outcome.FinalState = StateAborted
				return outcome
			default:
				return o.abort(outcome, err)
			}
		}
		outcome.Slot = chosen

		// Cancellation between selection and booking must not start a
		// transaction.
		if err := ctx.Err(); err != nil {
			return o.abort(outcome, err)
		}

		outcome.FinalState = StateBooking
		tx := NewBookingTransaction(o.surface, o.log, params.RestaurantURL, params.AutoConfirm, o.confirmer)
		attempt, err := tx.Execute(ctx, chosen)
		outcome.Attempt = attempt

		if err == nil {
			outcome.Status = StatusConfirmed
			outcome.Reference = attempt.Reference
			outcome.FinalState = StateDone
			return outcome
		}

		if errors.Is(err, ErrSlotLost) && !rescanned {
			rescanned = true
			o.log.Warningf("Slot taken before booking completed; re-scanning once")
			continue
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return o.abort(outcome, err)
		}

		outcome.Status = StatusFailed
		outcome.Err = fmt.Errorf("booking %s: %w", chosen.Display(), err)
		outcome.FinalState = StateDone
		return outcome
	}
}

func (o *Orchestrator) abort(outcome Outcome, err error) Outcome {
	outcome.Status = StatusAborted
	outcome.Err = err
	outcome.FinalState = StateAborted
	return outcome
}
