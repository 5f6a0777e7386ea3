package reserve

import "errors"

// Failure taxonomy for a reservation run. Transient UI timing issues are
// retried inside the booking transaction; structural failures propagate to
// the orchestrator and terminate the run with a reported reason.
var (
	// ErrAuthenticationTimeout means login confirmation never arrived within
	// the bounded wait. Fatal to the run; never retried.
	ErrAuthenticationTimeout = errors.New("authentication was not confirmed in time")

	// ErrNavigationFailure means a page load failed. Fatal for the current
	// day during scanning, fatal for the run during booking.
	ErrNavigationFailure = errors.New("navigation failed")

	// ErrNoSlotsAvailable means the sweep produced no bookable slots. This
	// is a normal terminal outcome, not a crash.
	ErrNoSlotsAvailable = errors.New("no reservation slots available")

	// ErrSlotLost means the chosen slot vanished between scanning and
	// booking (taken by someone else). Recoverable once via a single re-scan.
	ErrSlotLost = errors.New("slot no longer available")

	// ErrBookingStepTimeout means a booking step's expected UI marker did
	// not appear in time. Retried up to the attempt bound, then escalated.
	ErrBookingStepTimeout = errors.New("booking step timed out")

	// ErrBookingDeclined means the user answered no at the final
	// confirmation prompt.
	ErrBookingDeclined = errors.New("booking declined at confirmation prompt")

	// ErrSelectionCancelled means the user quit the interactive slot picker.
	ErrSelectionCancelled = errors.New("slot selection cancelled")
)
