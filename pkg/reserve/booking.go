package reserve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/maitred/pkg/browser"
	"github.com/google/uuid"
)

// Default bounds for the booking transaction.
const (
	// DefaultStepTimeout bounds the wait after each booking step for the
	// next expected UI marker.
	DefaultStepTimeout = 20 * time.Second

	// DefaultMaxAttempts is how many passes a transaction makes before
	// giving up on transient failures.
	DefaultMaxAttempts = 3
)

// BookingTransaction drives the multi-step confirmation flow for a chosen
// slot to a verified terminal state.
//
// Every attempt starts from a fresh page load and re-resolves the slot's
// element by its semantic key (date, time, seating); a handle is never
// reused across steps that may reload the page. Success is defined only by
// observing the confirmation marker: a click landing is not evidence of a
// booking.
type BookingTransaction struct {
	surface       browser.Surface
	log           Logger
	confirmer     Confirmer
	autoConfirm   bool
	restaurantURL string

	// StepTimeout bounds the wait for each step's expected marker
	StepTimeout time.Duration

	// MaxAttempts bounds retries on transient step failures
	MaxAttempts int
}

// NewBookingTransaction creates a transaction against the venue page.
// confirmer may be nil when autoConfirm is set.
func NewBookingTransaction(surface browser.Surface, log Logger, restaurantURL string, autoConfirm bool, confirmer Confirmer) *BookingTransaction {
	return &BookingTransaction{
		surface:       surface,
		log:           log,
		confirmer:     confirmer,
		autoConfirm:   autoConfirm,
		restaurantURL: restaurantURL,
		StepTimeout:   DefaultStepTimeout,
		MaxAttempts:   DefaultMaxAttempts,
	}
}

// Execute runs the transaction state machine:
//
//	PENDING → (re-resolve) → steps → CONFIRMED | SLOT_LOST | RETRYING → PENDING | FAILED
//
// Step timeouts and transiently detached elements retry the same attempt
// from re-resolution, up to MaxAttempts. SlotLost is terminal for the
// transaction: the caller must re-scan rather than retry against a vanished
// slot. The returned Attempt always carries a terminal status alongside any
// error.
func (t *BookingTransaction) Execute(ctx context.Context, slot Slot) (Attempt, error) {
	attempt := Attempt{
		ID:     uuid.NewString(),
		Slot:   slot,
		Status: AttemptPending,
	}
	asked := false

	t.log.Step(fmt.Sprintf("Booking %s", slot.Display()))

	for attempt.Count = 1; attempt.Count <= t.MaxAttempts; attempt.Count++ {
		err := t.runAttempt(ctx, slot, &attempt, &asked)
		if err == nil {
			attempt.Status = AttemptConfirmed
			t.log.Successf("Confirmed on attempt %d", attempt.Count)
			return attempt, nil
		}

		switch {
		case errors.Is(err, ErrSlotLost):
			attempt.Status = AttemptSlotLost
			return attempt, err

		case errors.Is(err, ErrBookingDeclined):
			attempt.Status = AttemptFailed
			return attempt, err

		case errors.Is(err, ErrNavigationFailure):
			// Navigation failure mid-booking is fatal for the run
			attempt.Status = AttemptFailed
			return attempt, err

		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			attempt.Status = AttemptFailed
			return attempt, err

		case t.retryable(err):
			if attempt.Count == t.MaxAttempts {
				attempt.Status = AttemptFailed
				return attempt, fmt.Errorf("%w: gave up after %d attempts: %v", ErrBookingStepTimeout, attempt.Count, err)
			}
			attempt.Status = AttemptRetrying
			t.log.Warningf("Attempt %d failed (%v), retrying", attempt.Count, err)

		default:
			attempt.Status = AttemptFailed
			return attempt, err
		}
	}

	// Unreachable: the loop always returns from its final iteration
	attempt.Status = AttemptFailed
	return attempt, ErrBookingStepTimeout
}

func (t *BookingTransaction) retryable(err error) bool {
	return errors.Is(err, ErrBookingStepTimeout) || errors.Is(err, browser.ErrStaleHandle)
}

// runAttempt performs one full pass: fresh load, re-resolve, click the slot,
// confirm, observe the confirmation marker.
func (t *BookingTransaction) runAttempt(ctx context.Context, slot Slot, attempt *Attempt, asked *bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dayURL, err := DateURL(t.restaurantURL, slot.Date)
	if err != nil {
		return err
	}
	if err := t.surface.Navigate(ctx, dayURL); err != nil {
		return fmt.Errorf("%w: %v", ErrNavigationFailure, err)
	}

	handle, err := t.resolve(ctx, slot)
	if err != nil {
		return err
	}
	if handle == nil {
		return ErrSlotLost
	}

	t.log.Verbosef("Clicking slot (attempt %d)", attempt.Count)
	if err := t.surface.Click(ctx, handle); err != nil {
		return err
	}

	ok, err := t.surface.WaitUntil(ctx, ReserveNowCascade(), t.StepTimeout)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: reserve button never appeared", ErrBookingStepTimeout)
	}

	// Ask at most once per transaction, not once per retry pass
	if !t.autoConfirm && t.confirmer != nil && !*asked {
		*asked = true
		proceed, err := t.confirmer.ConfirmBooking(slot)
		if err != nil {
			return err
		}
		if !proceed {
			return ErrBookingDeclined
		}
	}

	reserveHandles, err := t.surface.Locate(ctx, ReserveNowCascade())
	if err != nil {
		return err
	}
	if len(reserveHandles) == 0 {
		return fmt.Errorf("%w: reserve button vanished before click", ErrBookingStepTimeout)
	}
	if err := t.surface.Click(ctx, reserveHandles[0]); err != nil {
		return err
	}

	ok, err = t.surface.WaitUntil(ctx, ConfirmationCascade(), t.StepTimeout)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: confirmation marker never appeared", ErrBookingStepTimeout)
	}

	attempt.Reference = t.readReference(ctx)
	return nil
}

// resolve re-locates the slot's element by semantic key on the freshly
// loaded page. Exact time+seating matches win; a time-only match is accepted
// when the template renders seating elsewhere. nil means the slot is gone.
func (t *BookingTransaction) resolve(ctx context.Context, slot Slot) (browser.Handle, error) {
	markers := append(SlotCascade(), NoAvailabilityCascade()...)
	if _, err := t.surface.WaitUntil(ctx, markers, t.StepTimeout); err != nil {
		return nil, err
	}

	handles, err := t.surface.Locate(ctx, SlotCascade())
	if err != nil {
		return nil, err
	}

	var timeOnly browser.Handle
	for _, handle := range handles {
		text, err := t.surface.ReadText(ctx, handle)
		if err != nil {
			continue
		}
		timeOfDay, seating, valid := ParseSlotText(text)
		if !valid || timeOfDay != slot.TimeOfDay {
			continue
		}
		if seating == slot.Seating {
			return handle, nil
		}
		if timeOnly == nil {
			timeOnly = handle
		}
	}
	return timeOnly, nil
}

// readReference extracts the booking reference text from the confirmation
// marker. Best effort: a confirmed booking without readable reference text
// is still confirmed.
func (t *BookingTransaction) readReference(ctx context.Context) string {
	handles, err := t.surface.Locate(ctx, ConfirmationCascade())
	if err != nil || len(handles) == 0 {
		return ""
	}
	text, err := t.surface.ReadText(ctx, handles[0])
	if err != nil {
		return ""
	}
	return text
}
