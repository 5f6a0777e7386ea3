package console

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/entrhq/maitred/pkg/config"
	"github.com/entrhq/maitred/pkg/reserve"
)

// Report prints the final run summary block and, on a confirmed booking,
// copies the booking reference to the clipboard.
func (l *Logger) Report(outcome reserve.Outcome, notifications config.NotificationsConfig) {
	fmt.Fprintln(l.writer)
	fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
	fmt.Fprintf(l.writer, "%s  RESERVATION SUMMARY%s\n", l.colorBoldWhite, l.colorReset)
	fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)

	fmt.Fprint(l.writer, "  Status: ")
	switch outcome.Status {
	case reserve.StatusConfirmed:
		fmt.Fprintf(l.writer, "%s✓ %s%s\n", l.colorBoldGreen, outcome.Status, l.colorReset)
	case reserve.StatusNoAvailability:
		fmt.Fprintf(l.writer, "%s%s%s\n", l.colorYellow, outcome.Status, l.colorReset)
	default:
		fmt.Fprintf(l.writer, "%s✗ %s%s\n", l.colorBoldRed, outcome.Status, l.colorReset)
	}

	if outcome.Status == reserve.StatusConfirmed && notifications.SuccessMessage {
		fmt.Fprintf(l.writer, "%s  🎉 Reservation booked!%s\n", l.colorBoldGreen, l.colorReset)
	}

	if notifications.BookingDetails && outcome.Slot.TimeOfDay != "" {
		fmt.Fprintln(l.writer)
		fmt.Fprintf(l.writer, "  Slot: %s\n", outcome.Slot.Display())
		if outcome.Reference != "" {
			fmt.Fprintf(l.writer, "  Reference: %s\n", outcome.Reference)
		}
		if outcome.Attempt.Count > 0 {
			fmt.Fprintf(l.writer, "  Attempts: %d\n", outcome.Attempt.Count)
		}
	}

	if outcome.Err != nil {
		fmt.Fprintln(l.writer)
		fmt.Fprintf(l.writer, "%s  Error Details:%s\n", l.colorBoldRed, l.colorReset)
		fmt.Fprintf(l.writer, "%s    %v%s\n", l.colorRed, outcome.Err, l.colorReset)
	}

	fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
	fmt.Fprintln(l.writer)

	if outcome.Status == reserve.StatusConfirmed && outcome.Reference != "" {
		// Clipboard access fails on headless hosts; the reference is already
		// printed above.
		if err := clipboard.WriteAll(outcome.Reference); err == nil {
			l.Infof("Booking reference copied to clipboard")
		} else {
			l.Debugf("clipboard unavailable: %v", err)
		}
	}
}
