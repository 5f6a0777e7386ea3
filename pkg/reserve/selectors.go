package reserve

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/entrhq/maitred/pkg/browser"
)

// Selector cascades for the Resy UI. The site's markup is not stable across
// restaurant templates, so every lookup is an ordered list of independent
// strategies evaluated short-circuit: adding a new strategy never perturbs
// the existing ones.

// SlotCascade locates bookable time-slot buttons on a venue page.
func SlotCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "slot-reservation-button", Selector: "button.ReservationButton:not(.ReservationButton--disabled)"},
		{Name: "slot-booking-button", Selector: "button.booking-button:not([disabled])"},
		{Name: "slot-time-cell", Selector: "xpath=//div[contains(@class, 'time-slot') and not(contains(@class, 'unavailable'))]//button"},
		{Name: "slot-time-text", Selector: "xpath=//button[contains(text(), ':') and not(@disabled)]"},
	}
}

// NoAvailabilityCascade locates the marker shown when a day has no inventory.
func NoAvailabilityCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "noavail-banner", Selector: "xpath=//*[contains(text(), 'No availability') or contains(text(), 'no reservations')]"},
		{Name: "noavail-notify", Selector: "xpath=//button[contains(text(), 'Notify')]"},
	}
}

// LoginButtonCascade locates the homepage login entry point.
func LoginButtonCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "login-button", Selector: "xpath=//button[contains(text(), 'Log in')]"},
		{Name: "login-link", Selector: "xpath=//a[contains(text(), 'Log in')]"},
	}
}

// EmailSwitchCascade locates the switch from magic-link to password login.
func EmailSwitchCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "login-email-switch", Selector: "xpath=//button[contains(text(), 'Use Email and Password instead')]"},
	}
}

// EmailFieldCascade locates the email input on the login form.
func EmailFieldCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "login-email-field", Selector: "input[type='email']"},
	}
}

// PasswordFieldCascade locates the password input on the login form.
func PasswordFieldCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "login-password-field", Selector: "input[type='password']"},
	}
}

// SubmitCascade locates the login form submit button.
func SubmitCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "login-submit", Selector: "button[type='submit']"},
	}
}

// AuthenticatedCascade locates markers only present for a logged-in account.
func AuthenticatedCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "auth-account-menu", Selector: "[data-test-id='menu_container-button-account']"},
		{Name: "auth-account-aria", Selector: "xpath=//button[contains(@aria-label, 'Account')]"},
	}
}

// ModalCloseCascade locates dismiss buttons on signup/announcement modals
// that block the venue page.
func ModalCloseCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "modal-announcement-close", Selector: "button.AnnouncementModal__icon-close"},
		{Name: "modal-no-thanks", Selector: "xpath=//button[contains(text(), 'No Thanks')]"},
		{Name: "modal-aria-close", Selector: "button[aria-label='Close']"},
	}
}

// ReserveNowCascade locates the final confirm button. Resy renders it inside
// the widgets.resy.com iframe on the order summary step.
func ReserveNowCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "reserve-order-summary", Selector: "button[data-test-id='order_summary_page-button-book']"},
		{Name: "reserve-now-span", Selector: "xpath=//button[.//span[contains(text(), 'Reserve Now')]]"},
		{Name: "reserve-now-text", Selector: "xpath=//button[contains(text(), 'Reserve Now')]"},
	}
}

// ConfirmationCascade locates the explicit confirmation marker. A reserve
// click succeeding is not evidence of a booking; only this marker is.
func ConfirmationCascade() []browser.Strategy {
	return []browser.Strategy{
		{Name: "confirm-reference", Selector: "[data-test-id='confirmation_page-booking-reference']"},
		{Name: "confirm-banner", Selector: "xpath=//*[contains(text(), 'Reservation confirmed') or contains(text(), 'confirmation number')]"},
	}
}

// timeOfDayPattern matches clock times like "6:00 PM" inside slot button
// text. No trailing boundary: some templates concatenate the seating label
// straight after the meridiem ("7:30 PMPatio").
var timeOfDayPattern = regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2})\s*([AP]M)`)

// ParseSlotText splits a slot button's text into its time of day and seating
// label. Button text arrives as "6:00 PM\nDining Room" or concatenated
// without separators depending on template; the seating label is whatever
// remains once the time is removed. Returns ok=false when the text carries
// no recognizable clock time.
func ParseSlotText(text string) (timeOfDay, seating string, ok bool) {
	loc := timeOfDayPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", "", false
	}

	match := timeOfDayPattern.FindStringSubmatch(text)
	timeOfDay = strings.ToUpper(match[1] + " " + match[2])

	seating = text[:loc[0]] + text[loc[1]:]
	seating = strings.TrimSpace(strings.ReplaceAll(seating, "\n", " "))
	return timeOfDay, seating, true
}

// DateURL parameterizes a venue URL with a calendar date, replacing any
// query string already present.
func DateURL(restaurantURL string, date time.Time) (string, error) {
	u, err := url.Parse(restaurantURL)
	if err != nil {
		return "", fmt.Errorf("bad restaurant URL: %w", err)
	}

	q := url.Values{}
	q.Set("date", date.Format("2006-01-02"))
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}
