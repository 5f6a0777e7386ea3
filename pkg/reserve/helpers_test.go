package reserve

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/entrhq/maitred/pkg/browser"
)

// fakeHandle is the element stand-in the fake surface hands out.
type fakeHandle struct {
	kind string
	text string
}

// dayPage scripts what one date-parameterized venue load shows.
type dayPage struct {
	slotTexts []string
	noAvail   bool
	navErr    error
}

// fakeSurface scripts the site: venue pages keyed by date, plus flags for
// the login form and the booking steps. Cascades are recognized by their
// strategy names, so tests exercise the real components end to end without
// a browser.
type fakeSurface struct {
	pages map[string]*dayPage

	authenticated   bool
	authAfterLogin  bool
	loginVisible    bool
	loginForm       bool
	emailSwitch     bool
	modalVisible    bool
	reserveVisible  bool
	confirmVisible  bool
	reference       string
	reserveTimeout  bool
	confirmTimeouts int
	staleClicks     int

	onNavigate func(s *fakeSurface, target string)

	navigated []string
	clicks    []string
	filled    map[string]string
	pressed   []string
	current   string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		pages:     make(map[string]*dayPage),
		reference: "RES-12345",
		filled:    make(map[string]string),
	}
}

func (f *fakeSurface) setDay(date time.Time, page *dayPage) {
	f.pages[date.Format("2006-01-02")] = page
}

// currentPage resolves the scripted page for the URL's date parameter.
func (f *fakeSurface) currentPage() *dayPage {
	u, err := url.Parse(f.current)
	if err != nil {
		return nil
	}
	return f.pages[u.Query().Get("date")]
}

func (f *fakeSurface) Navigate(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.navigated = append(f.navigated, target)
	f.current = target

	// A navigation discards any in-flight booking UI
	f.reserveVisible = false
	f.confirmVisible = false

	if f.onNavigate != nil {
		f.onNavigate(f, target)
	}
	if page := f.currentPage(); page != nil && page.navErr != nil {
		return page.navErr
	}
	return nil
}

func (f *fakeSurface) Locate(ctx context.Context, cascade []browser.Strategy) ([]browser.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(cascade) == 0 {
		return nil, nil
	}

	name := cascade[0].Name
	switch {
	case strings.HasPrefix(name, "slot-"):
		page := f.currentPage()
		if page == nil {
			return nil, nil
		}
		var handles []browser.Handle
		for _, text := range page.slotTexts {
			handles = append(handles, &fakeHandle{kind: "slot", text: text})
		}
		return handles, nil

	case strings.HasPrefix(name, "noavail-"):
		if page := f.currentPage(); page != nil && page.noAvail {
			return []browser.Handle{&fakeHandle{kind: "noavail"}}, nil
		}
		return nil, nil

	case name == "login-button":
		if f.loginVisible {
			return []browser.Handle{&fakeHandle{kind: "login-button"}}, nil
		}
		return nil, nil

	case name == "login-email-switch":
		if f.loginForm && f.emailSwitch {
			return []browser.Handle{&fakeHandle{kind: "login-email-switch"}}, nil
		}
		return nil, nil

	case name == "login-email-field", name == "login-password-field", name == "login-submit":
		if f.loginForm {
			return []browser.Handle{&fakeHandle{kind: name}}, nil
		}
		return nil, nil

	case strings.HasPrefix(name, "auth-"):
		if f.authenticated {
			return []browser.Handle{&fakeHandle{kind: "auth"}}, nil
		}
		return nil, nil

	case strings.HasPrefix(name, "modal-"):
		if f.modalVisible {
			return []browser.Handle{&fakeHandle{kind: "modal"}}, nil
		}
		return nil, nil

	case strings.HasPrefix(name, "reserve-"):
		if f.reserveVisible {
			return []browser.Handle{&fakeHandle{kind: "reserve"}}, nil
		}
		return nil, nil

	case strings.HasPrefix(name, "confirm-"):
		if f.confirmVisible {
			return []browser.Handle{&fakeHandle{kind: "confirm", text: f.reference}}, nil
		}
		return nil, nil
	}
	return nil, nil
}

func (f *fakeSurface) ReadText(ctx context.Context, h browser.Handle) (string, error) {
	return h.(*fakeHandle).text, nil
}

func (f *fakeSurface) Click(ctx context.Context, h browser.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el := h.(*fakeHandle)
	f.clicks = append(f.clicks, el.kind)

	switch el.kind {
	case "slot":
		if f.staleClicks > 0 {
			f.staleClicks--
			return fmt.Errorf("click: %w", browser.ErrStaleHandle)
		}
		if !f.reserveTimeout {
			f.reserveVisible = true
		}
	case "login-button":
		f.loginForm = true
	case "login-submit":
		if f.authAfterLogin {
			f.authenticated = true
		}
	case "reserve":
		if f.confirmTimeouts > 0 {
			f.confirmTimeouts--
		} else {
			f.confirmVisible = true
		}
	case "modal":
		f.modalVisible = false
	}
	return nil
}

func (f *fakeSurface) Fill(ctx context.Context, h browser.Handle, value string) error {
	f.filled[h.(*fakeHandle).kind] = value
	return nil
}

// WaitUntil resolves immediately against the scripted state; an absent
// marker reports a timeout without the wait.
func (f *fakeSurface) WaitUntil(ctx context.Context, cascade []browser.Strategy, timeout time.Duration) (bool, error) {
	handles, err := f.Locate(ctx, cascade)
	if err != nil {
		return false, err
	}
	return len(handles) > 0, nil
}

func (f *fakeSurface) Press(ctx context.Context, key string) error {
	f.pressed = append(f.pressed, key)
	return nil
}

func (f *fakeSurface) URL() string {
	return f.current
}

// quietLogger discards everything; tests assert on behavior, not output.
type quietLogger struct{}

func (quietLogger) Step(string)                     {}
func (quietLogger) Infof(string, ...interface{})    {}
func (quietLogger) Successf(string, ...interface{}) {}
func (quietLogger) Warningf(string, ...interface{}) {}
func (quietLogger) Verbosef(string, ...interface{}) {}
func (quietLogger) Debugf(string, ...interface{})   {}

// funcPicker adapts a function to the SlotPicker interface.
type funcPicker func(SlotSet) (Slot, bool, error)

func (p funcPicker) Pick(slots SlotSet) (Slot, bool, error) { return p(slots) }

// funcConfirmer adapts a function to the Confirmer interface.
type funcConfirmer func(Slot) (bool, error)

func (c funcConfirmer) ConfirmBooking(slot Slot) (bool, error) { return c(slot) }

// funcSource adapts a function to the CredentialSource interface.
type funcSource func() (Credentials, bool, error)

func (s funcSource) Credentials() (Credentials, bool, error) { return s() }
