package reserve

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/maitred/pkg/browser"
)

// homeURL is the entry point for every run.
const homeURL = "https://resy.com/"

// Default bounds for the session gate.
const (
	// DefaultLoginStepTimeout bounds each automated login form step.
	DefaultLoginStepTimeout = 15 * time.Second

	// DefaultAuthTimeout bounds the wait for the authenticated marker. It
	// is generous because without configured credentials the user completes
	// login by hand in the opened window.
	DefaultAuthTimeout = 3 * time.Minute
)

// SessionGate establishes an authenticated browsing session before any
// search proceeds. With configured credentials it drives the login form
// itself; without them it opens the site and suspends until the user has
// logged in. Either way, authentication counts only once an
// authenticated-only marker is observed.
type SessionGate struct {
	surface     browser.Surface
	log         Logger
	source      CredentialSource
	credentials *Credentials

	// StepTimeout bounds each automated login form step
	StepTimeout time.Duration

	// AuthTimeout bounds the wait for login confirmation
	AuthTimeout time.Duration
}

// NewSessionGate creates a gate. credentials may be nil, in which case the
// source is consulted; the source may report that login will happen manually.
func NewSessionGate(surface browser.Surface, log Logger, credentials *Credentials, source CredentialSource) *SessionGate {
	return &SessionGate{
		surface:     surface,
		log:         log,
		source:      source,
		credentials: credentials,
		StepTimeout: DefaultLoginStepTimeout,
		AuthTimeout: DefaultAuthTimeout,
	}
}

// Establish opens the site, performs or awaits login, and confirms the
// authenticated state. ErrAuthenticationTimeout is fatal to the run; the
// gate never retries it.
func (g *SessionGate) Establish(ctx context.Context) (Session, error) {
	g.log.Step("Establishing Resy session")

	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	if err := g.surface.Navigate(ctx, homeURL); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrNavigationFailure, err)
	}

	g.dismissModals(ctx)

	creds := g.credentials
	if creds == nil && g.source != nil {
		fromSource, ok, err := g.source.Credentials()
		if err != nil {
			return Session{}, err
		}
		if ok {
			creds = &fromSource
		}
	}

	if creds != nil {
		if err := g.submitLogin(ctx, *creds); err != nil {
			return Session{}, err
		}
	} else {
		g.log.Infof("No credentials configured; log in manually in the browser window")
	}

	g.log.Verbosef("Waiting for authenticated marker (up to %s)", g.AuthTimeout)
	ok, err := g.surface.WaitUntil(ctx, AuthenticatedCascade(), g.AuthTimeout)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrAuthenticationTimeout
	}

	g.log.Successf("Logged in")
	return Session{Authenticated: true}, nil
}

// submitLogin drives the login form: open the modal, switch to
// email/password, fill both fields, submit. Each step waits for its element
// with a bounded timeout.
func (g *SessionGate) submitLogin(ctx context.Context, creds Credentials) error {
	g.log.Verbosef("Submitting login for %s", creds.Email)

	if err := g.clickFirst(ctx, LoginButtonCascade(), "login button"); err != nil {
		return err
	}

	// The email/password switch is absent on templates that show the form
	// directly, so a miss here is not an error.
	if handles, err := g.locateAfterWait(ctx, EmailSwitchCascade()); err != nil {
		return err
	} else if len(handles) > 0 {
		if err := g.surface.Click(ctx, handles[0]); err != nil {
			return fmt.Errorf("email/password switch: %w", err)
		}
	}

	if err := g.fillFirst(ctx, EmailFieldCascade(), creds.Email, "email field"); err != nil {
		return err
	}
	if err := g.fillFirst(ctx, PasswordFieldCascade(), creds.Password, "password field"); err != nil {
		return err
	}
	return g.clickFirst(ctx, SubmitCascade(), "submit button")
}

// dismissModals closes signup/announcement overlays that block the page.
// Best effort: a page without modals is the common case.
func (g *SessionGate) dismissModals(ctx context.Context) {
	handles, err := g.surface.Locate(ctx, ModalCloseCascade())
	if err != nil || len(handles) == 0 {
		// Escape dismisses the overlays that render without close buttons
		_ = g.surface.Press(ctx, "Escape")
		return
	}
	if err := g.surface.Click(ctx, handles[0]); err != nil {
		g.log.Debugf("modal dismiss click failed: %v", err)
	}
}

func (g *SessionGate) locateAfterWait(ctx context.Context, cascade []browser.Strategy) ([]browser.Handle, error) {
	ok, err := g.surface.WaitUntil(ctx, cascade, g.StepTimeout)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return g.surface.Locate(ctx, cascade)
}

func (g *SessionGate) clickFirst(ctx context.Context, cascade []browser.Strategy, what string) error {
	handles, err := g.locateAfterWait(ctx, cascade)
	if err != nil {
		return err
	}
	if len(handles) == 0 {
		return fmt.Errorf("%s not found: %w", what, ErrAuthenticationTimeout)
	}
	if err := g.surface.Click(ctx, handles[0]); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func (g *SessionGate) fillFirst(ctx context.Context, cascade []browser.Strategy, value, what string) error {
	handles, err := g.locateAfterWait(ctx, cascade)
	if err != nil {
		return err
	}
	if len(handles) == 0 {
		return fmt.Errorf("%s not found: %w", what, ErrAuthenticationTimeout)
	}
	if err := g.surface.Fill(ctx, handles[0], value); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
