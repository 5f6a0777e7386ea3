package browser

import (
	"context"
	"errors"
	"time"
)

// Handle is an opaque reference to an element located on the current page.
// Handles are weak: any navigation or reload invalidates them, and callers
// must re-locate by selector rather than retain a handle across page loads.
type Handle any

// Strategy is a single, independent lookup approach in a selector cascade.
// Cascades are evaluated in order and short-circuit at the first strategy
// that yields at least one match, so the site's markup can drift between
// restaurant templates without any one strategy having to cover them all.
type Strategy struct {
	// Name identifies the strategy in logs and debug output
	Name string

	// Selector is a Playwright selector (CSS by default, "xpath=" prefixed
	// expressions for XPath lookups)
	Selector string
}

// Surface is the capability interface the reservation engine drives.
// Implementations own exactly one page; callers never issue two operations
// against a Surface concurrently.
type Surface interface {
	// Navigate loads the given URL, replacing the current page state and
	// invalidating every previously returned Handle.
	Navigate(ctx context.Context, url string) error

	// Locate evaluates the cascade in order and returns the handles from the
	// first strategy that matches at least one visible element. An empty
	// result is not an error.
	Locate(ctx context.Context, cascade []Strategy) ([]Handle, error)

	// ReadText returns the trimmed text content of the element.
	ReadText(ctx context.Context, h Handle) (string, error)

	// Click clicks the element.
	Click(ctx context.Context, h Handle) error

	// Fill replaces the value of an input element.
	Fill(ctx context.Context, h Handle, value string) error

	// WaitUntil blocks until any strategy in the cascade matches a visible
	// element, or the timeout expires. Timeout expiry returns (false, nil);
	// it is never reported as an error on its own.
	WaitUntil(ctx context.Context, cascade []Strategy, timeout time.Duration) (bool, error)

	// Press sends a key press to the page body (for example "Escape" to
	// dismiss an overlay).
	Press(ctx context.Context, key string) error

	// URL returns the current page URL.
	URL() string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Options configures a new browser driver.
type Options struct {
	// Headless controls whether the browser runs without a visible window.
	// Reservation runs default to headed so the user can watch, and take
	// over, the session.
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout is the default timeout for page operations
	Timeout time.Duration

	// UserAgent overrides the browser's user agent string
	UserAgent string
}

// Sentinel errors returned by Surface implementations. The reservation
// engine classifies failures with errors.Is against these.
var (
	// ErrStaleHandle reports an element handle that detached from the DOM
	// between being located and being used.
	ErrStaleHandle = errors.New("stale element handle")

	// ErrForeignHandle reports a handle that was not produced by this driver.
	ErrForeignHandle = errors.New("handle not produced by this driver")
)

// Default values for driver configuration.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	// pollInterval is how often WaitUntil re-evaluates its cascade.
	pollInterval = 250 * time.Millisecond
)
