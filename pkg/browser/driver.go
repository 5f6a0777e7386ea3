package browser

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Driver is the Playwright-backed Surface implementation. It owns a single
// Chromium instance with one page, which is the only shared mutable resource
// in a reservation run.
type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	opts    Options
}

// element pairs a located Playwright handle with the strategy that produced
// it, so stale-handle failures can name their origin.
type element struct {
	handle   playwright.ElementHandle
	strategy string
}

// Launch installs Playwright if needed, starts Chromium, and opens the single
// page the driver operates on.
func Launch(opts Options) (*Driver, error) {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	// Discard driver output so it does not interleave with console prompts
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	}
	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}

	browserCtx, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	return &Driver{
		pw:      pw,
		browser: browser,
		context: browserCtx,
		page:    page,
		opts:    opts,
	}, nil
}

// Close releases the page, context, browser, and Playwright runtime. Safe to
// call from a defer on every exit path, including aborts.
func (d *Driver) Close() error {
	_ = d.page.Close()    // Ignore errors, continue cleanup
	_ = d.context.Close() // Ignore errors, continue cleanup
	_ = d.browser.Close() // Ignore errors, continue cleanup

	if err := d.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// Navigate loads the URL and waits for the DOM to be ready. Every handle
// returned before this call is invalid afterwards.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(d.opts.Timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Locate evaluates the cascade in order against the page and its frames,
// returning the visible matches of the first strategy that yields any.
// Resy renders the final booking step inside a widgets.resy.com iframe, so
// frame contents are first-class lookup targets here.
func (d *Driver) Locate(ctx context.Context, cascade []Strategy) ([]Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, strategy := range cascade {
		matches, err := d.query(strategy)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return matches, nil
		}
	}
	return nil, nil
}

// query collects visible, enabled matches for one strategy from the main
// page and every attached frame.
func (d *Driver) query(strategy Strategy) ([]Handle, error) {
	var out []Handle

	collect := func(handles []playwright.ElementHandle) {
		for _, h := range handles {
			visible, err := h.IsVisible()
			if err != nil || !visible {
				continue
			}
			enabled, err := h.IsEnabled()
			if err != nil || !enabled {
				continue
			}
			out = append(out, &element{handle: h, strategy: strategy.Name})
		}
	}

	handles, err := d.page.QuerySelectorAll(strategy.Selector)
	if err != nil {
		return nil, fmt.Errorf("strategy %q failed: %w", strategy.Name, err)
	}
	collect(handles)

	for _, frame := range d.page.Frames() {
		frameHandles, err := frame.QuerySelectorAll(strategy.Selector)
		if err != nil {
			continue // detached frames come and go during widget loads
		}
		collect(frameHandles)
	}

	return out, nil
}

// ReadText returns the trimmed text content of the element.
func (d *Driver) ReadText(ctx context.Context, h Handle) (string, error) {
	el, err := d.unwrap(h)
	if err != nil {
		return "", err
	}

	text, err := el.handle.TextContent()
	if err != nil {
		return "", d.classify(el, err, "read text")
	}
	return strings.TrimSpace(text), nil
}

// Click scrolls the element into view and clicks it.
func (d *Driver) Click(ctx context.Context, h Handle) error {
	el, err := d.unwrap(h)
	if err != nil {
		return err
	}

	if err := el.handle.ScrollIntoViewIfNeeded(); err != nil {
		return d.classify(el, err, "scroll")
	}
	if err := el.handle.Click(); err != nil {
		return d.classify(el, err, "click")
	}
	return nil
}

// Fill replaces the value of an input element.
func (d *Driver) Fill(ctx context.Context, h Handle, value string) error {
	el, err := d.unwrap(h)
	if err != nil {
		return err
	}

	if err := el.handle.Fill(value); err != nil {
		return d.classify(el, err, "fill")
	}
	return nil
}

// WaitUntil polls the cascade until any strategy matches a visible element or
// the timeout expires. Expiry is a normal (false, nil) result.
func (d *Driver) WaitUntil(ctx context.Context, cascade []Strategy, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		for _, strategy := range cascade {
			matches, err := d.query(strategy)
			if err != nil {
				return false, err
			}
			if len(matches) > 0 {
				return true, nil
			}
		}

		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Press sends a key press to the page body.
func (d *Driver) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := d.page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("key press failed: %w", err)
	}
	return nil
}

// URL returns the current page URL.
func (d *Driver) URL() string {
	return d.page.URL()
}

// unwrap asserts that the handle belongs to this driver.
func (d *Driver) unwrap(h Handle) (*element, error) {
	el, ok := h.(*element)
	if !ok {
		return nil, fmt.Errorf("%w (%T)", ErrForeignHandle, h)
	}
	return el, nil
}

// classify maps Playwright failures onto the driver's sentinel errors.
// Detached elements surface as ErrStaleHandle so the booking transaction can
// re-resolve and retry instead of failing the run.
func (d *Driver) classify(el *element, err error, op string) error {
	if isDetachedErr(err) {
		return fmt.Errorf("%s via %s: %w", op, el.strategy, ErrStaleHandle)
	}
	return fmt.Errorf("%s via %s: %w", op, el.strategy, err)
}

func isDetachedErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not attached") ||
		strings.Contains(msg, "detached") ||
		strings.Contains(msg, "element is not visible")
}
