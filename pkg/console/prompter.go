package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/entrhq/maitred/pkg/config"
	"github.com/entrhq/maitred/pkg/reserve"
	"golang.org/x/term"
)

// Prompter collects interactive input on the terminal. It fills the gaps the
// config file leaves open: credentials, the venue URL, the search window,
// slot selection, and the final booking confirmation.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a prompter reading stdin and writing stdout.
func NewPrompter() *Prompter {
	return &Prompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

// Credentials prompts for a Resy email and password. An empty email means
// the user prefers to log in by hand in the browser window.
func (p *Prompter) Credentials() (reserve.Credentials, bool, error) {
	fmt.Fprint(p.out, "Resy email (leave blank to log in manually): ")
	email, err := p.readLine()
	if err != nil {
		return reserve.Credentials{}, false, err
	}
	if email == "" {
		return reserve.Credentials{}, false, nil
	}

	password, err := p.readPassword("Resy password: ")
	if err != nil {
		return reserve.Credentials{}, false, err
	}

	return reserve.Credentials{Email: email, Password: password}, true, nil
}

// RestaurantURL prompts until it gets a valid Resy venue URL. A non-empty
// deflt is offered as the default and accepted on a blank line.
func (p *Prompter) RestaurantURL(deflt string) (string, error) {
	for {
		if deflt != "" {
			fmt.Fprintf(p.out, "Restaurant URL [%s]: ", deflt)
		} else {
			fmt.Fprint(p.out, "Restaurant URL: ")
		}

		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			line = deflt
		}
		if config.ValidRestaurantURL(line) {
			return line, nil
		}
		fmt.Fprintln(p.out, "That doesn't look like a Resy restaurant URL (e.g. https://resy.com/cities/ny/venues/example)")
	}
}

// DaysRange prompts for the number of days to search, defaulting to deflt
// on a blank line.
func (p *Prompter) DaysRange(deflt int) (int, error) {
	for {
		fmt.Fprintf(p.out, "Days to search (1-%d) [%d]: ", reserve.MaxWindowDays, deflt)
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if line == "" {
			return deflt, nil
		}
		days, err := strconv.Atoi(line)
		if err == nil && days >= 1 && days <= reserve.MaxWindowDays {
			return days, nil
		}
		fmt.Fprintf(p.out, "Enter a number between 1 and %d\n", reserve.MaxWindowDays)
	}
}

// Pick shows the available slots as a numbered list and reads a choice.
// A blank line or "q" cancels.
func (p *Prompter) Pick(slots reserve.SlotSet) (reserve.Slot, bool, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Available reservations:")
	for i, slot := range slots {
		fmt.Fprintf(p.out, "  %2d. %s\n", i+1, slot.Display())
	}

	for {
		fmt.Fprintf(p.out, "Choose a slot (1-%d, q to cancel): ", len(slots))
		line, err := p.readLine()
		if err != nil {
			return reserve.Slot{}, false, err
		}
		if line == "" || strings.EqualFold(line, "q") {
			return reserve.Slot{}, false, nil
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(slots) {
			return slots[n-1], true, nil
		}
		fmt.Fprintf(p.out, "Enter a number between 1 and %d\n", len(slots))
	}
}

// ConfirmBooking asks for a yes/no before the final booking click.
func (p *Prompter) ConfirmBooking(slot reserve.Slot) (bool, error) {
	for {
		fmt.Fprintf(p.out, "Book %s? [y/N]: ", slot.Display())
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo when stdin is a terminal, falling back to
// a plain line read when it isn't (tests, pipes).
func (p *Prompter) readPassword(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return p.readLine()
}
