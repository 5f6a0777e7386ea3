// Package config loads and validates the reservation bot configuration.
//
// Configuration is an override layer, never a requirement: any value left
// empty here is collected interactively at startup instead. Files may be
// YAML or JSON (the original config.json shape parses as-is).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// ErrInvalid reports a malformed configuration. It is fatal at load time,
// before any browser interaction happens.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the full bot configuration.
type Config struct {
	// Resy account credentials
	Credentials CredentialsConfig `yaml:"resy_credentials" json:"resy_credentials"`

	// Reservation search settings
	Reservation ReservationConfig `yaml:"reservation_settings" json:"reservation_settings"`

	// Automation behavior preferences
	Automation AutomationConfig `yaml:"automation_preferences" json:"automation_preferences"`

	// Output and reporting switches
	Notifications NotificationsConfig `yaml:"notifications" json:"notifications"`
}

// CredentialsConfig holds Resy login credentials. Leave both empty to be
// prompted (or to log in manually in the opened browser window).
type CredentialsConfig struct {
	Email    string `yaml:"email" json:"email"`
	Password string `yaml:"password" json:"password"`
}

// ReservationConfig holds the search target and window.
type ReservationConfig struct {
	// RestaurantURL is the Resy venue page to sweep
	RestaurantURL string `yaml:"restaurant_url" json:"restaurant_url"`

	// DaysRange is how many calendar days to check, starting today (1..30).
	// Zero means prompt at startup.
	DaysRange int `yaml:"days_range" json:"days_range"`

	// DefaultFirstSlot auto-selects the first matching slot instead of
	// prompting for a choice
	DefaultFirstSlot bool `yaml:"default_first_slot" json:"default_first_slot"`
}

// AutomationConfig narrows and orders the slots the sweep produces, and
// controls whether the final confirm click needs a yes/no prompt.
type AutomationConfig struct {
	AutoConfirmBooking bool `yaml:"auto_confirm_booking" json:"auto_confirm_booking"`

	// PreferredTimeSlots keeps only slots at these times, in page order.
	// A preference that would eliminate every slot is ignored.
	PreferredTimeSlots []string `yaml:"preferred_time_slots" json:"preferred_time_slots"`

	// PreferredSeating keeps only slots with these seating labels, applied
	// after the time filter, with the same fall-back-on-empty policy.
	PreferredSeating []string `yaml:"preferred_seating" json:"preferred_seating"`
}

// NotificationsConfig controls the outcome report.
type NotificationsConfig struct {
	SuccessMessage bool `yaml:"success_message" json:"success_message"`
	BookingDetails bool `yaml:"booking_details" json:"booking_details"`
	DebugOutput    bool `yaml:"debug_output" json:"debug_output"`
}

// DefaultConfig returns the configuration used when no file is present.
// The preference defaults mirror a typical dinner booking.
func DefaultConfig() *Config {
	return &Config{
		Reservation: ReservationConfig{
			DaysRange: 7,
		},
		Automation: AutomationConfig{
			PreferredTimeSlots: []string{"6:00 PM", "6:30 PM", "7:00 PM", "7:30 PM", "8:00 PM"},
			PreferredSeating:   []string{"Dining Room", "Indoor Dining Rm"},
		},
		Notifications: NotificationsConfig{
			SuccessMessage: true,
			BookingDetails: true,
		},
	}
}

// Load reads the configuration file at path. A missing file is not an error:
// the defaults are returned and every unset value degrades to interactive
// prompting. A present-but-malformed file is ErrInvalid.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// yaml.v3 parses the JSON config shape too
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalid, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration before any browser interaction.
// Empty values pass: they are filled in interactively later.
func (c *Config) Validate() error {
	if c.Reservation.DaysRange < 0 || c.Reservation.DaysRange > 30 {
		return fmt.Errorf("%w: days_range must be between 0 and 30, where 0 means prompt at startup (got %d)",
			ErrInvalid, c.Reservation.DaysRange)
	}

	if c.Reservation.RestaurantURL != "" && !ValidRestaurantURL(c.Reservation.RestaurantURL) {
		return fmt.Errorf("%w: restaurant_url %q is not a Resy venue URL",
			ErrInvalid, c.Reservation.RestaurantURL)
	}

	return nil
}

// HasCredentials reports whether both credential fields are set.
func (c *Config) HasCredentials() bool {
	return c.Credentials.Email != "" && c.Credentials.Password != ""
}

// venuePathPatterns are the known Resy venue URL shapes: the old
// /restaurants/ format, the city-scoped format, and direct venue links.
var venuePathPatterns = []glob.Glob{
	glob.MustCompile("/restaurants/*", '/'),
	glob.MustCompile("/restaurants/*/**", '/'),
	glob.MustCompile("/cities/*/venues/*", '/'),
	glob.MustCompile("/cities/*/venues/*/**", '/'),
	glob.MustCompile("/venues/*", '/'),
	glob.MustCompile("/venues/*/**", '/'),
}

// ValidRestaurantURL reports whether raw is a well-formed Resy venue URL.
func ValidRestaurantURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host != "resy.com" && u.Host != "www.resy.com" {
		return false
	}

	path := strings.TrimSuffix(u.Path, "/")
	for _, pattern := range venuePathPatterns {
		if pattern.Match(path) {
			return true
		}
	}
	return false
}
