package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/maitred/pkg/browser"
	"github.com/entrhq/maitred/pkg/config"
	"github.com/entrhq/maitred/pkg/console"
	"github.com/entrhq/maitred/pkg/logging"
	"github.com/entrhq/maitred/pkg/reserve"
	"github.com/spf13/cobra"
)

// Build metadata, overridden at link time.
var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// rootOptions holds command-line configuration
type rootOptions struct {
	configPath string
	headless   bool
	verbosity  string
	timeout    time.Duration
}

// NewRootCmd builds the maitred command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "maitred",
		Short:         "Search Resy for open reservations and book one",
		Long:          "maitred opens a browser session against Resy, sweeps a venue's availability\nover the coming days, filters it against your time and seating preferences,\nand walks a chosen slot through to a confirmed booking.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	root.Flags().StringVarP(&opts.configPath, "config", "c", "config.json", "path to the configuration file (JSON or YAML)")
	root.Flags().BoolVar(&opts.headless, "headless", false, "run the browser without a visible window (incompatible with manual login)")
	root.Flags().StringVar(&opts.verbosity, "verbosity", "", "log verbosity: quiet, normal, verbose, debug (overrides config)")
	root.Flags().DurationVar(&opts.timeout, "timeout", 0, "overall run timeout (0 for none)")

	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the command tree with signal-aware cancellation.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	level := console.ParseLogLevel(opts.verbosity)
	if opts.verbosity == "" && cfg.Notifications.DebugOutput {
		level = console.LogLevelDebug
	}
	trace, traceErr := logging.NewLogger("run")
	defer trace.Close()

	log := console.NewLogger(level)
	if traceErr == nil {
		// Warnings, errors, and debug lines reach the trace file even at
		// quiet console verbosity
		log = log.WithTrace(trace)
	}
	prompter := console.NewPrompter()

	log.Header("maitred — Resy reservation assistant")
	if traceErr != nil {
		log.Debugf("trace file unavailable: %v", traceErr)
	} else {
		log.Debugf("trace: %s", trace.LogPath())
	}

	restaurantURL := cfg.Reservation.RestaurantURL
	if !config.ValidRestaurantURL(restaurantURL) {
		restaurantURL, err = prompter.RestaurantURL(restaurantURL)
		if err != nil {
			return err
		}
	}

	days := cfg.Reservation.DaysRange
	if days <= 0 {
		days, err = prompter.DaysRange(config.DefaultConfig().Reservation.DaysRange)
		if err != nil {
			return err
		}
	}
	window, err := reserve.NewDateWindow(time.Now(), days)
	if err != nil {
		return err
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	log.Section("Browser")
	log.Infof("Launching Chromium (headless=%v)", opts.headless)
	surface, err := browser.Launch(browser.Options{Headless: opts.headless})
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	defer func() {
		if err := surface.Close(); err != nil {
			log.Debugf("browser close: %v", err)
		}
	}()

	var creds *reserve.Credentials
	if cfg.HasCredentials() {
		creds = &reserve.Credentials{
			Email:    cfg.Credentials.Email,
			Password: cfg.Credentials.Password,
		}
	}

	gate := reserve.NewSessionGate(surface, log, creds, prompter)
	scanner := reserve.NewAvailabilityScanner(surface, log)
	orch := reserve.NewOrchestrator(surface, log, gate, scanner, prompter, prompter)

	trace.Infof("run starting: url=%s days=%d headless=%v auto_first=%v auto_confirm=%v",
		restaurantURL, days, opts.headless, cfg.Reservation.DefaultFirstSlot, cfg.Automation.AutoConfirmBooking)

	outcome := orch.Run(ctx, reserve.Params{
		RestaurantURL: restaurantURL,
		Window:        window,
		Prefs: reserve.Preferences{
			TimeSlots: cfg.Automation.PreferredTimeSlots,
			Seating:   cfg.Automation.PreferredSeating,
		},
		AutoFirst:   cfg.Reservation.DefaultFirstSlot,
		AutoConfirm: cfg.Automation.AutoConfirmBooking,
	})

	finished := trace.Infof
	if outcome.Err != nil {
		finished = trace.Errorf
	}
	finished("run %s finished: status=%s state=%s slot=%q attempts=%d err=%v",
		outcome.RunID, outcome.Status, outcome.FinalState, outcome.Slot.Key(), outcome.Attempt.Count, outcome.Err)

	log.Report(outcome, cfg.Notifications)

	switch outcome.Status {
	case reserve.StatusConfirmed, reserve.StatusNoAvailability:
		return nil
	default:
		if outcome.Err != nil {
			return outcome.Err
		}
		return fmt.Errorf("run ended %s", outcome.Status)
	}
}
