// CLAUDE:SUMMARY CLI entry point for slotwatch: load a profile, poll the booking form until a slot appears, notify.
// Command slotwatch polls an appointment booking website until a slot shows up.
//
// Usage:
//
//	slotwatch -config ankara-general                      # visible Chrome, every 10 minutes
//	slotwatch -config ankara-general --headless --interval 300
//	slotwatch -config ankara-general --config_path ~/slots.yaml -journal slots.db
//	slotwatch -list                                       # list profiles
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/slotwatch/horosafe"
	"github.com/hazyhaar/slotwatch/slotwatch"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	profile      string
	configPath   string
	explicitPath bool
	headless     bool
	interval     time.Duration
	logLevel     string
	maxCycles    int
	pageErrors   slotwatch.PageErrorPolicy
	journal      string
	statusAddr   string
	remote       string
	keepOpen     bool
	list         bool
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		os.Exit(exitUsage)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(o.logLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, logger, o)
	stop()
	os.Exit(code)
}

// parseFlags accepts both -flag and --flag, as std flag does.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("slotwatch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.profile, "config", "", "profile key in the configuration file (required)")
	fs.StringVar(&o.configPath, "config_path", slotwatch.DefaultConfigPath, "path to the YAML configuration file")
	fs.BoolVar(&o.headless, "headless", false, "run Chrome without a window")
	interval := fs.Int("interval", int(slotwatch.DefaultInterval/time.Second), "seconds between two checks")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.IntVar(&o.maxCycles, "max-cycles", 0, "stop after N checks without a slot (0 = never)")
	pageErrors := fs.String("page-errors", string(slotwatch.PageErrorsFatal), "on page structure errors: fatal or skip")
	fs.StringVar(&o.journal, "journal", slotwatch.JournalMemory, "SQLite file recording every check")
	fs.StringVar(&o.statusAddr, "status-addr", "", "serve /healthz and /status on this address (e.g. :8089)")
	fs.StringVar(&o.remote, "remote", "", "DevTools WebSocket URL of an already running Chrome")
	fs.BoolVar(&o.keepOpen, "keep-open", true, "keep the visible browser open after a slot is found")
	fs.BoolVar(&o.list, "list", false, "list the profiles of the configuration file and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: slotwatch -config <profile-key> [--headless] [--interval <seconds>] [--config_path <path>]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config_path" {
			o.explicitPath = true
		}
	})

	if fs.NArg() > 0 {
		return usageError(fs, "unexpected arguments: %v", fs.Args())
	}
	if *interval <= 0 {
		return usageError(fs, "-interval must be a positive number of seconds")
	}
	o.interval = time.Duration(*interval) * time.Second
	if o.maxCycles < 0 {
		return usageError(fs, "-max-cycles must not be negative")
	}
	policy, err := slotwatch.ParsePageErrorPolicy(*pageErrors)
	if err != nil {
		return usageError(fs, "%v", err)
	}
	o.pageErrors = policy

	if o.list {
		return o, nil
	}
	if o.profile == "" {
		return usageError(fs, "-config <profile-key> is required")
	}
	if err := horosafe.ValidateKey(o.profile); err != nil {
		return usageError(fs, "-config: %v", err)
	}
	return o, nil
}

func usageError(fs *flag.FlagSet, format string, args ...any) (options, error) {
	err := fmt.Errorf(format, args...)
	fmt.Fprintln(fs.Output(), "slotwatch:", err)
	fs.Usage()
	return options{}, err
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func browserConfig(o options, cfg *slotwatch.CheckConfig, logger *slog.Logger) slotwatch.BrowserConfig {
	bc := slotwatch.BrowserConfigFor(cfg, o.headless, logger)
	bc.RemoteURL = o.remote
	return bc
}

func run(ctx context.Context, logger *slog.Logger, o options) int {
	path := slotwatch.ResolveConfigPath(o.configPath, o.explicitPath)

	if o.list {
		names, err := slotwatch.ProfileNames(path)
		if err != nil {
			logger.Error("slotwatch: list profiles", "error", err)
			return exitError
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return exitOK
	}

	cfg, err := slotwatch.LoadProfile(path, o.profile)
	if err != nil {
		logger.Error("slotwatch: load profile", "path", path, "error", err)
		return exitError
	}
	logger = logger.With("profile", cfg.Name)

	j, err := slotwatch.OpenJournal(o.journal, logger)
	if err != nil {
		logger.Error("slotwatch: open journal", "error", err)
		return exitError
	}
	defer j.Close()

	notifier, err := slotwatch.NewNotifier(cfg, logger)
	if err != nil {
		logger.Error("slotwatch: notifiers", "error", err)
		return exitError
	}

	status := slotwatch.NewStatus(cfg.Name, j)
	if o.statusAddr != "" {
		srv := &http.Server{
			Addr:              o.statusAddr,
			Handler:           status.Handler(logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("slotwatch: status endpoint", "addr", o.statusAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("slotwatch: status endpoint", "error", err)
			}
		}()
		defer stopServer(srv, 5*time.Second, logger)
	}

	br := slotwatch.NewBrowser(browserConfig(o, cfg, logger))
	if err := br.Start(ctx); err != nil {
		logger.Error("slotwatch: start browser", "error", err)
		return exitError
	}
	defer br.Close()

	checker := slotwatch.NewChecker(cfg, br, slotwatch.Options{
		Interval:   o.interval,
		MaxCycles:  o.maxCycles,
		PageErrors: o.pageErrors,
		Notifier:   notifier,
		Journal:    j,
		Status:     status,
		Logger:     logger,
	})
	res, err := checker.Run(ctx)
	logSummary(logger, status)

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logger.Info("slotwatch: interrupted")
		return exitError
	default:
		logger.Error("slotwatch: stopped", "error", err)
		return exitError
	}

	if res.NotifyErr != nil {
		logger.Warn("slotwatch: slot found but some notifications failed", "error", res.NotifyErr)
	}
	if !br.Headless() && o.keepOpen {
		logger.Info("slotwatch: slot found, browser left open; press Ctrl+C to exit", "url", cfg.URL)
		<-ctx.Done()
	}
	return exitOK
}

func stopServer(srv *http.Server, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("slotwatch: status endpoint shutdown", "error", err)
	}
}

func logSummary(logger *slog.Logger, status *slotwatch.Status) {
	snap := status.Snapshot(context.Background())
	logger.Info("slotwatch: run summary",
		"cycles", snap.Cycles, "found", snap.Found, "outcomes", snap.Outcomes)
}
