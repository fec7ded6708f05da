// Package main provides pagecheck, a smoke checker that visits the pages of a
// YAML layout and loads every declared section and portal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/entrhq/pageobject/pkg/config"
	"github.com/entrhq/pageobject/pkg/harness"
	"github.com/entrhq/pageobject/pkg/layout"
	"github.com/entrhq/pageobject/pkg/logging"
)

const version = "0.1.0"

// errChecksFailed is returned when at least one page or section failed.
var errChecksFailed = errors.New("checks failed")

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	LayoutFile  string
	Pages       string
	Driver      string
	BaseURL     string
	Timeout     time.Duration
	Verbose     bool
	ShowVersion bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("pagecheck v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, stopping checks...")
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		cancel()
		if !errors.Is(err, errChecksFailed) {
			log.Printf("pagecheck: %v", err)
		}
		os.Exit(1)
	}
	cancel()
}

func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.ConfigFile, "config", "", "Path to settings file (YAML)")
	flag.StringVar(&cli.LayoutFile, "layout", "layout.yaml", "Path to layout file (YAML)")
	flag.StringVar(&cli.Pages, "pages", "", "Comma-separated glob patterns selecting pages by name or URL")
	flag.StringVar(&cli.Driver, "driver", "", "Driver override: static or playwright")
	flag.StringVar(&cli.BaseURL, "base-url", "", "Base URL override for the playwright driver")
	flag.DurationVar(&cli.Timeout, "timeout", 5*time.Minute, "Overall timeout")
	flag.BoolVar(&cli.Verbose, "v", false, "Log debug output to stderr")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pagecheck - load every page and section of a layout\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pagecheck [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Check static fixtures\n")
		fmt.Fprintf(os.Stderr, "  pagecheck -config pageobject.yaml -layout layout.yaml\n\n")
		fmt.Fprintf(os.Stderr, "  # Check a running app in a browser\n")
		fmt.Fprintf(os.Stderr, "  pagecheck -driver playwright -base-url http://localhost:3000 -pages 'Contact*'\n\n")
	}

	flag.Parse()
	return cli
}

func run(ctx context.Context, cli *CLIConfig) error {
	settings, err := loadSettings(cli)
	if err != nil {
		return err
	}

	logger := newLogger(settings, cli.Verbose)
	defer logger.Close()
	logger.Infof("pagecheck v%s starting (driver=%s)", version, settings.Driver)

	file, err := layout.Load(cli.LayoutFile)
	if err != nil {
		return err
	}
	pages, err := file.Compile()
	if err != nil {
		return fmt.Errorf("failed to compile layout: %w", err)
	}

	h, err := harness.Open(settings, logger)
	if err != nil {
		return fmt.Errorf("failed to open harness: %w", err)
	}
	defer h.Close()

	checker, err := layout.NewChecker(h.Runtime, splitPatterns(cli.Pages), logger.With("check"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cli.Timeout)
	defer cancel()

	results, err := checker.Check(ctx, pages)
	fmt.Print(layout.Report(results, 60))
	if err != nil {
		return fmt.Errorf("check interrupted: %w", err)
	}
	if layout.Failed(results) > 0 {
		return errChecksFailed
	}
	return nil
}

// loadSettings reads the settings file when given, then the environment,
// then command-line overrides.
func loadSettings(cli *CLIConfig) (*config.Settings, error) {
	settings := config.Default()
	if cli.ConfigFile != "" {
		s, err := config.Load(cli.ConfigFile)
		if err != nil {
			return nil, err
		}
		settings = s
	}
	if err := settings.ApplyEnv(); err != nil {
		return nil, err
	}

	if cli.Driver != "" {
		settings.Driver = config.DriverKind(cli.Driver)
	}
	if cli.BaseURL != "" {
		settings.BaseURL = cli.BaseURL
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

func newLogger(settings *config.Settings, verbose bool) *logging.Logger {
	if verbose {
		return logging.NewWriter("pagecheck", os.Stderr, logging.LevelDebug)
	}
	// A fallback logger is returned with the error
	logger, _ := logging.New("pagecheck", settings.LogOptions())
	return logger
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
