// Package harness wires settings into a section.Runtime: it opens the
// configured driver, fills the portal registry and owns their lifecycle
// across test runs.
//
//	h, err := harness.Open(settings, logger)
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	page, err := LoginPage.Visit(ctx, h.Runtime, nil)
package harness

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/entrhq/pageobject/pkg/config"
	"github.com/entrhq/pageobject/pkg/finder"
	"github.com/entrhq/pageobject/pkg/finder/browser"
	"github.com/entrhq/pageobject/pkg/finder/htmldoc"
	"github.com/entrhq/pageobject/pkg/logging"
	"github.com/entrhq/pageobject/pkg/section"
)

// Harness owns a driver and the portal registry of one test configuration.
type Harness struct {
	Settings *config.Settings
	Runtime  *section.Runtime

	logger *logging.Logger
	closer io.Closer
}

// Open validates s and starts its driver.
func Open(s *config.Settings, logger *logging.Logger) (*Harness, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	switch s.Driver {
	case config.DriverPlaywright:
		d, err := browser.Start(browserOptions(s), logger.With("browser"))
		if err != nil {
			return nil, err
		}
		h, err := newHarness(s, d, logger)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		h.closer = d
		return h, nil

	default:
		info, err := os.Stat(s.FixturesDir)
		if err != nil {
			return nil, fmt.Errorf("fixtures directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("fixtures directory %s is not a directory", s.FixturesDir)
		}
		return NewStatic(os.DirFS(s.FixturesDir), s, logger)
	}
}

// NewStatic creates a harness serving documents from fsys with the static
// driver, regardless of s.Driver.
func NewStatic(fsys fs.FS, s *config.Settings, logger *logging.Logger) (*Harness, error) {
	d := htmldoc.New(fsys, htmldoc.WithLogger(logger.With("htmldoc")))
	return newHarness(s, d, logger)
}

func newHarness(s *config.Settings, d finder.Driver, logger *logging.Logger) (*Harness, error) {
	registry := section.NewRegistry()
	if err := s.RegisterPortals(registry); err != nil {
		return nil, err
	}

	logger.Infof("harness ready (driver=%s, portals=%v)", s.Driver, registry.Names())

	return &Harness{
		Settings: s,
		Runtime: &section.Runtime{
			Driver:          d,
			Portals:         registry,
			TestIDAttribute: s.TestIDAttribute,
		},
		logger: logger,
	}, nil
}

func browserOptions(s *config.Settings) browser.Options {
	opts := browser.Options{
		BaseURL:   s.BaseURL,
		Headless:  s.Browser.Headless,
		Browser:   s.Browser.Name,
		Timeout:   float64(s.Browser.Timeout.Milliseconds()),
		WaitUntil: s.Browser.WaitUntil,
		Install:   s.Browser.Install,
	}
	if s.Browser.Viewport.Width > 0 && s.Browser.Viewport.Height > 0 {
		opts.Viewport = &browser.Viewport{
			Width:  s.Browser.Viewport.Width,
			Height: s.Browser.Viewport.Height,
		}
	}
	return opts
}

// Driver returns the driver queries go through.
func (h *Harness) Driver() finder.Driver {
	return h.Runtime.Driver
}

// Portals returns the portal registry.
func (h *Harness) Portals() *section.Registry {
	return h.Runtime.Portals
}

// Visit visits a page definition.
func (h *Harness) Visit(ctx context.Context, def *section.Definition, attrs section.Attrs) (*section.Instance, error) {
	inst, err := def.Visit(ctx, h.Runtime, attrs)
	if err != nil {
		h.logger.Debugf("visit %s failed: %v", def, err)
		return nil, err
	}
	return inst, nil
}

// Load loads a section definition against the current document.
func (h *Harness) Load(ctx context.Context, def *section.Definition, attrs section.Attrs) (*section.Instance, error) {
	return def.Load(ctx, h.Runtime, attrs)
}

// Reset clears portal registrations made since Open and restores the
// configured ones. Call it between independent tests.
func (h *Harness) Reset() error {
	h.Runtime.Portals.Reset()
	if err := h.Settings.RegisterPortals(h.Runtime.Portals); err != nil {
		return err
	}
	h.logger.Debugf("registry reset")
	return nil
}

// Close stops the driver, if it needs stopping.
func (h *Harness) Close() error {
	if h.closer == nil {
		return nil
	}
	if err := h.closer.Close(); err != nil {
		return fmt.Errorf("failed to close driver: %w", err)
	}
	h.closer = nil
	return nil
}
