// Package config loads the settings a page-object run is configured with:
// which driver to use, where pages are served from, browser options,
// logging, and the portals of the application under test.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/pageobject/pkg/logging"
	"github.com/entrhq/pageobject/pkg/section"
)

// Environment variables that override file settings.
const (
	EnvBaseURL  = "PAGEOBJECT_BASE_URL"
	EnvDriver   = "PAGEOBJECT_DRIVER"
	EnvHeadless = "PAGEOBJECT_HEADLESS"
)

// DriverKind selects the finder driver.
type DriverKind string

const (
	// DriverStatic serves documents from FixturesDir without a browser
	DriverStatic DriverKind = "static"
	// DriverPlaywright drives a real browser against BaseURL
	DriverPlaywright DriverKind = "playwright"
)

// Settings is the configuration of a page-object run.
type Settings struct {
	// Driver selection
	Driver DriverKind `yaml:"driver" json:"driver"`

	// Where pages come from: BaseURL for the browser, FixturesDir for the
	// static driver
	BaseURL     string `yaml:"base_url" json:"base_url"`
	FixturesDir string `yaml:"fixtures_dir" json:"fixtures_dir"`

	// Attribute container test ids are matched on
	TestIDAttribute string `yaml:"test_id_attribute" json:"test_id_attribute"`

	// Browser options (playwright driver only)
	Browser BrowserSettings `yaml:"browser" json:"browser"`

	// Portals registered before every run
	Portals []PortalSettings `yaml:"portals" json:"portals"`

	// Logging configuration
	Logging LoggingSettings `yaml:"logging" json:"logging"`

	// ConfigFilePath is the file the settings were read from, if any
	ConfigFilePath string `yaml:"-" json:"-"`
}

// BrowserSettings configures the playwright driver.
type BrowserSettings struct {
	Name      string        `yaml:"name" json:"name"`
	Headless  bool          `yaml:"headless" json:"headless"`
	Install   bool          `yaml:"install" json:"install"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	WaitUntil string        `yaml:"wait_until" json:"wait_until"`
	Viewport  Viewport      `yaml:"viewport" json:"viewport"`
}

// Viewport is the browser window size in pixels.
type Viewport struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// PortalSettings registers a portal by name. TestID defaults to the name.
type PortalSettings struct {
	Name   string `yaml:"name" json:"name"`
	TestID string `yaml:"test_id" json:"test_id"`
}

// LoggingSettings configures the run log.
type LoggingSettings struct {
	Dir   string `yaml:"dir" json:"dir"`
	Level string `yaml:"level" json:"level"`
}

// Default returns settings for the static driver serving ./fixtures.
func Default() *Settings {
	return &Settings{
		Driver:          DriverStatic,
		FixturesDir:     "fixtures",
		TestIDAttribute: section.DefaultTestIDAttribute,
		Browser: BrowserSettings{
			Name:      "chromium",
			Headless:  true,
			Timeout:   30 * time.Second,
			WaitUntil: "load",
			Viewport:  Viewport{Width: 1280, Height: 720},
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

// Load reads settings from a YAML file on top of the defaults. Relative
// fixture and log directories are resolved against the file's directory.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, err
	}

	s.ConfigFilePath = path
	dir := filepath.Dir(path)
	if s.FixturesDir != "" && !filepath.IsAbs(s.FixturesDir) {
		s.FixturesDir = filepath.Join(dir, s.FixturesDir)
	}
	if s.Logging.Dir != "" && !filepath.IsAbs(s.Logging.Dir) {
		s.Logging.Dir = filepath.Join(dir, s.Logging.Dir)
	}
	return s, nil
}

// Parse decodes YAML settings on top of the defaults.
func Parse(data []byte) (*Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return s, nil
}

// ApplyEnv overrides settings from the environment.
func (s *Settings) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvBaseURL); ok {
		s.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvDriver); ok {
		s.Driver = DriverKind(v)
	}
	if v, ok := os.LookupEnv(EnvHeadless); ok {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		s.Browser.Headless = headless
	}
	return nil
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	switch s.Driver {
	case DriverStatic:
		if s.FixturesDir == "" {
			return fmt.Errorf("fixtures_dir is required for the static driver")
		}
	case DriverPlaywright:
		if s.BaseURL == "" {
			return fmt.Errorf("base_url is required for the playwright driver")
		}
	default:
		return fmt.Errorf("invalid driver: %s (must be 'static' or 'playwright')", s.Driver)
	}

	if s.Browser.Timeout < 0 {
		return fmt.Errorf("browser timeout cannot be negative")
	}
	if s.Browser.Viewport.Width < 0 || s.Browser.Viewport.Height < 0 {
		return fmt.Errorf("browser viewport cannot be negative")
	}

	// Set default level if not specified
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	validLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warn":    true,
		"warning": true,
		"error":   true,
	}
	if !validLevels[s.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be 'debug', 'info', 'warn', or 'error')", s.Logging.Level)
	}

	seen := make(map[string]bool, len(s.Portals))
	for i, p := range s.Portals {
		if p.Name == "" {
			return fmt.Errorf("portals[%d]: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("portals[%d]: duplicate portal %q", i, p.Name)
		}
		seen[p.Name] = true
	}

	return nil
}

// RegisterPortals registers every configured portal in r.
func (s *Settings) RegisterPortals(r *section.Registry) error {
	for _, p := range s.Portals {
		var opts []section.PortalOption
		if p.TestID != "" {
			opts = append(opts, section.PortalTestID(p.TestID))
		}
		if err := r.Register(p.Name, opts...); err != nil {
			return fmt.Errorf("failed to register portal: %w", err)
		}
	}
	return nil
}

// LogOptions returns the logger options for the run log.
func (s *Settings) LogOptions() logging.Options {
	return logging.Options{
		Dir:   s.Logging.Dir,
		Level: logging.ParseLevel(s.Logging.Level),
	}
}
