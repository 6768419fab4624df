// Package config loads the sash configuration file and resolves it into the
// effective settings used by the CLI and the application builder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMonitorTimeout = 2 * time.Second
	DefaultWindowWidth    = 800
	DefaultWindowHeight   = 600
	DefaultWindowTitle    = "sash"
	DefaultLogLevel       = "info"
)

var validBackends = []string{"auto", "x11", "wayland", "windows"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// X11Config holds settings that only the X11 backend reads.
type X11Config struct {
	// InputDevices enables XInput device discovery and pointer tracking.
	InputDevices bool `yaml:"input_devices"`
	// RequireRandR fails the connection when RandR is missing instead of
	// falling back to Xinerama or the root window.
	RequireRandR bool `yaml:"require_randr"`
}

// WindowDefaults seeds every window description the CLI creates.
type WindowDefaults struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Config struct {
	Backend        string         `yaml:"backend"`
	Display        string         `yaml:"display,omitempty"`
	WaylandDisplay string         `yaml:"wayland_display,omitempty"`
	LogLevel       string         `yaml:"log_level"`
	LogFile        string         `yaml:"log_file,omitempty"`
	MonitorTimeout time.Duration  `yaml:"monitor_timeout"`
	X11            X11Config      `yaml:"x11"`
	WindowDefaults WindowDefaults `yaml:"window_defaults"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend:        "auto",
		LogLevel:       DefaultLogLevel,
		MonitorTimeout: DefaultMonitorTimeout,
		X11: X11Config{
			InputDevices: true,
		},
		WindowDefaults: WindowDefaults{
			Width:  DefaultWindowWidth,
			Height: DefaultWindowHeight,
			Title:  DefaultWindowTitle,
		},
	}
}

// Overrides carries values from flags and the environment. Nil fields leave
// the loaded value alone.
type Overrides struct {
	Backend        *string
	Display        *string
	WaylandDisplay *string
	LogLevel       *string
	LogFile        *string
	MonitorTimeout *time.Duration
	InputDevices   *bool
	RequireRandR   *bool
}

// ApplyOverrides layers o on top of c and validates the result.
func (c *Config) ApplyOverrides(o Overrides) error {
	if o.Backend != nil {
		c.Backend = *o.Backend
	}
	if o.Display != nil {
		c.Display = *o.Display
	}
	if o.WaylandDisplay != nil {
		c.WaylandDisplay = *o.WaylandDisplay
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	if o.LogFile != nil {
		c.LogFile = *o.LogFile
	}
	if o.MonitorTimeout != nil {
		c.MonitorTimeout = *o.MonitorTimeout
	}
	if o.InputDevices != nil {
		c.X11.InputDevices = *o.InputDevices
	}
	if o.RequireRandR != nil {
		c.X11.RequireRandR = *o.RequireRandR
	}
	return c.Validate()
}

// Marshal renders the effective config as YAML. Durations are written in
// their string form so the output loads back unchanged.
func (c *Config) Marshal() ([]byte, error) {
	out := struct {
		Backend        string         `yaml:"backend"`
		Display        string         `yaml:"display,omitempty"`
		WaylandDisplay string         `yaml:"wayland_display,omitempty"`
		LogLevel       string         `yaml:"log_level"`
		LogFile        string         `yaml:"log_file,omitempty"`
		MonitorTimeout string         `yaml:"monitor_timeout"`
		X11            X11Config      `yaml:"x11"`
		WindowDefaults WindowDefaults `yaml:"window_defaults"`
	}{
		Backend:        c.Backend,
		Display:        c.Display,
		WaylandDisplay: c.WaylandDisplay,
		LogLevel:       c.LogLevel,
		LogFile:        c.LogFile,
		MonitorTimeout: c.MonitorTimeout.String(),
		X11:            c.X11,
		WindowDefaults: c.WindowDefaults,
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path, creating its directory.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if !oneOf(c.Backend, validBackends) {
		return &ValidationError{
			Path: "backend",
			Err:  fmt.Errorf("must be one of %s, got %q", strings.Join(validBackends, ", "), c.Backend),
		}
	}
	if !oneOf(strings.ToLower(c.LogLevel), validLogLevels) {
		return &ValidationError{
			Path: "log_level",
			Err:  fmt.Errorf("must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.LogLevel),
		}
	}
	if c.MonitorTimeout <= 0 {
		return &ValidationError{
			Path: "monitor_timeout",
			Err:  fmt.Errorf("must be positive, got %s", c.MonitorTimeout),
		}
	}
	if c.WindowDefaults.Width <= 0 {
		return &ValidationError{
			Path: "window_defaults.width",
			Err:  fmt.Errorf("must be positive, got %d", c.WindowDefaults.Width),
		}
	}
	if c.WindowDefaults.Height <= 0 {
		return &ValidationError{
			Path: "window_defaults.height",
			Err:  fmt.Errorf("must be positive, got %d", c.WindowDefaults.Height),
		}
	}
	if c.WindowDefaults.Width > 1<<15 || c.WindowDefaults.Height > 1<<15 {
		return &ValidationError{
			Path: "window_defaults",
			Err:  fmt.Errorf("%dx%d exceeds the 32768 pixel limit", c.WindowDefaults.Width, c.WindowDefaults.Height),
		}
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
