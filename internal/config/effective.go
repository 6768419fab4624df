package config

import (
	"fmt"
	"strings"
	"time"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig starts from DefaultConfig and applies every field raw
// sets. It does not validate the result.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Backend != nil {
		cfg.Backend = strings.ToLower(strings.TrimSpace(*raw.Backend))
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.WaylandDisplay != nil {
		cfg.WaylandDisplay = *raw.WaylandDisplay
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.LogFile != nil {
		cfg.LogFile = *raw.LogFile
	}
	if raw.MonitorTimeout != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*raw.MonitorTimeout))
		if err != nil {
			return nil, &ValidationError{Path: "monitor_timeout", Err: err}
		}
		cfg.MonitorTimeout = d
	}
	if raw.X11 != nil {
		if raw.X11.InputDevices != nil {
			cfg.X11.InputDevices = *raw.X11.InputDevices
		}
		if raw.X11.RequireRandR != nil {
			cfg.X11.RequireRandR = *raw.X11.RequireRandR
		}
	}
	if raw.WindowDefaults != nil {
		if raw.WindowDefaults.Width != nil {
			cfg.WindowDefaults.Width = *raw.WindowDefaults.Width
		}
		if raw.WindowDefaults.Height != nil {
			cfg.WindowDefaults.Height = *raw.WindowDefaults.Height
		}
		if raw.WindowDefaults.Title != nil {
			cfg.WindowDefaults.Title = *raw.WindowDefaults.Title
		}
	}
	return cfg, nil
}
