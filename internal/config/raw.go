package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList accepts a single path or a list of paths. Directories expand
// to the *.yaml and *.yml files they contain.
//
//	include: "~/.config/sash/local.yaml"
//	include:
//	  - "conf.d"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawX11Config struct {
	InputDevices *bool `yaml:"input_devices"`
	RequireRandR *bool `yaml:"require_randr"`
}

type RawWindowDefaults struct {
	Width  *int    `yaml:"width"`
	Height *int    `yaml:"height"`
	Title  *string `yaml:"title"`
}

// RawConfig mirrors one YAML file. A nil field was not set by that file.
type RawConfig struct {
	Include        IncludeList        `yaml:"include"`
	Backend        *string            `yaml:"backend"`
	Display        *string            `yaml:"display"`
	WaylandDisplay *string            `yaml:"wayland_display"`
	LogLevel       *string            `yaml:"log_level"`
	LogFile        *string            `yaml:"log_file"`
	MonitorTimeout *string            `yaml:"monitor_timeout"`
	X11            *RawX11Config      `yaml:"x11"`
	WindowDefaults *RawWindowDefaults `yaml:"window_defaults"`
}

// merge returns r with every field set in other taking precedence.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	if other.Backend != nil {
		out.Backend = other.Backend
	}
	if other.Display != nil {
		out.Display = other.Display
	}
	if other.WaylandDisplay != nil {
		out.WaylandDisplay = other.WaylandDisplay
	}
	if other.LogLevel != nil {
		out.LogLevel = other.LogLevel
	}
	if other.LogFile != nil {
		out.LogFile = other.LogFile
	}
	if other.MonitorTimeout != nil {
		out.MonitorTimeout = other.MonitorTimeout
	}
	if other.X11 != nil {
		x := RawX11Config{}
		if out.X11 != nil {
			x = *out.X11
		}
		if other.X11.InputDevices != nil {
			x.InputDevices = other.X11.InputDevices
		}
		if other.X11.RequireRandR != nil {
			x.RequireRandR = other.X11.RequireRandR
		}
		out.X11 = &x
	}
	if other.WindowDefaults != nil {
		w := RawWindowDefaults{}
		if out.WindowDefaults != nil {
			w = *out.WindowDefaults
		}
		if other.WindowDefaults.Width != nil {
			w.Width = other.WindowDefaults.Width
		}
		if other.WindowDefaults.Height != nil {
			w.Height = other.WindowDefaults.Height
		}
		if other.WindowDefaults.Title != nil {
			w.Title = other.WindowDefaults.Title
		}
		out.WindowDefaults = &w
	}
	return out
}
