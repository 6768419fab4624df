package config

import (
	"fmt"
)

// Paths lists every key Explain understands, in file order.
var Paths = []string{
	"backend",
	"display",
	"wayland_display",
	"log_level",
	"log_file",
	"monitor_timeout",
	"x11.input_devices",
	"x11.require_randr",
	"window_defaults.width",
	"window_defaults.height",
	"window_defaults.title",
}

// Explain returns the effective value at path and where it came from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "backend":
		return cfg.Backend, nil
	case "display":
		return cfg.Display, nil
	case "wayland_display":
		return cfg.WaylandDisplay, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "log_file":
		return cfg.LogFile, nil
	case "monitor_timeout":
		return cfg.MonitorTimeout.String(), nil
	case "x11.input_devices":
		return cfg.X11.InputDevices, nil
	case "x11.require_randr":
		return cfg.X11.RequireRandR, nil
	case "window_defaults.width":
		return cfg.WindowDefaults.Width, nil
	case "window_defaults.height":
		return cfg.WindowDefaults.Height, nil
	case "window_defaults.title":
		return cfg.WindowDefaults.Title, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
