//go:build !windows

package platform

import (
	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/wayland"
	"github.com/1broseidon/sash/internal/win32"
	"github.com/1broseidon/sash/internal/x11"
)

type (
	x11Backend     = x11.Backend
	waylandBackend = wayland.Backend
	windowsBackend = win32.Backend
)

func connectX11(cfg Config, loop *runloop.Loop, events Events) (*x11Backend, error) {
	return x11.Connect(x11.Config{
		Display:      cfg.Display,
		InputDevices: cfg.InputDevices,
		RequireRandR: cfg.RequireRandR,
	}, loop, events)
}

func connectWayland(cfg Config, loop *runloop.Loop, events Events) (*waylandBackend, error) {
	return wayland.Connect(wayland.Config{
		Display:        cfg.WaylandDisplay,
		MonitorTimeout: cfg.MonitorTimeout,
		AppID:          cfg.AppID,
	}, loop, events)
}

func connectWindows(cfg Config, loop *runloop.Loop, events Events) (*windowsBackend, error) {
	return win32.Connect(win32.Config{ClassName: cfg.AppID}, loop, events)
}
