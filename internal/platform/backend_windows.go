//go:build windows

package platform

import (
	"errors"

	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/win32"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

type (
	x11Backend     = unixOnly
	waylandBackend = unixOnly
	windowsBackend = win32.Backend
)

var errUnixOnly = errors.New("backend is not available on windows")

// unixOnly stands in for the X11 and Wayland variants, which are never
// constructed on Windows.
type unixOnly struct{}

func (unixOnly) Monitors() ([]wsys.Monitor, error)      { return nil, errUnixOnly }
func (unixOnly) NewWindow(wsys.WindowSpec) error         { return errUnixOnly }
func (unixOnly) CloseWindow(wsys.WindowID) error         { return errUnixOnly }
func (unixOnly) SetMenu(wsys.WindowID, *menu.Tree) error { return errUnixOnly }
func (unixOnly) Menu(wsys.WindowID) *menu.Tree           { return nil }
func (unixOnly) InputDevices() *input.Registry           { return nil }
func (unixOnly) Run() error                              { return errUnixOnly }
func (unixOnly) Stop()                                   {}
func (unixOnly) Close() error                            { return nil }

func connectX11(Config, *runloop.Loop, Events) (*x11Backend, error) {
	return nil, &wsys.BackendConnectError{Backend: "x11", Err: errUnixOnly}
}

func connectWayland(Config, *runloop.Loop, Events) (*waylandBackend, error) {
	return nil, &wsys.BackendConnectError{Backend: "wayland", Err: errUnixOnly}
}

func connectWindows(cfg Config, loop *runloop.Loop, events Events) (*windowsBackend, error) {
	return win32.Connect(win32.Config{ClassName: cfg.AppID}, loop, events)
}
