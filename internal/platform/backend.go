// Package platform selects and drives exactly one window-system backend.
//
// Backend is a closed sum over the X11, Wayland and Win32 implementations.
// The variant is picked once by Select and every operation switches on it.
package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

// Events is the sink backends report to.
type Events = wsys.Events

// Config carries everything a backend needs to connect.
type Config struct {
	// Backend forces a variant. KindAuto lets Select decide.
	Backend Kind
	// Display overrides $DISPLAY for X11.
	Display string
	// WaylandDisplay overrides $WAYLAND_DISPLAY.
	WaylandDisplay string
	// MonitorTimeout bounds the Wayland monitor round trip.
	MonitorTimeout time.Duration
	// InputDevices enables XInput device tracking on X11.
	InputDevices bool
	// RequireRandR disables the Xinerama fallback on X11.
	RequireRandR bool
	// AppID names the application to the window system.
	AppID string
}

// Backend is the active window-system backend. Exactly one of the variant
// pointers is set, matching kind.
type Backend struct {
	kind    Kind
	x11     *x11Backend
	wayland *waylandBackend
	windows *windowsBackend
}

// Connect selects a backend for the host and connects it. Failures are
// *wsys.BackendConnectError or *wsys.BackendBindError, and no other backend
// is tried.
func Connect(ctx context.Context, cfg Config, loop *runloop.Loop, events Events) (*Backend, error) {
	kind, err := Select(cfg, HostEnv())
	if err != nil {
		return nil, err
	}
	return ConnectKind(ctx, kind, cfg, loop, events)
}

// ConnectKind connects the given variant.
func ConnectKind(ctx context.Context, kind Kind, cfg Config, loop *runloop.Loop, events Events) (*Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, &wsys.BackendConnectError{Backend: kind.String(), Err: err}
	}

	b := &Backend{kind: kind}
	var err error
	switch kind {
	case KindX11:
		b.x11, err = connectX11(cfg, loop, events)
	case KindWayland:
		b.wayland, err = connectWayland(cfg, loop, events)
	case KindWindows:
		b.windows, err = connectWindows(cfg, loop, events)
	default:
		return nil, &wsys.BackendConnectError{Backend: kind.String(), Err: fmt.Errorf("no backend for kind %s", kind)}
	}
	if err != nil {
		return nil, err
	}
	logging.Info("backend connected", "backend", kind.String())
	return b, nil
}

// Kind reports the active variant.
func (b *Backend) Kind() Kind {
	return b.kind
}

func (b *Backend) invalid() error {
	return fmt.Errorf("platform: backend kind %s has no variant", b.kind)
}

// Monitors returns the current monitor snapshot.
func (b *Backend) Monitors() ([]wsys.Monitor, error) {
	switch b.kind {
	case KindX11:
		return b.x11.Monitors()
	case KindWayland:
		return b.wayland.Monitors()
	case KindWindows:
		return b.windows.Monitors()
	default:
		return nil, b.invalid()
	}
}

// NewWindow creates the native window for an id minted by the caller.
func (b *Backend) NewWindow(spec wsys.WindowSpec) error {
	switch b.kind {
	case KindX11:
		return b.x11.NewWindow(spec)
	case KindWayland:
		return b.wayland.NewWindow(spec)
	case KindWindows:
		return b.windows.NewWindow(spec)
	default:
		return b.invalid()
	}
}

// CloseWindow destroys a native window.
func (b *Backend) CloseWindow(id wsys.WindowID) error {
	switch b.kind {
	case KindX11:
		return b.x11.CloseWindow(id)
	case KindWayland:
		return b.wayland.CloseWindow(id)
	case KindWindows:
		return b.windows.CloseWindow(id)
	default:
		return b.invalid()
	}
}

// SetMenu attaches a menu to a window.
func (b *Backend) SetMenu(id wsys.WindowID, tree *menu.Tree) error {
	switch b.kind {
	case KindX11:
		return b.x11.SetMenu(id, tree)
	case KindWayland:
		return b.wayland.SetMenu(id, tree)
	case KindWindows:
		return b.windows.SetMenu(id, tree)
	default:
		return b.invalid()
	}
}

// Menu returns the menu attached to a window, if any.
func (b *Backend) Menu(id wsys.WindowID) *menu.Tree {
	switch b.kind {
	case KindX11:
		return b.x11.Menu(id)
	case KindWayland:
		return b.wayland.Menu(id)
	case KindWindows:
		return b.windows.Menu(id)
	default:
		return nil
	}
}

// InputDevices returns the X11 device registry. Other variants return nil,
// which behaves as an empty registry.
func (b *Backend) InputDevices() *input.Registry {
	switch b.kind {
	case KindX11:
		return b.x11.InputDevices()
	case KindWayland:
		return b.wayland.InputDevices()
	case KindWindows:
		return b.windows.InputDevices()
	default:
		return nil
	}
}

// Run drives the native event source into the loop until it stops.
func (b *Backend) Run() error {
	switch b.kind {
	case KindX11:
		return b.x11.Run()
	case KindWayland:
		return b.wayland.Run()
	case KindWindows:
		return b.windows.Run()
	default:
		return b.invalid()
	}
}

// Stop asks Run to return after the current dispatch.
func (b *Backend) Stop() {
	switch b.kind {
	case KindX11:
		b.x11.Stop()
	case KindWayland:
		b.wayland.Stop()
	case KindWindows:
		b.windows.Stop()
	default:
		logging.Warn("stop on backend without variant", "kind", b.kind.String())
	}
}

// Close releases the native connection.
func (b *Backend) Close() error {
	switch b.kind {
	case KindX11:
		return b.x11.Close()
	case KindWayland:
		return b.wayland.Close()
	case KindWindows:
		return b.windows.Close()
	default:
		return b.invalid()
	}
}
