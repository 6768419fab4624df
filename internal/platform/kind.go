package platform

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/1broseidon/sash/internal/runtimepath"
	"github.com/1broseidon/sash/internal/wsys"
)

// Kind names a backend variant.
type Kind uint8

const (
	KindAuto Kind = iota
	KindX11
	KindWayland
	KindWindows
)

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindX11:
		return "x11"
	case KindWayland:
		return "wayland"
	case KindWindows:
		return "windows"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind parses a backend name as written in config files.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KindAuto, nil
	case "x11":
		return KindX11, nil
	case "wayland":
		return KindWayland, nil
	case "windows", "win32":
		return KindWindows, nil
	default:
		return KindAuto, fmt.Errorf("unknown backend %q (expected auto, x11, wayland or windows)", s)
	}
}

// ErrNoDisplay is wrapped by Select when no display is configured and
// neither display variable is set.
var ErrNoDisplay = errors.New("neither WAYLAND_DISPLAY nor DISPLAY is set")

// Env is the part of the host environment Select looks at.
type Env struct {
	GOOS   string
	Getenv func(string) string
}

// HostEnv describes the running process.
func HostEnv() Env {
	return Env{GOOS: runtime.GOOS, Getenv: os.Getenv}
}

// Select picks the backend variant. An explicit config value wins, then
// the host: Windows always uses Win32. Elsewhere a configured Wayland
// display selects Wayland and a configured X display selects X11, and
// failing both WAYLAND_DISPLAY and then DISPLAY decide.
func Select(cfg Config, env Env) (Kind, error) {
	if cfg.Backend != KindAuto {
		return cfg.Backend, nil
	}
	if env.GOOS == "windows" {
		return KindWindows, nil
	}
	getenv := env.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	switch {
	case cfg.WaylandDisplay != "":
		if _, err := runtimepath.WaylandSocket(cfg.WaylandDisplay); err != nil {
			return KindAuto, &wsys.BackendConnectError{Backend: "wayland", Err: err}
		}
		return KindWayland, nil
	case cfg.Display != "":
		return KindX11, nil
	case getenv("WAYLAND_DISPLAY") != "":
		return KindWayland, nil
	case getenv("DISPLAY") != "":
		return KindX11, nil
	}
	return KindAuto, &wsys.BackendConnectError{Backend: "auto", Err: ErrNoDisplay}
}
