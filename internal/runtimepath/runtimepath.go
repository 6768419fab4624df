package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultWaylandDisplay is the socket name compositors use when
// WAYLAND_DISPLAY is unset.
const DefaultWaylandDisplay = "wayland-0"

// Dir returns the runtime directory used for display socket lookups.
// Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/sash-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/sash-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// WaylandSocket resolves the compositor socket for display the way
// libwayland does: absolute paths are used as is, names are joined to the
// runtime directory, and an empty name falls back to WAYLAND_DISPLAY and
// then to wayland-0.
func WaylandSocket(display string) (string, error) {
	if display == "" {
		display = os.Getenv("WAYLAND_DISPLAY")
	}
	if display == "" {
		display = DefaultWaylandDisplay
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, display), nil
}
