//go:build !windows

package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/win32"
	"github.com/1broseidon/sash/internal/wsys"
)

func TestConnectKind_WindowsUnavailable(t *testing.T) {
	_, err := ConnectKind(context.Background(), KindWindows, Config{}, runloop.New(), nil)
	var cerr *wsys.BackendConnectError
	if !errors.As(err, &cerr) {
		t.Fatalf("ConnectKind(windows) error = %v, want *BackendConnectError", err)
	}
	if !errors.Is(err, win32.ErrUnsupported) {
		t.Fatalf("ConnectKind(windows) error = %v, want win32.ErrUnsupported", err)
	}
}

func TestConnectKind_WaylandMissingSocket(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	_, err := ConnectKind(context.Background(), KindWayland, Config{WaylandDisplay: "wayland-missing"}, runloop.New(), nil)
	var cerr *wsys.BackendConnectError
	if !errors.As(err, &cerr) {
		t.Fatalf("ConnectKind(wayland) error = %v, want *BackendConnectError", err)
	}
	if cerr.Backend != "wayland" {
		t.Fatalf("Backend = %q, want wayland", cerr.Backend)
	}
}
