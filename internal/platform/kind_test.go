package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/wsys"
)

func envOf(goos string, vars map[string]string) Env {
	return Env{GOOS: goos, Getenv: func(k string) string { return vars[k] }}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		env  Env
		want Kind
	}{
		{
			name: "explicit config wins over environment",
			cfg:  Config{Backend: KindX11},
			env:  envOf("linux", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}),
			want: KindX11,
		},
		{
			name: "windows host",
			env:  envOf("windows", map[string]string{"DISPLAY": ":0"}),
			want: KindWindows,
		},
		{
			name: "wayland preferred when both are set",
			env:  envOf("linux", map[string]string{"WAYLAND_DISPLAY": "wayland-1", "DISPLAY": ":0"}),
			want: KindWayland,
		},
		{
			name: "configured wayland display without environment",
			cfg:  Config{WaylandDisplay: "/run/user/1000/wayland-1"},
			env:  envOf("linux", nil),
			want: KindWayland,
		},
		{
			name: "configured x display without environment",
			cfg:  Config{Display: ":0"},
			env:  envOf("linux", nil),
			want: KindX11,
		},
		{
			name: "configured x display wins over WAYLAND_DISPLAY",
			cfg:  Config{Display: ":1"},
			env:  envOf("linux", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}),
			want: KindX11,
		},
		{
			name: "configured wayland display wins over configured x display",
			cfg:  Config{WaylandDisplay: "/tmp/wayland-test", Display: ":0"},
			env:  envOf("linux", map[string]string{"DISPLAY": ":0"}),
			want: KindWayland,
		},
		{
			name: "x11 when only DISPLAY is set",
			env:  envOf("freebsd", map[string]string{"DISPLAY": ":1"}),
			want: KindX11,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.cfg, tt.env)
			if err != nil {
				t.Fatalf("Select() error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Select() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSelect_ConfiguredWaylandNameUsesRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	got, err := Select(Config{WaylandDisplay: "wayland-1"}, envOf("linux", nil))
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got != KindWayland {
		t.Fatalf("Select() = %s, want wayland", got)
	}
}

func TestSelect_NoDisplayIsConnectError(t *testing.T) {
	_, err := Select(Config{}, envOf("linux", nil))
	var cerr *wsys.BackendConnectError
	if !errors.As(err, &cerr) {
		t.Fatalf("Select() error = %v, want *BackendConnectError", err)
	}
	if !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("Select() error = %v, want ErrNoDisplay", err)
	}

	if _, err := Select(Config{}, Env{GOOS: "linux"}); !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("Select() with nil Getenv = %v, want ErrNoDisplay", err)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":        KindAuto,
		"auto":    KindAuto,
		" X11 ":   KindX11,
		"wayland": KindWayland,
		"windows": KindWindows,
		"win32":   KindWindows,
	} {
		got, err := ParseKind(in)
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseKind("quartz"); err == nil {
		t.Fatal("ParseKind(quartz) should fail")
	}
	if got := Kind(9).String(); got != "Kind(9)" {
		t.Fatalf("Kind(9).String() = %q", got)
	}
}

func TestBackend_WithoutVariantFails(t *testing.T) {
	b := &Backend{kind: KindAuto}
	if _, err := b.Monitors(); err == nil {
		t.Fatal("Monitors() should fail without a variant")
	}
	if err := b.NewWindow(wsys.WindowSpec{ID: 1}); err == nil {
		t.Fatal("NewWindow() should fail without a variant")
	}
	if err := b.Run(); err == nil {
		t.Fatal("Run() should fail without a variant")
	}
	if b.InputDevices() != nil || b.Menu(1) != nil {
		t.Fatal("queries on a backend without variant should be empty")
	}
	b.Stop()
}

func TestConnectKind_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ConnectKind(ctx, KindX11, Config{}, runloop.New(), nil)
	var cerr *wsys.BackendConnectError
	if !errors.As(err, &cerr) || !errors.Is(err, context.Canceled) {
		t.Fatalf("ConnectKind() error = %v, want BackendConnectError wrapping context.Canceled", err)
	}
}

func TestConnectKind_UnknownKind(t *testing.T) {
	_, err := ConnectKind(context.Background(), KindAuto, Config{}, runloop.New(), nil)
	var cerr *wsys.BackendConnectError
	if !errors.As(err, &cerr) {
		t.Fatalf("ConnectKind(auto) error = %v, want *BackendConnectError", err)
	}
}
