// Package sash brokers native window-system events to an application.
//
// An application is launched with a Handler on one goroutine, which then
// becomes the loop goroutine: every Handler callback runs there, with a
// Platform giving access to windows, monitors and input devices. Other
// goroutines schedule work onto the loop through loop handles.
package sash

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/1broseidon/sash/internal/idgen"
	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/internal/platform"
	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

// backend is what the application needs from a platform backend.
type backend interface {
	Kind() platform.Kind
	Monitors() ([]wsys.Monitor, error)
	NewWindow(spec wsys.WindowSpec) error
	CloseWindow(id wsys.WindowID) error
	SetMenu(id wsys.WindowID, tree *menu.Tree) error
	InputDevices() *input.Registry
	Run() error
	Stop()
	Close() error
}

var _ backend = (*platform.Backend)(nil)

// connect is replaced in tests.
var connect = func(ctx context.Context, cfg platform.Config, loop *runloop.Loop, events wsys.Events) (backend, error) {
	return platform.Connect(ctx, cfg, loop, events)
}

var (
	launching atomic.Bool
	current   atomic.Pointer[application]
)

// application is the state of one launch. Everything but loop is owned by
// the loop goroutine.
type application struct {
	loop        *runloop.Loop
	backend     backend
	handler     Handler
	handlerType reflect.Type
	defaults    WindowDescription
	windows     map[WindowID]struct{}
}

func (a *application) platform() *Platform {
	return &Platform{app: a}
}

// createWindow asks the backend for a window and reports failures to the
// handler.
func (a *application) createWindow(id WindowID, desc WindowDescription) {
	if err := a.backend.NewWindow(desc.spec(id, a.defaults)); err != nil {
		a.WindowFailed(id, err)
		return
	}
	a.windows[id] = struct{}{}
}

// call runs f on the loop goroutine and waits for it. It must not be used
// from the loop goroutine.
func (a *application) call(f func(p *Platform) error) error {
	done := make(chan error, 1)
	if err := a.loop.Post(func() { done <- f(a.platform()) }); err != nil {
		return ErrLoopStopped
	}
	select {
	case err := <-done:
		return err
	case <-a.loop.Done():
		select {
		case err := <-done:
			return err
		default:
			return ErrLoopStopped
		}
	}
}

// The methods below implement wsys.Events.

func (a *application) SurfaceAvailable(id wsys.WindowID) {
	a.handler.SurfaceAvailable(a.platform(), id)
}

func (a *application) Paint(id wsys.WindowID, invalid wsys.Region) {
	a.handler.Paint(a.platform(), id, invalid)
}

func (a *application) CloseRequested(id wsys.WindowID) {
	p := a.platform()
	if h, ok := a.handler.(CloseHandler); ok {
		h.CloseRequested(p, id)
		return
	}
	if err := p.CloseWindow(id); err != nil {
		logging.Warn("failed to close window", "window", id, "err", err)
	}
}

func (a *application) MenuCommand(id wsys.WindowID, cmd menu.Command) {
	if h, ok := a.handler.(MenuHandler); ok {
		h.MenuItemSelected(a.platform(), id, cmd)
		return
	}
	logging.Debug("menu command without a menu handler", "window", id, "command", cmd.String())
}

func (a *application) Pointer(id wsys.WindowID, ev wsys.PointerEvent) {
	if h, ok := a.handler.(PointerHandler); ok {
		h.PointerEvent(a.platform(), id, ev)
	}
}

func (a *application) WindowFailed(id wsys.WindowID, err error) {
	delete(a.windows, id)
	if h, ok := a.handler.(WindowFailureHandler); ok {
		h.CreatingWindowFailed(a.platform(), id, err)
		return
	}
	logging.Error("creating window failed", "window", id, "err", err)
}

// Option configures a Builder.
type Option func(*Builder)

// WithBackend forces a backend: "x11", "wayland", "windows" or "auto".
func WithBackend(name string) Option {
	return func(b *Builder) { b.backendName = name }
}

// WithDisplay overrides $DISPLAY for the X11 backend.
func WithDisplay(display string) Option {
	return func(b *Builder) { b.cfg.Display = display }
}

// WithWaylandDisplay overrides $WAYLAND_DISPLAY.
func WithWaylandDisplay(display string) Option {
	return func(b *Builder) { b.cfg.WaylandDisplay = display }
}

// WithMonitorTimeout bounds how long a Wayland monitor query may take.
func WithMonitorTimeout(d time.Duration) Option {
	return func(b *Builder) { b.cfg.MonitorTimeout = d }
}

// WithInputDevices turns XInput device tracking on or off.
func WithInputDevices(enabled bool) Option {
	return func(b *Builder) { b.cfg.InputDevices = enabled }
}

// WithRequireRandR makes monitor queries fail instead of falling back to
// Xinerama.
func WithRequireRandR(required bool) Option {
	return func(b *Builder) { b.cfg.RequireRandR = required }
}

// WithAppID sets the application id reported to the window system.
func WithAppID(id string) Option {
	return func(b *Builder) { b.cfg.AppID = id }
}

// WithWindowDefaults sets the description that zero fields fall back to.
func WithWindowDefaults(desc WindowDescription) Option {
	return func(b *Builder) { b.defaults = desc }
}

// WithContext bounds backend connection with ctx.
func WithContext(ctx context.Context) Option {
	return func(b *Builder) { b.ctx = ctx }
}

type pendingWindow struct {
	id   WindowID
	desc WindowDescription
}

// Builder collects settings and initial windows before launch.
type Builder struct {
	ctx         context.Context
	cfg         platform.Config
	backendName string
	defaults    WindowDescription
	windows     []pendingWindow
}

// NewBuilder returns a builder with default settings.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		ctx: context.Background(),
		cfg: platform.Config{
			MonitorTimeout: 2 * time.Second,
			InputDevices:   true,
			AppID:          "sash",
		},
		defaults: DefaultWindowDescription(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewWindow queues a window to be created once the loop starts. The id is
// valid immediately.
func (b *Builder) NewWindow(desc WindowDescription) WindowID {
	id := WindowID(idgen.Process().NextNonZero())
	b.windows = append(b.windows, pendingWindow{id: id, desc: desc})
	return id
}

// Launch connects a backend and runs the loop with h until it stops.
func (b *Builder) Launch(h Handler) error {
	return b.launch(h, nil)
}

// LaunchThen is Launch with a callback run on the loop goroutine before
// any event is delivered. It panics if h.Self() is not an H.
func LaunchThen[H Handler](b *Builder, h H, onInit func(H, *Platform)) error {
	self, ok := h.Self().(H)
	if !ok {
		panic(&HandlerTypeMismatchError{Want: reflect.TypeFor[H](), Launched: reflect.TypeOf(h.Self())})
	}
	return b.launch(h, func(p *Platform) {
		if onInit != nil {
			onInit(self, p)
		}
	})
}

func (b *Builder) launch(h Handler, onInit func(*Platform)) error {
	if h == nil {
		return errors.New("sash: launch needs a handler")
	}
	self := h.Self()
	if self == nil {
		return errors.New("sash: handler Self() returned nil")
	}
	kind, err := platform.ParseKind(b.backendName)
	if err != nil {
		return fmt.Errorf("sash: %w", err)
	}
	cfg := b.cfg
	cfg.Backend = kind

	if !launching.CompareAndSwap(false, true) {
		return ErrAlreadyLaunched
	}
	defer launching.Store(false)

	app := &application{
		loop:        runloop.New(),
		handler:     h,
		handlerType: reflect.TypeOf(self),
		defaults:    b.defaults,
		windows:     make(map[WindowID]struct{}),
	}
	be, err := connect(b.ctx, cfg, app.loop, app)
	if err != nil {
		return err
	}
	app.backend = be
	defer func() {
		if err := be.Close(); err != nil {
			logging.Warn("closing backend failed", "err", err)
		}
	}()

	pending := b.windows
	b.windows = nil
	if err := app.loop.Post(func() {
		for _, w := range pending {
			app.createWindow(w.id, w.desc)
		}
		if onInit != nil {
			onInit(app.platform())
		}
	}); err != nil {
		return err
	}

	current.Store(app)
	defer current.Store(nil)

	logging.Info("application launched", "handler", app.handlerType.String(), "windows", len(pending))
	return be.Run()
}

// Monitors returns the monitors of the running application's display. It
// fails with ErrNoApplication when nothing is launched. It must not be
// called from the loop goroutine; use Platform.Monitors there.
func Monitors() ([]Monitor, error) {
	app := current.Load()
	if app == nil {
		return nil, ErrNoApplication
	}
	var monitors []Monitor
	err := app.call(func(p *Platform) error {
		var err error
		monitors, err = p.Monitors()
		return err
	})
	return monitors, err
}

// InputDevices returns the running application's XInput devices, which is
// empty on other backends. It fails with ErrNoApplication when nothing is
// launched. It must not be called from the loop goroutine.
func InputDevices() ([]InputDevice, error) {
	app := current.Load()
	if app == nil {
		return nil, ErrNoApplication
	}
	var devices []InputDevice
	err := app.call(func(p *Platform) error {
		devices = p.InputDevices()
		return nil
	})
	return devices, err
}

// BackendName returns the name of the running application's backend, such
// as "x11" or "wayland".
func BackendName() (string, error) {
	app := current.Load()
	if app == nil {
		return "", ErrNoApplication
	}
	return app.backend.Kind().String(), nil
}

// Running reports whether an application is launched in this process.
func Running() bool {
	return current.Load() != nil
}
