package sash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/platform"
	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

type fakeBackend struct {
	loop   *runloop.Loop
	events wsys.Events
	cfg    platform.Config

	monitors []wsys.Monitor
	fail     map[string]error
	specs    []wsys.WindowSpec
	closed   []wsys.WindowID
	menus    map[wsys.WindowID]*menu.Tree
	shutdown bool
}

func (f *fakeBackend) Monitors() ([]wsys.Monitor, error) {
	return f.monitors, nil
}

func (f *fakeBackend) NewWindow(spec wsys.WindowSpec) error {
	if err := f.fail[spec.Title]; err != nil {
		return err
	}
	f.specs = append(f.specs, spec)
	_ = f.loop.Post(func() {
		f.events.SurfaceAvailable(spec.ID)
		f.events.Paint(spec.ID, wsys.RegionOf(wsys.Rect{Width: spec.Width, Height: spec.Height}))
	})
	return nil
}

func (f *fakeBackend) CloseWindow(id wsys.WindowID) error {
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeBackend) SetMenu(id wsys.WindowID, tree *menu.Tree) error {
	if f.menus == nil {
		f.menus = make(map[wsys.WindowID]*menu.Tree)
	}
	f.menus[id] = tree
	return nil
}

func (f *fakeBackend) Kind() platform.Kind           { return platform.KindX11 }
func (f *fakeBackend) InputDevices() *input.Registry { return nil }
func (f *fakeBackend) Run() error                    { return f.loop.Run(nil) }
func (f *fakeBackend) Stop()                         { f.loop.Stop() }
func (f *fakeBackend) Close() error                  { f.shutdown = true; return nil }

// useFakeBackend routes launches in this test to a fake backend.
func useFakeBackend(t *testing.T, fb *fakeBackend) {
	t.Helper()
	orig := connect
	connect = func(_ context.Context, cfg platform.Config, loop *runloop.Loop, events wsys.Events) (backend, error) {
		fb.loop, fb.events, fb.cfg = loop, events, cfg
		return fb, nil
	}
	t.Cleanup(func() { connect = orig })
}

type recordingHandler struct {
	surfaces []WindowID
	paints   []Rect
	menus    []menu.Command
	failures []error
	pointers []PointerEvent
	calls    int
}

func (h *recordingHandler) SurfaceAvailable(p *Platform, win WindowID) {
	h.surfaces = append(h.surfaces, win)
}

func (h *recordingHandler) Paint(p *Platform, win WindowID, invalid Region) {
	h.paints = append(h.paints, invalid.Bounds())
}

func (h *recordingHandler) Self() any { return h }

func (h *recordingHandler) MenuItemSelected(p *Platform, win WindowID, cmd menu.Command) {
	h.menus = append(h.menus, cmd)
}

func (h *recordingHandler) CreatingWindowFailed(p *Platform, win WindowID, err error) {
	h.failures = append(h.failures, err)
}

func (h *recordingHandler) PointerEvent(p *Platform, win WindowID, ev PointerEvent) {
	h.pointers = append(h.pointers, ev)
}

type otherHandler struct{}

func (otherHandler) SurfaceAvailable(*Platform, WindowID) {}
func (otherHandler) Paint(*Platform, WindowID, Region)    {}
func (otherHandler) Self() any                            { return otherHandler{} }

type liarHandler struct{ otherHandler }

func (liarHandler) Self() any { return "not a handler" }

func TestMonitors_WithoutApplication(t *testing.T) {
	_, err := Monitors()
	require.ErrorIs(t, err, ErrNoApplication)
	assert.True(t, IsSetupError(err))

	devices, err := InputDevices()
	assert.Nil(t, devices)
	assert.ErrorIs(t, err, ErrNoApplication)
	assert.False(t, Running())
}

func TestLaunchThen_TypedHandleRunsAgainstLaunchedHandler(t *testing.T) {
	fb := &fakeBackend{}
	useFakeBackend(t, fb)

	h := &recordingHandler{}
	var seen *recordingHandler
	err := LaunchThen(NewBuilder(), h, func(self *recordingHandler, p *Platform) {
		handle := Handle[*recordingHandler](p)
		go func() {
			err := handle.RunOnMain(func(got *recordingHandler, p *Platform) {
				seen = got
				got.calls++
				p.Stop()
			})
			assert.NoError(t, err)
		}()
	})
	require.NoError(t, err)
	assert.Same(t, h, seen)
	assert.Equal(t, 1, h.calls)
	assert.True(t, fb.shutdown)
	assert.False(t, Running())
}

func TestHandle_MismatchPanics(t *testing.T) {
	useFakeBackend(t, &fakeBackend{})

	var recovered any
	err := LaunchThen(NewBuilder(), &recordingHandler{}, func(_ *recordingHandler, p *Platform) {
		defer p.Stop()
		defer func() { recovered = recover() }()
		Handle[otherHandler](p)
	})
	require.NoError(t, err)

	mismatch, ok := recovered.(*HandlerTypeMismatchError)
	require.True(t, ok, "panic value %v", recovered)
	assert.Equal(t, "sash.otherHandler", mismatch.Want.String())
	assert.Equal(t, "*sash.recordingHandler", mismatch.Launched.String())
}

func TestLaunchThen_PanicsWhenSelfIsNotTheHandlerType(t *testing.T) {
	assert.Panics(t, func() {
		_ = LaunchThen(NewBuilder(), liarHandler{}, nil)
	})
}

func TestLaunch_CreatesQueuedWindowsAndDeliversEvents(t *testing.T) {
	fb := &fakeBackend{fail: map[string]error{"broken": errors.New("no visual")}}
	useFakeBackend(t, fb)

	b := NewBuilder(WithWindowDefaults(WindowDescription{Title: "default", Width: 320, Height: 240}))
	first := b.NewWindow(WindowDescription{Title: "first", Width: 100, Height: 50})
	second := b.NewWindow(WindowDescription{})
	broken := b.NewWindow(WindowDescription{Title: "broken"})
	assert.NotEqual(t, first, second)

	h := &recordingHandler{}
	err := LaunchThen(b, h, func(_ *recordingHandler, p *Platform) {
		assert.Equal(t, 2, p.Windows())
		_ = p.RawHandle().RunOnMainRaw(func(_ Handler, p *Platform) { p.Stop() })
	})
	require.NoError(t, err)

	require.Len(t, fb.specs, 2)
	assert.Equal(t, wsys.WindowSpec{ID: first, Title: "first", Width: 100, Height: 50}, fb.specs[0])
	assert.Equal(t, "default", fb.specs[1].Title)
	assert.Equal(t, 320, fb.specs[1].Width)
	assert.Equal(t, []WindowID{first, second}, h.surfaces)
	assert.Equal(t, []Rect{{Width: 100, Height: 50}, {Width: 320, Height: 240}}, h.paints)
	require.Len(t, h.failures, 1)
	assert.EqualError(t, h.failures[0], "no visual")
	assert.NotZero(t, broken)
}

func TestEvents_OptionalHandlersAndDefaultClose(t *testing.T) {
	fb := &fakeBackend{}
	useFakeBackend(t, fb)

	h := &recordingHandler{}
	err := LaunchThen(NewBuilder(), h, func(_ *recordingHandler, p *Platform) {
		id := p.BuildNewWindow(func(d *WindowDescription) { d.Title = "menu" })
		tree := menu.NewBuilder().Finalize()
		require.NoError(t, p.SetWindowMenu(id, tree))

		fb.events.MenuCommand(id, menu.CommandCopy)
		fb.events.Pointer(id, PointerEvent{Action: PointerDown, Button: 1, X: 3, Y: 4})
		fb.events.CloseRequested(id)
		assert.Zero(t, p.Windows())
		assert.Same(t, tree, fb.menus[id])
		p.Stop()
	})
	require.NoError(t, err)

	assert.Equal(t, []menu.Command{menu.CommandCopy}, h.menus)
	assert.Equal(t, []PointerEvent{{Action: PointerDown, Button: 1, X: 3, Y: 4}}, h.pointers)
	require.Len(t, fb.closed, 1)
	assert.True(t, fb.specs[0].Resizable, "BuildNewWindow starts from the defaults")
}

func TestRunOnMainRaw_AfterStop(t *testing.T) {
	useFakeBackend(t, &fakeBackend{})

	var handle RawLoopHandle
	err := LaunchThen(NewBuilder(), &recordingHandler{}, func(_ *recordingHandler, p *Platform) {
		handle = p.RawHandle()
		p.Stop()
	})
	require.NoError(t, err)

	ran := false
	err = handle.RunOnMainRaw(func(Handler, *Platform) { ran = true })
	assert.ErrorIs(t, err, ErrLoopStopped)
	assert.False(t, ran)
}

func TestMonitors_FromAnotherGoroutine(t *testing.T) {
	fb := &fakeBackend{monitors: []wsys.Monitor{{ID: 9, Name: "DP-1", Primary: true, Scale: 1}}}
	useFakeBackend(t, fb)

	got := make(chan []Monitor, 1)
	err := LaunchThen(NewBuilder(), &recordingHandler{}, func(_ *recordingHandler, p *Platform) {
		handle := p.RawHandle()
		go func() {
			mons, err := Monitors()
			assert.NoError(t, err)
			name, err := BackendName()
			assert.NoError(t, err)
			assert.Equal(t, "x11", name)
			got <- mons
			handle.Stop()
		}()
	})
	require.NoError(t, err)

	select {
	case mons := <-got:
		require.Len(t, mons, 1)
		assert.Equal(t, "DP-1", mons[0].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("Monitors did not return")
	}
}

func TestLaunch_OnlyOneApplication(t *testing.T) {
	useFakeBackend(t, &fakeBackend{})

	var nested error
	err := LaunchThen(NewBuilder(), &recordingHandler{}, func(_ *recordingHandler, p *Platform) {
		nested = NewBuilder().Launch(otherHandler{})
		p.Stop()
	})
	require.NoError(t, err)
	assert.ErrorIs(t, nested, ErrAlreadyLaunched)
}

func TestLaunch_Errors(t *testing.T) {
	useFakeBackend(t, &fakeBackend{})

	assert.Error(t, NewBuilder().Launch(nil))
	assert.Error(t, NewBuilder(WithBackend("quartz")).Launch(otherHandler{}))

	connectErr := &BackendConnectError{Backend: "x11", Err: errors.New("no display")}
	connect = func(context.Context, platform.Config, *runloop.Loop, wsys.Events) (backend, error) {
		return nil, connectErr
	}
	err := NewBuilder().Launch(otherHandler{})
	var cerr *BackendConnectError
	require.ErrorAs(t, err, &cerr)
	assert.False(t, Running())
}

func TestBuilder_OptionsReachBackendConfig(t *testing.T) {
	fb := &fakeBackend{}
	useFakeBackend(t, fb)

	b := NewBuilder(
		WithBackend("wayland"),
		WithWaylandDisplay("wayland-3"),
		WithMonitorTimeout(time.Second),
		WithInputDevices(false),
		WithAppID("demo"),
	)
	err := LaunchThen(b, &recordingHandler{}, func(_ *recordingHandler, p *Platform) { p.Stop() })
	require.NoError(t, err)

	assert.Equal(t, platform.KindWayland, fb.cfg.Backend)
	assert.Equal(t, "wayland-3", fb.cfg.WaylandDisplay)
	assert.Equal(t, time.Second, fb.cfg.MonitorTimeout)
	assert.False(t, fb.cfg.InputDevices)
	assert.Equal(t, "demo", fb.cfg.AppID)
}
