package x11

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/internal/x11/xinput"
)

// Config selects the X display and optional features.
type Config struct {
	// Display overrides $DISPLAY.
	Display string
	// InputDevices enables XInput device tracking and pointer events.
	InputDevices bool
	// RequireRandR disables the Xinerama fallback for monitors.
	RequireRandR bool
}

// Backend is the X11 window-system backend. All methods must be called on
// the loop goroutine.
type Backend struct {
	cfg    Config
	conn   *Connection
	loop   *runloop.Loop
	events wsys.Events

	wmDelete xproto.Atom
	wake     *xwindow.Window

	input   *xinput.Conn
	devices *input.Registry

	windows map[wsys.WindowID]*window
	byXID   map[xproto.Window]wsys.WindowID

	// queued is filled by xevent callbacks and drained on the loop
	// goroutine after each event.
	queued []func()
}

// Connect opens the display and, when enabled, the XInput side connection.
func Connect(cfg Config, loop *runloop.Loop, events wsys.Events) (*Backend, error) {
	conn, err := NewConnection(cfg.Display)
	if err != nil {
		return nil, &wsys.BackendConnectError{Backend: "x11", Err: err}
	}

	b := &Backend{
		cfg:     cfg,
		conn:    conn,
		loop:    loop,
		events:  events,
		windows: make(map[wsys.WindowID]*window),
		byXID:   make(map[xproto.Window]wsys.WindowID),
	}

	b.wmDelete, err = xprop.Atm(conn.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		conn.Close()
		return nil, &wsys.BackendBindError{Backend: "x11", Global: "WM_DELETE_WINDOW", Err: err}
	}
	// An unmapped window of our own, so events sent to it with an empty
	// mask come back to this connection.
	if b.wake, err = xwindow.Create(conn.XUtil, conn.Root); err != nil {
		conn.Close()
		return nil, &wsys.BackendConnectError{Backend: "x11", Err: fmt.Errorf("create wake window: %w", err)}
	}
	xevent.ErrorHandlerSet(conn.XUtil, func(err xgb.Error) {
		logging.Warn("x11 protocol error", "err", err)
	})

	if cfg.InputDevices {
		if err := b.initInput(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	logging.Info("connected to X server", "display", cfg.Display, "root", conn.Root, "xinput", b.input != nil)
	return b, nil
}

func (b *Backend) initInput() error {
	xc, err := xinput.Dial(b.cfg.Display)
	switch {
	case errors.Is(err, xinput.ErrNotPresent):
		return &wsys.BackendBindError{Backend: "x11", Global: xinput.ExtensionName}
	case err != nil:
		return &wsys.BackendConnectError{Backend: "x11 input", Err: err}
	}

	reg, err := input.Initialize(xc, uint32(b.conn.Root))
	if err != nil {
		xc.Close()
		return err
	}
	b.input = xc
	b.devices = reg
	logging.Info("xinput ready", "version", reg.Version().String(), "devices", reg.Len())
	return nil
}

// Monitors returns the current monitor layout.
func (b *Backend) Monitors() ([]wsys.Monitor, error) {
	return b.conn.Monitors(b.cfg.RequireRandR)
}

// InputDevices returns the device registry, or nil when device tracking is
// disabled.
func (b *Backend) InputDevices() *input.Registry {
	return b.devices
}

// pingQuitTimeout bounds how long Run waits for the xevent goroutine to
// notice it should quit.
const pingQuitTimeout = time.Second

// Run feeds X events and pointer events into the loop until it stops. The
// xevent goroutine has exited by the time it returns.
func (b *Backend) Run() error {
	before, after, quit := xevent.MainPing(b.conn.XUtil)
	quitted := make(chan struct{})
	go func() {
		<-quit
		close(quitted)
		b.loop.Stop()
	}()

	if b.input != nil {
		go b.forwardInput()
	}
	err := b.loop.Run(&pingSource{before: before, after: after, backend: b})

	xevent.Quit(b.conn.XUtil)
	b.wakeEventLoop()
	if !drainPings(before, after, quitted, pingQuitTimeout) {
		logging.Warn("x11 event loop did not quit in time")
	}
	b.queued = nil
	return err
}

// wakeEventLoop sends an event to the backend's own wake window, so an
// xevent goroutine blocked waiting for events sees that it should quit.
func (b *Backend) wakeEventLoop() {
	if b.wake == nil {
		return
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: b.wake.Id,
		Type:   b.wmDelete,
		Data:   xproto.ClientMessageDataUnionData32New(make([]uint32, 5)),
	}
	xproto.SendEvent(b.conn.XUtil.Conn(), false, b.wake.Id, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// drainPings answers xevent's before and after pings until quitted closes,
// so its goroutine is never left blocked on an unread channel. It reports
// false if that takes longer than timeout.
func drainPings(before, after <-chan struct{}, quitted <-chan struct{}, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case <-before:
			select {
			case <-after:
			case <-deadline.C:
				return false
			}
		case <-quitted:
			return true
		case <-deadline.C:
			return false
		}
	}
}

// forwardInput moves XGE events from the input connection onto the loop.
func (b *Backend) forwardInput() {
	events := b.input.Events()
	for {
		select {
		case ev := <-events:
			if err := b.loop.Post(func() { b.deviceEvent(ev) }); err != nil {
				return
			}
		case <-b.loop.Done():
			return
		}
	}
}

func (b *Backend) deviceEvent(ge xinput.GenericEvent) {
	if ge.Extension != b.input.Opcode() {
		return
	}
	ev, err := xinput.DecodeDeviceEvent(ge)
	if err != nil {
		logging.Debug("ignoring xinput event", "type", ge.EvType, "err", err)
		return
	}
	id, ok := b.byXID[xproto.Window(ev.Event)]
	if !ok {
		return
	}

	pe := wsys.PointerEvent{X: ev.EventX, Y: ev.EventY, Device: ev.SourceID}
	switch ev.Type {
	case xinput.EventButtonPress:
		pe.Action, pe.Button = wsys.PointerDown, int(ev.Detail)
	case xinput.EventButtonRelease:
		pe.Action, pe.Button = wsys.PointerUp, int(ev.Detail)
	default:
		pe.Action = wsys.PointerMove
	}
	b.events.Pointer(id, pe)
}

func (b *Backend) queue(f func()) {
	b.queued = append(b.queued, f)
}

func (b *Backend) flush() {
	for len(b.queued) > 0 {
		f := b.queued[0]
		b.queued[0] = nil
		b.queued = b.queued[1:]
		f()
	}
}

// Stop ends Run once the current dispatch returns.
func (b *Backend) Stop() {
	b.loop.Stop()
}

// Close destroys remaining windows and disconnects.
func (b *Backend) Close() error {
	for id := range b.windows {
		if err := b.CloseWindow(id); err != nil {
			return fmt.Errorf("close %s: %w", id, err)
		}
	}
	if b.wake != nil {
		b.wake.Destroy()
	}
	if b.input != nil {
		if dropped := b.input.Dropped(); dropped > 0 {
			logging.Warn("pointer events were dropped", "count", dropped)
		}
		b.input.Close()
	}
	b.conn.Close()
	return nil
}

// pingSource folds xevent.MainPing into the run loop. Ready fires before
// xgbutil dispatches an event; Dispatch blocks until it is done and then
// runs what the callbacks queued.
type pingSource struct {
	before  chan struct{}
	after   chan struct{}
	backend *Backend
}

func (s *pingSource) Ready() <-chan struct{} {
	return s.before
}

func (s *pingSource) Dispatch() {
	<-s.after
	s.backend.flush()
}
