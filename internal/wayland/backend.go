// Package wayland implements the window-system backend for Wayland
// compositors on top of go-wayland.
//
// A pump goroutine only reads messages off the socket and posts them to the
// run loop. Proxy lookup and event handlers run on the loop goroutine, which
// is the only one touching go-wayland's object table.
package wayland

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	xdg_shell "github.com/rajveermalviya/go-wayland/wayland/stable/xdg-shell"

	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/runtimepath"
	"github.com/1broseidon/sash/internal/wsys"
)

// Highest interface versions the backend understands.
const (
	compositorVersion = 4
	wmBaseVersion     = 2
	outputVersion     = 4
	seatVersion       = 5
)

// Config selects the compositor socket and monitor query limits.
type Config struct {
	// Display overrides $WAYLAND_DISPLAY. It may be a socket name or path.
	Display string
	// MonitorTimeout bounds how long Monitors waits for the compositor.
	MonitorTimeout time.Duration
	// AppID is the xdg_toplevel app id of every window.
	AppID string
}

// Backend is the Wayland window-system backend. All methods must be called
// on the loop goroutine.
type Backend struct {
	cfg    Config
	loop   *runloop.Loop
	events wsys.Events

	display    *client.Display
	registry   *client.Registry
	compositor *client.Compositor
	wmBase     *xdg_shell.WmBase
	seat       *client.Seat
	seatVer    uint32
	pointer    *client.Pointer

	outputs    []*output
	monitorIDs wsys.MonitorIDs
	windows    map[wsys.WindowID]*window
	bySurface map[*client.Surface]wsys.WindowID
	hover     wsys.WindowID
	lastX     float64
	lastY     float64

	pumpErr error
	closed  bool
}

// Connect reaches the compositor, binds the globals the backend needs and
// starts the pump goroutine.
func Connect(cfg Config, loop *runloop.Loop, events wsys.Events) (*Backend, error) {
	socket, err := runtimepath.WaylandSocket(cfg.Display)
	if err != nil {
		return nil, &wsys.BackendConnectError{Backend: "wayland", Err: err}
	}
	if _, err := os.Stat(socket); err != nil {
		return nil, &wsys.BackendConnectError{Backend: "wayland", Err: fmt.Errorf("compositor socket: %w", err)}
	}
	display, err := client.Connect(socket)
	if err != nil {
		return nil, &wsys.BackendConnectError{Backend: "wayland", Err: err}
	}

	b := &Backend{
		cfg:       cfg,
		loop:      loop,
		events:    events,
		display:   display,
		windows:   make(map[wsys.WindowID]*window),
		bySurface: make(map[*client.Surface]wsys.WindowID),
	}
	display.SetErrorHandler(func(e client.DisplayErrorEvent) {
		logging.Error("wayland protocol error", "code", e.Code, "message", e.Message)
	})

	if err := b.bind(); err != nil {
		b.disconnect()
		return nil, err
	}

	go b.pump()
	logging.Info("connected to wayland compositor", "socket", socket, "outputs", len(b.outputs), "seat", b.seat != nil)
	return b, nil
}

func (b *Backend) bind() error {
	registry, err := b.display.GetRegistry()
	if err != nil {
		return &wsys.BackendConnectError{Backend: "wayland", Err: fmt.Errorf("get registry: %w", err)}
	}
	b.registry = registry
	registry.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		b.global(e.Name, e.Interface, e.Version)
	})
	registry.SetGlobalRemoveHandler(func(e client.RegistryGlobalRemoveEvent) {
		b.globalRemoved(e.Name)
	})

	// The first round trip lists the globals. The second delivers the
	// initial state of the ones bound in between.
	for i := 0; i < 2; i++ {
		if err := b.roundtrip(); err != nil {
			return &wsys.BackendConnectError{Backend: "wayland", Err: err}
		}
	}

	if b.compositor == nil {
		return &wsys.BackendBindError{Backend: "wayland", Global: "wl_compositor"}
	}
	if b.wmBase == nil {
		return &wsys.BackendBindError{Backend: "wayland", Global: "xdg_wm_base"}
	}
	return nil
}

// roundtrip waits for the compositor to process every request sent so far.
// It reads the socket on the calling goroutine, so it is only used before
// the pump starts.
func (b *Backend) roundtrip() error {
	cb, err := b.display.Sync()
	if err != nil {
		return fmt.Errorf("wl_display.sync: %w", err)
	}
	defer cb.Destroy()

	done := false
	cb.SetDoneHandler(func(client.CallbackDoneEvent) { done = true })
	ctx := b.display.Context()
	for !done {
		sender, opcode, fd, data, err := ctx.ReadMsg()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		b.dispatch(sender, opcode, fd, data)
	}
	return nil
}

// dispatch hands one event to the proxy it is addressed to. Events for
// objects already destroyed on this side are dropped.
func (b *Backend) dispatch(sender, opcode uint32, fd int, data []byte) {
	proxy := b.display.Context().GetProxy(sender)
	if proxy == nil {
		logging.Debug("wayland event for unknown object", "object", sender, "opcode", opcode)
		return
	}
	d, ok := proxy.(client.Dispatcher)
	if !ok {
		logging.Warn("wayland object cannot dispatch events", "object", sender)
		return
	}
	d.Dispatch(opcode, fd, data)
}

func (b *Backend) global(name uint32, iface string, version uint32) {
	ctx := b.display.Context()
	var err error
	switch iface {
	case "wl_compositor":
		c := client.NewCompositor(ctx)
		if err = b.registry.Bind(name, iface, min(version, compositorVersion), c); err == nil {
			b.compositor = c
		}
	case "xdg_wm_base":
		wm := xdg_shell.NewWmBase(ctx)
		if err = b.registry.Bind(name, iface, min(version, wmBaseVersion), wm); err == nil {
			wm.SetPingHandler(func(e xdg_shell.WmBasePingEvent) {
				b.pong(wm, e.Serial)
			})
			b.wmBase = wm
		}
	case "wl_output":
		out := client.NewOutput(ctx)
		if err = b.registry.Bind(name, iface, min(version, outputVersion), out); err == nil {
			b.trackOutput(name, out)
		}
	case "wl_seat":
		if b.seat != nil {
			return
		}
		seat := client.NewSeat(ctx)
		if err = b.registry.Bind(name, iface, min(version, seatVersion), seat); err == nil {
			b.seat, b.seatVer = seat, min(version, seatVersion)
			seat.SetCapabilitiesHandler(func(e client.SeatCapabilitiesEvent) {
				b.seatCapabilities(e.Capabilities)
			})
		}
	default:
		return
	}
	if err != nil {
		logging.Warn("failed to bind wayland global", "interface", iface, "name", name, "err", err)
		return
	}
	logging.Debug("bound wayland global", "interface", iface, "name", name, "version", version)
}

func (b *Backend) pong(wm *xdg_shell.WmBase, serial uint32) {
	if err := wm.Pong(serial); err != nil {
		logging.Warn("xdg_wm_base pong failed", "err", err)
	}
}

func (b *Backend) trackOutput(name uint32, out *client.Output) {
	st := newOutput(name)
	b.outputs = append(b.outputs, st)

	out.SetGeometryHandler(func(e client.OutputGeometryEvent) {
		st.geometry(e.X, e.Y, e.Make, e.Model, e.Transform)
	})
	out.SetModeHandler(func(e client.OutputModeEvent) {
		st.mode(e.Flags, e.Width, e.Height)
	})
	out.SetScaleHandler(func(e client.OutputScaleEvent) {
		st.setScale(e.Factor)
	})
	out.SetNameHandler(func(e client.OutputNameEvent) {
		st.name = e.Name
	})
	out.SetDescriptionHandler(func(e client.OutputDescriptionEvent) {
		st.description = e.Description
	})
	out.SetDoneHandler(func(client.OutputDoneEvent) {
		st.done = true
	})
}

func (b *Backend) globalRemoved(name uint32) {
	for i, o := range b.outputs {
		if o.global == name {
			b.outputs = append(b.outputs[:i], b.outputs[i+1:]...)
			b.monitorIDs.Forget(o.key())
			logging.Debug("wayland output removed", "name", name)
			return
		}
	}
}

// post hands f to the loop. Posts after the loop stopped are dropped, as
// the loop would drop them anyway.
func (b *Backend) post(f func()) {
	_ = b.loop.Post(f)
}

// pump reads messages until the connection fails or closes. Each one is
// dispatched on the loop goroutine.
func (b *Backend) pump() {
	ctx := b.display.Context()
	for {
		sender, opcode, fd, data, err := ctx.ReadMsg()
		if err != nil {
			b.post(func() {
				if b.closed {
					return
				}
				b.pumpErr = fmt.Errorf("wayland connection lost: %w", err)
				b.loop.Stop()
			})
			return
		}
		b.post(func() { b.dispatch(sender, opcode, fd, data) })
	}
}

// Monitors issues a wl_display.sync and pumps the loop until the compositor
// answers, so every output event sent before it has been applied.
func (b *Backend) Monitors() ([]wsys.Monitor, error) {
	cb, err := b.display.Sync()
	if err != nil {
		return nil, fmt.Errorf("wl_display.sync: %w", err)
	}
	defer cb.Destroy()

	done := false
	cb.SetDoneHandler(func(client.CallbackDoneEvent) { done = true })

	err = b.loop.PumpUntil(func() bool { return done }, b.cfg.MonitorTimeout)
	switch {
	case errors.Is(err, runloop.ErrTimeout):
		return nil, wsys.ErrMonitorTimeout
	case err != nil:
		return nil, err
	}
	return snapshot(b.outputs, &b.monitorIDs), nil
}

// Run dispatches the loop until it stops. It returns the error that broke
// the connection, if any.
func (b *Backend) Run() error {
	if err := b.loop.Run(nil); err != nil {
		return err
	}
	return b.pumpErr
}

// Stop ends Run once the current dispatch returns.
func (b *Backend) Stop() {
	b.loop.Stop()
}

// Close destroys remaining windows and disconnects.
func (b *Backend) Close() error {
	b.closed = true
	for id := range b.windows {
		if err := b.CloseWindow(id); err != nil {
			logging.Warn("failed to destroy window", "window", id, "err", err)
		}
	}
	b.disconnect()
	return nil
}

func (b *Backend) disconnect() {
	if err := b.display.Context().Close(); err != nil {
		logging.Debug("closing wayland connection", "err", err)
	}
}
