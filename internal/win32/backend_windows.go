//go:build windows

package win32

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

// backends maps HWNDs to the backend that created them, for the window
// procedure.
var backends sync.Map

var resources struct {
	once     sync.Once
	err      error
	instance windows.Handle
	class    uint16
}

type window struct {
	id        wsys.WindowID
	hwnd      windows.HWND
	width     int
	height    int
	available bool
	menu      *menu.Tree
	hmenu     windows.Handle
	commands  map[uint16]menu.Command
}

// Backend is the Win32 backend. It must be created, run and closed on the
// same goroutine, which it locks to its OS thread.
type Backend struct {
	cfg    Config
	loop   *runloop.Loop
	events wsys.Events
	thread uint32

	windows    map[wsys.WindowID]*window
	byHWND     map[windows.HWND]wsys.WindowID
	monitorIDs wsys.MonitorIDs
	runErr     error
}

// Connect locks the calling goroutine to its thread and registers the
// window class.
func Connect(cfg Config, loop *runloop.Loop, events wsys.Events) (*Backend, error) {
	if cfg.ClassName == "" {
		cfg.ClassName = defaultClassName
	}
	runtime.LockOSThread()

	resources.once.Do(func() { resources.err = initResources(cfg.ClassName) })
	if resources.err != nil {
		runtime.UnlockOSThread()
		return nil, &wsys.BackendConnectError{Backend: "windows", Err: resources.err}
	}

	b := &Backend{
		cfg:     cfg,
		loop:    loop,
		events:  events,
		thread:  windows.GetCurrentThreadId(),
		windows: make(map[wsys.WindowID]*window),
		byHWND:  make(map[windows.HWND]wsys.WindowID),
	}
	logging.Info("win32 backend ready", "class", cfg.ClassName, "thread", b.thread)
	return b, nil
}

func initResources(className string) error {
	setProcessDPIAware()

	var instance windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &instance); err != nil {
		return fmt.Errorf("GetModuleHandleEx: %w", err)
	}
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return err
	}
	wc := wndClassEx{
		Style:     csHRedraw | csVRedraw,
		WndProc:   windows.NewCallback(windowProc),
		Instance:  instance,
		Cursor:    loadCursor(idcArrow),
		ClassName: name,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))
	class, err := registerClassEx(&wc)
	if err != nil {
		return fmt.Errorf("RegisterClassEx: %w", err)
	}
	resources.instance = instance
	resources.class = class
	return nil
}

// windowStyle derives the window styles for spec.
func windowStyle(spec wsys.WindowSpec) (style, exStyle uint32) {
	style = wsOverlappedWindow
	if !spec.Resizable {
		style &^= wsThickFrame | wsMaximizeBox
	}
	if !spec.Decorated {
		style = wsPopup
	}
	return style, wsExAppWindow
}

// NewWindow creates and shows a native window. The surface becomes
// available with its first WM_PAINT.
func (b *Backend) NewWindow(spec wsys.WindowSpec) error {
	if _, exists := b.windows[spec.ID]; exists {
		return fmt.Errorf("window %s already exists", spec.ID)
	}
	style, exStyle := windowStyle(spec)
	width, height := adjustWindowRect(int32(spec.Width), int32(spec.Height), style, exStyle, spec.Menu.Len() > 0)

	hwnd, err := createWindowEx(exStyle, resources.class, spec.Title, style, width, height, resources.instance)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	w := &window{id: spec.ID, hwnd: hwnd, width: spec.Width, height: spec.Height}
	b.windows[spec.ID] = w
	b.byHWND[hwnd] = spec.ID
	backends.Store(hwnd, b)

	if spec.Menu.Len() > 0 {
		if err := b.SetMenu(spec.ID, spec.Menu); err != nil {
			logging.Warn("failed to attach window menu", "window", spec.ID, "err", err)
		}
	}

	showWindow(hwnd)
	logging.Debug("created win32 window", "window", spec.ID, "hwnd", hwnd, "width", spec.Width, "height", spec.Height)
	return nil
}

// CloseWindow destroys the native window.
func (b *Backend) CloseWindow(id wsys.WindowID) error {
	w, ok := b.windows[id]
	if !ok {
		return wsys.ErrUnknownWindow
	}
	err := destroyWindow(w.hwnd)
	b.forget(id)
	if err != nil {
		return fmt.Errorf("DestroyWindow: %w", err)
	}
	return nil
}

func (b *Backend) forget(id wsys.WindowID) {
	w, ok := b.windows[id]
	if !ok {
		return
	}
	if w.hmenu != 0 {
		destroyMenu(w.hmenu)
	}
	backends.Delete(w.hwnd)
	delete(b.byHWND, w.hwnd)
	delete(b.windows, id)
}

// SetMenu builds a native menu bar from tree and attaches it. Selecting
// an entry reports its command through MenuCommand.
func (b *Backend) SetMenu(id wsys.WindowID, tree *menu.Tree) error {
	w, ok := b.windows[id]
	if !ok {
		return wsys.ErrUnknownWindow
	}
	ops, commands := planMenu(tree)
	bar, err := buildMenu(ops)
	if err != nil {
		return err
	}
	if err := setMenu(w.hwnd, bar); err != nil {
		destroyMenu(bar)
		return fmt.Errorf("SetMenu: %w", err)
	}
	if w.hmenu != 0 {
		destroyMenu(w.hmenu)
	}
	w.menu, w.hmenu, w.commands = tree, bar, commands
	return nil
}

// Menu returns the menu attached to a window.
func (b *Backend) Menu(id wsys.WindowID) *menu.Tree {
	if w, ok := b.windows[id]; ok {
		return w.menu
	}
	return nil
}

// buildMenu replays ops into native menus. stack[d] is the menu receiving
// items at depth d.
func buildMenu(ops []menuOp) (windows.Handle, error) {
	bar, err := createMenu(false)
	if err != nil {
		return 0, fmt.Errorf("CreateMenu: %w", err)
	}
	stack := []windows.Handle{bar}
	for _, op := range ops {
		if op.Depth >= len(stack) {
			destroyMenu(bar)
			return 0, fmt.Errorf("menu item %q has no parent popup", op.Label)
		}
		stack = stack[:op.Depth+1]
		parent := stack[op.Depth]

		var flags uint32
		if !op.Enabled && !op.Separator {
			flags |= mfGrayed
		}
		if op.Checked {
			flags |= mfChecked
		}
		switch {
		case op.Separator:
			err = appendMenu(parent, mfSeparator, 0, "")
		case op.Popup:
			var sub windows.Handle
			if sub, err = createMenu(true); err == nil {
				err = appendMenu(parent, flags|mfPopup, uintptr(sub), op.Label)
				stack = append(stack, sub)
			}
		default:
			err = appendMenu(parent, flags|mfString, uintptr(op.CommandID), op.Label)
		}
		if err != nil {
			// Destroying the bar also destroys every popup attached to it.
			destroyMenu(bar)
			return 0, fmt.Errorf("AppendMenu %q: %w", op.Label, err)
		}
	}
	return bar, nil
}

var (
	enumMu       sync.Mutex
	enumHandles  []uintptr
	enumCallback = windows.NewCallback(func(hmon, hdc, clip, data uintptr) uintptr {
		enumHandles = append(enumHandles, hmon)
		return 1
	})
)

// Monitors enumerates the display monitors. EnumDisplayMonitors calls back
// synchronously, so no loop pumping is involved.
func (b *Backend) Monitors() ([]wsys.Monitor, error) {
	enumMu.Lock()
	enumHandles = enumHandles[:0]
	err := enumDisplayMonitors(enumCallback)
	handles := append([]uintptr(nil), enumHandles...)
	enumMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("EnumDisplayMonitors: %w", err)
	}

	monitors := make([]wsys.Monitor, 0, len(handles))
	for _, h := range handles {
		info, err := getMonitorInfo(h)
		if err != nil {
			logging.Warn("GetMonitorInfo failed", "monitor", h, "err", err)
			continue
		}
		name := windows.UTF16ToString(info.Device[:])
		monitors = append(monitors, wsys.Monitor{
			ID:       b.monitorIDs.For(name),
			Name:     name,
			Primary:  info.Flags&monitorInfoPrimary != 0,
			Bounds:   rectOf(info.Monitor),
			WorkArea: rectOf(info.Work),
			Scale:    scaleFromDPI(monitorDPI(h)),
		})
	}
	return monitors, nil
}

func rectOf(r rect) wsys.Rect {
	return wsys.Rect{X: int(r.Left), Y: int(r.Top), Width: int(r.Right - r.Left), Height: int(r.Bottom - r.Top)}
}

// InputDevices returns nil. Windows does not expose an XInput-style device
// list.
func (b *Backend) InputDevices() *input.Registry {
	return nil
}

// Run pumps the thread's message queue until the loop stops. Posted tasks
// arrive as WM_APP_WAKE thread messages sent by the forwarder.
func (b *Backend) Run() error {
	return b.loop.RunNative(b.pump)
}

func (b *Backend) pump() error {
	if b.loop.Stopped() {
		return nil
	}
	go b.forward()

	var m msg
	for {
		r, err := getMessage(&m)
		switch {
		case r == -1:
			return fmt.Errorf("GetMessage: %w", err)
		case r == 0:
			return b.runErr
		}
		if m.Hwnd == 0 && m.Message == wmAppWake {
			b.loop.RunPending()
			continue
		}
		translateMessage(&m)
		dispatchMessage(&m)
	}
}

// forward turns loop wakeups into thread messages, and the loop's stop
// into WM_QUIT.
func (b *Backend) forward() {
	for {
		select {
		case <-b.loop.Wake():
			if err := postThreadMessage(b.thread, wmAppWake, 0, 0); err != nil {
				logging.Warn("failed to post wakeup", "err", err)
			}
		case <-b.loop.Done():
			if err := postThreadMessage(b.thread, wmQuit, 0, 0); err != nil {
				logging.Error("failed to post WM_QUIT", "err", err)
			}
			return
		}
	}
}

// Stop ends Run once the current message has been handled.
func (b *Backend) Stop() {
	b.loop.Stop()
}

// Close destroys remaining windows and releases the OS thread.
func (b *Backend) Close() error {
	var errs []error
	for id := range b.windows {
		if err := b.CloseWindow(id); err != nil {
			errs = append(errs, err)
		}
	}
	runtime.UnlockOSThread()
	return errors.Join(errs...)
}

func windowProc(hwnd windows.HWND, message uint32, wParam, lParam uintptr) uintptr {
	v, ok := backends.Load(hwnd)
	if !ok {
		return defWindowProc(hwnd, message, wParam, lParam)
	}
	b := v.(*Backend)
	id, ok := b.byHWND[hwnd]
	if !ok {
		return defWindowProc(hwnd, message, wParam, lParam)
	}
	w := b.windows[id]

	switch message {
	case wmPaint:
		var ps paintStruct
		beginPaint(hwnd, &ps)
		invalid := wsys.RegionOf(rectOf(ps.Paint))
		endPaint(hwnd, &ps)
		if !w.available {
			w.available = true
			b.events.SurfaceAvailable(id)
			invalid = wsys.RegionOf(wsys.Rect{Width: w.width, Height: w.height})
		}
		if !invalid.Empty() {
			b.events.Paint(id, invalid)
		}
		return 0
	case wmSize:
		w.width, w.height = pointFromLParam(lParam)
		return 0
	case wmClose:
		b.events.CloseRequested(id)
		return 0
	case wmDestroy:
		b.forget(id)
		return 0
	case wmCommand:
		// A zero high word marks a menu selection.
		if wParam>>16&0xffff == 0 {
			if cmd, ok := w.commands[uint16(wParam&0xffff)]; ok {
				b.events.MenuCommand(id, cmd)
				return 0
			}
		}
	default:
		if ev, ok := pointerFromMessage(message, lParam); ok {
			b.events.Pointer(id, ev)
			return 0
		}
	}
	return defWindowProc(hwnd, message, wParam, lParam)
}
