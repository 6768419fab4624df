package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

const windowEvents = xproto.EventMaskExposure | xproto.EventMaskStructureNotify

type window struct {
	id     wsys.WindowID
	xwin   *xwindow.Window
	width  int
	height int
	mapped bool
	menu   *menu.Tree
	damage wsys.Region
}

// NewWindow creates, decorates and maps a top-level window for spec.
func (b *Backend) NewWindow(spec wsys.WindowSpec) error {
	if _, exists := b.windows[spec.ID]; exists {
		return fmt.Errorf("window %s already exists", spec.ID)
	}
	xu := b.conn.XUtil

	win, err := xwindow.Generate(xu)
	if err != nil {
		return fmt.Errorf("failed to allocate window id: %w", err)
	}
	err = win.CreateChecked(b.conn.Root, 0, 0, spec.Width, spec.Height,
		xproto.CwBackPixel|xproto.CwEventMask, 0xffffff, windowEvents)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	if err := setHints(xu, win.Id, spec); err != nil {
		win.Destroy()
		return err
	}

	w := &window{id: spec.ID, xwin: win, width: spec.Width, height: spec.Height, menu: spec.Menu}
	b.windows[spec.ID] = w
	b.byXID[win.Id] = spec.ID
	b.connectHandlers(w)

	if b.input != nil {
		if err := input.Subscribe(b.input, uint32(win.Id)); err != nil {
			logging.Warn("pointer events unavailable for window", "window", spec.ID, "err", err)
		}
	}

	win.Map()
	logging.Debug("created x11 window", "window", spec.ID, "xid", win.Id, "width", spec.Width, "height", spec.Height)
	return nil
}

func setHints(xu *xgbutil.XUtil, win xproto.Window, spec wsys.WindowSpec) error {
	if err := ewmh.WmNameSet(xu, win, spec.Title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmNameSet(xu, win, spec.Title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	if err := icccm.WmClassSet(xu, win, &icccm.WmClass{Instance: "sash", Class: "Sash"}); err != nil {
		return fmt.Errorf("failed to set WM_CLASS: %w", err)
	}
	if err := icccm.WmProtocolsSet(xu, win, []string{"WM_DELETE_WINDOW"}); err != nil {
		return fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}
	if err := ewmh.WmWindowTypeSet(xu, win, []string{"_NET_WM_WINDOW_TYPE_NORMAL"}); err != nil {
		return fmt.Errorf("failed to set window type: %w", err)
	}

	if !spec.Resizable {
		hints := &icccm.NormalHints{
			Flags:     icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize,
			MinWidth:  uint(spec.Width),
			MinHeight: uint(spec.Height),
			MaxWidth:  uint(spec.Width),
			MaxHeight: uint(spec.Height),
		}
		if err := icccm.WmNormalHintsSet(xu, win, hints); err != nil {
			return fmt.Errorf("failed to set size hints: %w", err)
		}
	}

	if !spec.Decorated {
		hints := &motif.Hints{Flags: motif.HintDecorations, Decoration: motif.DecorationNone}
		if err := motif.WmHintsSet(xu, win, hints); err != nil {
			return fmt.Errorf("failed to set motif hints: %w", err)
		}
	}
	return nil
}

// connectHandlers wires the window's core events. The callbacks run on the
// xevent goroutine while the loop goroutine waits, so they only queue work.
func (b *Backend) connectHandlers(w *window) {
	xu := b.conn.XUtil
	id := w.id

	xevent.MapNotifyFun(func(_ *xgbutil.XUtil, _ xevent.MapNotifyEvent) {
		b.queue(func() { b.mapped(id) })
	}).Connect(xu, w.xwin.Id)

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		width, height := int(ev.Width), int(ev.Height)
		b.queue(func() { b.resized(id, width, height) })
	}).Connect(xu, w.xwin.Id)

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		rect := wsys.Rect{X: int(ev.X), Y: int(ev.Y), Width: int(ev.Width), Height: int(ev.Height)}
		last := ev.Count == 0
		b.queue(func() { b.exposed(id, rect, last) })
	}).Connect(xu, w.xwin.Id)

	xevent.ClientMessageFun(func(_ *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if ev.Format != 32 || len(ev.Data.Data32) == 0 {
			return
		}
		if xproto.Atom(ev.Data.Data32[0]) == b.wmDelete {
			b.queue(func() { b.events.CloseRequested(id) })
		}
	}).Connect(xu, w.xwin.Id)

	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		if ev.Window != w.xwin.Id {
			return
		}
		b.queue(func() { b.forget(id) })
	}).Connect(xu, w.xwin.Id)
}

func (b *Backend) mapped(id wsys.WindowID) {
	w, ok := b.windows[id]
	if !ok || w.mapped {
		return
	}
	w.mapped = true
	w.damage = wsys.Region{}
	b.events.SurfaceAvailable(id)
	b.events.Paint(id, wsys.RegionOf(wsys.Rect{Width: w.width, Height: w.height}))
}

func (b *Backend) resized(id wsys.WindowID, width, height int) {
	if w, ok := b.windows[id]; ok {
		w.width, w.height = width, height
	}
}

// exposed collects damage until the server says the series is complete.
func (b *Backend) exposed(id wsys.WindowID, rect wsys.Rect, last bool) {
	w, ok := b.windows[id]
	if !ok {
		return
	}
	w.damage.Add(rect)
	if !last || !w.mapped {
		return
	}
	damage := w.damage
	w.damage = wsys.Region{}
	b.events.Paint(id, damage)
}

// CloseWindow destroys the native window.
func (b *Backend) CloseWindow(id wsys.WindowID) error {
	w, ok := b.windows[id]
	if !ok {
		return wsys.ErrUnknownWindow
	}
	w.xwin.Destroy()
	b.forget(id)
	return nil
}

func (b *Backend) forget(id wsys.WindowID) {
	w, ok := b.windows[id]
	if !ok {
		return
	}
	xevent.Detach(b.conn.XUtil, w.xwin.Id)
	delete(b.byXID, w.xwin.Id)
	delete(b.windows, id)
	logging.Debug("x11 window gone", "window", id)
}

// SetMenu records the menu for a window. X has no native menu bar, so the
// tree is kept for embedders that draw their own.
func (b *Backend) SetMenu(id wsys.WindowID, tree *menu.Tree) error {
	w, ok := b.windows[id]
	if !ok {
		return wsys.ErrUnknownWindow
	}
	w.menu = tree
	return nil
}

// Menu returns the menu recorded for a window.
func (b *Backend) Menu(id wsys.WindowID) *menu.Tree {
	if w, ok := b.windows[id]; ok {
		return w.menu
	}
	return nil
}
