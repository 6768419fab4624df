package wayland

import (
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	xdg_shell "github.com/rajveermalviya/go-wayland/wayland/stable/xdg-shell"

	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

type window struct {
	id         wsys.WindowID
	surface    *client.Surface
	xdgSurface *xdg_shell.Surface
	toplevel   *xdg_shell.Toplevel
	width      int
	height     int
	configured bool
	menu       *menu.Tree
}

// NewWindow creates an xdg toplevel for spec. The surface becomes available
// once the compositor sends its first configure.
func (b *Backend) NewWindow(spec wsys.WindowSpec) error {
	if _, exists := b.windows[spec.ID]; exists {
		return fmt.Errorf("window %s already exists", spec.ID)
	}

	surface, err := b.compositor.CreateSurface()
	if err != nil {
		return fmt.Errorf("failed to create surface: %w", err)
	}
	xdgSurface, err := b.wmBase.GetXdgSurface(surface)
	if err != nil {
		surface.Destroy()
		return fmt.Errorf("failed to create xdg surface: %w", err)
	}
	toplevel, err := xdgSurface.GetToplevel()
	if err != nil {
		xdgSurface.Destroy()
		surface.Destroy()
		return fmt.Errorf("failed to create toplevel: %w", err)
	}

	w := &window{
		id:         spec.ID,
		surface:    surface,
		xdgSurface: xdgSurface,
		toplevel:   toplevel,
		width:      spec.Width,
		height:     spec.Height,
		menu:       spec.Menu,
	}
	if err := b.describe(w, spec); err != nil {
		b.destroy(w)
		return err
	}
	b.connectHandlers(w)

	b.windows[spec.ID] = w
	b.bySurface[surface] = spec.ID

	// The initial commit without a buffer asks the compositor to configure.
	if err := surface.Commit(); err != nil {
		b.forget(spec.ID)
		b.destroy(w)
		return fmt.Errorf("failed to commit surface: %w", err)
	}
	logging.Debug("created wayland toplevel", "window", spec.ID, "width", spec.Width, "height", spec.Height)
	return nil
}

func (b *Backend) describe(w *window, spec wsys.WindowSpec) error {
	if err := w.toplevel.SetTitle(spec.Title); err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}
	if b.cfg.AppID != "" {
		if err := w.toplevel.SetAppId(b.cfg.AppID); err != nil {
			return fmt.Errorf("failed to set app id: %w", err)
		}
	}
	if !spec.Resizable {
		width, height := int32(spec.Width), int32(spec.Height)
		if err := w.toplevel.SetMinSize(width, height); err != nil {
			return fmt.Errorf("failed to set min size: %w", err)
		}
		if err := w.toplevel.SetMaxSize(width, height); err != nil {
			return fmt.Errorf("failed to set max size: %w", err)
		}
	}
	if !spec.Decorated {
		// Decorations are negotiated through an unstable extension the
		// backend does not bind, so the compositor decides.
		logging.Debug("undecorated windows are up to the compositor", "window", spec.ID)
	}
	return nil
}

// connectHandlers wires the toplevel's events.
func (b *Backend) connectHandlers(w *window) {
	id := w.id
	w.toplevel.SetConfigureHandler(func(e xdg_shell.ToplevelConfigureEvent) {
		b.resized(id, int(e.Width), int(e.Height))
	})
	w.toplevel.SetCloseHandler(func(xdg_shell.ToplevelCloseEvent) {
		if _, ok := b.windows[id]; ok {
			b.events.CloseRequested(id)
		}
	})
	w.xdgSurface.SetConfigureHandler(func(e xdg_shell.SurfaceConfigureEvent) {
		b.configured(id, e.Serial)
	})
}

// resized records the size proposed by the compositor. Zero means the
// client picks, so the current size is kept.
func (b *Backend) resized(id wsys.WindowID, width, height int) {
	w, ok := b.windows[id]
	if !ok {
		return
	}
	if width > 0 {
		w.width = width
	}
	if height > 0 {
		w.height = height
	}
}

// configured acknowledges a configure sequence. The first one makes the
// surface available; every one invalidates the whole window.
func (b *Backend) configured(id wsys.WindowID, serial uint32) {
	w, ok := b.windows[id]
	if !ok {
		return
	}
	if err := w.xdgSurface.AckConfigure(serial); err != nil {
		b.events.WindowFailed(id, fmt.Errorf("ack configure: %w", err))
		return
	}
	if err := w.surface.Commit(); err != nil {
		b.events.WindowFailed(id, fmt.Errorf("commit surface: %w", err))
		return
	}
	if !w.configured {
		w.configured = true
		b.events.SurfaceAvailable(id)
	}
	b.events.Paint(id, wsys.RegionOf(wsys.Rect{Width: w.width, Height: w.height}))
}

// CloseWindow destroys the toplevel and its surfaces.
func (b *Backend) CloseWindow(id wsys.WindowID) error {
	w, ok := b.windows[id]
	if !ok {
		return wsys.ErrUnknownWindow
	}
	b.forget(id)
	b.destroy(w)
	return nil
}

func (b *Backend) forget(id wsys.WindowID) {
	w, ok := b.windows[id]
	if !ok {
		return
	}
	delete(b.bySurface, w.surface)
	delete(b.windows, id)
	if b.hover == id {
		b.hover = 0
	}
}

func (b *Backend) destroy(w *window) {
	for _, step := range []struct {
		what string
		fn   func() error
	}{
		{"toplevel", w.toplevel.Destroy},
		{"xdg surface", w.xdgSurface.Destroy},
		{"surface", w.surface.Destroy},
	} {
		if err := step.fn(); err != nil {
			logging.Debug("failed to destroy wayland object", "window", w.id, "object", step.what, "err", err)
		}
	}
}

// SetMenu records the menu for a window. Wayland has no native menu bar, so
// the tree is kept for embedders that draw their own.
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
