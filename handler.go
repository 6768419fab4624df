package sash

import "github.com/1broseidon/sash/menu"

// Handler receives window events on the loop goroutine.
type Handler interface {
	// SurfaceAvailable is called once a window can be drawn to.
	SurfaceAvailable(p *Platform, win WindowID)
	// Paint is called when part of a window needs redrawing.
	Paint(p *Platform, win WindowID, invalid Region)
	// Self returns the receiver. Typed loop handles use it to recover the
	// concrete handler.
	Self() any
}

// MenuHandler is implemented by handlers that want menu selections.
type MenuHandler interface {
	MenuItemSelected(p *Platform, win WindowID, cmd menu.Command)
}

// CloseHandler is implemented by handlers that decide what the close
// button does. Without it the window is closed.
type CloseHandler interface {
	CloseRequested(p *Platform, win WindowID)
}

// WindowFailureHandler is implemented by handlers that want to know when a
// window could not be created. Without it the failure is logged.
type WindowFailureHandler interface {
	CreatingWindowFailed(p *Platform, win WindowID, err error)
}

// PointerHandler is implemented by handlers that want pointer input.
type PointerHandler interface {
	PointerEvent(p *Platform, win WindowID, ev PointerEvent)
}
