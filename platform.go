package sash

import (
	"github.com/1broseidon/sash/internal/idgen"
	"github.com/1broseidon/sash/menu"
)

// Platform is the application context handed to Handler callbacks. It is
// only valid during the callback, on the loop goroutine.
type Platform struct {
	app *application
}

// Stop ends the loop once the current callback returns. Work still queued
// at that point is dropped.
func (p *Platform) Stop() {
	p.app.backend.Stop()
}

// NewWindow creates a window and returns its id. Creation failures are
// reported to WindowFailureHandler.
func (p *Platform) NewWindow(desc WindowDescription) WindowID {
	id := WindowID(idgen.Process().NextNonZero())
	p.app.createWindow(id, desc)
	return id
}

// BuildNewWindow creates a window from the defaults as changed by build.
func (p *Platform) BuildNewWindow(build func(*WindowDescription)) WindowID {
	desc := p.app.defaults
	if build != nil {
		build(&desc)
	}
	return p.NewWindow(desc)
}

// CloseWindow destroys a window.
func (p *Platform) CloseWindow(id WindowID) error {
	if err := p.app.backend.CloseWindow(id); err != nil {
		return err
	}
	delete(p.app.windows, id)
	return nil
}

// BackendName returns the name of the connected backend.
func (p *Platform) BackendName() string {
	return p.app.backend.Kind().String()
}

// Windows returns the number of open windows.
func (p *Platform) Windows() int {
	return len(p.app.windows)
}

// Monitors returns the current monitor snapshot.
func (p *Platform) Monitors() ([]Monitor, error) {
	return p.app.backend.Monitors()
}

// InputDevices returns the XInput devices, or nothing on other backends.
func (p *Platform) InputDevices() []InputDevice {
	return inputDevices(p.app.backend.InputDevices())
}

// SetWindowMenu replaces the menu of a window.
func (p *Platform) SetWindowMenu(id WindowID, tree *menu.Tree) error {
	return p.app.backend.SetMenu(id, tree)
}

// RawHandle returns an untyped handle to the loop.
func (p *Platform) RawHandle() RawLoopHandle {
	return RawLoopHandle{app: p.app}
}
