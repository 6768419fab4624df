//go:build !windows

package win32

import (
	"errors"

	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

// ErrUnsupported is returned by Connect on every platform but Windows.
var ErrUnsupported = errors.New("the win32 backend is only available on windows")

// Backend is never constructed outside Windows.
type Backend struct{}

// Connect always fails outside Windows.
func Connect(Config, *runloop.Loop, wsys.Events) (*Backend, error) {
	return nil, &wsys.BackendConnectError{Backend: "windows", Err: ErrUnsupported}
}

func (b *Backend) Monitors() ([]wsys.Monitor, error)      { return nil, ErrUnsupported }
func (b *Backend) NewWindow(wsys.WindowSpec) error         { return ErrUnsupported }
func (b *Backend) CloseWindow(wsys.WindowID) error         { return ErrUnsupported }
func (b *Backend) SetMenu(wsys.WindowID, *menu.Tree) error { return ErrUnsupported }
func (b *Backend) Menu(wsys.WindowID) *menu.Tree           { return nil }
func (b *Backend) InputDevices() *input.Registry           { return nil }
func (b *Backend) Run() error                              { return ErrUnsupported }
func (b *Backend) Stop()                                   {}
func (b *Backend) Close() error                            { return nil }
