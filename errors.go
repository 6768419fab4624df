package sash

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/wsys"
)

type (
	// SetupError reports that an operation needs state that does not
	// exist, such as a running application.
	SetupError = wsys.SetupError
	// ProtocolVersionError is returned when the X server's XInput version
	// is too old for multi-pointer tracking.
	ProtocolVersionError = input.ProtocolVersionError
	// WireProtocolError wraps a failed XInput exchange.
	WireProtocolError = input.WireProtocolError
	// BackendConnectError is returned when no display server could be
	// reached.
	BackendConnectError = wsys.BackendConnectError
	// BackendBindError is returned when the display server lacks something
	// the backend requires.
	BackendBindError = wsys.BackendBindError
)

var (
	// ErrNoApplication is returned by process-wide queries while nothing
	// is launched.
	ErrNoApplication = wsys.ErrNoApplication
	// ErrMonitorTimeout is returned when the compositor is too slow to
	// describe its outputs.
	ErrMonitorTimeout = wsys.ErrMonitorTimeout
	// ErrLoopStopped is returned when scheduling onto a loop that has
	// stopped.
	ErrLoopStopped = runloop.ErrStopped
	// ErrUnknownWindow is returned for ids that name no open window.
	ErrUnknownWindow = wsys.ErrUnknownWindow
	// ErrAlreadyLaunched is returned by Launch while another application
	// is running in the process.
	ErrAlreadyLaunched = errors.New("an application is already running")
)

// IsSetupError reports whether err is, or wraps, a SetupError.
func IsSetupError(err error) bool {
	return wsys.IsSetupError(err)
}

// HandlerTypeMismatchError is the panic value of Handle when the requested
// handler type is not the one the loop was launched with.
type HandlerTypeMismatchError struct {
	Want     reflect.Type
	Launched reflect.Type
}

func (e *HandlerTypeMismatchError) Error() string {
	return fmt.Sprintf("sash: loop handle requested for handler type %v, but the loop was launched with %v", e.Want, e.Launched)
}
