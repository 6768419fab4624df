package wsys

import (
	"errors"
	"fmt"
)

// SetupError reports that the environment is not in a state where an
// operation can be served. It is returned, never retried.
type SetupError struct {
	msg string
}

func (e *SetupError) Error() string {
	return e.msg
}

var (
	// ErrNoApplication is returned by process-wide queries when no
	// application has been launched.
	ErrNoApplication = &SetupError{msg: "no application is running"}
	// ErrMonitorTimeout is returned when the compositor does not finish
	// describing its outputs within the configured timeout.
	ErrMonitorTimeout = &SetupError{msg: "timed out waiting for the monitor list"}
)

// IsSetupError reports whether err is, or wraps, a SetupError.
func IsSetupError(err error) bool {
	var se *SetupError
	return errors.As(err, &se)
}

// BackendConnectError is returned when the display server cannot be
// reached.
type BackendConnectError struct {
	Backend string
	Err     error
}

func (e *BackendConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Backend, e.Err)
}

func (e *BackendConnectError) Unwrap() error {
	return e.Err
}

// BackendBindError is returned when the server is reachable but lacks a
// global or extension the backend requires.
type BackendBindError struct {
	Backend string
	Global  string
	Err     error
}

func (e *BackendBindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: required %s is not available", e.Backend, e.Global)
	}
	return fmt.Sprintf("%s: failed to bind %s: %v", e.Backend, e.Global, e.Err)
}

func (e *BackendBindError) Unwrap() error {
	return e.Err
}

// ErrUnknownWindow is returned for operations on ids the backend never
// created or has already destroyed.
var ErrUnknownWindow = errors.New("unknown window")
