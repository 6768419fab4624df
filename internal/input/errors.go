package input

import (
	"fmt"

	"github.com/1broseidon/sash/internal/x11/xinput"
)

// MinVersion is the lowest XInput version accepted. 2.2 added multitouch;
// Xorg has shipped it since 2012.
var MinVersion = xinput.Version{Major: 2, Minor: 2}

// ProtocolVersionError is returned when the server's XInput version is below
// MinVersion.
type ProtocolVersionError struct {
	Reported xinput.Version
}

func (e *ProtocolVersionError) Error() string {
	return fmt.Sprintf("xinput version %s found, but at least %s is required", e.Reported, MinVersion)
}

// WireProtocolError wraps a transport or protocol failure from one step of
// the device exchange.
type WireProtocolError struct {
	Op  string
	Err error
}

func (e *WireProtocolError) Error() string {
	return fmt.Sprintf("xinput %s: %v", e.Op, e.Err)
}

func (e *WireProtocolError) Unwrap() error {
	return e.Err
}
