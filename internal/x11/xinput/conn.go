package xinput

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// ErrNotPresent is returned by Init when the server lacks the extension.
var ErrNotPresent = errors.New("xinput: extension not present on the X server")

// Conn issues XInput requests over an xgb connection.
type Conn struct {
	c      *xgb.Conn
	filter *eventFilter
	events chan GenericEvent
}

// Init looks up the extension's major opcode and registers it with c.
// Connections made this way see no XI2 events; use Dial for that.
func Init(c *xgb.Conn) (*Conn, error) {
	reply, err := xproto.QueryExtension(c, uint16(len(ExtensionName)), ExtensionName).Reply()
	switch {
	case err != nil:
		return nil, fmt.Errorf("query %s: %w", ExtensionName, err)
	case !reply.Present:
		return nil, ErrNotPresent
	}

	c.ExtLock.Lock()
	c.Extensions[ExtensionName] = reply.MajorOpcode
	c.ExtLock.Unlock()
	return &Conn{c: c}, nil
}

// Opcode returns the extension's major opcode. XGE events carry it in
// GenericEvent.Extension.
func (x *Conn) Opcode() byte {
	x.c.ExtLock.RLock()
	defer x.c.ExtLock.RUnlock()
	return x.c.Extensions[ExtensionName]
}

// Events delivers the XGE events received on a dialed connection. It is nil
// for connections set up with Init.
func (x *Conn) Events() <-chan GenericEvent {
	return x.events
}

// Dropped reports how many XGE events were discarded because Events was
// not drained fast enough.
func (x *Conn) Dropped() uint64 {
	if x.filter == nil {
		return 0
	}
	return x.filter.dropped.Load()
}

// Close closes the underlying connection.
func (x *Conn) Close() {
	x.c.Close()
}

// QueryVersion announces the client's supported version and returns the
// server's. XI2 requests are only honoured after this exchange.
func (x *Conn) QueryVersion(major, minor uint16) (Version, error) {
	cookie := x.c.NewCookie(true, true)
	x.c.NewRequest(queryVersionRequest(x.Opcode(), major, minor), cookie)
	buf, err := cookie.Reply()
	if err != nil {
		return Version{}, err
	}
	return queryVersionReply(buf)
}

// ListInputDevices returns every input device known to the server.
func (x *Conn) ListInputDevices() (*DeviceList, error) {
	cookie := x.c.NewCookie(true, true)
	x.c.NewRequest(listInputDevicesRequest(x.Opcode()), cookie)
	buf, err := cookie.Reply()
	if err != nil {
		return nil, err
	}
	return listInputDevicesReply(buf)
}

// SelectEvents subscribes window to the XI2 events in masks and waits for
// the server to accept or reject the request.
func (x *Conn) SelectEvents(window uint32, masks []EventMask) error {
	cookie := x.c.NewCookie(true, false)
	x.c.NewRequest(selectEventsRequest(x.Opcode(), window, masks), cookie)
	return cookie.Check()
}
