package xinput

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/BurntSushi/xgb"
)

// genericEventCode is the core event number of XGE events. XI2 delivers
// every device event as one.
const genericEventCode = 35

// GenericEvent is an XGE event lifted off the wire before xgb sees it.
type GenericEvent struct {
	// Extension is the major opcode of the extension that sent the event.
	Extension byte
	// EvType is the extension-specific event type.
	EvType uint16
	// Data is the whole event, header included.
	Data []byte
}

// eventFilter sits between xgb and the X socket. xgb assumes every event is
// 32 bytes long, which is false for XGE events, so the filter frames the
// server's byte stream itself: replies and ordinary events pass through,
// XGE events are removed and handed to events. It also fills in the
// authorization data of the connection setup request, since xgb can only
// find it when it dials the socket itself.
type eventFilter struct {
	net.Conn
	r      *bufio.Reader
	auth   *authEntry
	events chan GenericEvent

	setupWritten bool
	setupRead    bool
	pending      []byte
	dropped      atomic.Uint64
}

func newEventFilter(conn net.Conn, auth *authEntry, events chan GenericEvent) *eventFilter {
	return &eventFilter{
		Conn:   conn,
		r:      bufio.NewReader(conn),
		auth:   auth,
		events: events,
	}
}

// Read hands xgb the next bytes of the filtered stream. xgb reads from a
// single goroutine.
func (f *eventFilter) Read(p []byte) (int, error) {
	for len(f.pending) == 0 {
		unit, err := f.next()
		if err != nil {
			return 0, err
		}
		f.pending = unit
	}
	n := copy(p, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

// next returns the next unit xgb should see, consuming any XGE events in
// front of it.
func (f *eventFilter) next() ([]byte, error) {
	if !f.setupRead {
		f.setupRead = true
		// Setup reply: 8-byte header, additional length in words at offset 6.
		head := make([]byte, 8)
		if _, err := io.ReadFull(f.r, head); err != nil {
			return nil, err
		}
		return f.extend(head, uint32(xgb.Get16(head[6:])))
	}

	for {
		head := make([]byte, 32)
		if _, err := io.ReadFull(f.r, head); err != nil {
			return nil, err
		}
		switch code := head[0] & 0x7f; {
		case head[0] == 1:
			return f.extend(head, xgb.Get32(head[4:]))
		case code == genericEventCode:
			ev, err := f.extend(head, xgb.Get32(head[4:]))
			if err != nil {
				return nil, err
			}
			f.deliver(GenericEvent{Extension: ev[1], EvType: xgb.Get16(ev[8:]), Data: ev})
		default:
			return head, nil
		}
	}
}

func (f *eventFilter) extend(head []byte, words uint32) ([]byte, error) {
	if words == 0 {
		return head, nil
	}
	buf := make([]byte, len(head)+int(words)*4)
	copy(buf, head)
	if _, err := io.ReadFull(f.r, buf[len(head):]); err != nil {
		return nil, err
	}
	return buf, nil
}

func (f *eventFilter) deliver(ev GenericEvent) {
	select {
	case f.events <- ev:
	default:
		f.dropped.Add(1)
	}
}

// Write passes requests through, rewriting the connection setup request to
// carry the authorization entry found for this display.
func (f *eventFilter) Write(p []byte) (int, error) {
	if f.setupWritten || f.auth == nil {
		f.setupWritten = true
		return f.Conn.Write(p)
	}
	f.setupWritten = true
	if len(p) < 12 {
		return 0, fmt.Errorf("short connection setup request: %d bytes", len(p))
	}
	if _, err := f.Conn.Write(setupRequest(p[:2], f.auth)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// setupRequest builds a connection setup request with the given byte order
// prefix and authorization.
func setupRequest(order []byte, auth *authEntry) []byte {
	buf := make([]byte, 12+xgb.Pad(len(auth.Name))+xgb.Pad(len(auth.Data)))
	copy(buf, order)
	xgb.Put16(buf[2:], 11)
	xgb.Put16(buf[4:], 0)
	xgb.Put16(buf[6:], uint16(len(auth.Name)))
	xgb.Put16(buf[8:], uint16(len(auth.Data)))
	copy(buf[12:], auth.Name)
	copy(buf[12+xgb.Pad(len(auth.Name)):], auth.Data)
	return buf
}
