package wayland

import (
	"github.com/rajveermalviya/go-wayland/wayland/client"

	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/internal/wsys"
)

const (
	seatCapabilityPointer = 0x1

	pointerButtonPressed = 1

	// Linux evdev codes for the buttons wl_pointer reports.
	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
	btnSide   = 0x113
	btnExtra  = 0x114
)

// InputDevices returns nil. Wayland hides individual devices behind the
// seat.
func (b *Backend) InputDevices() *input.Registry {
	return nil
}

func (b *Backend) seatCapabilities(caps uint32) {
	hasPointer := caps&seatCapabilityPointer != 0
	switch {
	case hasPointer && b.pointer == nil:
		p, err := b.seat.GetPointer()
		if err != nil {
			logging.Warn("failed to get wl_pointer", "err", err)
			return
		}
		b.connectPointer(p)
		b.pointer = p
		logging.Debug("wayland pointer attached")
	case !hasPointer && b.pointer != nil:
		if b.seatVer >= 3 {
			if err := b.pointer.Release(); err != nil {
				logging.Debug("failed to release wl_pointer", "err", err)
			}
		}
		b.pointer = nil
		b.hover = 0
		logging.Debug("wayland pointer detached")
	}
}

func (b *Backend) connectPointer(p *client.Pointer) {
	p.SetEnterHandler(func(e client.PointerEnterEvent) {
		b.pointerEnter(e.Surface, e.SurfaceX, e.SurfaceY)
	})
	p.SetLeaveHandler(func(client.PointerLeaveEvent) {
		b.hover = 0
	})
	p.SetMotionHandler(func(e client.PointerMotionEvent) {
		b.pointerEvent(wsys.PointerEvent{Action: wsys.PointerMove, X: e.SurfaceX, Y: e.SurfaceY})
	})
	p.SetButtonHandler(func(e client.PointerButtonEvent) {
		b.pointerButton(e.Button, e.State)
	})
}

func (b *Backend) pointerEnter(surface *client.Surface, x, y float64) {
	id, ok := b.bySurface[surface]
	if !ok {
		b.hover = 0
		return
	}
	b.hover = id
	b.pointerEvent(wsys.PointerEvent{Action: wsys.PointerMove, X: x, Y: y})
}

// pointerButton reports a press or release at the last known position.
func (b *Backend) pointerButton(code, state uint32) {
	action := wsys.PointerUp
	if state == pointerButtonPressed {
		action = wsys.PointerDown
	}
	b.pointerEvent(wsys.PointerEvent{Action: action, Button: linuxButton(code), X: b.lastX, Y: b.lastY})
}

func (b *Backend) pointerEvent(ev wsys.PointerEvent) {
	if ev.Action == wsys.PointerMove {
		b.lastX, b.lastY = ev.X, ev.Y
	}
	if _, ok := b.windows[b.hover]; !ok {
		return
	}
	b.events.Pointer(b.hover, ev)
}

// linuxButton maps an evdev button code to the X-style number used in
// PointerEvent: 1 primary, 2 middle, 3 secondary.
func linuxButton(code uint32) int {
	switch code {
	case btnLeft:
		return 1
	case btnMiddle:
		return 2
	case btnRight:
		return 3
	case btnSide:
		return 8
	case btnExtra:
		return 9
	default:
		return int(code)
	}
}
