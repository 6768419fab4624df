// Package win32 implements the window-system backend for Windows on the
// native message loop.
//
// The message loop runs on the loop goroutine, locked to its OS thread,
// and window procedures report straight to the event sink. Only the parts
// that need user32 are built for Windows; the translation helpers below
// are portable.
package win32

import (
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

// Config holds the Windows backend settings.
type Config struct {
	// ClassName is the registered window class. Defaults to "SashWindow".
	ClassName string
}

const defaultClassName = "SashWindow"

const (
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
)

// firstCommandID is the first WM_COMMAND id handed to menu entries. Zero is
// reserved by the system.
const firstCommandID = 1

// menuOp is one AppendMenu call. Depth selects the menu it is appended
// to: 0 is the menu bar, n is the popup opened by the last item at depth
// n-1 that had children.
type menuOp struct {
	Depth     int
	Label     string
	Separator bool
	Popup     bool
	CommandID uint16
	Enabled   bool
	Checked   bool
}

// planMenu flattens tree into AppendMenu calls in pre-order and assigns a
// command id to every leaf entry.
func planMenu(tree *menu.Tree) ([]menuOp, map[uint16]menu.Command) {
	var ops []menuOp
	commands := make(map[uint16]menu.Command)
	next := uint16(firstCommandID)

	for n := range tree.All() {
		op := menuOp{
			Depth:     n.Depth,
			Label:     n.Item.Label,
			Separator: n.Item.Kind == menu.KindSeparator,
			Enabled:   n.Item.Enabled,
			Checked:   n.Item.Checked,
		}
		switch {
		case op.Separator:
		case tree.FirstChild(n.ID) != menu.Root:
			op.Popup = true
		default:
			op.CommandID = next
			commands[next] = n.Item.Command
			next++
		}
		ops = append(ops, op)
	}
	return ops, commands
}

// pointFromLParam unpacks the signed client coordinates of a mouse message.
func pointFromLParam(lParam uintptr) (x, y int) {
	return int(int16(lParam & 0xffff)), int(int16((lParam >> 16) & 0xffff))
}

// pointerFromMessage translates a mouse message. It reports false for
// messages that are not pointer input.
func pointerFromMessage(msg uint32, lParam uintptr) (wsys.PointerEvent, bool) {
	var ev wsys.PointerEvent
	switch msg {
	case wmMouseMove:
		ev.Action = wsys.PointerMove
	case wmLButtonDown:
		ev.Action, ev.Button = wsys.PointerDown, 1
	case wmLButtonUp:
		ev.Action, ev.Button = wsys.PointerUp, 1
	case wmMButtonDown:
		ev.Action, ev.Button = wsys.PointerDown, 2
	case wmMButtonUp:
		ev.Action, ev.Button = wsys.PointerUp, 2
	case wmRButtonDown:
		ev.Action, ev.Button = wsys.PointerDown, 3
	case wmRButtonUp:
		ev.Action, ev.Button = wsys.PointerUp, 3
	default:
		return wsys.PointerEvent{}, false
	}
	x, y := pointFromLParam(lParam)
	ev.X, ev.Y = float64(x), float64(y)
	return ev, true
}

// scaleFromDPI converts a monitor DPI to an integer scale, rounding up so
// 144 DPI (150%) reports 2.
func scaleFromDPI(dpi uint32) int {
	if dpi == 0 {
		return 1
	}
	return max(1, int((dpi+95)/96))
}
