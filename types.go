package sash

import (
	"github.com/1broseidon/sash/internal/input"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

type (
	// WindowID identifies a window for the life of the process.
	WindowID = wsys.WindowID
	// MonitorID identifies a monitor within one snapshot.
	MonitorID = wsys.MonitorID
	// Rect is a rectangle in screen or window coordinates.
	Rect = wsys.Rect
	// Region is the set of rects a paint must cover.
	Region = wsys.Region
	// Monitor is one entry of a monitor snapshot.
	Monitor = wsys.Monitor
	// PointerEvent is a button or motion event over a window.
	PointerEvent = wsys.PointerEvent
	// PointerAction says what happened in a PointerEvent.
	PointerAction = wsys.PointerAction
)

const (
	PointerMove = wsys.PointerMove
	PointerDown = wsys.PointerDown
	PointerUp   = wsys.PointerUp
)

// WindowDescription describes a window to create.
type WindowDescription struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
	Decorated bool
	Menu      *menu.Tree
}

// DefaultWindowDescription is used for fields a description leaves zero.
func DefaultWindowDescription() WindowDescription {
	return WindowDescription{
		Title:     "sash",
		Width:     800,
		Height:    600,
		Resizable: true,
		Decorated: true,
	}
}

func (d WindowDescription) spec(id WindowID, defaults WindowDescription) wsys.WindowSpec {
	if d.Title == "" {
		d.Title = defaults.Title
	}
	if d.Width <= 0 {
		d.Width = defaults.Width
	}
	if d.Height <= 0 {
		d.Height = defaults.Height
	}
	return wsys.WindowSpec{
		ID:        id,
		Title:     d.Title,
		Width:     d.Width,
		Height:    d.Height,
		Resizable: d.Resizable,
		Decorated: d.Decorated,
		Menu:      d.Menu,
	}
}

// InputDevice describes one XInput device.
type InputDevice struct {
	ID      uint8  `json:"id"`
	Name    string `json:"name"`
	Use     string `json:"use"`
	Kind    string `json:"kind"`
	Pointer bool   `json:"pointer"`
	Classes int    `json:"classes"`
	Axes    int    `json:"axes"`
}

func inputDevices(reg *input.Registry) []InputDevice {
	ids := reg.IDs()
	out := make([]InputDevice, 0, len(ids))
	for _, id := range ids {
		d, _ := reg.Get(id)
		axes := 0
		for _, v := range d.Valuators() {
			axes += len(v.Axes)
		}
		out = append(out, InputDevice{
			ID:      id,
			Name:    string(d.Name),
			Use:     d.Record.Use.String(),
			Kind:    d.Kind.String(),
			Pointer: d.Record.Use.IsPointer(),
			Classes: len(d.Classes),
			Axes:    axes,
		})
	}
	return out
}
