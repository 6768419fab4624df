package wayland

import (
	"fmt"

	"github.com/1broseidon/sash/internal/wsys"
)

// modeCurrent is the wl_output mode flag marking the mode in use.
const modeCurrent = 0x1

// output accumulates the state a compositor reports for one wl_output.
// Events arrive piecemeal; the state is complete after the first done.
type output struct {
	global      uint32
	x, y        int32
	width       int32
	height      int32
	transform   int32
	scale       int32
	name        string
	description string
	vendor      string
	model       string
	done        bool
}

func newOutput(global uint32) *output {
	return &output{global: global, scale: 1}
}

func (o *output) geometry(x, y int32, vendor, model string, transform int32) {
	o.x, o.y = x, y
	o.vendor, o.model = vendor, model
	o.transform = transform
}

func (o *output) mode(flags uint32, width, height int32) {
	if flags&modeCurrent == 0 {
		return
	}
	o.width, o.height = width, height
}

func (o *output) setScale(factor int32) {
	if factor < 1 {
		factor = 1
	}
	o.scale = factor
}

// label picks the most human-friendly identifier the compositor sent.
func (o *output) label() string {
	switch {
	case o.name != "":
		return o.name
	case o.vendor != "" || o.model != "":
		return fmt.Sprintf("%s %s", o.vendor, o.model)
	default:
		return fmt.Sprintf("wl_output-%d", o.global)
	}
}

// rotated reports whether the transform turns the output by 90 or 270
// degrees, flipped or not.
func (o *output) rotated() bool {
	return o.transform%2 == 1
}

// logicalBounds returns the output's area in compositor coordinates.
func (o *output) logicalBounds() wsys.Rect {
	w, h := int(o.width), int(o.height)
	if o.rotated() {
		w, h = h, w
	}
	return wsys.Rect{X: int(o.x), Y: int(o.y), Width: w / int(o.scale), Height: h / int(o.scale)}
}

// key names the output in the monitor id table.
func (o *output) key() string {
	return fmt.Sprintf("wl_output:%d", o.global)
}

// snapshot turns the outputs that have completed their initial burst into
// monitors, keeping bind order. The first one is reported as primary since
// Wayland has no such notion.
func snapshot(outputs []*output, ids *wsys.MonitorIDs) []wsys.Monitor {
	var monitors []wsys.Monitor
	for _, o := range outputs {
		if !o.done || o.width == 0 || o.height == 0 {
			continue
		}
		bounds := o.logicalBounds()
		monitors = append(monitors, wsys.Monitor{
			ID:       ids.For(o.key()),
			Name:     o.label(),
			Primary:  len(monitors) == 0,
			Bounds:   bounds,
			WorkArea: bounds,
			Scale:    int(o.scale),
		})
	}
	return monitors
}
