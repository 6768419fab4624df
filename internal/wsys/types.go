// Package wsys holds the vocabulary shared by every window-system backend:
// ids, geometry, window descriptions and the event sink backends report to.
package wsys

import (
	"fmt"

	"github.com/1broseidon/sash/menu"
)

// WindowID identifies a window for the lifetime of the process. Ids are
// minted before the native window exists so callers can refer to a window
// they have only asked for.
type WindowID uint64

func (id WindowID) String() string {
	return fmt.Sprintf("window#%d", uint64(id))
}

// MonitorID identifies a monitor. Backends keep it stable for as long as
// the output stays connected.
type MonitorID uint64

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Union returns the smallest rect containing r and o. Empty inputs are
// ignored.
func (r Rect) Union(o Rect) Rect {
	switch {
	case r.Empty():
		return o
	case o.Empty():
		return r
	}
	x1 := min(r.X, o.X)
	y1 := min(r.Y, o.Y)
	x2 := max(r.X+r.Width, o.X+o.Width)
	y2 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Region is the set of rects a paint must cover.
type Region struct {
	Rects []Rect
}

// RegionOf returns a region made of the non-empty rects given.
func RegionOf(rects ...Rect) Region {
	var reg Region
	for _, r := range rects {
		reg.Add(r)
	}
	return reg
}

// Add includes r in the region.
func (g *Region) Add(r Rect) {
	if r.Empty() {
		return
	}
	g.Rects = append(g.Rects, r)
}

// Bounds returns the bounding box of the region.
func (g Region) Bounds() Rect {
	var b Rect
	for _, r := range g.Rects {
		b = b.Union(r)
	}
	return b
}

// Empty reports whether nothing needs painting.
func (g Region) Empty() bool {
	return len(g.Rects) == 0
}

// Monitor is one entry of a monitor snapshot.
type Monitor struct {
	ID       MonitorID `json:"id"`
	Name     string    `json:"name"`
	Primary  bool      `json:"primary"`
	Bounds   Rect      `json:"bounds"`
	WorkArea Rect      `json:"work_area"`
	// Scale is the integer output scale. X11 and Win32 report 1 unless the
	// DPI says otherwise.
	Scale int `json:"scale"`
}

// WindowSpec is what a backend needs to create a native window.
type WindowSpec struct {
	ID        WindowID
	Title     string
	Width     int
	Height    int
	Resizable bool
	// Decorated asks for server or compositor side decorations.
	Decorated bool
	Menu      *menu.Tree
}

// PointerAction is what happened in a PointerEvent.
type PointerAction uint8

const (
	PointerMove PointerAction = iota
	PointerDown
	PointerUp
)

func (a PointerAction) String() string {
	switch a {
	case PointerMove:
		return "move"
	case PointerDown:
		return "down"
	case PointerUp:
		return "up"
	default:
		return fmt.Sprintf("PointerAction(%d)", uint8(a))
	}
}

// PointerEvent is a button or motion event over a window. Positions are in
// window coordinates.
type PointerEvent struct {
	Action PointerAction
	// Button is the platform button number, 1 for the primary button. It is
	// zero for motion.
	Button int
	X      float64
	Y      float64
	// Device is the platform device that produced the event, when known.
	Device uint16
}

// Events receives window-system events. Backends call it only from the loop
// goroutine.
type Events interface {
	SurfaceAvailable(id WindowID)
	Paint(id WindowID, invalid Region)
	CloseRequested(id WindowID)
	MenuCommand(id WindowID, cmd menu.Command)
	Pointer(id WindowID, ev PointerEvent)
	WindowFailed(id WindowID, err error)
}
