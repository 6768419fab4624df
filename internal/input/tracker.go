// Package input discovers X input devices and subscribes a window to their
// pointer events.
package input

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/internal/x11/xinput"
)

// Wire is the XInput request surface the tracker depends on.
type Wire interface {
	QueryVersion(major, minor uint16) (xinput.Version, error)
	ListInputDevices() (*xinput.DeviceList, error)
	SelectEvents(window uint32, masks []xinput.EventMask) error
}

var _ Wire = (*xinput.Conn)(nil)

// Kind is the inferred role of a pointer device.
type Kind uint8

const (
	KindMouse Kind = iota
	KindPen
	KindEraser
	KindTouch
)

func (k Kind) String() string {
	switch k {
	case KindMouse:
		return "mouse"
	case KindPen:
		return "pen"
	case KindEraser:
		return "eraser"
	case KindTouch:
		return "touch"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// DeviceInfo is everything known about one device.
type DeviceInfo struct {
	Record  xinput.DeviceRecord
	Name    []byte
	Classes []xinput.ClassInfo
	Kind    Kind
}

// Valuators returns the decoded valuator classes of the device.
func (d *DeviceInfo) Valuators() []xinput.ValuatorInfo {
	var out []xinput.ValuatorInfo
	for _, c := range d.Classes {
		if v, ok := c.Valuator(); ok {
			out = append(out, v)
		}
	}
	return out
}

// clone returns a deep copy of d, so callers cannot reach registry state.
func (d *DeviceInfo) clone() DeviceInfo {
	c := *d
	c.Name = bytes.Clone(d.Name)
	c.Classes = make([]xinput.ClassInfo, len(d.Classes))
	for i, ci := range d.Classes {
		ci.Data = bytes.Clone(ci.Data)
		c.Classes[i] = ci
	}
	return c
}

// Registry maps device ids to their info. It is built once by Initialize
// and never changes afterwards; lookups hand out copies.
type Registry struct {
	version xinput.Version
	devices map[uint8]*DeviceInfo
}

// Version returns the XInput version the server reported.
func (r *Registry) Version() xinput.Version {
	if r == nil {
		return xinput.Version{}
	}
	return r.version
}

// Get returns a copy of the device with the given id.
func (r *Registry) Get(id uint8) (DeviceInfo, bool) {
	if r == nil {
		return DeviceInfo{}, false
	}
	d, ok := r.devices[id]
	if !ok {
		return DeviceInfo{}, false
	}
	return d.clone(), true
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.devices)
}

// IDs returns the registered device ids in ascending order.
func (r *Registry) IDs() []uint8 {
	if r == nil {
		return nil
	}
	ids := make([]uint8, 0, len(r.devices))
	for id := range r.devices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Pointers returns copies of the pointer devices, master and slave, in id
// order.
func (r *Registry) Pointers() []DeviceInfo {
	var out []DeviceInfo
	for _, id := range r.IDs() {
		if d := r.devices[id]; d.Record.Use.IsPointer() {
			out = append(out, d.clone())
		}
	}
	return out
}

// pointerEvents is the subscription issued for every tracked window.
var pointerEvents = []xinput.EventMask{{
	DeviceID: xinput.AllMasterDevices,
	Mask:     xinput.Mask(xinput.EventButtonPress, xinput.EventButtonRelease, xinput.EventMotion),
}}

// Initialize negotiates the XInput version, builds the device registry and
// subscribes window to button and motion events from all master devices.
// Either every step succeeds or nothing is returned.
func Initialize(wire Wire, window uint32) (*Registry, error) {
	version, err := wire.QueryVersion(MinVersion.Major, MinVersion.Minor)
	if err != nil {
		return nil, &WireProtocolError{Op: "query version", Err: err}
	}
	if !version.AtLeast(MinVersion.Major, MinVersion.Minor) {
		return nil, &ProtocolVersionError{Reported: version}
	}

	list, err := wire.ListInputDevices()
	if err != nil {
		return nil, &WireProtocolError{Op: "list devices", Err: err}
	}
	devices, err := partition(list)
	if err != nil {
		return nil, &WireProtocolError{Op: "list devices", Err: err}
	}

	if err := wire.SelectEvents(window, pointerEvents); err != nil {
		return nil, &WireProtocolError{Op: "select events", Err: err}
	}

	logging.Debug("xinput initialized", "version", version.String(), "devices", len(devices), "window", window)
	return &Registry{version: version, devices: devices}, nil
}

// Subscribe selects the same pointer events on another window, so events
// over it are reported relative to it rather than to the root.
func Subscribe(wire Wire, window uint32) error {
	if err := wire.SelectEvents(window, pointerEvents); err != nil {
		return &WireProtocolError{Op: "select events", Err: err}
	}
	return nil
}

// partition walks the device list in order and hands each device the next
// NumClassInfo records of the shared class stream. The cursor only moves
// forward, so a device's classes are always the ones that follow the
// previous device's.
func partition(list *xinput.DeviceList) (map[uint8]*DeviceInfo, error) {
	devices := make(map[uint8]*DeviceInfo, len(list.Devices))
	cursor := 0
	for i, rec := range list.Devices {
		n := int(rec.NumClassInfo)
		if cursor+n > len(list.Classes) {
			return nil, fmt.Errorf("device %d declares %d classes but only %d remain in the stream",
				rec.ID, n, len(list.Classes)-cursor)
		}
		classes := list.Classes[cursor : cursor+n : cursor+n]
		cursor += n

		if _, dup := devices[rec.ID]; dup {
			return nil, fmt.Errorf("device id %d listed twice", rec.ID)
		}

		var name []byte
		if i < len(list.Names) {
			name = list.Names[i]
		}
		info := &DeviceInfo{Record: rec, Name: name, Classes: classes}
		info.Kind = detectKind(info)
		devices[rec.ID] = info
		logging.Debug("found input device", "id", rec.ID, "name", string(name), "use", rec.Use.String(), "kind", info.Kind.String(), "classes", n)
	}
	return devices, nil
}

// detectKind guesses what a pointer is. XInput does not say directly, so
// this follows the device name first and falls back to the shape of its
// valuators: anything with pressure-like extra axes is treated as a pen.
func detectKind(d *DeviceInfo) Kind {
	name := bytes.ToLower(d.Name)
	switch {
	case bytes.Contains(name, []byte("touch")):
		return KindTouch
	case bytes.Contains(name, []byte("eraser")):
		return KindEraser
	case bytes.Contains(name, []byte("pen")), bytes.Contains(name, []byte("stylus")):
		return KindPen
	}
	for _, v := range d.Valuators() {
		if len(v.Axes) >= 3 && v.Absolute {
			return KindPen
		}
	}
	return KindMouse
}
