// Package xinput speaks the subset of the X Input Extension that sash needs:
// version negotiation, device listing and XI2 event selection.
//
// xgb does not ship XInput bindings, so the requests here are encoded on top
// of xgb's cookie machinery in the same way its generated extension packages
// are.
package xinput

import (
	"fmt"

	"github.com/BurntSushi/xgb"
)

// ExtensionName is the name the server registers the extension under.
const ExtensionName = "XInputExtension"

// Minor opcodes of the requests implemented here.
const (
	opListInputDevices = 2
	opXISelectEvents   = 46
	opXIQueryVersion   = 47
)

// Virtual device ids accepted by XI2 requests.
const (
	AllDevices       uint16 = 0
	AllMasterDevices uint16 = 1
)

// XI2 event types, used as bit positions in an event mask.
const (
	EventDeviceChanged  = 1
	EventKeyPress       = 2
	EventKeyRelease     = 3
	EventButtonPress    = 4
	EventButtonRelease  = 5
	EventMotion         = 6
	EventEnter          = 7
	EventLeave          = 8
	EventHierarchy      = 11
	EventTouchBegin     = 18
	EventTouchUpdate    = 19
	EventTouchEnd       = 20
	lastEventType       = EventTouchEnd
	maskWordsForEvents  = lastEventType/32 + 1
)

// Version is a (major, minor) protocol version.
type Version struct {
	Major uint16
	Minor uint16
}

// AtLeast reports whether v >= (major, minor).
func (v Version) AtLeast(major, minor uint16) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// DeviceUse says how the server uses a device.
type DeviceUse uint8

const (
	UseXPointer DeviceUse = iota
	UseXKeyboard
	UseExtensionDevice
	UseExtensionKeyboard
	UseExtensionPointer
)

func (u DeviceUse) String() string {
	switch u {
	case UseXPointer:
		return "master-pointer"
	case UseXKeyboard:
		return "master-keyboard"
	case UseExtensionDevice:
		return "floating"
	case UseExtensionKeyboard:
		return "slave-keyboard"
	case UseExtensionPointer:
		return "slave-pointer"
	default:
		return fmt.Sprintf("DeviceUse(%d)", uint8(u))
	}
}

// IsPointer reports whether the device moves a cursor.
func (u DeviceUse) IsPointer() bool {
	return u == UseXPointer || u == UseExtensionPointer
}

// DeviceRecord is the fixed part of a device in a ListInputDevices reply.
type DeviceRecord struct {
	Type         uint32 // atom naming the device type, 0 if unknown
	ID           uint8
	NumClassInfo uint8
	Use          DeviceUse
}

// ClassID identifies the kind of a class-info record.
type ClassID uint8

const (
	ClassKey ClassID = iota
	ClassButton
	ClassValuator
	ClassFeedback
	ClassProximity
	ClassFocus
	ClassOther
)

func (c ClassID) String() string {
	switch c {
	case ClassKey:
		return "key"
	case ClassButton:
		return "button"
	case ClassValuator:
		return "valuator"
	case ClassFeedback:
		return "feedback"
	case ClassProximity:
		return "proximity"
	case ClassFocus:
		return "focus"
	case ClassOther:
		return "other"
	default:
		return fmt.Sprintf("ClassID(%d)", uint8(c))
	}
}

// ClassInfo is one per-class record. Data is the body after the two byte
// class/length header.
type ClassInfo struct {
	Class ClassID
	Data  []byte
}

// KeyInfo is the body of a key class.
type KeyInfo struct {
	MinKeycode uint8
	MaxKeycode uint8
	NumKeys    uint16
}

// ButtonInfo is the body of a button class.
type ButtonInfo struct {
	NumButtons uint16
}

// AxisInfo describes one valuator axis.
type AxisInfo struct {
	Resolution uint32
	Min        int32
	Max        int32
}

// ValuatorInfo is the body of a valuator class.
type ValuatorInfo struct {
	Absolute   bool
	MotionSize uint32
	Axes       []AxisInfo
}

// Key decodes a key class body.
func (c ClassInfo) Key() (KeyInfo, bool) {
	if c.Class != ClassKey || len(c.Data) < 4 {
		return KeyInfo{}, false
	}
	return KeyInfo{
		MinKeycode: c.Data[0],
		MaxKeycode: c.Data[1],
		NumKeys:    xgb.Get16(c.Data[2:]),
	}, true
}

// Button decodes a button class body.
func (c ClassInfo) Button() (ButtonInfo, bool) {
	if c.Class != ClassButton || len(c.Data) < 2 {
		return ButtonInfo{}, false
	}
	return ButtonInfo{NumButtons: xgb.Get16(c.Data)}, true
}

// Valuator decodes a valuator class body.
func (c ClassInfo) Valuator() (ValuatorInfo, bool) {
	if c.Class != ClassValuator || len(c.Data) < 6 {
		return ValuatorInfo{}, false
	}
	n := int(c.Data[0])
	if len(c.Data) < 6+12*n {
		return ValuatorInfo{}, false
	}
	v := ValuatorInfo{
		Absolute:   c.Data[1] == 1,
		MotionSize: xgb.Get32(c.Data[2:]),
		Axes:       make([]AxisInfo, n),
	}
	b := 6
	for i := range v.Axes {
		v.Axes[i] = AxisInfo{
			Resolution: xgb.Get32(c.Data[b:]),
			Min:        int32(xgb.Get32(c.Data[b+4:])),
			Max:        int32(xgb.Get32(c.Data[b+8:])),
		}
		b += 12
	}
	return v, true
}

// DeviceList is a decoded ListInputDevices reply. Classes is the flat
// class-info stream shared by all devices, in device order; Names holds one
// name per device.
type DeviceList struct {
	Devices []DeviceRecord
	Classes []ClassInfo
	Names   [][]byte
}

// EventMask selects XI2 events for a device or virtual device group.
type EventMask struct {
	DeviceID uint16
	Mask     []uint32
}

// Mask builds an event mask with the given event types set.
func Mask(events ...int) []uint32 {
	mask := make([]uint32, maskWordsForEvents)
	for _, ev := range events {
		word := ev / 32
		for word >= len(mask) {
			mask = append(mask, 0)
		}
		mask[word] |= 1 << uint(ev%32)
	}
	return mask
}
