package xinput

import (
	"fmt"

	"github.com/BurntSushi/xgb"
)

// DeviceEvent is a decoded XI2 device event: a button press or release, or
// motion.
type DeviceEvent struct {
	Type     uint16
	DeviceID uint16
	SourceID uint16
	Time     uint32
	// Detail is the button number for button events.
	Detail uint32
	Root   uint32
	Event  uint32
	Child  uint32
	RootX  float64
	RootY  float64
	EventX float64
	EventY float64
}

const deviceEventSize = 56

// DecodeDeviceEvent decodes the fixed part of an XI2 device event.
func DecodeDeviceEvent(ev GenericEvent) (DeviceEvent, error) {
	switch ev.EvType {
	case EventButtonPress, EventButtonRelease, EventMotion:
	default:
		return DeviceEvent{}, fmt.Errorf("xinput event type %d is not a device event", ev.EvType)
	}
	buf := ev.Data
	if len(buf) < deviceEventSize {
		return DeviceEvent{}, fmt.Errorf("device event: %w (%d bytes)", ErrShortReply, len(buf))
	}
	return DeviceEvent{
		Type:     ev.EvType,
		DeviceID: xgb.Get16(buf[10:]),
		Time:     xgb.Get32(buf[12:]),
		Detail:   xgb.Get32(buf[16:]),
		Root:     xgb.Get32(buf[20:]),
		Event:    xgb.Get32(buf[24:]),
		Child:    xgb.Get32(buf[28:]),
		RootX:    fixed1616(xgb.Get32(buf[32:])),
		RootY:    fixed1616(xgb.Get32(buf[36:])),
		EventX:   fixed1616(xgb.Get32(buf[40:])),
		EventY:   fixed1616(xgb.Get32(buf[44:])),
		SourceID: xgb.Get16(buf[52:]),
	}, nil
}

func fixed1616(v uint32) float64 {
	return float64(int32(v)) / 65536
}
