package xinput

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
)

// ErrShortReply is returned when a reply is truncated or its lengths are
// inconsistent.
var ErrShortReply = errors.New("xinput: malformed reply")

const replyHeaderSize = 32

func queryVersionRequest(major byte, clientMajor, clientMinor uint16) []byte {
	buf := make([]byte, 8)
	buf[0] = major
	buf[1] = opXIQueryVersion
	xgb.Put16(buf[2:], uint16(len(buf)/4))
	xgb.Put16(buf[4:], clientMajor)
	xgb.Put16(buf[6:], clientMinor)
	return buf
}

func queryVersionReply(buf []byte) (Version, error) {
	if len(buf) < 12 {
		return Version{}, fmt.Errorf("%w: XIQueryVersion reply is %d bytes", ErrShortReply, len(buf))
	}
	return Version{Major: xgb.Get16(buf[8:]), Minor: xgb.Get16(buf[10:])}, nil
}

func listInputDevicesRequest(major byte) []byte {
	buf := make([]byte, 4)
	buf[0] = major
	buf[1] = opListInputDevices
	xgb.Put16(buf[2:], uint16(len(buf)/4))
	return buf
}

// listInputDevicesReply decodes the device records, the flat class stream
// and the names, in that order.
func listInputDevicesReply(buf []byte) (*DeviceList, error) {
	if len(buf) < replyHeaderSize {
		return nil, fmt.Errorf("%w: ListInputDevices reply is %d bytes", ErrShortReply, len(buf))
	}
	n := int(buf[8])
	b := replyHeaderSize

	list := &DeviceList{
		Devices: make([]DeviceRecord, n),
		Names:   make([][]byte, n),
	}

	totalClasses := 0
	for i := range list.Devices {
		if b+8 > len(buf) {
			return nil, fmt.Errorf("%w: device %d truncated", ErrShortReply, i)
		}
		list.Devices[i] = DeviceRecord{
			Type:         xgb.Get32(buf[b:]),
			ID:           buf[b+4],
			NumClassInfo: buf[b+5],
			Use:          DeviceUse(buf[b+6]),
		}
		totalClasses += int(buf[b+5])
		b += 8
	}

	list.Classes = make([]ClassInfo, totalClasses)
	for i := range list.Classes {
		if b+2 > len(buf) {
			return nil, fmt.Errorf("%w: class %d truncated", ErrShortReply, i)
		}
		size := int(buf[b+1])
		if size < 2 || b+size > len(buf) {
			return nil, fmt.Errorf("%w: class %d has length %d", ErrShortReply, i, size)
		}
		data := make([]byte, size-2)
		copy(data, buf[b+2:b+size])
		list.Classes[i] = ClassInfo{Class: ClassID(buf[b]), Data: data}
		b += size
	}

	for i := range list.Names {
		if b >= len(buf) {
			return nil, fmt.Errorf("%w: name %d truncated", ErrShortReply, i)
		}
		size := int(buf[b])
		b++
		if b+size > len(buf) {
			return nil, fmt.Errorf("%w: name %d truncated", ErrShortReply, i)
		}
		name := make([]byte, size)
		copy(name, buf[b:b+size])
		list.Names[i] = name
		b += size
	}
	return list, nil
}

func selectEventsRequest(major byte, window uint32, masks []EventMask) []byte {
	size := 12
	for _, m := range masks {
		size += 4 + 4*len(m.Mask)
	}
	buf := make([]byte, size)
	buf[0] = major
	buf[1] = opXISelectEvents
	xgb.Put16(buf[2:], uint16(size/4))
	xgb.Put32(buf[4:], window)
	xgb.Put16(buf[8:], uint16(len(masks)))

	b := 12
	for _, m := range masks {
		xgb.Put16(buf[b:], m.DeviceID)
		xgb.Put16(buf[b+2:], uint16(len(m.Mask)))
		b += 4
		for _, word := range m.Mask {
			xgb.Put32(buf[b:], word)
			b += 4
		}
	}
	return buf
}
