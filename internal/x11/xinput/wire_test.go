package xinput

import (
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replyBuilder assembles little-endian reply bytes the way the server lays
// them out.
type replyBuilder struct {
	buf []byte
}

func (r *replyBuilder) u8(v uint8) *replyBuilder {
	r.buf = append(r.buf, v)
	return r
}

func (r *replyBuilder) u16(v uint16) *replyBuilder {
	b := make([]byte, 2)
	xgb.Put16(b, v)
	r.buf = append(r.buf, b...)
	return r
}

func (r *replyBuilder) u32(v uint32) *replyBuilder {
	b := make([]byte, 4)
	xgb.Put32(b, v)
	r.buf = append(r.buf, b...)
	return r
}

func (r *replyBuilder) raw(b ...byte) *replyBuilder {
	r.buf = append(r.buf, b...)
	return r
}

func header(devices uint8) *replyBuilder {
	r := &replyBuilder{}
	r.u8(1).u8(opListInputDevices).u16(7).u32(0).u8(devices)
	return r.raw(make([]byte, 23)...)
}

func TestVersion_AtLeast(t *testing.T) {
	assert.False(t, Version{2, 1}.AtLeast(2, 2))
	assert.True(t, Version{2, 2}.AtLeast(2, 2))
	assert.True(t, Version{2, 3}.AtLeast(2, 2))
	assert.True(t, Version{3, 0}.AtLeast(2, 2))
	assert.False(t, Version{1, 5}.AtLeast(2, 2))
	assert.Equal(t, "2.4", Version{2, 4}.String())
}

func TestQueryVersionRoundTrip(t *testing.T) {
	req := queryVersionRequest(131, 2, 2)
	assert.Equal(t, []byte{131, opXIQueryVersion, 2, 0, 2, 0, 2, 0}, req)

	reply := (&replyBuilder{}).u8(1).u8(0).u16(1).u32(0).u16(2).u16(3).raw(make([]byte, 20)...).buf
	v, err := queryVersionReply(reply)
	require.NoError(t, err)
	assert.Equal(t, Version{2, 3}, v)

	_, err = queryVersionReply(reply[:10])
	assert.ErrorIs(t, err, ErrShortReply)
}

func TestListInputDevicesReply_DecodesStreamInOrder(t *testing.T) {
	r := header(2)
	// device 2: virtual core pointer, two classes
	r.u32(77).u8(2).u8(2).u8(uint8(UseXPointer)).u8(0)
	// device 9: tablet, one class
	r.u32(0).u8(9).u8(1).u8(uint8(UseExtensionPointer)).u8(0)
	// button class, 5 buttons
	r.u8(uint8(ClassButton)).u8(4).u16(5)
	// valuator class with 1 axis
	r.u8(uint8(ClassValuator)).u8(8 + 12).u8(1).u8(1).u32(256).u32(1000).u32(0).u32(4095)
	// key class
	r.u8(uint8(ClassKey)).u8(8).u8(8).u8(255).u16(248).u16(0)
	// names
	r.u8(4).raw([]byte("core")...).u8(6).raw([]byte("wacom ")...)
	r.raw(0, 0)

	list, err := listInputDevicesReply(r.buf)
	require.NoError(t, err)
	require.Len(t, list.Devices, 2)
	require.Len(t, list.Classes, 3)

	assert.Equal(t, DeviceRecord{Type: 77, ID: 2, NumClassInfo: 2, Use: UseXPointer}, list.Devices[0])
	assert.Equal(t, uint8(9), list.Devices[1].ID)
	assert.Equal(t, [][]byte{[]byte("core"), []byte("wacom ")}, list.Names)

	btn, ok := list.Classes[0].Button()
	require.True(t, ok)
	assert.Equal(t, uint16(5), btn.NumButtons)

	val, ok := list.Classes[1].Valuator()
	require.True(t, ok)
	assert.True(t, val.Absolute)
	assert.Equal(t, []AxisInfo{{Resolution: 1000, Min: 0, Max: 4095}}, val.Axes)

	key, ok := list.Classes[2].Key()
	require.True(t, ok)
	assert.Equal(t, KeyInfo{MinKeycode: 8, MaxKeycode: 255, NumKeys: 248}, key)

	_, ok = list.Classes[2].Button()
	assert.False(t, ok)
}

func TestListInputDevicesReply_Truncated(t *testing.T) {
	r := header(1)
	r.u32(0).u8(3).u8(1).u8(0).u8(0)
	r.u8(uint8(ClassButton)).u8(40)

	_, err := listInputDevicesReply(r.buf)
	assert.ErrorIs(t, err, ErrShortReply)

	_, err = listInputDevicesReply(make([]byte, 8))
	assert.ErrorIs(t, err, ErrShortReply)
}

func TestSelectEventsRequest(t *testing.T) {
	mask := Mask(EventButtonPress, EventButtonRelease, EventMotion)
	require.Len(t, mask, 1)
	assert.Equal(t, uint32(1<<4|1<<5|1<<6), mask[0])

	req := selectEventsRequest(131, 0x400001, []EventMask{{DeviceID: AllMasterDevices, Mask: mask}})
	require.Len(t, req, 20)
	assert.Equal(t, byte(opXISelectEvents), req[1])
	assert.Equal(t, uint16(5), xgb.Get16(req[2:]))
	assert.Equal(t, uint32(0x400001), xgb.Get32(req[4:]))
	assert.Equal(t, uint16(1), xgb.Get16(req[8:]))
	assert.Equal(t, AllMasterDevices, xgb.Get16(req[12:]))
	assert.Equal(t, uint16(1), xgb.Get16(req[14:]))
	assert.Equal(t, mask[0], xgb.Get32(req[16:]))
}

func TestMask_GrowsForHighEvents(t *testing.T) {
	mask := Mask(40)
	require.Len(t, mask, 2)
	assert.Equal(t, uint32(1<<8), mask[1])
}
