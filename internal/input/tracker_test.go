package input

import (
	"errors"
	"testing"

	"github.com/1broseidon/sash/internal/x11/xinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWire struct {
	version    xinput.Version
	versionErr error
	list       *xinput.DeviceList
	listErr    error
	selectErr  error

	calls    []string
	selected []xinput.EventMask
	window   uint32
}

func (f *fakeWire) QueryVersion(major, minor uint16) (xinput.Version, error) {
	f.calls = append(f.calls, "version")
	return f.version, f.versionErr
}

func (f *fakeWire) ListInputDevices() (*xinput.DeviceList, error) {
	f.calls = append(f.calls, "list")
	return f.list, f.listErr
}

func (f *fakeWire) SelectEvents(window uint32, masks []xinput.EventMask) error {
	f.calls = append(f.calls, "select")
	f.window = window
	f.selected = masks
	return f.selectErr
}

func class(tag byte) xinput.ClassInfo {
	return xinput.ClassInfo{Class: xinput.ClassOther, Data: []byte{tag}}
}

func twoDevices() *xinput.DeviceList {
	return &xinput.DeviceList{
		Devices: []xinput.DeviceRecord{
			{ID: 7, NumClassInfo: 2, Use: xinput.UseXPointer},
			{ID: 3, NumClassInfo: 3, Use: xinput.UseExtensionPointer},
		},
		Classes: []xinput.ClassInfo{class(0), class(1), class(2), class(3), class(4)},
		Names:   [][]byte{[]byte("Virtual core pointer"), []byte("Logitech mouse")},
	}
}

func tags(classes []xinput.ClassInfo) []byte {
	out := make([]byte, 0, len(classes))
	for _, c := range classes {
		out = append(out, c.Data[0])
	}
	return out
}

func TestInitialize_VersionGate(t *testing.T) {
	for _, tc := range []struct {
		version xinput.Version
		ok      bool
	}{
		{xinput.Version{Major: 2, Minor: 1}, false},
		{xinput.Version{Major: 2, Minor: 2}, true},
		{xinput.Version{Major: 2, Minor: 3}, true},
	} {
		wire := &fakeWire{version: tc.version, list: twoDevices()}
		reg, err := Initialize(wire, 0x1234)
		if tc.ok {
			require.NoError(t, err, "version %s", tc.version)
			assert.Equal(t, 2, reg.Len())
			assert.Equal(t, tc.version, reg.Version())
			continue
		}

		var verr *ProtocolVersionError
		require.ErrorAs(t, err, &verr, "version %s", tc.version)
		assert.Equal(t, tc.version, verr.Reported)
		assert.Nil(t, reg)
		assert.Equal(t, []string{"version"}, wire.calls, "nothing after a failed version check")
	}
}

func TestInitialize_PartitionsClassStreamInListOrder(t *testing.T) {
	wire := &fakeWire{version: xinput.Version{Major: 2, Minor: 2}, list: twoDevices()}
	reg, err := Initialize(wire, 1)
	require.NoError(t, err)

	a, ok := reg.Get(7)
	require.True(t, ok)
	b, ok := reg.Get(3)
	require.True(t, ok)

	assert.Equal(t, []byte{0, 1}, tags(a.Classes))
	assert.Equal(t, []byte{2, 3, 4}, tags(b.Classes))
	assert.Equal(t, "Virtual core pointer", string(a.Name))
	assert.Equal(t, "Logitech mouse", string(b.Name))
	assert.Equal(t, []uint8{3, 7}, reg.IDs())
}

func TestInitialize_SubscribesMasterPointerEvents(t *testing.T) {
	wire := &fakeWire{version: xinput.Version{Major: 2, Minor: 4}, list: twoDevices()}
	_, err := Initialize(wire, 0xabc)
	require.NoError(t, err)

	assert.Equal(t, []string{"version", "list", "select"}, wire.calls)
	assert.Equal(t, uint32(0xabc), wire.window)
	require.Len(t, wire.selected, 1)
	assert.Equal(t, xinput.AllMasterDevices, wire.selected[0].DeviceID)
	assert.Equal(t, uint32(1<<xinput.EventButtonPress|1<<xinput.EventButtonRelease|1<<xinput.EventMotion), wire.selected[0].Mask[0])
}

func TestInitialize_WireFailuresAbort(t *testing.T) {
	boom := errors.New("boom")
	cases := map[string]*fakeWire{
		"query version": {versionErr: boom},
		"list devices":  {version: xinput.Version{Major: 2, Minor: 2}, listErr: boom},
		"select events": {version: xinput.Version{Major: 2, Minor: 2}, list: twoDevices(), selectErr: boom},
	}
	for op, wire := range cases {
		reg, err := Initialize(wire, 1)
		assert.Nil(t, reg, op)

		var werr *WireProtocolError
		require.ErrorAs(t, err, &werr, op)
		assert.Equal(t, op, werr.Op)
		assert.ErrorIs(t, err, boom, op)
	}
}

func TestInitialize_ShortClassStreamIsAProtocolError(t *testing.T) {
	list := twoDevices()
	list.Classes = list.Classes[:4]
	wire := &fakeWire{version: xinput.Version{Major: 2, Minor: 2}, list: list}

	reg, err := Initialize(wire, 1)
	assert.Nil(t, reg)
	var werr *WireProtocolError
	require.ErrorAs(t, err, &werr)
	assert.NotContains(t, wire.calls, "select")
}

func TestInitialize_DuplicateIDsRejected(t *testing.T) {
	list := twoDevices()
	list.Devices[1].ID = 7
	wire := &fakeWire{version: xinput.Version{Major: 2, Minor: 2}, list: list}

	_, err := Initialize(wire, 1)
	var werr *WireProtocolError
	require.ErrorAs(t, err, &werr)
}

func TestRegistry_PointersAndKinds(t *testing.T) {
	valuator := xinput.ClassInfo{Class: xinput.ClassValuator, Data: make([]byte, 6+12*3)}
	valuator.Data[0] = 3
	valuator.Data[1] = 1

	list := &xinput.DeviceList{
		Devices: []xinput.DeviceRecord{
			{ID: 2, NumClassInfo: 0, Use: xinput.UseXPointer},
			{ID: 3, NumClassInfo: 0, Use: xinput.UseXKeyboard},
			{ID: 10, NumClassInfo: 0, Use: xinput.UseExtensionPointer},
			{ID: 11, NumClassInfo: 0, Use: xinput.UseExtensionPointer},
			{ID: 12, NumClassInfo: 1, Use: xinput.UseExtensionPointer},
		},
		Classes: []xinput.ClassInfo{valuator},
		Names: [][]byte{
			[]byte("Virtual core pointer"),
			[]byte("Virtual core keyboard"),
			[]byte("ELAN Touchscreen"),
			[]byte("Wacom Pen eraser"),
			[]byte("Tablet"),
		},
	}
	reg, err := Initialize(&fakeWire{version: xinput.Version{Major: 2, Minor: 2}, list: list}, 1)
	require.NoError(t, err)

	var ids []uint8
	for _, d := range reg.Pointers() {
		ids = append(ids, d.Record.ID)
	}
	assert.Equal(t, []uint8{2, 10, 11, 12}, ids)

	kinds := map[uint8]Kind{2: KindMouse, 10: KindTouch, 11: KindEraser, 12: KindPen}
	for id, want := range kinds {
		d, _ := reg.Get(id)
		assert.Equal(t, want, d.Kind, "device %d", id)
	}
}

func TestRegistry_LookupsReturnCopies(t *testing.T) {
	reg, err := Initialize(&fakeWire{version: xinput.Version{Major: 2, Minor: 2}, list: twoDevices()}, 1)
	require.NoError(t, err)

	d, ok := reg.Get(7)
	require.True(t, ok)
	d.Kind = KindTouch
	d.Name[0] = 'X'
	d.Classes[0].Data[0] = 99
	d.Classes = append(d.Classes, class(42))

	for _, p := range reg.Pointers() {
		p.Classes[0].Data[0] = 77
	}

	again, _ := reg.Get(7)
	assert.Equal(t, KindMouse, again.Kind)
	assert.Equal(t, "Virtual core pointer", string(again.Name))
	assert.Equal(t, []byte{0, 1}, tags(again.Classes))

	other, _ := reg.Get(3)
	assert.Equal(t, []byte{2, 3, 4}, tags(other.Classes))
}

func TestRegistry_NilSafe(t *testing.T) {
	var reg *Registry
	assert.Zero(t, reg.Version())
	assert.Zero(t, reg.Len())
	assert.Empty(t, reg.IDs())
	assert.Empty(t, reg.Pointers())
	_, ok := reg.Get(1)
	assert.False(t, ok)
}

func TestSubscribe(t *testing.T) {
	wire := &fakeWire{}
	require.NoError(t, Subscribe(wire, 0x42))
	assert.Equal(t, uint32(0x42), wire.window)
	assert.Equal(t, pointerEvents, wire.selected)

	wire.selectErr = errors.New("BadWindow")
	var werr *WireProtocolError
	assert.ErrorAs(t, Subscribe(wire, 0x43), &werr)
}
