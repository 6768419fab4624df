package wayland

import (
	"fmt"
	"testing"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/sash/internal/runloop"
	"github.com/1broseidon/sash/internal/wsys"
	"github.com/1broseidon/sash/menu"
)

type recorder struct {
	got []string
}

func (r *recorder) SurfaceAvailable(id wsys.WindowID) {
	r.got = append(r.got, fmt.Sprintf("surface %d", id))
}

func (r *recorder) Paint(id wsys.WindowID, invalid wsys.Region) {
	r.got = append(r.got, fmt.Sprintf("paint %d %v", id, invalid.Bounds()))
}

func (r *recorder) CloseRequested(id wsys.WindowID) {
	r.got = append(r.got, fmt.Sprintf("close %d", id))
}

func (r *recorder) MenuCommand(id wsys.WindowID, cmd menu.Command) {
	r.got = append(r.got, fmt.Sprintf("menu %d %d", id, cmd))
}

func (r *recorder) Pointer(id wsys.WindowID, ev wsys.PointerEvent) {
	r.got = append(r.got, fmt.Sprintf("pointer %d %s %d %.0f,%.0f", id, ev.Action, ev.Button, ev.X, ev.Y))
}

func (r *recorder) WindowFailed(id wsys.WindowID, err error) {
	r.got = append(r.got, fmt.Sprintf("failed %d %v", id, err))
}

func newTestBackend() (*Backend, *recorder) {
	rec := &recorder{}
	return &Backend{
		loop:      runloop.New(),
		events:    rec,
		windows:   make(map[wsys.WindowID]*window),
		bySurface: make(map[*client.Surface]wsys.WindowID),
	}, rec
}

func (b *Backend) addTestWindow(id wsys.WindowID, width, height int) *client.Surface {
	s := &client.Surface{}
	b.windows[id] = &window{id: id, surface: s, width: width, height: height}
	b.bySurface[s] = id
	return s
}

func TestPointer_FollowsEnteredSurface(t *testing.T) {
	b, rec := newTestBackend()
	s1 := b.addTestWindow(1, 100, 100)
	b.addTestWindow(2, 100, 100)

	b.pointerEvent(wsys.PointerEvent{Action: wsys.PointerMove, X: 5, Y: 5})
	assert.Empty(t, rec.got, "no window under the pointer yet")

	b.pointerEnter(s1, 10, 20)
	b.pointerEvent(wsys.PointerEvent{Action: wsys.PointerMove, X: 11, Y: 21})
	b.pointerButton(btnLeft, pointerButtonPressed)
	b.pointerButton(btnLeft, 0)

	assert.Equal(t, []string{
		"pointer 1 move 0 10,20",
		"pointer 1 move 0 11,21",
		"pointer 1 down 1 11,21",
		"pointer 1 up 1 11,21",
	}, rec.got)
}

func TestPointer_UnknownSurfaceAndClosedWindow(t *testing.T) {
	b, rec := newTestBackend()
	s := b.addTestWindow(4, 50, 50)

	b.pointerEnter(&client.Surface{}, 1, 1)
	b.pointerButton(btnRight, pointerButtonPressed)
	assert.Empty(t, rec.got)

	b.pointerEnter(s, 2, 2)
	b.forget(4)
	b.pointerButton(btnRight, pointerButtonPressed)
	assert.Equal(t, []string{"pointer 4 move 0 2,2"}, rec.got)
	assert.Zero(t, b.hover)
}

func TestLinuxButton(t *testing.T) {
	assert.Equal(t, 1, linuxButton(btnLeft))
	assert.Equal(t, 2, linuxButton(btnMiddle))
	assert.Equal(t, 3, linuxButton(btnRight))
	assert.Equal(t, 8, linuxButton(btnSide))
	assert.Equal(t, 0x120, linuxButton(0x120))
}

func TestResized_KeepsSizeOnZero(t *testing.T) {
	b, _ := newTestBackend()
	b.addTestWindow(3, 640, 480)

	b.resized(3, 0, 0)
	assert.Equal(t, 640, b.windows[3].width)
	assert.Equal(t, 480, b.windows[3].height)

	b.resized(3, 800, 0)
	assert.Equal(t, 800, b.windows[3].width)
	assert.Equal(t, 480, b.windows[3].height)

	b.resized(99, 1, 1)
}

func TestGlobalRemoved_DropsOutput(t *testing.T) {
	b, _ := newTestBackend()
	b.outputs = []*output{newOutput(10), newOutput(11), newOutput(12)}

	b.globalRemoved(11)
	require.Len(t, b.outputs, 2)
	assert.Equal(t, uint32(10), b.outputs[0].global)
	assert.Equal(t, uint32(12), b.outputs[1].global)

	b.globalRemoved(42)
	assert.Len(t, b.outputs, 2)
}

func TestSetMenu_UnknownWindow(t *testing.T) {
	b, _ := newTestBackend()
	b.addTestWindow(1, 10, 10)

	tree := menu.NewBuilder().Finalize()
	require.NoError(t, b.SetMenu(1, tree))
	assert.Same(t, tree, b.Menu(1))
	assert.ErrorIs(t, b.SetMenu(2, tree), wsys.ErrUnknownWindow)
	assert.Nil(t, b.Menu(2))
	assert.ErrorIs(t, b.CloseWindow(2), wsys.ErrUnknownWindow)
}

func TestPost_AfterStopIsDropped(t *testing.T) {
	b, _ := newTestBackend()
	ran := false
	b.loop.Stop()
	b.post(func() { ran = true })
	assert.Zero(t, b.loop.Pending())
	assert.False(t, ran)
}
