package inspect

import (
	"context"
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/sash"
	"github.com/1broseidon/sash/menu"
)

type fakeSource struct {
	backend  string
	monitors []sash.Monitor
	devices  []sash.InputDevice
	err      error
}

func (f *fakeSource) BackendName() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.backend, nil
}

func (f *fakeSource) Monitors() ([]sash.Monitor, error)         { return f.monitors, f.err }
func (f *fakeSource) InputDevices() ([]sash.InputDevice, error) { return f.devices, f.err }

func testMenu(t *testing.T) *menu.Tree {
	t.Helper()
	b := menu.NewBuilder()
	edit, err := b.Append(menu.Root, menu.Submenu("Edit"))
	require.NoError(t, err)
	_, err = b.Append(edit, menu.Entry("Copy", menu.CommandCopy))
	require.NoError(t, err)
	_, err = b.Append(edit, menu.Separator())
	require.NoError(t, err)
	grid := menu.Entry("Grid", menu.Custom(7))
	grid.Checked = true
	grid.Enabled = false
	_, err = b.Append(edit, grid)
	require.NoError(t, err)
	_, err = b.Append(menu.Root, menu.Entry("Quit", menu.Custom(1)))
	require.NoError(t, err)
	return b.Finalize()
}

func testSource() *fakeSource {
	return &fakeSource{
		backend: "x11",
		monitors: []sash.Monitor{
			{ID: 1, Name: "DP-1", Primary: true, Bounds: sash.Rect{Width: 1920, Height: 1080}, Scale: 1},
			{ID: 2, Name: "HDMI-1", Bounds: sash.Rect{X: 1920, Width: 1280, Height: 1024}, Scale: 1},
		},
		devices: []sash.InputDevice{
			{ID: 2, Name: "Virtual core pointer", Use: "master pointer", Kind: "mouse", Pointer: true},
			{ID: 3, Name: "Virtual core keyboard", Use: "master keyboard", Kind: "mouse"},
		},
	}
}

func TestDescribe_PreOrder(t *testing.T) {
	items := Describe(testMenu(t))
	require.Len(t, items, 5)

	var labels []string
	var depths []int
	for _, it := range items {
		labels = append(labels, it.Label)
		depths = append(depths, it.Depth)
	}
	assert.Equal(t, []string{"Edit", "Copy", "", "Grid", "Quit"}, labels)
	assert.Equal(t, []int{0, 1, 1, 1, 0}, depths)
	assert.Equal(t, "separator", items[2].Kind)
	assert.Equal(t, "copy", items[1].Command)
	assert.Equal(t, "custom(7)", items[3].Command)
	assert.Empty(t, items[0].Command)
}

func TestDescribe_NilTree(t *testing.T) {
	assert.Empty(t, Describe(nil))
}

func TestRender(t *testing.T) {
	want := "Edit\n" +
		"  Copy (copy)\n" +
		"  ----\n" +
		"  [x] Grid (custom(7)) [disabled]\n" +
		"Quit (custom(1))\n"
	assert.Equal(t, want, Render(Describe(testMenu(t))))
}

func TestListMonitors(t *testing.T) {
	s := NewServer(testSource(), nil)
	_, out, err := s.handleListMonitors(context.Background(), nil, ListMonitorsInput{})
	require.NoError(t, err)
	assert.Equal(t, "x11", out.Backend)
	require.Len(t, out.Monitors, 2)
	assert.True(t, out.Monitors[0].Primary)

	empty := NewServer(&fakeSource{backend: "wayland"}, nil)
	_, out, err = empty.handleListMonitors(context.Background(), nil, ListMonitorsInput{})
	require.NoError(t, err)
	assert.NotNil(t, out.Monitors)
}

func TestListInputDevices_PointersOnly(t *testing.T) {
	s := NewServer(testSource(), nil)

	_, all, err := s.handleListInputDevices(context.Background(), nil, ListInputDevicesInput{})
	require.NoError(t, err)
	assert.Len(t, all.Devices, 2)

	_, pointers, err := s.handleListInputDevices(context.Background(), nil, ListInputDevicesInput{PointersOnly: true})
	require.NoError(t, err)
	require.Len(t, pointers.Devices, 1)
	assert.Equal(t, uint8(2), pointers.Devices[0].ID)
}

func TestBackendInfo(t *testing.T) {
	s := NewServer(testSource(), map[string]*menu.Tree{"demo": testMenu(t), "other": testMenu(t), "nil": nil})
	_, out, err := s.handleBackendInfo(context.Background(), nil, BackendInfoInput{})
	require.NoError(t, err)
	assert.Equal(t, BackendInfoOutput{Backend: "x11", Monitors: 2, InputDevices: 2, Menus: []string{"demo", "other"}}, out)
}

func TestSourceErrorsPropagate(t *testing.T) {
	s := NewServer(&fakeSource{err: sash.ErrNoApplication}, nil)

	_, _, err := s.handleListMonitors(context.Background(), nil, ListMonitorsInput{})
	assert.ErrorIs(t, err, sash.ErrNoApplication)
	_, _, err = s.handleListInputDevices(context.Background(), nil, ListInputDevicesInput{})
	assert.ErrorIs(t, err, sash.ErrNoApplication)
	_, _, err = s.handleBackendInfo(context.Background(), nil, BackendInfoInput{})
	assert.ErrorIs(t, err, sash.ErrNoApplication)
}

func TestResolveMenu(t *testing.T) {
	single := NewServer(testSource(), map[string]*menu.Tree{"main": testMenu(t)})
	name, err := single.resolveMenu("")
	require.NoError(t, err)
	assert.Equal(t, "main", name)

	multi := NewServer(testSource(), map[string]*menu.Tree{"demo": testMenu(t), "main": testMenu(t)})
	name, err = multi.resolveMenu("  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultMenu, name)

	_, err = multi.resolveMenu("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demo, main")

	_, out, err := multi.handleDescribeMenu(context.Background(), nil, DescribeMenuInput{Name: "main"})
	require.NoError(t, err)
	assert.Equal(t, "main", out.Name)
	assert.Len(t, out.Items, 5)
	assert.Contains(t, out.Text, "  Copy (copy)")
}

func TestServer_InMemorySession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(testSource(), map[string]*menu.Tree{"demo": testMenu(t)})
	clientT, serverT := mcpsdk.NewInMemoryTransports()
	ss, err := s.Connect(ctx, serverT)
	require.NoError(t, err)
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"list_monitors", "list_input_devices", "backend_info", "describe_menu"}, names)

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: "backend_info", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.NotNil(t, res.StructuredContent)

	res, err = cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: "describe_menu", Arguments: map[string]any{"name": "nope"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestApplication_WithoutLaunch(t *testing.T) {
	_, err := Application{}.BackendName()
	assert.True(t, errors.Is(err, sash.ErrNoApplication))
}
