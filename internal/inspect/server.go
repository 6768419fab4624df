// Package inspect exposes a running application's display state as MCP
// tools, so that agents and scripts can query monitors, input devices and
// menus without linking against sash.
package inspect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/sash"
	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/menu"
)

const (
	ServerName    = "sash"
	ServerVersion = "0.1.0"

	// DefaultMenu is used by describe_menu when no name is given and more
	// than one menu is registered.
	DefaultMenu = "demo"
)

// Source answers the queries behind the tools. It is called from MCP
// request goroutines, never from the loop goroutine.
type Source interface {
	BackendName() (string, error)
	Monitors() ([]sash.Monitor, error)
	InputDevices() ([]sash.InputDevice, error)
}

// Application is the Source backed by the launched application.
type Application struct{}

func (Application) BackendName() (string, error)              { return sash.BackendName() }
func (Application) Monitors() ([]sash.Monitor, error)         { return sash.Monitors() }
func (Application) InputDevices() ([]sash.InputDevice, error) { return sash.InputDevices() }

// Server is the MCP server for display inspection.
type Server struct {
	mcpServer *mcpsdk.Server
	source    Source
	menus     map[string]*menu.Tree
}

// NewServer creates a server answering from source. menus are the trees
// describe_menu can render, by name.
func NewServer(source Source, menus map[string]*menu.Tree) *Server {
	s := &Server{
		source: source,
		menus:  make(map[string]*menu.Tree, len(menus)),
	}
	for name, tree := range menus {
		if tree != nil {
			s.menus[name] = tree
		}
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP on stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves MCP over t and returns once the session is established.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the monitors of the connected display with their bounds, work areas and integer scale. Bounds are in desktop coordinates; the primary monitor is flagged.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_input_devices",
		Description: "List the XInput devices discovered at connect time, with their use, inferred kind (mouse, pen, eraser, touch) and valuator axis count. Empty on Wayland and Windows.",
	}, s.handleListInputDevices)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "backend_info",
		Description: "Report which window-system backend is connected, how many monitors and input devices it sees, and which menus can be described.",
	}, s.handleBackendInfo)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "describe_menu",
		Description: "Render a registered menu tree in depth-first pre-order, one entry per item with its depth, label, command and state.",
	}, s.handleDescribeMenu)
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	backend, err := s.source.BackendName()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	monitors, err := s.source.Monitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("list monitors: %w", err)
	}
	if monitors == nil {
		monitors = []sash.Monitor{}
	}
	logging.Debug("mcp list_monitors", "backend", backend, "monitors", len(monitors))
	return nil, ListMonitorsOutput{Backend: backend, Monitors: monitors}, nil
}

func (s *Server) handleListInputDevices(_ context.Context, _ *mcpsdk.CallToolRequest, args ListInputDevicesInput) (*mcpsdk.CallToolResult, ListInputDevicesOutput, error) {
	devices, err := s.source.InputDevices()
	if err != nil {
		return nil, ListInputDevicesOutput{}, fmt.Errorf("list input devices: %w", err)
	}
	out := make([]sash.InputDevice, 0, len(devices))
	for _, d := range devices {
		if args.PointersOnly && !d.Pointer {
			continue
		}
		out = append(out, d)
	}
	logging.Debug("mcp list_input_devices", "devices", len(out), "pointers_only", args.PointersOnly)
	return nil, ListInputDevicesOutput{Devices: out}, nil
}

func (s *Server) handleBackendInfo(_ context.Context, _ *mcpsdk.CallToolRequest, _ BackendInfoInput) (*mcpsdk.CallToolResult, BackendInfoOutput, error) {
	backend, err := s.source.BackendName()
	if err != nil {
		return nil, BackendInfoOutput{}, err
	}
	monitors, err := s.source.Monitors()
	if err != nil {
		return nil, BackendInfoOutput{}, fmt.Errorf("list monitors: %w", err)
	}
	devices, err := s.source.InputDevices()
	if err != nil {
		return nil, BackendInfoOutput{}, fmt.Errorf("list input devices: %w", err)
	}
	return nil, BackendInfoOutput{
		Backend:      backend,
		Monitors:     len(monitors),
		InputDevices: len(devices),
		Menus:        s.menuNames(),
	}, nil
}

func (s *Server) handleDescribeMenu(_ context.Context, _ *mcpsdk.CallToolRequest, args DescribeMenuInput) (*mcpsdk.CallToolResult, DescribeMenuOutput, error) {
	name, err := s.resolveMenu(args.Name)
	if err != nil {
		return nil, DescribeMenuOutput{}, err
	}
	tree := s.menus[name]
	items := Describe(tree)
	return nil, DescribeMenuOutput{
		Name:  name,
		Items: items,
		Text:  Render(items),
	}, nil
}

func (s *Server) menuNames() []string {
	names := make([]string, 0, len(s.menus))
	for name := range s.menus {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) resolveMenu(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if len(s.menus) == 1 {
			return s.menuNames()[0], nil
		}
		name = DefaultMenu
	}
	if _, ok := s.menus[name]; !ok {
		return "", fmt.Errorf("unknown menu %q (available: %s)", name, strings.Join(s.menuNames(), ", "))
	}
	return name, nil
}

// Describe flattens tree in depth-first pre-order.
func Describe(tree *menu.Tree) []MenuItemInfo {
	out := make([]MenuItemInfo, 0, tree.Len())
	for n := range tree.All() {
		info := MenuItemInfo{
			Depth:   n.Depth,
			Kind:    n.Item.Kind.String(),
			Label:   n.Item.Label,
			Enabled: n.Item.Enabled,
			Checked: n.Item.Checked,
		}
		if n.Item.Kind == menu.KindOrdinary && n.Item.Command != menu.CommandNone {
			info.Command = n.Item.Command.String()
		}
		out = append(out, info)
	}
	return out
}

// Render draws items as an indented outline, two spaces per level.
func Render(items []MenuItemInfo) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(strings.Repeat("  ", it.Depth))
		switch {
		case it.Kind == menu.KindSeparator.String():
			b.WriteString("----")
		default:
			mark := ""
			if it.Checked {
				mark = "[x] "
			}
			b.WriteString(mark + it.Label)
			if it.Command != "" {
				fmt.Fprintf(&b, " (%s)", it.Command)
			}
			if !it.Enabled {
				b.WriteString(" [disabled]")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
