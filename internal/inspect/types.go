package inspect

import "github.com/1broseidon/sash"

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Backend  string         `json:"backend"`
	Monitors []sash.Monitor `json:"monitors"`
}

// ListInputDevicesInput is the input for the list_input_devices tool.
type ListInputDevicesInput struct {
	PointersOnly bool `json:"pointers_only,omitempty" jsonschema:"When true, only pointer devices are listed"`
}

// ListInputDevicesOutput is the output for the list_input_devices tool.
type ListInputDevicesOutput struct {
	Devices []sash.InputDevice `json:"devices"`
}

// BackendInfoInput is the input for the backend_info tool.
type BackendInfoInput struct{}

// BackendInfoOutput is the output for the backend_info tool.
type BackendInfoOutput struct {
	Backend      string   `json:"backend"`
	Monitors     int      `json:"monitors"`
	InputDevices int      `json:"input_devices"`
	Menus        []string `json:"menus"`
}

// DescribeMenuInput is the input for the describe_menu tool.
type DescribeMenuInput struct {
	Name string `json:"name,omitempty" jsonschema:"Menu name (default: the only registered menu, or demo)"`
}

// MenuItemInfo is one menu node in walk order.
type MenuItemInfo struct {
	Depth   int    `json:"depth"`
	Kind    string `json:"kind"`
	Label   string `json:"label,omitempty"`
	Command string `json:"command,omitempty"`
	Enabled bool   `json:"enabled"`
	Checked bool   `json:"checked,omitempty"`
}

// DescribeMenuOutput is the output for the describe_menu tool.
type DescribeMenuOutput struct {
	Name  string         `json:"name"`
	Items []MenuItemInfo `json:"items"`
	Text  string         `json:"text"`
}
