package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/1broseidon/sash"
	"github.com/1broseidon/sash/internal/config"
	"github.com/1broseidon/sash/internal/logging"
)

// Keys shared by flags, SASH_* environment variables and config overrides.
const (
	keyConfig         = "config"
	keyBackend        = "backend"
	keyDisplay        = "display"
	keyWaylandDisplay = "wayland-display"
	keyLogLevel       = "log-level"
	keyLogFile        = "log-file"
	keyMonitorTimeout = "monitor-timeout"
	keyInputDevices   = "input-devices"
	keyRequireRandR   = "require-randr"
)

// overrideSources maps override keys to the config paths they replace.
var overrideSources = map[string]string{
	keyBackend:        "backend",
	keyDisplay:        "display",
	keyWaylandDisplay: "wayland_display",
	keyLogLevel:       "log_level",
	keyLogFile:        "log_file",
	keyMonitorTimeout: "monitor_timeout",
	keyInputDevices:   "x11.input_devices",
	keyRequireRandR:   "x11.require_randr",
}

// cli is the state shared by all subcommands of one invocation.
type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "sash",
		Short: "sash - native window-system broker",
		Long: `sash connects to the native window system (X11, Wayland or Win32),
reports monitors and input devices, and runs a demo window with a native menu.

Settings come from ~/.config/sash/config.yaml, overridden by SASH_* environment
variables and then by flags.`,
		SilenceUsage: true,
		Version:      Version,
	}
	root.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.String(keyConfig, "", "config file (default ~/.config/sash/config.yaml)")
	flags.String(keyBackend, "", "backend: auto, x11, wayland or windows")
	flags.String(keyDisplay, "", "X11 display, overrides $DISPLAY")
	flags.String(keyWaylandDisplay, "", "Wayland display, overrides $WAYLAND_DISPLAY")
	flags.String(keyLogLevel, "", "log level: debug, info, warn or error")
	flags.String(keyLogFile, "", "append logs to this file instead of stderr")
	flags.Duration(keyMonitorTimeout, 0, "Wayland monitor query timeout")
	flags.Bool(keyInputDevices, true, "track XInput devices on X11")
	flags.Bool(keyRequireRandR, false, "fail instead of falling back when RandR is missing")
	for _, key := range []string{keyConfig, keyBackend, keyDisplay, keyWaylandDisplay, keyLogLevel,
		keyLogFile, keyMonitorTimeout, keyInputDevices, keyRequireRandR} {
		_ = c.v.BindPFlag(key, flags.Lookup(key))
	}
	c.v.SetEnvPrefix("SASH")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(c.monitorsCmd())
	root.AddCommand(c.devicesCmd())
	root.AddCommand(c.demoCmd())
	root.AddCommand(c.configCmd())
	root.AddCommand(c.mcpCmd())
	return root
}

// overrides collects the keys set by a flag or an environment variable.
func (c *cli) overrides() (config.Overrides, error) {
	var o config.Overrides
	str := func(key string) *string {
		if !c.v.IsSet(key) {
			return nil
		}
		s := c.v.GetString(key)
		return &s
	}
	boolean := func(key string) *bool {
		if !c.v.IsSet(key) {
			return nil
		}
		b := c.v.GetBool(key)
		return &b
	}

	o.Backend = str(keyBackend)
	o.Display = str(keyDisplay)
	o.WaylandDisplay = str(keyWaylandDisplay)
	o.LogLevel = str(keyLogLevel)
	o.LogFile = str(keyLogFile)
	o.InputDevices = boolean(keyInputDevices)
	o.RequireRandR = boolean(keyRequireRandR)
	if c.v.IsSet(keyMonitorTimeout) {
		raw := c.v.GetString(keyMonitorTimeout)
		d, err := time.ParseDuration(raw)
		if err != nil {
			return config.Overrides{}, fmt.Errorf("invalid %s %q: %w", keyMonitorTimeout, raw, err)
		}
		o.MonitorTimeout = &d
	}
	return o, nil
}

// load reads the config file and applies overrides. Overridden keys are
// recorded as such in the result's sources.
func (c *cli) load() (*config.LoadResult, error) {
	path := c.v.GetString(keyConfig)
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}

	o, err := c.overrides()
	if err != nil {
		return nil, err
	}
	if err := res.Config.ApplyOverrides(o); err != nil {
		return nil, err
	}
	for key, cfgPath := range overrideSources {
		if c.v.IsSet(key) {
			res.Sources[cfgPath] = config.Source{Kind: config.SourceOverride, Name: overrideName(key)}
		}
	}
	return res, nil
}

// setup loads the config and configures logging from it.
func (c *cli) setup() (*config.Config, error) {
	res, err := c.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := res.Config
	if err := logging.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}
	logging.Debug("config loaded", "files", len(res.Files), "backend", cfg.Backend)
	return cfg, nil
}

func overrideName(key string) string {
	return "--" + key + " / SASH_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// builder turns the effective config into launch options.
func builder(ctx context.Context, cfg *config.Config) *sash.Builder {
	return sash.NewBuilder(
		sash.WithContext(ctx),
		sash.WithBackend(cfg.Backend),
		sash.WithDisplay(cfg.Display),
		sash.WithWaylandDisplay(cfg.WaylandDisplay),
		sash.WithMonitorTimeout(cfg.MonitorTimeout),
		sash.WithInputDevices(cfg.X11.InputDevices),
		sash.WithRequireRandR(cfg.X11.RequireRandR),
		sash.WithWindowDefaults(sash.WindowDescription{
			Title:     cfg.WindowDefaults.Title,
			Width:     cfg.WindowDefaults.Width,
			Height:    cfg.WindowDefaults.Height,
			Resizable: true,
			Decorated: true,
		}),
	)
}

// idleHandler is launched by commands that only query the platform.
type idleHandler struct{}

func (*idleHandler) SurfaceAvailable(*sash.Platform, sash.WindowID)   {}
func (*idleHandler) Paint(*sash.Platform, sash.WindowID, sash.Region) {}
func (h *idleHandler) Self() any                                      { return h }

// query launches a window-less application, runs f once on the loop
// goroutine and stops.
func query(ctx context.Context, cfg *config.Config, f func(p *sash.Platform) error) error {
	var ferr error
	err := sash.LaunchThen(builder(commandContext(ctx), cfg), &idleHandler{}, func(_ *idleHandler, p *sash.Platform) {
		defer p.Stop()
		ferr = f(p)
	})
	if err != nil {
		return err
	}
	return ferr
}
