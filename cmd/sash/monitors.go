package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/sash"
)

// monitorReport is the JSON form of `sash monitors`.
type monitorReport struct {
	Backend  string         `json:"backend"`
	Monitors []sash.Monitor `json:"monitors"`
}

func (c *cli) monitorsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "monitors",
		Short: "Show the monitor configuration",
		Long:  `Connect to the window system and print every monitor with its bounds, work area and scale.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			mode, err := resolveOutput(format, out)
			if err != nil {
				return err
			}
			cfg, err := c.setup()
			if err != nil {
				return err
			}

			var report monitorReport
			err = query(cmd.Context(), cfg, func(p *sash.Platform) error {
				report.Backend = p.BackendName()
				report.Monitors, err = p.Monitors()
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to query monitors: %w", err)
			}
			if report.Monitors == nil {
				report.Monitors = []sash.Monitor{}
			}

			if mode == outputJSON {
				return writeJSON(out, report)
			}
			_, err = fmt.Fprintln(out, monitorTable(report.Backend, report.Monitors))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", outputAuto, "output format: auto, table or json")
	return cmd
}

func (c *cli) devicesCmd() *cobra.Command {
	var format string
	var pointersOnly bool
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Show XInput devices",
		Long: `Connect to the window system and print the input devices discovered at
connect time. Only the X11 backend tracks devices; other backends print none.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			mode, err := resolveOutput(format, out)
			if err != nil {
				return err
			}
			cfg, err := c.setup()
			if err != nil {
				return err
			}

			var devices []sash.InputDevice
			err = query(cmd.Context(), cfg, func(p *sash.Platform) error {
				devices = p.InputDevices()
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to query input devices: %w", err)
			}
			devices = filterDevices(devices, pointersOnly)

			if mode == outputJSON {
				return writeJSON(out, devices)
			}
			if len(devices) == 0 {
				_, err = fmt.Fprintln(out, "no input devices tracked")
				return err
			}
			_, err = fmt.Fprintln(out, deviceTable(devices))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", outputAuto, "output format: auto, table or json")
	cmd.Flags().BoolVar(&pointersOnly, "pointers", false, "only list pointer devices")
	return cmd
}

func filterDevices(devices []sash.InputDevice, pointersOnly bool) []sash.InputDevice {
	out := make([]sash.InputDevice, 0, len(devices))
	for _, d := range devices {
		if pointersOnly && !d.Pointer {
			continue
		}
		out = append(out, d)
	}
	return out
}

// commandContext returns ctx or a background context when cobra was run
// without one.
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
