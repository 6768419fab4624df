package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/sash"
	"github.com/1broseidon/sash/internal/inspect"
	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/menu"
)

func (c *cli) mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP inspection server (stdio transport)",
		Long: `Start the MCP server on stdio. It connects to the window system and
answers list_monitors, list_input_devices, backend_info and describe_menu.
Designed to be invoked by MCP clients, for example:

  claude mcp add sash -- sash mcp serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := inspect.NewServer(inspect.Application{}, map[string]*menu.Tree{
				inspect.DefaultMenu: demoMenu(false),
			})

			served := make(chan error, 1)
			started := false
			launchErr := sash.LaunchThen(builder(ctx, cfg), &idleHandler{}, func(_ *idleHandler, p *sash.Platform) {
				started = true
				backend := p.BackendName()
				handle := p.RawHandle()
				go func() {
					defer handle.Stop()
					logging.Info("mcp server listening on stdio", "backend", backend)
					served <- server.Run(ctx)
				}()
			})
			// The loop can end first when the display goes away.
			stop()
			var serveErr error
			if started {
				serveErr = <-served
			}
			if launchErr != nil {
				return launchErr
			}
			if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
				return serveErr
			}
			return nil
		},
	})
	return cmd
}
