package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/sash"
	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/menu"
)

// Demo menu commands.
const (
	cmdNewWindow uint32 = iota + 1
	cmdCloseWindow
	cmdQuit
	cmdTracePointer
)

// demoMenu builds the menu attached to every demo window.
func demoMenu(tracePointer bool) *menu.Tree {
	b := menu.NewBuilder()
	must := func(id menu.ItemID, err error) menu.ItemID {
		if err != nil {
			panic(err)
		}
		return id
	}

	file := must(b.Append(menu.Root, menu.Submenu("File")))
	must(b.Append(file, menu.Entry("New Window", menu.Custom(cmdNewWindow))))
	must(b.Append(file, menu.Entry("Close Window", menu.Custom(cmdCloseWindow))))
	must(b.Append(file, menu.Separator()))
	must(b.Append(file, menu.Entry("Quit", menu.Custom(cmdQuit))))

	edit := must(b.Append(menu.Root, menu.Submenu("Edit")))
	must(b.Append(edit, menu.Entry("Undo", menu.CommandUndo)))
	must(b.Append(edit, menu.Entry("Redo", menu.CommandRedo)))
	must(b.Append(edit, menu.Separator()))
	must(b.Append(edit, menu.Entry("Copy", menu.CommandCopy)))
	must(b.Append(edit, menu.Entry("Paste", menu.CommandPaste)))

	view := must(b.Append(menu.Root, menu.Submenu("View")))
	trace := menu.Entry("Trace Pointer", menu.Custom(cmdTracePointer))
	trace.Checked = tracePointer
	must(b.Append(view, trace))

	return b.Finalize()
}

// demoHandler logs every callback and implements the demo menu.
type demoHandler struct {
	tracePointer bool
	opened       int
	paints       map[sash.WindowID]int
	ticks        int
}

func newDemoHandler() *demoHandler {
	return &demoHandler{paints: make(map[sash.WindowID]int)}
}

func (h *demoHandler) Self() any { return h }

func (h *demoHandler) SurfaceAvailable(p *sash.Platform, win sash.WindowID) {
	logging.Info("surface available", "window", win, "backend", p.BackendName())
}

func (h *demoHandler) Paint(_ *sash.Platform, win sash.WindowID, invalid sash.Region) {
	h.paints[win]++
	b := invalid.Bounds()
	logging.Debug("paint", "window", win, "count", h.paints[win], "rects", len(invalid.Rects),
		"bounds", fmt.Sprintf("%dx%d+%d+%d", b.Width, b.Height, b.X, b.Y))
}

func (h *demoHandler) MenuItemSelected(p *sash.Platform, win sash.WindowID, cmd menu.Command) {
	logging.Info("menu item selected", "window", win, "command", cmd.String())
	n, ok := cmd.IsCustom()
	if !ok {
		return
	}
	switch n {
	case cmdNewWindow:
		h.openWindow(p)
	case cmdCloseWindow:
		h.close(p, win)
	case cmdQuit:
		p.Stop()
	case cmdTracePointer:
		h.tracePointer = !h.tracePointer
		if err := p.SetWindowMenu(win, demoMenu(h.tracePointer)); err != nil {
			logging.Warn("failed to update menu", "window", win, "err", err)
		}
	}
}

func (h *demoHandler) CloseRequested(p *sash.Platform, win sash.WindowID) {
	logging.Info("close requested", "window", win)
	h.close(p, win)
}

func (h *demoHandler) CreatingWindowFailed(p *sash.Platform, win sash.WindowID, err error) {
	logging.Error("creating window failed", "window", win, "err", err)
	if p.Windows() == 0 {
		p.Stop()
	}
}

func (h *demoHandler) PointerEvent(_ *sash.Platform, win sash.WindowID, ev sash.PointerEvent) {
	if !h.tracePointer {
		return
	}
	logging.Info("pointer", "window", win, "action", ev.Action.String(), "x", ev.X, "y", ev.Y, "button", ev.Button)
}

func (h *demoHandler) openWindow(p *sash.Platform) sash.WindowID {
	h.opened++
	n := h.opened
	return p.BuildNewWindow(func(d *sash.WindowDescription) {
		if n > 1 {
			d.Title = fmt.Sprintf("%s (%d)", d.Title, n)
		}
		d.Menu = demoMenu(h.tracePointer)
	})
}

// close closes win and stops the loop with the last window.
func (h *demoHandler) close(p *sash.Platform, win sash.WindowID) {
	if err := p.CloseWindow(win); err != nil {
		logging.Warn("failed to close window", "window", win, "err", err)
	}
	delete(h.paints, win)
	if p.Windows() == 0 {
		logging.Info("last window closed")
		p.Stop()
	}
}

func (c *cli) demoCmd() *cobra.Command {
	var (
		windows  int
		duration time.Duration
		tick     time.Duration
		trace    bool
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Open demo windows with a native menu",
		Long: `Open one or more windows with a File/Edit/View menu and log every
surface, paint, menu, close and pointer callback. The demo ends when the last
window closes, on File > Quit, on interrupt, or after --duration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if windows < 1 {
				return fmt.Errorf("--windows must be at least 1")
			}
			cfg, err := c.setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			h := newDemoHandler()
			h.tracePointer = trace
			return sash.LaunchThen(builder(ctx, cfg), h, func(h *demoHandler, p *sash.Platform) {
				for range windows {
					h.openWindow(p)
				}
				runDemoTimers(ctx, sash.Handle[*demoHandler](p), duration, tick)
			})
		},
	}
	cmd.Flags().IntVarP(&windows, "windows", "n", 1, "number of windows to open")
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 runs until closed)")
	cmd.Flags().DurationVar(&tick, "tick", 0, "log a heartbeat from a background goroutine at this interval")
	cmd.Flags().BoolVar(&trace, "trace-pointer", false, "log pointer events")
	return cmd
}

// runDemoTimers drives the loop from other goroutines through handle: it
// stops on ctx cancellation or after duration, and posts a heartbeat every
// tick.
func runDemoTimers(ctx context.Context, handle sash.LoopHandle[*demoHandler], duration, tick time.Duration) {
	go func() {
		var deadline <-chan time.Time
		if duration > 0 {
			timer := time.NewTimer(duration)
			defer timer.Stop()
			deadline = timer.C
		}
		var ticks <-chan time.Time
		if tick > 0 {
			ticker := time.NewTicker(tick)
			defer ticker.Stop()
			ticks = ticker.C
		}

		for {
			select {
			case <-ctx.Done():
				logging.Info("interrupted")
				handle.Raw().Stop()
				return
			case <-deadline:
				logging.Info("demo duration elapsed", "duration", duration)
				handle.Raw().Stop()
				return
			case <-ticks:
				err := handle.RunOnMain(func(h *demoHandler, p *sash.Platform) {
					h.ticks++
					logging.Info("heartbeat", "tick", h.ticks, "windows", p.Windows())
				})
				if err != nil {
					return
				}
			}
		}
	}()
}
