package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/sash/internal/logging"
	"github.com/1broseidon/sash/internal/wsys"
)

// ErrNoMonitors is returned when neither RandR nor Xinerama report an
// active output.
var ErrNoMonitors = errors.New("no monitors found")

// Monitors returns the active monitors in CRTC order. Each monitor's work
// area excludes the struts reserved by dock windows on that monitor.
func (c *Connection) Monitors(requireRandR bool) ([]wsys.Monitor, error) {
	monitors, err := c.randrMonitors()
	if err != nil {
		if requireRandR {
			return nil, err
		}
		logging.Debug("randr unavailable, falling back to xinerama", "err", err)
		if monitors, err = c.xineramaMonitors(); err != nil {
			return nil, err
		}
	}
	if len(monitors) == 0 {
		return nil, ErrNoMonitors
	}

	c.applyWorkAreas(monitors)
	return monitors, nil
}

func (c *Connection) randrMonitors() ([]wsys.Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []wsys.Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(conn, crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		isPrimary := false
		for _, out := range crtcInfo.Outputs {
			if out == primary && primary != 0 {
				isPrimary = true
			}
		}

		bounds := wsys.Rect{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, wsys.Monitor{
			ID:       c.monitorIDs.For(fmt.Sprintf("crtc:%d", crtc)),
			Name:     outputName,
			Primary:  isPrimary,
			Bounds:   bounds,
			WorkArea: bounds,
			Scale:    1,
		})
	}

	markFirstPrimary(monitors)
	return monitors, nil
}

func (c *Connection) xineramaMonitors() ([]wsys.Monitor, error) {
	conn := c.XUtil.Conn()
	if err := xinerama.Init(conn); err != nil {
		return nil, &wsys.BackendBindError{Backend: "x11", Global: "RANDR or XINERAMA", Err: err}
	}
	reply, err := xinerama.QueryScreens(conn).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query xinerama screens: %w", err)
	}

	monitors := make([]wsys.Monitor, 0, len(reply.ScreenInfo))
	for i, screen := range reply.ScreenInfo {
		bounds := wsys.Rect{
			X:      int(screen.XOrg),
			Y:      int(screen.YOrg),
			Width:  int(screen.Width),
			Height: int(screen.Height),
		}
		monitors = append(monitors, wsys.Monitor{
			ID:       c.monitorIDs.For(fmt.Sprintf("xinerama:%d", i)),
			Name:     fmt.Sprintf("Xinerama%d", i),
			Bounds:   bounds,
			WorkArea: bounds,
			Scale:    1,
		})
	}
	markFirstPrimary(monitors)
	return monitors, nil
}

// markFirstPrimary flags the first monitor as primary when the server did
// not name one.
func markFirstPrimary(monitors []wsys.Monitor) {
	for _, m := range monitors {
		if m.Primary {
			return
		}
	}
	if len(monitors) > 0 {
		monitors[0].Primary = true
	}
}

func (c *Connection) applyWorkAreas(monitors []wsys.Monitor) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)
	struts := c.dockStruts(rootWidth, rootHeight)

	var desktopArea *wsys.Rect
	if len(struts) == 0 {
		desktopArea = c.currentWorkarea()
	}

	for i := range monitors {
		mon := &monitors[i]
		if wa, ok := workAreaFromStruts(mon.Bounds, rootWidth, rootHeight, struts); ok {
			mon.WorkArea = wa
			continue
		}
		// Fallback: the desktop-wide _NET_WORKAREA, clipped to this monitor.
		if desktopArea != nil {
			if wa := mon.Bounds.Intersect(*desktopArea); !wa.Empty() {
				mon.WorkArea = wa
			}
		}
	}
}

// dockStruts collects the partial struts of every dock window.
func (c *Connection) dockStruts(rootWidth, rootHeight int) []ewmh.WmStrutPartial {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var out []ewmh.WmStrutPartial
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil {
			continue
		}

		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			out = append(out, *sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			out = append(out, fullStrut(s, rootWidth, rootHeight))
		}
	}
	return out
}

func (c *Connection) currentWorkarea() *wsys.Rect {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return nil
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]
	return &wsys.Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}
}

func fullStrut(s *ewmh.WmStrut, rootWidth, rootHeight int) ewmh.WmStrutPartial {
	return ewmh.WmStrutPartial{
		Left:         s.Left,
		Right:        s.Right,
		Top:          s.Top,
		Bottom:       s.Bottom,
		LeftStartY:   0,
		LeftEndY:     uint(rootHeight - 1),
		RightStartY:  0,
		RightEndY:    uint(rootHeight - 1),
		TopStartX:    0,
		TopEndX:      uint(rootWidth - 1),
		BottomStartX: 0,
		BottomEndX:   uint(rootWidth - 1),
	}
}

type insets struct {
	left   int
	right  int
	top    int
	bottom int
}

// workAreaFromStruts shrinks bounds by the struts that overlap it. It
// reports false when no strut touches the monitor.
func workAreaFromStruts(bounds wsys.Rect, rootWidth, rootHeight int, struts []ewmh.WmStrutPartial) (wsys.Rect, bool) {
	var acc insets
	for i := range struts {
		accumulateStrut(bounds, rootWidth, rootHeight, &struts[i], &acc)
	}
	if acc.left == 0 && acc.right == 0 && acc.top == 0 && acc.bottom == 0 {
		return bounds, false
	}

	wa := wsys.Rect{
		X:      bounds.X + acc.left,
		Y:      bounds.Y + acc.top,
		Width:  bounds.Width - (acc.left + acc.right),
		Height: bounds.Height - (acc.top + acc.bottom),
	}
	if wa.Width < 1 {
		wa.Width = 1
	}
	if wa.Height < 1 {
		wa.Height = 1
	}
	return wa, true
}

func accumulateStrut(mon wsys.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *insets) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		band := wsys.Rect{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) + 1 - int(sp.TopStartX), Height: int(sp.Top)}
		acc.top = max(acc.top, mon.Intersect(band).Height)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		band := wsys.Rect{X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom), Width: int(sp.BottomEndX) + 1 - int(sp.BottomStartX), Height: int(sp.Bottom)}
		acc.bottom = max(acc.bottom, mon.Intersect(band).Height)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		band := wsys.Rect{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) + 1 - int(sp.LeftStartY)}
		acc.left = max(acc.left, mon.Intersect(band).Width)
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		band := wsys.Rect{X: rootWidth - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) + 1 - int(sp.RightStartY)}
		acc.right = max(acc.right, mon.Intersect(band).Width)
	}
}
