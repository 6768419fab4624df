//go:build windows

package win32

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	shcore = windows.NewLazySystemDLL("shcore.dll")

	procRegisterClassExW    = user32.NewProc("RegisterClassExW")
	procCreateWindowExW     = user32.NewProc("CreateWindowExW")
	procDestroyWindow       = user32.NewProc("DestroyWindow")
	procDefWindowProcW      = user32.NewProc("DefWindowProcW")
	procShowWindow          = user32.NewProc("ShowWindow")
	procUpdateWindow        = user32.NewProc("UpdateWindow")
	procAdjustWindowRectEx  = user32.NewProc("AdjustWindowRectEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessageW    = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procBeginPaint          = user32.NewProc("BeginPaint")
	procEndPaint            = user32.NewProc("EndPaint")
	procLoadCursorW         = user32.NewProc("LoadCursorW")
	procSetProcessDPIAware  = user32.NewProc("SetProcessDPIAware")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
	procCreateMenu          = user32.NewProc("CreateMenu")
	procCreatePopupMenu     = user32.NewProc("CreatePopupMenu")
	procAppendMenuW         = user32.NewProc("AppendMenuW")
	procSetMenu             = user32.NewProc("SetMenu")
	procDestroyMenu         = user32.NewProc("DestroyMenu")
	procDrawMenuBar         = user32.NewProc("DrawMenuBar")

	procGetDpiForMonitor = shcore.NewProc("GetDpiForMonitor")
)

const (
	wmAppWake = 0x8000 + 1 // WM_APP + 1

	wmDestroy = 0x0002
	wmSize    = 0x0005
	wmPaint   = 0x000F
	wmClose   = 0x0010
	wmQuit    = 0x0012
	wmCommand = 0x0111

	wsOverlappedWindow = 0x00CF0000
	wsPopup            = 0x80000000
	wsThickFrame       = 0x00040000
	wsMaximizeBox      = 0x00010000
	wsExAppWindow      = 0x00040000
	cwUseDefault       = 0x80000000

	csHRedraw = 0x0002
	csVRedraw = 0x0001

	swShow = 5

	idcArrow = 32512

	mfString    = 0x0000
	mfGrayed    = 0x0001
	mfChecked   = 0x0008
	mfPopup     = 0x0010
	mfSeparator = 0x0800

	monitorInfoPrimary = 0x1
	mdtEffectiveDPI    = 0
)

type point struct {
	X, Y int32
}

type rect struct {
	Left, Top, Right, Bottom int32
}

type msg struct {
	Hwnd    windows.HWND
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
	Private uint32
}

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type paintStruct struct {
	HDC       windows.Handle
	Erase     int32
	Paint     rect
	Restore   int32
	IncUpdate int32
	Reserved  [32]byte
}

type monitorInfoEx struct {
	Size    uint32
	Monitor rect
	Work    rect
	Flags   uint32
	Device  [32]uint16
}

func registerClassEx(wc *wndClassEx) (uint16, error) {
	r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(wc)))
	if r == 0 {
		return 0, err
	}
	return uint16(r), nil
}

func createWindowEx(exStyle uint32, class uint16, title string, style uint32, w, h int32, instance windows.Handle) (windows.HWND, error) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	width, height := uintptr(cwUseDefault), uintptr(cwUseDefault)
	if w > 0 && h > 0 {
		width, height = uintptr(w), uintptr(h)
	}
	r, _, err := procCreateWindowExW.Call(
		uintptr(exStyle),
		uintptr(class),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(style),
		cwUseDefault, cwUseDefault,
		width, height,
		0, 0,
		uintptr(instance),
		0)
	if r == 0 {
		return 0, err
	}
	return windows.HWND(r), nil
}

func destroyWindow(hwnd windows.HWND) error {
	if r, _, err := procDestroyWindow.Call(uintptr(hwnd)); r == 0 {
		return err
	}
	return nil
}

func defWindowProc(hwnd windows.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	r, _, _ := procDefWindowProcW.Call(uintptr(hwnd), uintptr(msg), wParam, lParam)
	return r
}

func showWindow(hwnd windows.HWND) {
	procShowWindow.Call(uintptr(hwnd), swShow)
	procUpdateWindow.Call(uintptr(hwnd))
}

// adjustWindowRect grows a client size to the outer size for style.
func adjustWindowRect(width, height int32, style, exStyle uint32, hasMenu bool) (int32, int32) {
	r := rect{Right: width, Bottom: height}
	var menuFlag uintptr
	if hasMenu {
		menuFlag = 1
	}
	if ok, _, _ := procAdjustWindowRectEx.Call(uintptr(unsafe.Pointer(&r)), uintptr(style), menuFlag, uintptr(exStyle)); ok == 0 {
		return width, height
	}
	return r.Right - r.Left, r.Bottom - r.Top
}

// getMessage returns 1 for a message, 0 for WM_QUIT and -1 on error.
func getMessage(m *msg) (int32, error) {
	r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(m)), 0, 0, 0)
	if int32(r) == -1 {
		return -1, err
	}
	return int32(r), nil
}

func translateMessage(m *msg) {
	procTranslateMessage.Call(uintptr(unsafe.Pointer(m)))
}

func dispatchMessage(m *msg) {
	procDispatchMessageW.Call(uintptr(unsafe.Pointer(m)))
}

func postThreadMessage(thread uint32, msg uint32, wParam, lParam uintptr) error {
	if r, _, err := procPostThreadMessageW.Call(uintptr(thread), uintptr(msg), wParam, lParam); r == 0 {
		return err
	}
	return nil
}

func beginPaint(hwnd windows.HWND, ps *paintStruct) {
	procBeginPaint.Call(uintptr(hwnd), uintptr(unsafe.Pointer(ps)))
}

func endPaint(hwnd windows.HWND, ps *paintStruct) {
	procEndPaint.Call(uintptr(hwnd), uintptr(unsafe.Pointer(ps)))
}

func loadCursor(id uintptr) windows.Handle {
	r, _, _ := procLoadCursorW.Call(0, id)
	return windows.Handle(r)
}

func setProcessDPIAware() {
	procSetProcessDPIAware.Call()
}

func enumDisplayMonitors(cb uintptr) error {
	if r, _, err := procEnumDisplayMonitors.Call(0, 0, cb, 0); r == 0 {
		return err
	}
	return nil
}

func getMonitorInfo(hmon uintptr) (monitorInfoEx, error) {
	var info monitorInfoEx
	info.Size = uint32(unsafe.Sizeof(info))
	if r, _, err := procGetMonitorInfoW.Call(hmon, uintptr(unsafe.Pointer(&info))); r == 0 {
		return info, err
	}
	return info, nil
}

// monitorDPI reports the effective DPI, or 0 where shcore is missing.
func monitorDPI(hmon uintptr) uint32 {
	if procGetDpiForMonitor.Find() != nil {
		return 0
	}
	var x, y uint32
	r, _, _ := procGetDpiForMonitor.Call(hmon, mdtEffectiveDPI, uintptr(unsafe.Pointer(&x)), uintptr(unsafe.Pointer(&y)))
	if r != 0 {
		return 0
	}
	return x
}

func createMenu(popup bool) (windows.Handle, error) {
	proc := procCreateMenu
	if popup {
		proc = procCreatePopupMenu
	}
	r, _, err := proc.Call()
	if r == 0 {
		return 0, err
	}
	return windows.Handle(r), nil
}

func appendMenu(m windows.Handle, flags uint32, id uintptr, label string) error {
	var labelPtr *uint16
	if flags&mfSeparator == 0 {
		p, err := windows.UTF16PtrFromString(label)
		if err != nil {
			return err
		}
		labelPtr = p
	}
	if r, _, err := procAppendMenuW.Call(uintptr(m), uintptr(flags), id, uintptr(unsafe.Pointer(labelPtr))); r == 0 {
		return err
	}
	return nil
}

func setMenu(hwnd windows.HWND, m windows.Handle) error {
	if r, _, err := procSetMenu.Call(uintptr(hwnd), uintptr(m)); r == 0 {
		return err
	}
	procDrawMenuBar.Call(uintptr(hwnd))
	return nil
}

func destroyMenu(m windows.Handle) {
	procDestroyMenu.Call(uintptr(m))
}
