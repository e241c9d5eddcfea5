//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/window"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

// DefaultTarget is the Spotify desktop client's main window
var DefaultTarget = window.Target{ProcessName: "spotify", WindowClass: "Chrome_WidgetWin_0"}

// SeekScripts returns the key injector scripts for FastForward and Rewind
func SeekScripts(target window.Target) (forward, rewind string) {
	return ahkSeekScript(target.WindowClass, "Right"), ahkSeekScript(target.WindowClass, "Left")
}

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procEnumThreadWindows  = user32.NewProc("EnumThreadWindows")
	procGetClassNameW      = user32.NewProc("GetClassNameW")
	procGetWindowTextW     = user32.NewProc("GetWindowTextW")
	procGetWindowTextLenW  = user32.NewProc("GetWindowTextLengthW")
	procGetWindowPlacement = user32.NewProc("GetWindowPlacement")
	procShowWindow         = user32.NewProc("ShowWindow")
	procSetForeground      = user32.NewProc("SetForegroundWindow")
	procSendMessageW       = user32.NewProc("SendMessageW")
	procGetAsyncKeyState   = user32.NewProc("GetAsyncKeyState")
	procKeybdEvent         = user32.NewProc("keybd_event")
)

const (
	wmAppCommand = 0x0319

	swShowMinimized = 2
	swShowMaximized = 3
	swRestore       = 9

	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkV       = 0x56

	keyEventKeyUp = 0x0002
)

type point struct{ X, Y int32 }

type rect struct{ Left, Top, Right, Bottom int32 }

type windowPlacement struct {
	Length         uint32
	Flags          uint32
	ShowCmd        uint32
	MinPosition    point
	MaxPosition    point
	NormalPosition rect
}

// enumThreadWindowsCallback appends each window to the *[]uintptr passed
// as lParam. Created once; Windows limits the number of callbacks.
var enumThreadWindowsCallback = windows.NewCallback(func(hwnd, lparam uintptr) uintptr {
	list := (*[]uintptr)(unsafe.Pointer(lparam))
	*list = append(*list, hwnd)
	return 1
})

// New returns the Win32 implementation. Key injection and the clipboard go
// through AutoHotkey.
func New(opts Options, logger zerolog.Logger) (*Platform, error) {
	ahk := newAutoHotkey(opts.InjectorPath)

	return &Platform{
		Windows:   &win32Windows{logger: logger.With().Str("component", "platform").Logger()},
		Injector:  ahk,
		Keyboard:  win32Keyboard{},
		Clipboard: ahkClipboard{runner: ahk},
		Mixer:     coreAudioMixer{processName: opts.Target.ProcessName},
	}, nil
}

type win32Windows struct {
	logger zerolog.Logger
}

func (w *win32Windows) ProcessIDs(name string) []int {
	return processIDs(name)
}

// FindProcessWindows walks the threads of every matching process and lists
// their top-level windows
func (w *win32Windows) FindProcessWindows(name string) []player.Window {
	pids := processIDs(name)
	if len(pids) == 0 {
		return nil
	}

	threads, err := threadsByProcess()
	if err != nil {
		w.logger.Debug().Err(err).Msg("Failed to snapshot threads")
		return nil
	}

	var found []player.Window
	for _, pid := range pids {
		for _, tid := range threads[uint32(pid)] {
			var handles []uintptr
			procEnumThreadWindows.Call(uintptr(tid), enumThreadWindowsCallback, uintptr(unsafe.Pointer(&handles)))
			for _, h := range handles {
				found = append(found, player.Window{Handle: h, PID: pid, Class: className(h)})
			}
		}
	}
	return found
}

// threadsByProcess returns thread ids grouped by owning process, in
// snapshot order
func threadsByProcess() (map[uint32][]uint32, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPTHREAD, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	threads := make(map[uint32][]uint32)
	var entry windows.ThreadEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	for err = windows.Thread32First(snap, &entry); err == nil; err = windows.Thread32Next(snap, &entry) {
		threads[entry.OwnerProcessID] = append(threads[entry.OwnerProcessID], entry.ThreadID)
	}
	return threads, nil
}

func className(hwnd uintptr) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}

func (w *win32Windows) Title(win player.Window) string {
	length, _, _ := procGetWindowTextLenW.Call(win.Handle)
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	procGetWindowTextW.Call(win.Handle, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

func (w *win32Windows) Placement(win player.Window) player.Placement {
	var wp windowPlacement
	wp.Length = uint32(unsafe.Sizeof(wp))
	if ok, _, _ := procGetWindowPlacement.Call(win.Handle, uintptr(unsafe.Pointer(&wp))); ok == 0 {
		return player.PlacementNormal
	}

	switch wp.ShowCmd {
	case swShowMinimized:
		return player.PlacementMinimized
	case swShowMaximized:
		return player.PlacementMaximized
	default:
		return player.PlacementNormal
	}
}

func (w *win32Windows) SetPlacement(win player.Window, p player.Placement) error {
	cmd := uintptr(swRestore)
	switch p {
	case player.PlacementMinimized:
		cmd = swShowMinimized
	case player.PlacementMaximized:
		cmd = swShowMaximized
	}
	// ShowWindow returns the previous visibility, not success
	procShowWindow.Call(win.Handle, cmd)
	return nil
}

func (w *win32Windows) BringToForeground(win player.Window) error {
	if ok, _, err := procSetForeground.Call(win.Handle); ok == 0 {
		return fmt.Errorf("failed to set foreground window: %w", err)
	}
	return nil
}

func (w *win32Windows) PostAppCommand(win player.Window, a player.Action) error {
	// The action value is already the WM_APPCOMMAND lParam
	procSendMessageW.Call(win.Handle, wmAppCommand, 0, uintptr(a))
	return nil
}

type win32Keyboard struct{}

func (win32Keyboard) ModifiersHeld() bool {
	for _, vk := range []uintptr{vkShift, vkControl, vkMenu} {
		state, _, _ := procGetAsyncKeyState.Call(vk)
		if state&0x8000 != 0 {
			return true
		}
	}
	return false
}

func (win32Keyboard) Paste() error {
	procKeybdEvent.Call(vkControl, 0, 0, 0)
	procKeybdEvent.Call(vkV, 0, 0, 0)
	procKeybdEvent.Call(vkV, 0, keyEventKeyUp, 0)
	procKeybdEvent.Call(vkControl, 0, keyEventKeyUp, 0)
	return nil
}
