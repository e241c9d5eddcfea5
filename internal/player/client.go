package player

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by platform capabilities that have no
// implementation on the running OS.
var ErrUnsupported = errors.New("not supported on this platform")

// Window identifies a top-level window of the target application
type Window struct {
	Handle uintptr // Native window handle (HWND on Windows, XID on X11)
	PID    int     // Owning process
	Class  string  // Window class, e.g. "Chrome_WidgetWin_0"
}

// Placement is the show state of a window
type Placement int

const (
	PlacementNormal Placement = iota
	PlacementMinimized
	PlacementMaximized
)

// String returns a human-readable representation of the Placement
func (p Placement) String() string {
	switch p {
	case PlacementNormal:
		return "normal"
	case PlacementMinimized:
		return "minimized"
	case PlacementMaximized:
		return "maximized"
	default:
		return "unknown"
	}
}

// WindowService defines the OS calls needed to observe and drive the target.
// Implementations report a vanished window as an empty result rather than
// an error.
type WindowService interface {
	// ProcessIDs returns the ids of running processes with the given name
	ProcessIDs(processName string) []int

	// FindProcessWindows returns the top-level windows of all processes with
	// the given name, in enumeration order
	FindProcessWindows(processName string) []Window

	// Title returns the window's title text
	Title(w Window) string

	// Placement returns the window's current show state
	Placement(w Window) Placement

	// SetPlacement minimizes or restores the window. Restoring a window that
	// was maximized before being minimized brings it back maximized.
	SetPlacement(w Window, p Placement) error

	// BringToForeground activates the window and gives it focus
	BringToForeground(w Window) error

	// PostAppCommand sends a media command to the window
	PostAppCommand(w Window, a Action) error
}

// KeyInjector runs key automation scripts for commands that have no native
// message equivalent
type KeyInjector interface {
	RunScript(ctx context.Context, script string) error
}

// Keyboard reads modifier state and synthesizes the paste shortcut
type Keyboard interface {
	// ModifiersHeld reports whether Shift, Ctrl or Alt is currently down
	ModifiersHeld() bool

	// Paste sends Ctrl+V to the focused window
	Paste() error
}

// Clipboard writes text to the system clipboard
type Clipboard interface {
	SetText(text string) error
}

// Mixer changes the audio session volume of a single application
type Mixer interface {
	VolumeUp(app string) error
	VolumeDown(app string) error
	ToggleMute(app string) error
}
