// Package platform provides the operating system capabilities the daemon
// drives: window lookup and control, key injection, keyboard state,
// clipboard and per-application volume.
package platform

import (
	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/window"
)

// Options configures the platform capabilities
type Options struct {
	Target       window.Target // Target application
	InjectorPath string        // Script interpreter override; empty uses the platform default
}

// Platform bundles the capabilities available on the running OS.
// Capabilities that do not exist report player.ErrUnsupported.
type Platform struct {
	Windows   player.WindowService
	Injector  player.KeyInjector
	Keyboard  player.Keyboard
	Clipboard player.Clipboard
	Mixer     player.Mixer

	closers []func() error
}

// Close releases any connections held by the platform
func (p *Platform) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// unsupported implements every capability by returning ErrUnsupported and
// reporting the target as not running
type unsupported struct{}

func (unsupported) ProcessIDs(string) []int { return nil }
func (unsupported) FindProcessWindows(string) []player.Window { return nil }
func (unsupported) Title(player.Window) string { return "" }
func (unsupported) Placement(player.Window) player.Placement { return player.PlacementNormal }
func (unsupported) SetPlacement(player.Window, player.Placement) error { return player.ErrUnsupported }
func (unsupported) BringToForeground(player.Window) error { return player.ErrUnsupported }
func (unsupported) PostAppCommand(player.Window, player.Action) error { return player.ErrUnsupported }
func (unsupported) ModifiersHeld() bool { return false }
func (unsupported) Paste() error { return player.ErrUnsupported }
func (unsupported) SetText(string) error { return player.ErrUnsupported }
func (unsupported) VolumeUp(string) error { return player.ErrUnsupported }
func (unsupported) VolumeDown(string) error { return player.ErrUnsupported }
func (unsupported) ToggleMute(string) error { return player.ErrUnsupported }
