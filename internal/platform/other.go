//go:build !windows && !linux && !darwin

package platform

import (
	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/window"
	"github.com/rs/zerolog"
)

// DefaultTarget is the Spotify desktop client
var DefaultTarget = window.Target{ProcessName: "spotify", WindowClass: "Spotify"}

// SeekScripts returns no scripts; seeking is unsupported here
func SeekScripts(window.Target) (forward, rewind string) {
	return "", ""
}

// New returns a platform on which the target is never running
func New(Options, zerolog.Logger) (*Platform, error) {
	return &Platform{
		Windows:   unsupported{},
		Injector:  scriptRunner{path: "false"},
		Keyboard:  unsupported{},
		Clipboard: unsupported{},
		Mixer:     unsupported{},
	}, nil
}

// Launch is unsupported here
func Launch(string, window.Target) error {
	return player.ErrUnsupported
}
