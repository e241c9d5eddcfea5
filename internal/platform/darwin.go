//go:build darwin

package platform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/window"
	"github.com/rs/zerolog"
)

// DefaultTarget is the Spotify desktop client as seen by System Events
var DefaultTarget = window.Target{ProcessName: "Spotify", WindowClass: "AXStandardWindow"}

// SeekScripts returns the key injector scripts for FastForward and Rewind
func SeekScripts(target window.Target) (forward, rewind string) {
	seek := `tell application %q to set player position to (player position %s 5)`
	return fmt.Sprintf(seek, target.ProcessName, "+"), fmt.Sprintf(seek, target.ProcessName, "-")
}

// New returns the AppleScript implementation
func New(opts Options, logger zerolog.Logger) (*Platform, error) {
	path := opts.InjectorPath
	if path == "" {
		path = "osascript"
	}
	osa := scriptRunner{path: path, args: []string{"-"}}
	app := opts.Target.ProcessName

	return &Platform{
		Windows:   &appleScriptWindows{osa: osa, app: app, logger: logger.With().Str("component", "platform").Logger()},
		Injector:  osa,
		Keyboard:  appleScriptKeyboard{osa: osa},
		Clipboard: commandClipboard{name: "pbcopy"},
		Mixer:     appleScriptMixer{osa: osa},
	}, nil
}

// appleScriptWindows implements player.WindowService through System Events.
// Window handles are 1-based window indexes within the process.
type appleScriptWindows struct {
	osa    scriptRunner
	app    string
	logger zerolog.Logger
}

func (w *appleScriptWindows) run(script string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), helperTimeout)
	defer cancel()
	return w.osa.output(ctx, script)
}

func (w *appleScriptWindows) ProcessIDs(name string) []int {
	return processIDs(name)
}

func (w *appleScriptWindows) FindProcessWindows(name string) []player.Window {
	pids := processIDs(name)
	if len(pids) == 0 {
		return nil
	}

	script := fmt.Sprintf(`tell application "System Events" to get subrole of every window of process %q`, name)
	out, err := w.run(script)
	if err != nil {
		w.logger.Debug().Err(err).Msg("Failed to list windows")
		return nil
	}

	var found []player.Window
	for i, role := range splitList(out) {
		found = append(found, player.Window{Handle: uintptr(i + 1), PID: pids[0], Class: role})
	}
	return found
}

// splitList splits an AppleScript list printed as "a, b, c"
func splitList(out string) []string {
	if out == "" {
		return nil
	}
	parts := strings.Split(out, ", ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (w *appleScriptWindows) Title(win player.Window) string {
	script := fmt.Sprintf(`tell application "System Events" to get name of window %d of process %q`, win.Handle, w.app)
	out, err := w.run(script)
	if err != nil {
		return ""
	}
	return out
}

func (w *appleScriptWindows) Placement(win player.Window) player.Placement {
	script := fmt.Sprintf(`tell application "System Events" to get value of attribute "AXMinimized" of window %d of process %q`, win.Handle, w.app)
	out, err := w.run(script)
	if err != nil {
		return player.PlacementNormal
	}
	if minimized, _ := strconv.ParseBool(out); minimized {
		return player.PlacementMinimized
	}
	return player.PlacementNormal
}

func (w *appleScriptWindows) SetPlacement(win player.Window, p player.Placement) error {
	minimized := p == player.PlacementMinimized
	script := fmt.Sprintf(`tell application "System Events" to set value of attribute "AXMinimized" of window %d of process %q to %t`, win.Handle, w.app, minimized)
	if _, err := w.run(script); err != nil {
		return fmt.Errorf("failed to set window placement: %w", err)
	}
	return nil
}

func (w *appleScriptWindows) BringToForeground(player.Window) error {
	if _, err := w.run(fmt.Sprintf(`tell application %q to activate`, w.app)); err != nil {
		return fmt.Errorf("failed to activate %s: %w", w.app, err)
	}
	return nil
}

// appleScriptCommands maps actions to statements; %q is the application
var appleScriptCommands = map[player.Action]string{
	player.ActionPlayPause:     `tell application %q to playpause`,
	player.ActionStop:          `tell application %q to pause`,
	player.ActionNextTrack:     `tell application %q to next track`,
	player.ActionPreviousTrack: `tell application %q to previous track`,
}

// systemVolumeCommands change the output device like the media keys do
var systemVolumeCommands = map[player.Action]string{
	player.ActionVolumeUp:   `set volume output volume ((output volume of (get volume settings)) + 6)`,
	player.ActionVolumeDown: `set volume output volume ((output volume of (get volume settings)) - 6)`,
	player.ActionMute:       `set volume output muted not (output muted of (get volume settings))`,
}

func (w *appleScriptWindows) PostAppCommand(_ player.Window, a player.Action) error {
	script, ok := systemVolumeCommands[a]
	if !ok {
		format, ok := appleScriptCommands[a]
		if !ok {
			return player.ErrUnsupported
		}
		script = fmt.Sprintf(format, w.app)
	}
	if _, err := w.run(script); err != nil {
		return fmt.Errorf("failed to send %s: %w", a, err)
	}
	return nil
}

type appleScriptKeyboard struct {
	osa scriptRunner
}

// ModifiersHeld always reports false; System Events cannot read key state
func (appleScriptKeyboard) ModifiersHeld() bool { return false }

func (k appleScriptKeyboard) Paste() error {
	ctx, cancel := context.WithTimeout(context.Background(), helperTimeout)
	defer cancel()
	return k.osa.RunScript(ctx, `tell application "System Events" to keystroke "v" using command down`)
}

// appleScriptMixer changes the application's own volume
type appleScriptMixer struct {
	osa scriptRunner
}

func (m appleScriptMixer) run(script string) error {
	ctx, cancel := context.WithTimeout(context.Background(), helperTimeout)
	defer cancel()
	return m.osa.RunScript(ctx, script)
}

func (m appleScriptMixer) VolumeUp(app string) error {
	return m.run(fmt.Sprintf(`tell application %q to set sound volume to (sound volume + 10)`, app))
}

func (m appleScriptMixer) VolumeDown(app string) error {
	return m.run(fmt.Sprintf(`tell application %q to set sound volume to (sound volume - 10)`, app))
}

func (m appleScriptMixer) ToggleMute(string) error {
	return player.ErrUnsupported
}
