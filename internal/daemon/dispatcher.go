package daemon

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/rs/zerolog"
)

const (
	// DebounceWindow drops a repeated action arriving sooner than this
	DebounceWindow = 150 * time.Millisecond

	// modifierWait bounds how long a paste waits for the user to release
	// the hotkey's modifiers
	modifierWait = 250 * time.Millisecond
	modifierPoll = 50 * time.Millisecond
)

// DefaultClipboardTemplate is used when no template is configured
const DefaultClipboardTemplate = "{0}"

// Settings are the user preferences the dispatcher consults. They can be
// swapped at runtime with UpdateSettings.
type Settings struct {
	AppName                  string // Application name for the per-app mixer
	ChangeVolumeOnTargetOnly bool
	ClipboardTemplate        string
	FastForwardScript        string // Key Injector script for FastForward
	RewindScript             string // Key Injector script for Rewind
}

// Collaborators are the OS capabilities the dispatcher drives
type Collaborators struct {
	Windows   player.WindowService
	Injector  player.KeyInjector
	Keyboard  player.Keyboard
	Clipboard player.Clipboard
	Mixer     player.Mixer
}

// Dispatcher handles actions one at a time against the target window
type Dispatcher struct {
	locator Locator
	os      Collaborators
	state   *State
	bus     *Bus
	sleep   func(time.Duration)
	logger  zerolog.Logger

	mu       sync.Mutex
	settings Settings
	last     player.Action
	lastAt   time.Time
	handled  bool
}

// NewDispatcher creates a new Dispatcher instance
func NewDispatcher(locator Locator, collab Collaborators, state *State, bus *Bus, settings Settings, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		locator:  locator,
		os:       collab,
		state:    state,
		bus:      bus,
		sleep:    time.Sleep,
		settings: settings,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// UpdateSettings replaces the dispatcher's settings
func (d *Dispatcher) UpdateSettings(s Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings = s
}

// Handle processes one action received at the given time. Calls are
// serialized; the daemon feeds them from a single goroutine.
func (d *Dispatcher) Handle(ctx context.Context, action player.Action, at time.Time) {
	if action == player.ActionNone {
		return
	}

	d.mu.Lock()
	if d.handled && action == d.last && at.Sub(d.lastAt) < DebounceWindow {
		d.mu.Unlock()
		d.logger.Debug().
			Stringer("action", action).
			Msg("Debounced repeated action")
		return
	}
	d.last, d.lastAt, d.handled = action, at, true
	settings := d.settings
	d.mu.Unlock()

	d.logger.Debug().Stringer("action", action).Msg("Handling action")

	songBefore := d.state.Current()

	if err := d.clipboard(action, songBefore, settings); err != nil {
		d.fail(action, err)
		return
	}

	w := d.locator.Locate()
	if w == nil && action != player.ActionSettingsSaved {
		d.logger.Info().
			Stringer("action", action).
			Msg("Target not running")
		d.bus.Emit(TargetUnavailable{Action: action})
		return
	}

	if err := d.dispatch(ctx, action, w, settings); err != nil {
		d.fail(action, err)
		return
	}

	d.bus.Emit(ActionResolved{Action: action, Song: songBefore})
}

// clipboard copies or pastes the song that was playing when the action
// arrived. Nothing happens when there is no song.
func (d *Dispatcher) clipboard(action player.Action, song *player.Song, s Settings) error {
	if action != player.ActionCopyTrackInfo && action != player.ActionPasteTrackInfo {
		return nil
	}
	if song == nil {
		return nil
	}

	text := FormatTrackInfo(s.ClipboardTemplate, song)
	if err := d.os.Clipboard.SetText(text); err != nil {
		return fmt.Errorf("failed to set clipboard: %w", err)
	}

	if action == player.ActionPasteTrackInfo {
		// The hotkey's own modifiers would turn Ctrl+V into something else
		for waited := time.Duration(0); waited < modifierWait && d.os.Keyboard.ModifiersHeld(); waited += modifierPoll {
			d.sleep(modifierPoll)
		}
		if err := d.os.Keyboard.Paste(); err != nil {
			return fmt.Errorf("failed to paste: %w", err)
		}
	}
	return nil
}

// dispatch performs the OS side of the action. w is nil only for
// SettingsSaved.
func (d *Dispatcher) dispatch(ctx context.Context, action player.Action, w *player.Window, s Settings) error {
	if s.ChangeVolumeOnTargetOnly && action.IsVolume() {
		return d.mix(action, s.AppName)
	}

	switch action {
	case player.ActionShowToast, player.ActionCopyTrackInfo,
		player.ActionPasteTrackInfo, player.ActionSettingsSaved:
		return nil

	case player.ActionShowApp:
		return d.toggleWindow(*w)

	case player.ActionFastForward:
		return d.runScript(ctx, s.FastForwardScript)

	case player.ActionRewind:
		return d.runScript(ctx, s.RewindScript)

	case player.ActionPlayPause, player.ActionStop:
		if err := d.postCommand(*w, action); err != nil {
			return err
		}
		// Announce the song again on the next poll, even if it is unchanged
		d.state.Forget()
		return nil

	default:
		return d.postCommand(*w, action)
	}
}

func (d *Dispatcher) mix(action player.Action, app string) error {
	var err error
	switch action {
	case player.ActionVolumeUp:
		err = d.os.Mixer.VolumeUp(app)
	case player.ActionVolumeDown:
		err = d.os.Mixer.VolumeDown(app)
	case player.ActionMute:
		err = d.os.Mixer.ToggleMute(app)
	}
	if err != nil {
		return fmt.Errorf("failed to change volume of %s: %w", app, err)
	}
	return nil
}

func (d *Dispatcher) toggleWindow(w player.Window) error {
	if d.os.Windows.Placement(w) == player.PlacementMinimized {
		if err := d.os.Windows.SetPlacement(w, player.PlacementNormal); err != nil {
			return fmt.Errorf("failed to restore window: %w", err)
		}
		if err := d.os.Windows.BringToForeground(w); err != nil {
			return fmt.Errorf("failed to focus window: %w", err)
		}
		return nil
	}

	if err := d.os.Windows.SetPlacement(w, player.PlacementMinimized); err != nil {
		return fmt.Errorf("failed to minimize window: %w", err)
	}
	return nil
}

func (d *Dispatcher) runScript(ctx context.Context, script string) error {
	if script == "" {
		return player.ErrUnsupported
	}
	if err := d.os.Injector.RunScript(ctx, script); err != nil {
		return fmt.Errorf("failed to run key script: %w", err)
	}
	return nil
}

func (d *Dispatcher) postCommand(w player.Window, action player.Action) error {
	if err := d.os.Windows.PostAppCommand(w, action); err != nil {
		return fmt.Errorf("failed to send %s: %w", action, err)
	}
	return nil
}

func (d *Dispatcher) fail(action player.Action, err error) {
	d.logger.Warn().
		Err(err).
		Stringer("action", action).
		Msg("Action failed")
	d.bus.Emit(ActionFailed{Action: action, Err: err})
}

// FormatTrackInfo renders song with a clipboard template, where {0} stands
// for "Artist - Track". A blank template means "{0}", and a template
// without the placeholder gets it appended.
func FormatTrackInfo(template string, song *player.Song) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultClipboardTemplate
	}
	if !strings.Contains(template, "{0}") {
		template += " {0}"
	}
	return strings.ReplaceAll(template, "{0}", song.String())
}
