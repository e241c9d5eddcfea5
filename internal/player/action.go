package player

import "fmt"

// Action is a command raised by a hotkey or the UI.
//
// Media commands carry the WM_APPCOMMAND lParam encoding (APPCOMMAND_* << 16)
// so the value can be posted to the target window as is.
type Action int64

const (
	ActionNone           Action = 0
	ActionShowToast      Action = 1
	ActionShowApp        Action = 2
	ActionCopyTrackInfo  Action = 3
	ActionSettingsSaved  Action = 4
	ActionPasteTrackInfo Action = 5
	ActionMute           Action = 8 << 16
	ActionVolumeDown     Action = 9 << 16
	ActionVolumeUp       Action = 10 << 16
	ActionNextTrack      Action = 11 << 16
	ActionPreviousTrack  Action = 12 << 16
	ActionStop           Action = 13 << 16
	ActionPlayPause      Action = 14 << 16
	ActionFastForward    Action = 49 << 16
	ActionRewind         Action = 50 << 16
)

var actionNames = map[Action]string{
	ActionNone:           "none",
	ActionShowToast:      "show-toast",
	ActionShowApp:        "show-app",
	ActionCopyTrackInfo:  "copy-track-info",
	ActionSettingsSaved:  "settings-saved",
	ActionPasteTrackInfo: "paste-track-info",
	ActionMute:           "mute",
	ActionVolumeDown:     "volume-down",
	ActionVolumeUp:       "volume-up",
	ActionNextTrack:      "next-track",
	ActionPreviousTrack:  "previous-track",
	ActionStop:           "stop",
	ActionPlayPause:      "play-pause",
	ActionFastForward:    "fast-forward",
	ActionRewind:         "rewind",
}

// Actions returns every action except ActionNone, in declaration order
func Actions() []Action {
	return []Action{
		ActionShowToast, ActionShowApp, ActionCopyTrackInfo, ActionSettingsSaved,
		ActionPasteTrackInfo, ActionMute, ActionVolumeDown, ActionVolumeUp,
		ActionNextTrack, ActionPreviousTrack, ActionStop, ActionPlayPause,
		ActionFastForward, ActionRewind,
	}
}

// String returns the kebab-case name used by the CLI and the HTTP API
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int64(a))
}

// IsVolume reports whether the action changes the volume or mute state
func (a Action) IsVolume() bool {
	return a == ActionVolumeUp || a == ActionVolumeDown || a == ActionMute
}

// ParseAction looks up an action by its String name
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", name)
}
