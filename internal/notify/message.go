// Package notify turns daemon events into toast messages and delivers them
// to outputs such as the log and connected overlay clients.
package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jfmyers9/toastify/internal/daemon"
	"github.com/jfmyers9/toastify/internal/player"
	"github.com/mattn/go-runewidth"
)

// Kind classifies a message
type Kind string

const (
	KindSong        Kind = "song"
	KindAction      Kind = "action"
	KindUnavailable Kind = "unavailable"
	KindFailed      Kind = "failed"
)

const (
	textPaused         = "Paused"
	textStopped        = "Stopped"
	textVolumeUp       = "Volume ++"
	textVolumeDown     = "Volume --"
	textMute           = "Mute On/Off"
	textNothingPlaying = "Nothing's playing"
	textSettingsSaved  = "Settings saved"
	textSettingsBody   = "Here is a preview of your settings!"
)

// Message is a single toast
type Message struct {
	ID      string       `json:"id"`
	Kind    Kind         `json:"kind"`
	Action  string       `json:"action,omitempty"`
	Title   string       `json:"title"`
	Body    string       `json:"body,omitempty"`
	Artwork string       `json:"artwork,omitempty"`
	Song    *player.Song `json:"song,omitempty"`
	Time    time.Time    `json:"time"`

	// Forced messages are shown even when toasts are disabled
	Forced bool `json:"forced,omitempty"`
}

// Derive builds the toast for an event. It returns false for events that
// have no toast, such as track skips, whose result is announced by the next
// song change instead.
func Derive(e daemon.Event, appName string) (Message, bool) {
	m := Message{Time: time.Now()}

	switch e := e.(type) {
	case daemon.SongChanged:
		m.Kind = KindSong
		m.Title = e.Song.Track
		m.Body = e.Song.Artist
		m.Artwork = e.Song.ArtworkURL
		m.Song = e.Song

	case daemon.ActionResolved:
		if !deriveAction(&m, e.Action, e.Song) {
			return Message{}, false
		}

	case daemon.TargetUnavailable:
		m.Kind = KindUnavailable
		m.Action = e.Action.String()
		m.Title = fmt.Sprintf("%s not available!", appName)
		m.Artwork = daemon.DefaultArtwork

	case daemon.ActionFailed:
		m.Kind = KindFailed
		m.Action = e.Action.String()
		m.Title = fmt.Sprintf("Unable to communicate with %s", appName)
		if errors.Is(e.Err, player.ErrUnsupported) {
			m.Body = fmt.Sprintf("%s is not supported on this system", e.Action)
		} else if e.Err != nil {
			m.Body = e.Err.Error()
		}
		m.Artwork = daemon.DefaultArtwork

	default:
		return Message{}, false
	}

	m.ID = newID()
	return m, true
}

// deriveAction fills m for a handled action. song is the song that was
// playing before the action.
func deriveAction(m *Message, action player.Action, song *player.Song) bool {
	m.Kind = KindAction
	m.Action = action.String()
	m.Song = song
	if song != nil {
		m.Artwork = song.ArtworkURL
	}

	switch action {
	case player.ActionPlayPause:
		// Only pausing gets a toast; resuming is announced as a song change
		if song == nil {
			return false
		}
		m.Title, m.Body = textPaused, song.String()
	case player.ActionStop:
		m.Title, m.Body = textStopped, song.String()
	case player.ActionSettingsSaved:
		m.Title, m.Body = textSettingsSaved, textSettingsBody
	case player.ActionVolumeUp:
		m.Title, m.Body = textVolumeUp, song.String()
	case player.ActionVolumeDown:
		m.Title, m.Body = textVolumeDown, song.String()
	case player.ActionMute:
		m.Title, m.Body = textMute, song.String()
	case player.ActionShowToast:
		m.Forced = true
		if !song.IsValid() {
			m.Title = textNothingPlaying
			m.Artwork = daemon.DefaultArtwork
			return true
		}
		m.Title, m.Body = song.Artist, song.Track
	default:
		return false
	}
	return true
}

// Truncate shortens title and body to fit width terminal cells. A width of
// zero or less leaves the message unchanged.
func (m Message) Truncate(width int) Message {
	if width <= 0 {
		return m
	}
	m.Title = runewidth.Truncate(m.Title, width, "…")
	m.Body = runewidth.Truncate(m.Body, width, "…")
	return m
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
