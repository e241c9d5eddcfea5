package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/player/playertest"
	"github.com/rs/zerolog"
)

type dispatchRig struct {
	*rig
	injector  *playertest.Injector
	keyboard  *playertest.Keyboard
	clipboard *playertest.Clipboard
	mixer     *playertest.Mixer
	sleeps    []time.Duration
	d         *Dispatcher
}

func newDispatchRig(settings Settings) *dispatchRig {
	r := &dispatchRig{
		rig:       newRig("Daft Punk - One More Time"),
		injector:  &playertest.Injector{},
		keyboard:  &playertest.Keyboard{},
		clipboard: &playertest.Clipboard{},
		mixer:     &playertest.Mixer{},
	}
	collab := Collaborators{
		Windows:   r.windows,
		Injector:  r.injector,
		Keyboard:  r.keyboard,
		Clipboard: r.clipboard,
		Mixer:     r.mixer,
	}
	r.d = NewDispatcher(r.locator, collab, r.state, r.bus, settings, zerolog.Nop())
	r.d.sleep = func(d time.Duration) { r.sleeps = append(r.sleeps, d) }
	return r
}

func (r *dispatchRig) handle(a player.Action, at time.Time) {
	r.d.Handle(context.Background(), a, at)
}

func defaultSettings() Settings {
	return Settings{
		AppName:           "Spotify",
		ClipboardTemplate: "{0}",
		FastForwardScript: "ff",
		RewindScript:      "rw",
	}
}

func TestDispatcher_Debounce(t *testing.T) {
	r := newDispatchRig(defaultSettings())
	t0 := time.Now()

	for _, offset := range []time.Duration{0, 100, 140, 200} {
		r.handle(player.ActionNextTrack, t0.Add(offset*time.Millisecond))
	}

	// 100 and 140 are dropped; 200 is measured from 0, not from 140
	if n := len(r.windows.Commands); n != 2 {
		t.Errorf("expected 2 commands, got %d", n)
	}
}

func TestDispatcher_DebounceBoundary(t *testing.T) {
	r := newDispatchRig(defaultSettings())
	t0 := time.Now()

	r.handle(player.ActionNextTrack, t0)
	r.handle(player.ActionNextTrack, t0.Add(DebounceWindow))

	if n := len(r.windows.Commands); n != 2 {
		t.Errorf("action exactly one window later should pass, got %d commands", n)
	}
}

func TestDispatcher_DifferentActionsNotDebounced(t *testing.T) {
	r := newDispatchRig(defaultSettings())
	t0 := time.Now()

	r.handle(player.ActionNextTrack, t0)
	r.handle(player.ActionPreviousTrack, t0.Add(10*time.Millisecond))
	r.handle(player.ActionNextTrack, t0.Add(20*time.Millisecond))

	want := []player.Action{player.ActionNextTrack, player.ActionPreviousTrack, player.ActionNextTrack}
	if len(r.windows.Commands) != len(want) {
		t.Fatalf("commands = %v, want %v", r.windows.Commands, want)
	}
	for i := range want {
		if r.windows.Commands[i] != want[i] {
			t.Errorf("command %d = %v, want %v", i, r.windows.Commands[i], want[i])
		}
	}
}

func TestDispatcher_NoneIgnored(t *testing.T) {
	r := newDispatchRig(defaultSettings())
	r.handle(player.ActionNone, time.Now())

	if events := r.events.all(); len(events) != 0 {
		t.Errorf("expected no events, got %#v", events)
	}
}

func TestDispatcher_TargetUnavailable(t *testing.T) {
	r := newDispatchRig(defaultSettings())
	r.windows.Stop()

	r.handle(player.ActionNextTrack, time.Now())
	r.handle(player.ActionSettingsSaved, time.Now())

	events := r.events.all()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %#v", events)
	}
	if u, ok := events[0].(TargetUnavailable); !ok || u.Action != player.ActionNextTrack {
		t.Errorf("event 0 = %#v, want TargetUnavailable(next-track)", events[0])
	}
	if res, ok := events[1].(ActionResolved); !ok || res.Action != player.ActionSettingsSaved {
		t.Errorf("event 1 = %#v, want ActionResolved(settings-saved)", events[1])
	}
}

func TestDispatcher_VolumeRouting(t *testing.T) {
	tests := []struct {
		name       string
		targetOnly bool
		action     player.Action
		wantMixer  []string
		wantCmds   int
	}{
		{"global up", false, player.ActionVolumeUp, nil, 1},
		{"target up", true, player.ActionVolumeUp, []string{"up:Spotify"}, 0},
		{"target down", true, player.ActionVolumeDown, []string{"down:Spotify"}, 0},
		{"target mute", true, player.ActionMute, []string{"mute:Spotify"}, 0},
		{"target only ignores other actions", true, player.ActionNextTrack, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultSettings()
			s.ChangeVolumeOnTargetOnly = tt.targetOnly
			r := newDispatchRig(s)

			r.handle(tt.action, time.Now())

			if len(r.mixer.Calls) != len(tt.wantMixer) {
				t.Fatalf("mixer calls = %v, want %v", r.mixer.Calls, tt.wantMixer)
			}
			for i := range tt.wantMixer {
				if r.mixer.Calls[i] != tt.wantMixer[i] {
					t.Errorf("mixer call %d = %q, want %q", i, r.mixer.Calls[i], tt.wantMixer[i])
				}
			}
			if len(r.windows.Commands) != tt.wantCmds {
				t.Errorf("commands = %v, want %d", r.windows.Commands, tt.wantCmds)
			}
			if _, ok := r.events.all()[0].(ActionResolved); !ok {
				t.Errorf("expected ActionResolved, got %#v", r.events.all())
			}
		})
	}
}

func TestDispatcher_ShowApp(t *testing.T) {
	t.Run("minimized is restored", func(t *testing.T) {
		r := newDispatchRig(defaultSettings())
		r.windows.Placements[0x100] = player.PlacementMinimized

		r.handle(player.ActionShowApp, time.Now())

		if len(r.windows.Placed) != 1 || r.windows.Placed[0] != player.PlacementNormal {
			t.Errorf("placed = %v, want [normal]", r.windows.Placed)
		}
		if r.windows.Foregrounded != 1 {
			t.Errorf("expected window to be brought to foreground")
		}
	})

	t.Run("visible is minimized", func(t *testing.T) {
		r := newDispatchRig(defaultSettings())
		r.windows.Placements[0x100] = player.PlacementMaximized

		r.handle(player.ActionShowApp, time.Now())

		if len(r.windows.Placed) != 1 || r.windows.Placed[0] != player.PlacementMinimized {
			t.Errorf("placed = %v, want [minimized]", r.windows.Placed)
		}
		if r.windows.Foregrounded != 0 {
			t.Errorf("minimizing should not focus the window")
		}
	})
}

func TestDispatcher_SeekRunsScripts(t *testing.T) {
	r := newDispatchRig(defaultSettings())
	t0 := time.Now()

	r.handle(player.ActionFastForward, t0)
	r.handle(player.ActionRewind, t0)

	if len(r.injector.Scripts) != 2 || r.injector.Scripts[0] != "ff" || r.injector.Scripts[1] != "rw" {
		t.Errorf("scripts = %q", r.injector.Scripts)
	}
	if len(r.windows.Commands) != 0 {
		t.Errorf("seek should not post app commands, got %v", r.windows.Commands)
	}
}

func TestDispatcher_SeekWithoutScriptFails(t *testing.T) {
	s := defaultSettings()
	s.FastForwardScript = ""
	r := newDispatchRig(s)

	r.handle(player.ActionFastForward, time.Now())

	events := r.events.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %#v", events)
	}
	failed, ok := events[0].(ActionFailed)
	if !ok || !errors.Is(failed.Err, player.ErrUnsupported) {
		t.Errorf("event = %#v, want ActionFailed(ErrUnsupported)", events[0])
	}
}

func TestDispatcher_PlayPauseForgetsSong(t *testing.T) {
	for _, action := range []player.Action{player.ActionPlayPause, player.ActionStop} {
		t.Run(action.String(), func(t *testing.T) {
			r := newDispatchRig(defaultSettings())
			song := &player.Song{Artist: "Daft Punk", Track: "One More Time"}
			r.state.publish(song)

			r.handle(action, time.Now())

			if cur := r.state.Current(); cur != nil {
				t.Errorf("expected state to be idle, got %+v", cur)
			}
			if len(r.windows.Commands) != 1 || r.windows.Commands[0] != action {
				t.Errorf("commands = %v", r.windows.Commands)
			}
			res, ok := r.events.all()[0].(ActionResolved)
			if !ok || !res.Song.Equal(song) {
				t.Errorf("event = %#v, want ActionResolved with the song before", r.events.all()[0])
			}
		})
	}
}

func TestDispatcher_NextTrackKeepsSong(t *testing.T) {
	r := newDispatchRig(defaultSettings())
	r.state.publish(&player.Song{Artist: "A", Track: "B"})

	r.handle(player.ActionNextTrack, time.Now())

	if r.state.Current() == nil {
		t.Error("next-track should not forget the current song")
	}
}

func TestDispatcher_CommandErrorFails(t *testing.T) {
	r := newDispatchRig(defaultSettings())
	boom := errors.New("access denied")
	r.windows.CommandErr = boom

	r.handle(player.ActionPlayPause, time.Now())

	events := r.events.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %#v", events)
	}
	if failed, ok := events[0].(ActionFailed); !ok || !errors.Is(failed.Err, boom) {
		t.Errorf("event = %#v, want ActionFailed wrapping %v", events[0], boom)
	}
}

func TestDispatcher_CopyTrackInfo(t *testing.T) {
	s := defaultSettings()
	s.ClipboardTemplate = "Listening to {0} #np"
	r := newDispatchRig(s)
	r.state.publish(&player.Song{Artist: "Daft Punk", Track: "One More Time"})

	r.handle(player.ActionCopyTrackInfo, time.Now())

	if want := "Listening to Daft Punk - One More Time #np"; r.clipboard.Text != want {
		t.Errorf("clipboard = %q, want %q", r.clipboard.Text, want)
	}
	if r.keyboard.Pastes != 0 {
		t.Error("copy should not paste")
	}
	if len(r.windows.Commands) != 0 {
		t.Errorf("copy should not post commands, got %v", r.windows.Commands)
	}
}

func TestDispatcher_CopyWithoutSong(t *testing.T) {
	r := newDispatchRig(defaultSettings())

	r.handle(player.ActionCopyTrackInfo, time.Now())

	if r.clipboard.Text != "" {
		t.Errorf("clipboard = %q, want untouched", r.clipboard.Text)
	}
	if _, ok := r.events.all()[0].(ActionResolved); !ok {
		t.Errorf("expected ActionResolved, got %#v", r.events.all())
	}
}

func TestDispatcher_PasteWaitsForModifiers(t *testing.T) {
	tests := []struct {
		name       string
		heldPolls  int
		wantSleeps int
	}{
		{"released", 0, 0},
		{"held briefly", 2, 2},
		{"held forever", -1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newDispatchRig(defaultSettings())
			r.keyboard.HeldPolls = tt.heldPolls
			r.state.publish(&player.Song{Artist: "A", Track: "B"})

			r.handle(player.ActionPasteTrackInfo, time.Now())

			if len(r.sleeps) != tt.wantSleeps {
				t.Errorf("slept %d times, want %d", len(r.sleeps), tt.wantSleeps)
			}
			var total time.Duration
			for _, d := range r.sleeps {
				total += d
			}
			if total > modifierWait {
				t.Errorf("waited %v, more than %v", total, modifierWait)
			}
			if r.keyboard.Pastes != 1 {
				t.Errorf("expected 1 paste, got %d", r.keyboard.Pastes)
			}
			if r.clipboard.Text != "A - B" {
				t.Errorf("clipboard = %q", r.clipboard.Text)
			}
		})
	}
}

func TestDispatcher_UpdateSettings(t *testing.T) {
	r := newDispatchRig(defaultSettings())

	s := defaultSettings()
	s.ChangeVolumeOnTargetOnly = true
	r.d.UpdateSettings(s)
	r.handle(player.ActionVolumeDown, time.Now())

	if len(r.mixer.Calls) != 1 {
		t.Errorf("expected new settings to route volume to the mixer, got %v", r.mixer.Calls)
	}
}

func TestFormatTrackInfo(t *testing.T) {
	song := &player.Song{Artist: "Queen", Track: "Bohemian Rhapsody"}

	tests := []struct {
		template string
		want     string
	}{
		{"{0}", "Queen - Bohemian Rhapsody"},
		{"", "Queen - Bohemian Rhapsody"},
		{"   ", "Queen - Bohemian Rhapsody"},
		{"Now playing:", "Now playing: Queen - Bohemian Rhapsody"},
		{"{0} ({0})", "Queen - Bohemian Rhapsody (Queen - Bohemian Rhapsody)"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			if got := FormatTrackInfo(tt.template, song); got != tt.want {
				t.Errorf("FormatTrackInfo(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}
