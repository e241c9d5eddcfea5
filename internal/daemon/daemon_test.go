package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/player/playertest"
	"github.com/rs/zerolog"
)

func newTestDaemon(windows *playertest.WindowService, minimize bool) *Daemon {
	cfg := Config{
		PollInterval:      5 * time.Millisecond,
		Target:            testTarget,
		MinimizeOnStartup: minimize,
		Settings:          defaultSettings(),
	}
	collab := Collaborators{
		Windows:   windows,
		Injector:  &playertest.Injector{},
		Keyboard:  &playertest.Keyboard{},
		Clipboard: &playertest.Clipboard{},
		Mixer:     &playertest.Mixer{},
	}
	return New(cfg, collab, staticResolver("https://img"), zerolog.Nop())
}

func TestDaemon_EndToEnd(t *testing.T) {
	windows := playertest.NewWindowService("Daft Punk - One More Time")
	d := newTestDaemon(windows, false)
	events := newRecorder()
	obs := &fakeObserver{}
	d.Bus().AddSink(events)
	d.Bus().Register(obs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- d.RunContext(ctx) }()

	e := events.wait(t, func(e Event) bool { _, ok := e.(SongChanged); return ok })
	if got := e.(SongChanged).Song; got.Track != "One More Time" || got.ArtworkURL != "https://img" {
		t.Errorf("song = %+v", got)
	}
	if cur := d.Current(); cur == nil || cur.Artist != "Daft Punk" {
		t.Errorf("Current() = %+v", cur)
	}

	if !d.Submit(player.ActionNextTrack) {
		t.Fatal("Submit dropped the action")
	}
	res := events.wait(t, func(e Event) bool { _, ok := e.(ActionResolved); return ok })
	if a := res.(ActionResolved).Action; a != player.ActionNextTrack {
		t.Errorf("resolved %v, want next-track", a)
	}

	windows.SetTitle("Daft Punk - Aerodynamic")
	e = events.wait(t, func(e Event) bool { _, ok := e.(SongChanged); return ok })
	if got := e.(SongChanged).Song.Track; got != "Aerodynamic" {
		t.Errorf("track = %q, want Aerodynamic", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunContext() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}

	calls := obs.Calls()
	if len(calls) < 2 || calls[0] != "started" || calls[len(calls)-1] != "closing" {
		t.Errorf("observer calls = %q", calls)
	}
}

func TestDaemon_UpdateSettingsEmitsSettingsSaved(t *testing.T) {
	windows := playertest.NewWindowService("A - B")
	windows.Stop()
	d := newTestDaemon(windows, false)
	events := newRecorder()
	d.Bus().AddSink(events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.RunContext(ctx)

	d.UpdateSettings(defaultSettings())

	// Settings are confirmed even while the target is not running
	e := events.wait(t, func(e Event) bool { _, ok := e.(ActionResolved); return ok })
	if a := e.(ActionResolved).Action; a != player.ActionSettingsSaved {
		t.Errorf("resolved %v, want settings-saved", a)
	}
}

func TestDaemon_SubmitDropsWhenFull(t *testing.T) {
	d := newTestDaemon(playertest.NewWindowService("A - B"), false)

	// Nothing drains the queue because the daemon is not running
	for i := 0; i < cap(d.actions); i++ {
		if !d.Submit(player.ActionShowToast) {
			t.Fatalf("Submit %d dropped before the queue was full", i)
		}
	}
	if d.Submit(player.ActionShowToast) {
		t.Error("Submit accepted an action into a full queue")
	}
}

func TestDaemon_MinimizeOnStartup(t *testing.T) {
	windows := playertest.NewWindowService("A - B")
	d := newTestDaemon(windows, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.RunContext(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if windows.Placement(windows.Windows[0]) == player.PlacementMinimized {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("target was not minimized on startup")
}

func TestDaemon_ServicesRunForLifetime(t *testing.T) {
	d := newTestDaemon(playertest.NewWindowService("A - B"), false)

	var started, stopped atomic.Int32
	d.AddService("ok", func(ctx context.Context) error {
		started.Add(1)
		<-ctx.Done()
		stopped.Add(1)
		return ctx.Err()
	})
	d.AddService("failing", func(ctx context.Context) error {
		started.Add(1)
		return errors.New("listen failed")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- d.RunContext(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for started.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("started %d services, want 2", started.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A failing service does not stop the daemon
	select {
	case err := <-done:
		t.Fatalf("RunContext returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunContext() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}
	if stopped.Load() != 1 {
		t.Errorf("service stopped %d times, want 1", stopped.Load())
	}
}
