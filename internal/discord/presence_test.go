package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/toastify/internal/daemon"
	"github.com/jfmyers9/toastify/internal/player"
)

type fakeRPC struct {
	activities []Activity
	closed     bool
	failNext   error
}

func (f *fakeRPC) SetActivity(a Activity) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.activities = append(f.activities, a)
	return nil
}

func (f *fakeRPC) Close() error {
	f.closed = true
	return nil
}

func newTestPresence() (*Presence, *fakeRPC) {
	fake := &fakeRPC{}
	p := New("test", "Spotify", zerolog.Nop())
	p.connect = func(string) (rpcClient, error) {
		return fake, nil
	}
	p.now = func() time.Time { return time.Unix(1700000000, 0) }
	return p, fake
}

func song(track, artist, album string) *player.Song {
	return &player.Song{Track: track, Artist: artist, Album: album, ArtworkURL: "https://i.scdn.co/image/64"}
}

func TestDedup_SkipsDuplicateUpdates(t *testing.T) {
	p, fake := newTestPresence()
	s := song("Song", "Artist", "Album")

	p.handleSong(s)
	p.handleSong(s)
	p.handleSong(s)

	if len(fake.activities) != 1 {
		t.Fatalf("expected 1 SetActivity call, got %d", len(fake.activities))
	}
}

func TestDedup_SendsOnTrackChange(t *testing.T) {
	p, fake := newTestPresence()

	p.handleSong(song("Song A", "Artist", "Album"))
	p.handleSong(song("Song B", "Artist", "Album"))

	if len(fake.activities) != 2 {
		t.Fatalf("expected 2 SetActivity calls, got %d", len(fake.activities))
	}
	if fake.activities[0].Details != "Song A" {
		t.Errorf("first activity details = %q, want %q", fake.activities[0].Details, "Song A")
	}
	if fake.activities[1].Details != "Song B" {
		t.Errorf("second activity details = %q, want %q", fake.activities[1].Details, "Song B")
	}
}

func TestClearsOnNilSong(t *testing.T) {
	p, fake := newTestPresence()

	p.handleSong(song("Song", "Artist", "Album"))
	p.handleSong(nil)

	// First call sets activity, second clears it (empty Activity)
	if len(fake.activities) != 2 {
		t.Fatalf("expected 2 SetActivity calls, got %d", len(fake.activities))
	}
	if fake.activities[1].Details != "" {
		t.Errorf("clear activity should have empty details, got %q", fake.activities[1].Details)
	}
}

func TestNoClearWhenAlreadyStopped(t *testing.T) {
	p, fake := newTestPresence()

	// Never played, so nothing to clear
	p.handleSong(nil)
	p.handleSong(&player.Song{})

	if len(fake.activities) != 0 {
		t.Fatalf("expected 0 SetActivity calls, got %d", len(fake.activities))
	}
}

func TestReconnectsAfterError(t *testing.T) {
	connectCount := 0
	fake := &fakeRPC{}
	p, _ := newTestPresence()
	p.connect = func(string) (rpcClient, error) {
		connectCount++
		fake = &fakeRPC{}
		return fake, nil
	}

	s := song("Song", "Artist", "Album")
	p.handleSong(s)
	if connectCount != 1 {
		t.Fatalf("expected 1 connect, got %d", connectCount)
	}

	// Simulate connection failure on next SetActivity
	fake.failNext = errors.New("broken pipe")
	p.last = lastActivity{} // reset dedup so we actually try
	p.handleSong(s)

	// Should have disconnected, so the next call reconnects
	p.handleSong(s)
	if connectCount != 2 {
		t.Fatalf("expected 2 connects after error, got %d", connectCount)
	}
}

func TestConnectFailureIsRetried(t *testing.T) {
	p, fake := newTestPresence()
	attempts := 0
	p.connect = func(string) (rpcClient, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("no discord socket found")
		}
		return fake, nil
	}

	s := song("Song", "Artist", "Album")
	p.handleSong(s)
	p.handleSong(s)

	if attempts != 2 || len(fake.activities) != 1 {
		t.Errorf("attempts = %d, activities = %d, want 2 and 1", attempts, len(fake.activities))
	}
}

func TestNotify(t *testing.T) {
	s := song("Song", "Artist", "Album")

	tests := []struct {
		name  string
		event daemon.Event
		want  []*player.Song
	}{
		{"song changed", daemon.SongChanged{Song: s}, []*player.Song{s}},
		{"paused", daemon.ActionResolved{Action: player.ActionPlayPause, Song: s}, []*player.Song{nil}},
		{"resumed", daemon.ActionResolved{Action: player.ActionPlayPause}, nil},
		{"stopped", daemon.ActionResolved{Action: player.ActionStop, Song: s}, []*player.Song{nil}},
		{"volume", daemon.ActionResolved{Action: player.ActionVolumeUp, Song: s}, nil},
		{"unavailable", daemon.TargetUnavailable{Action: player.ActionNextTrack}, []*player.Song{nil}},
		{"failed", daemon.ActionFailed{Action: player.ActionNextTrack, Err: errors.New("x")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPresence()
			p.Notify(tt.event)

			if len(p.updates) != len(tt.want) {
				t.Fatalf("queued %d updates, want %d", len(p.updates), len(tt.want))
			}
			for _, want := range tt.want {
				if got := <-p.updates; got != want {
					t.Errorf("queued %v, want %v", got, want)
				}
			}
		})
	}
}

func TestNotify_NeverBlocks(t *testing.T) {
	p, _ := newTestPresence()
	s := song("Song", "Artist", "Album")

	for i := 0; i < updateBuffer*3; i++ {
		p.Notify(daemon.SongChanged{Song: s})
	}

	if len(p.updates) != updateBuffer {
		t.Errorf("queued %d updates, want %d", len(p.updates), updateBuffer)
	}
}

func TestRunAppliesUpdatesAndStopsOnCancel(t *testing.T) {
	p, fake := newTestPresence()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	p.Notify(daemon.SongChanged{Song: song("Song", "Artist", "Album")})

	// Wait for the update to be consumed before cancelling
	deadline := time.Now().Add(time.Second)
	for len(p.updates) > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancel")
	}

	if !fake.closed {
		t.Error("expected client to be closed on context cancel")
	}
	if len(fake.activities) != 2 || fake.activities[1].Details != "" {
		t.Errorf("expected set then clear, got %+v", fake.activities)
	}
}

func TestActivityFields(t *testing.T) {
	p, fake := newTestPresence()

	p.handleSong(song("Bohemian Rhapsody", "Queen", "A Night at the Opera"))

	if len(fake.activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(fake.activities))
	}
	a := fake.activities[0]
	if a.Type != 2 {
		t.Errorf("type = %d, want 2 (Listening)", a.Type)
	}
	if a.Name != "Spotify" {
		t.Errorf("name = %q, want %q", a.Name, "Spotify")
	}
	if a.Details != "Bohemian Rhapsody" {
		t.Errorf("details = %q, want %q", a.Details, "Bohemian Rhapsody")
	}
	if a.State != "by Queen" {
		t.Errorf("state = %q, want %q", a.State, "by Queen")
	}
	if a.Assets == nil || a.Assets.LargeText != "A Night at the Opera" {
		t.Fatalf("assets = %+v, want album as large text", a.Assets)
	}
	if a.Assets.LargeImage != "https://i.scdn.co/image/64" {
		t.Errorf("large_image = %q, want artwork URL", a.Assets.LargeImage)
	}
	if a.Timestamps == nil || a.Timestamps.Start == nil || *a.Timestamps.Start != 1700000000 {
		t.Fatal("expected start timestamp")
	}
	if a.Timestamps.End != nil {
		t.Error("expected no end timestamp")
	}
}

func TestLargeImage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://i.scdn.co/image/64", "https://i.scdn.co/image/64"},
		{"http://example.com/a.jpg", "http://example.com/a.jpg"},
		{daemon.DefaultArtwork, assetKey},
		{daemon.AdArtwork, assetKey},
		{"", assetKey},
	}

	for _, tt := range tests {
		if got := largeImage(tt.in); got != tt.want {
			t.Errorf("largeImage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
