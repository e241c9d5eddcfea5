package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/player/playertest"
	"github.com/jfmyers9/toastify/internal/window"
	"github.com/rs/zerolog"
)

var testTarget = window.Target{ProcessName: "spotify", WindowClass: "Chrome_WidgetWin_0"}

// recorder is a Sink that keeps every event and signals arrivals
type recorder struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Event, 64)}
}

func (r *recorder) Notify(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	select {
	case r.ch <- e:
	default:
	}
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// wait returns the next event matching match, or fails after a timeout
func (r *recorder) wait(t *testing.T, match func(Event) bool) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-r.ch:
			if match(e) {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for event; got %#v", r.all())
			return nil
		}
	}
}

// resolverFunc adapts a function to ArtworkResolver
type resolverFunc func(ctx context.Context, song *player.Song) (string, error)

func (f resolverFunc) Resolve(ctx context.Context, song *player.Song) (string, error) {
	return f(ctx, song)
}

func staticResolver(url string) resolverFunc {
	return func(context.Context, *player.Song) (string, error) { return url, nil }
}

// rig bundles a state, a bus with a recorder, and a locator over a fake
// window service
type rig struct {
	windows *playertest.WindowService
	locator *window.Locator
	state   *State
	bus     *Bus
	events  *recorder
}

func newRig(title string) *rig {
	windows := playertest.NewWindowService(title)
	bus := NewBus(zerolog.Nop())
	events := newRecorder()
	bus.AddSink(events)
	return &rig{
		windows: windows,
		// Zero TTL so every Locate sees the fake's current windows
		locator: window.NewLocator(windows, testTarget, zerolog.Nop(), window.WithTTL(0)),
		state:   NewState(),
		bus:     bus,
		events:  events,
	}
}
