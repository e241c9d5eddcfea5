package daemon

import (
	"fmt"
	"sync"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/rs/zerolog"
)

// Event is emitted to the presentation layer
type Event interface {
	event()
}

// SongChanged is emitted once a new song has been enriched with artwork
type SongChanged struct {
	Song *player.Song
}

// ActionResolved is emitted after an action was handled. Song is the song
// that was current before the action was applied.
type ActionResolved struct {
	Action player.Action
	Song   *player.Song
}

// TargetUnavailable is emitted when an action needs the target but it is
// not running
type TargetUnavailable struct {
	Action player.Action
}

// ActionFailed is emitted when a collaborator failed to carry out an action
type ActionFailed struct {
	Action player.Action
	Err    error
}

func (SongChanged) event()       {}
func (ActionResolved) event()    {}
func (TargetUnavailable) event() {}
func (ActionFailed) event()      {}

// Sink receives every event. Implementations must not block.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Event)

// Notify implements Sink
func (f SinkFunc) Notify(e Event) { f(e) }

// Observer is the plugin interface. Observers only hear about lifecycle and
// track changes.
type Observer interface {
	Started()
	TrackChanged(artist, track string)
	Closing()
}

// Bus fans events out to sinks and observers. A panicking observer is
// logged and skipped; it never takes the daemon down.
type Bus struct {
	mu        sync.RWMutex
	sinks     []Sink
	observers []Observer
	logger    zerolog.Logger
}

// NewBus creates a new Bus instance
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{logger: logger.With().Str("component", "events").Logger()}
}

// AddSink registers a sink
func (b *Bus) AddSink(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Register adds an observer
func (b *Bus) Register(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Emit delivers e to every sink, and track changes to every observer
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	sinks := b.sinks
	observers := b.observers
	b.mu.RUnlock()

	for _, s := range sinks {
		s.Notify(e)
	}

	if changed, ok := e.(SongChanged); ok {
		for _, o := range observers {
			b.safely(o, func() { o.TrackChanged(changed.Song.Artist, changed.Song.Track) })
		}
	}
}

// Started tells every observer the daemon is running
func (b *Bus) Started() {
	b.each(func(o Observer) { o.Started() })
}

// Closing tells every observer the daemon is shutting down
func (b *Bus) Closing() {
	b.each(func(o Observer) { o.Closing() })
}

func (b *Bus) each(fn func(Observer)) {
	b.mu.RLock()
	observers := b.observers
	b.mu.RUnlock()

	for _, o := range observers {
		b.safely(o, func() { fn(o) })
	}
}

func (b *Bus) safely(o Observer, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("observer", fmt.Sprintf("%T", o)).
				Interface("panic", r).
				Msg("Observer failed")
		}
	}()
	fn()
}
