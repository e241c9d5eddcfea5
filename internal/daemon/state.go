package daemon

import (
	"sync/atomic"

	"github.com/jfmyers9/toastify/internal/player"
)

// State holds the song currently believed to be playing. The poller is the
// only writer of new songs; the dispatcher may only forget the current one.
// Songs are stored as immutable values and swapped atomically, so readers
// never see a half-updated song.
type State struct {
	current atomic.Pointer[player.Song]
}

// NewState creates a new State instance in the idle state
func NewState() *State {
	return &State{}
}

// Current returns a snapshot of the current song, or nil when idle
func (s *State) Current() *player.Song {
	song := s.current.Load()
	if song == nil {
		return nil
	}
	snapshot := *song
	return &snapshot
}

// publish stores a copy of song and returns the stored pointer, which
// identifies this publication for a later replace
func (s *State) publish(song *player.Song) *player.Song {
	stored := *song
	s.current.Store(&stored)
	return &stored
}

// replace swaps old for updated only if old is still the current
// publication. It reports false when the song changed or was forgotten in
// the meantime, in which case updated is stale.
func (s *State) replace(old, updated *player.Song) bool {
	stored := *updated
	return s.current.CompareAndSwap(old, &stored)
}

// Forget returns to the idle state so the next poll announces whatever is
// playing, even if it is the same song
func (s *State) Forget() {
	s.current.Store(nil)
}
