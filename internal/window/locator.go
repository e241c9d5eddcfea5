package window

import (
	"strings"
	"sync"
	"time"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long a located window is trusted without a new scan
const DefaultTTL = 5 * time.Second

// Target describes how to recognize the target application's main window
type Target struct {
	ProcessName string // Executable name without extension, e.g. "spotify"
	WindowClass string // Class of the main window
}

// Locator finds the target's main window and caches it for a short time.
// Enumerating the target's threads and windows is expensive, so a cached
// window is reused while the TTL holds and its process is still alive. The
// window may still have been closed in the meantime; callers only use it to
// read the title or to post commands, both of which fail silently.
type Locator struct {
	service player.WindowService
	target  Target
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger

	mu       sync.Mutex
	cached   *player.Window
	cachedAt time.Time
}

// Option configures a Locator
type Option func(*Locator)

// WithTTL overrides DefaultTTL
func WithTTL(ttl time.Duration) Option {
	return func(l *Locator) { l.ttl = ttl }
}

// WithClock overrides time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(l *Locator) { l.now = now }
}

// NewLocator creates a new Locator instance
func NewLocator(service player.WindowService, target Target, logger zerolog.Logger, opts ...Option) *Locator {
	l := &Locator{
		service: service,
		target:  target,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logger.With().Str("component", "locator").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the target's main window, or nil if the target is not
// running or has no matching window yet
func (l *Locator) Locate() *player.Window {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.cached != nil && now.Sub(l.cachedAt) < l.ttl && l.alive(l.cached.PID) {
		w := *l.cached
		return &w
	}

	w := l.scan()
	if w == nil {
		if l.cached != nil {
			l.logger.Debug().Msg("Target window gone")
		}
		l.cached = nil
		return nil
	}

	if l.cached == nil || l.cached.Handle != w.Handle {
		l.logger.Debug().
			Int("pid", w.PID).
			Uint64("handle", uint64(w.Handle)).
			Msg("Located target window")
	}
	l.cached = w
	l.cachedAt = now

	found := *w
	return &found
}

// Invalidate drops the cached window so the next Locate scans again
func (l *Locator) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
}

func (l *Locator) alive(pid int) bool {
	for _, p := range l.service.ProcessIDs(l.target.ProcessName) {
		if p == pid {
			return true
		}
	}
	return false
}

// scan walks the candidate windows and stops at the first one with the
// target's class and a non-blank title. The target owns several helper
// windows of the same class without a title.
func (l *Locator) scan() *player.Window {
	for _, w := range l.service.FindProcessWindows(l.target.ProcessName) {
		if w.Class != l.target.WindowClass {
			continue
		}
		if strings.TrimSpace(l.service.Title(w)) == "" {
			continue
		}
		found := w
		return &found
	}
	return nil
}
