package daemon

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/rs/zerolog"
)

// Placeholder artwork identifiers, resolved to images by the presentation
// layer
const (
	DefaultArtwork      = "SpotifyToastifyLogo.png"
	AdArtwork           = "SpotifyAdPlaying.png"
	AccessDeniedArtwork = "ToastifyAccessDenied.png"
)

// AdTrackName replaces the blank track shown while an ad plays
const AdTrackName = "Spotify Ad"

// DefaultLookupTimeout bounds one artwork lookup. A tick stays in flight
// until its lookup returns, so an unbounded lookup would stop polling.
const DefaultLookupTimeout = 5 * time.Second

// Locator finds the target's main window
type Locator interface {
	Locate() *player.Window
}

// ArtworkResolver looks up artwork URLs for songs
type ArtworkResolver interface {
	Resolve(ctx context.Context, song *player.Song) (string, error)
}

// Poller samples the target's window title at a fixed interval and emits
// SongChanged when a new valid song shows up
type Poller struct {
	locator  Locator
	windows  player.WindowService
	resolver ArtworkResolver
	state    *State
	bus      *Bus
	appName  string
	interval time.Duration
	timeout  time.Duration
	inFlight atomic.Bool
	logger   zerolog.Logger
}

// NewPoller creates a new Poller instance
func NewPoller(locator Locator, windows player.WindowService, resolver ArtworkResolver, state *State, bus *Bus, appName string, interval time.Duration, logger zerolog.Logger) *Poller {
	return &Poller{
		locator:  locator,
		windows:  windows,
		resolver: resolver,
		state:    state,
		bus:      bus,
		appName:  appName,
		interval: interval,
		timeout:  DefaultLookupTimeout,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

// Run starts the polling loop
// Blocks until context is cancelled
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info().
		Dur("interval", p.interval).
		Msg("Starting poller")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Poll immediately on start
	p.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Poller stopped")
			return ctx.Err()
		case <-ticker.C:
			// Tick runs on this goroutine, so ticks that come due while
			// artwork is being resolved are dropped by the ticker
			p.Tick(ctx)
		}
	}
}

// Tick runs a single poll. It returns false without doing anything if
// another tick is still in flight.
func (p *Poller) Tick(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer p.inFlight.Store(false)

	song := p.currentSong()
	if song == nil || !song.IsValid() || song.Equal(p.state.Current()) {
		return true
	}

	p.logger.Info().
		Str("artist", song.Artist).
		Str("track", song.Track).
		Str("album", song.Album).
		Msg("Song changed")

	// Publish before resolving so a tick that runs while the lookup is
	// outstanding does not start a second one for the same song
	published := p.state.publish(song)

	enriched := p.enrich(ctx, song)

	if !p.state.replace(published, enriched) {
		p.logger.Debug().
			Str("track", song.Track).
			Msg("Song changed during artwork lookup, dropping result")
		return true
	}

	p.bus.Emit(SongChanged{Song: enriched})
	return true
}

// currentSong reads and parses the target's title. A missing window yields
// no song but leaves the state alone, so a window that is briefly
// unreachable does not cause the same song to be announced again.
func (p *Poller) currentSong() *player.Song {
	return player.SongFromWindow(p.locator.Locate(), p.windows, p.appName)
}

// enrich resolves artwork and applies the placeholder rules
func (p *Poller) enrich(ctx context.Context, song *player.Song) *player.Song {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	url, err := p.resolver.Resolve(ctx, song)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Artwork lookup failed")
		url = AccessDeniedArtwork
	}

	enriched := song.WithArtwork(url)

	switch {
	case strings.TrimSpace(enriched.Track) == "":
		enriched.Track = AdTrackName
		enriched.ArtworkURL = AdArtwork
	case strings.TrimSpace(enriched.ArtworkURL) == "":
		enriched.ArtworkURL = DefaultArtwork
	}

	return enriched
}
