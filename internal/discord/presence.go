package discord

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/toastify/internal/daemon"
	"github.com/jfmyers9/toastify/internal/player"
)

const (
	activityListening = 2
	assetKey          = "toastify"
	updateBuffer      = 8
)

type rpcClient interface {
	SetActivity(Activity) error
	Close() error
}

// Presence manages Discord Rich Presence updates. It is a daemon.Sink:
// song changes set the activity, and pausing, stopping or losing the target
// clears it.
type Presence struct {
	appID   string
	appName string
	logger  zerolog.Logger
	client  rpcClient
	connect func(string) (rpcClient, error)
	now     func() time.Time
	last    lastActivity
	updates chan *player.Song
}

type lastActivity struct {
	track, artist, album string
	playing              bool
}

// New creates a new Presence instance. appName is shown as the activity
// name, e.g. "Spotify".
func New(appID, appName string, logger zerolog.Logger) *Presence {
	return &Presence{
		appID:   appID,
		appName: appName,
		logger:  logger.With().Str("component", "discord").Logger(),
		connect: func(appID string) (rpcClient, error) {
			return ipcConnect(appID)
		},
		now:     time.Now,
		updates: make(chan *player.Song, updateBuffer),
	}
}

// Notify implements daemon.Sink. A nil song queued here means "clear".
func (p *Presence) Notify(e daemon.Event) {
	switch e := e.(type) {
	case daemon.SongChanged:
		p.enqueue(e.Song)
	case daemon.ActionResolved:
		// A song before PlayPause means it was playing and is now paused
		if e.Action == player.ActionStop || (e.Action == player.ActionPlayPause && e.Song != nil) {
			p.enqueue(nil)
		}
	case daemon.TargetUnavailable:
		p.enqueue(nil)
	}
}

func (p *Presence) enqueue(song *player.Song) {
	select {
	case p.updates <- song:
	default:
		p.logger.Debug().Msg("Presence update dropped")
	}
}

// Run applies queued updates until ctx is cancelled. It connects lazily on
// the first song. If Discord isn't running, it logs the error and retries
// on the next update.
func (p *Presence) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.clearActivity()
			p.close()
			return
		case song := <-p.updates:
			p.handleSong(song)
		}
	}
}

func (p *Presence) handleSong(song *player.Song) {
	if !song.IsValid() {
		if p.last.playing {
			p.clearActivity()
			p.last = lastActivity{}
		}
		return
	}

	cur := lastActivity{
		track: song.Track, artist: song.Artist,
		album: song.Album, playing: true,
	}
	if cur == p.last {
		return
	}

	if err := p.ensureConnected(); err != nil {
		p.logger.Warn().Err(err).Msg("Discord not available")
		return
	}

	// The window title carries no position, so elapsed time starts now
	start := p.now().Unix()

	err := p.client.SetActivity(Activity{
		Type:    activityListening,
		Name:    p.appName,
		Details: song.Track,
		State:   "by " + song.Artist,
		Timestamps: &Timestamps{
			Start: &start,
		},
		Assets: &Assets{
			LargeImage: largeImage(song.ArtworkURL),
			LargeText:  song.Album,
			SmallImage: assetKey,
			SmallText:  assetKey,
		},
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to set activity")
		p.close()
		return
	}
	p.last = cur
}

// largeImage returns url when Discord can fetch it. Placeholder artwork
// names the daemon's bundled images, which only exist locally.
func largeImage(url string) string {
	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		return url
	}
	return assetKey
}

func (p *Presence) ensureConnected() error {
	if p.client != nil {
		return nil
	}
	client, err := p.connect(p.appID)
	if err != nil {
		return err
	}
	p.logger.Info().Msg("Connected to Discord")
	p.client = client
	return nil
}

func (p *Presence) clearActivity() {
	if p.client == nil {
		return
	}
	if err := p.client.SetActivity(Activity{}); err != nil {
		p.logger.Debug().Err(err).Msg("Failed to clear activity")
		p.close()
	}
}

func (p *Presence) close() {
	if p.client == nil {
		return
	}
	_ = p.client.Close()
	p.client = nil
}
