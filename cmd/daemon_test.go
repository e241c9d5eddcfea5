package cmd

import (
	"context"
	"testing"

	"github.com/jfmyers9/toastify/internal/artwork"
	"github.com/jfmyers9/toastify/internal/config"
	"github.com/jfmyers9/toastify/internal/platform"
	"github.com/jfmyers9/toastify/internal/player"
	"github.com/rs/zerolog"
)

func TestDispatcherSettings(t *testing.T) {
	cfg := &config.Config{
		Target:                   config.TargetConfig{AppName: "Spotify"},
		ChangeVolumeOnTargetOnly: true,
		ClipboardTemplate:        "#np {0}",
	}
	target := platform.DefaultTarget

	s := dispatcherSettings(cfg, target)
	forward, rewind := platform.SeekScripts(target)
	if s.FastForwardScript != forward || s.RewindScript != rewind {
		t.Errorf("seek scripts = %q / %q, want the platform defaults", s.FastForwardScript, s.RewindScript)
	}
	if s.AppName != "Spotify" || !s.ChangeVolumeOnTargetOnly || s.ClipboardTemplate != "#np {0}" {
		t.Errorf("settings = %+v", s)
	}

	cfg.FastForwardScript = "ff"
	cfg.RewindScript = "rw"
	s = dispatcherSettings(cfg, target)
	if s.FastForwardScript != "ff" || s.RewindScript != "rw" {
		t.Errorf("seek scripts = %q / %q, want configured overrides", s.FastForwardScript, s.RewindScript)
	}
}

func TestNotifierSettings(t *testing.T) {
	cfg := &config.Config{
		Target:               config.TargetConfig{AppName: "Spotify"},
		DisableNotifications: true,
		OnlyNotifyOnHotkey:   true,
		ToastWidth:           32,
	}

	s := notifierSettings(cfg)
	if s.AppName != "Spotify" || !s.Disabled || !s.OnlyOnHotkey || s.Width != 32 {
		t.Errorf("settings = %+v", s)
	}
}

func TestNewArtworkResolver(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantNone bool
	}{
		{"none", config.Config{Catalog: config.CatalogConfig{Provider: config.ProviderNone}}, true},
		{"itunes", config.Config{Catalog: config.CatalogConfig{Provider: config.ProviderITunes}}, false},
		{"auto with credentials", config.Config{
			Catalog: config.CatalogConfig{Provider: config.ProviderAuto},
			Spotify: config.SpotifyConfig{ClientID: "id", ClientSecret: "secret"},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newArtworkResolver(context.Background(), &tt.cfg, zerolog.Nop())
			_, isNone := r.(noArtwork)
			if isNone != tt.wantNone {
				t.Errorf("resolver = %T", r)
			}
			if !tt.wantNone {
				if _, ok := r.(*artwork.Resolver); !ok {
					t.Errorf("resolver = %T, want *artwork.Resolver", r)
				}
			}
		})
	}
}

func TestNoArtwork(t *testing.T) {
	url, err := noArtwork{}.Resolve(context.Background(), &player.Song{Artist: "A", Track: "B"})
	if url != "" || err != nil {
		t.Errorf("Resolve() = %q, %v", url, err)
	}
}
