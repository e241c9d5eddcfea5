package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jfmyers9/toastify/internal/api"
	"github.com/jfmyers9/toastify/internal/artwork"
	"github.com/jfmyers9/toastify/internal/config"
	"github.com/jfmyers9/toastify/internal/daemon"
	"github.com/jfmyers9/toastify/internal/discord"
	"github.com/jfmyers9/toastify/internal/notify"
	"github.com/jfmyers9/toastify/internal/platform"
	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/window"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	daemonLogFile  string
	daemonLogLevel string
	daemonLaunch   bool
	daemonNoWatch  bool
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the toast daemon",
	Long: `Run the daemon that watches Spotify and announces track changes.

The daemon will:
- Sample Spotify's window title every poll interval to detect track changes
- Look up album artwork on Spotify (with client credentials) or iTunes
- Publish toasts to the log and to websocket clients on /ws
- Execute actions posted to /api/actions/{action} or sent with 'toastify <action>'
- Update Discord Rich Presence when discord.app_id is set
- Reload settings when the config file changes
- Handle graceful shutdown on SIGINT/SIGTERM

The daemon runs in the foreground and logs to stderr by default.
Use the --log-file flag to log to a file (useful for autostart).`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	// Command-line flags
	daemonCmd.Flags().StringVar(&daemonLogFile, "log-file", "", "Log file path (default: stderr)")
	daemonCmd.Flags().StringVar(&daemonLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	daemonCmd.Flags().BoolVar(&daemonLaunch, "launch", false, "Start Spotify if it is not running")
	daemonCmd.Flags().BoolVar(&daemonNoWatch, "no-watch", false, "Do not reload settings when the config file changes")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up logging
	logger := setupLogger(daemonLogFile, daemonLogLevel)

	logger.Info().
		Str("version", version).
		Msg("Starting toastify daemon")

	target := cfg.WindowTarget(platform.DefaultTarget)

	plat, err := platform.New(platform.Options{Target: target, InjectorPath: cfg.InjectorPath}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize platform: %w", err)
	}
	defer plat.Close()

	if daemonLaunch {
		if err := platform.Launch(cfg.Target.AppName, target); err != nil {
			logger.Warn().Err(err).Msg("Failed to launch target")
		}
	}

	resolver := newArtworkResolver(cmd.Context(), cfg, logger)

	d := daemon.New(daemon.Config{
		PollInterval:      cfg.PollInterval,
		Target:            target,
		MinimizeOnStartup: cfg.MinimizeOnStartup,
		Settings:          dispatcherSettings(cfg, target),
	}, daemon.Collaborators{
		Windows:   plat.Windows,
		Injector:  plat.Injector,
		Keyboard:  plat.Keyboard,
		Clipboard: plat.Clipboard,
		Mixer:     plat.Mixer,
	}, resolver, logger)

	// Toast outputs
	hub := notify.NewHub(logger, notify.WithCheckOrigin(api.OverlayOrigin))
	defer hub.Close()
	notifier := notify.NewNotifier(notifierSettings(cfg), logger, notify.NewLogOutput(logger), hub)
	d.Bus().AddSink(notifier)

	if cfg.Discord.AppID != "" {
		presence := discord.New(cfg.Discord.AppID, cfg.Target.AppName, logger)
		d.Bus().AddSink(presence)
		d.AddService("discord", func(ctx context.Context) error {
			presence.Run(ctx)
			return nil
		})
	}

	if cfg.API.Listen != "" {
		server := api.NewServer(d, hub, logger)
		d.AddService("api", func(ctx context.Context) error {
			return server.Run(ctx, cfg.API.Listen)
		})
	}

	if !daemonNoWatch {
		err := config.Watch(config.GetConfigDir(), logger, func(next *config.Config) {
			notifier.UpdateSettings(notifierSettings(next))
			d.UpdateSettings(dispatcherSettings(next, target))
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Not watching configuration")
		}
	}

	// Run daemon (blocks until shutdown signal)
	if err := d.Run(); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}

	return nil
}

// dispatcherSettings maps configuration to dispatcher settings, filling
// the seek scripts from the platform when they are not configured
func dispatcherSettings(cfg *config.Config, target window.Target) daemon.Settings {
	forward, rewind := platform.SeekScripts(target)
	if cfg.FastForwardScript != "" {
		forward = cfg.FastForwardScript
	}
	if cfg.RewindScript != "" {
		rewind = cfg.RewindScript
	}

	return daemon.Settings{
		AppName:                  cfg.Target.AppName,
		ChangeVolumeOnTargetOnly: cfg.ChangeVolumeOnTargetOnly,
		ClipboardTemplate:        cfg.ClipboardTemplate,
		FastForwardScript:        forward,
		RewindScript:             rewind,
	}
}

func notifierSettings(cfg *config.Config) notify.Settings {
	return notify.Settings{
		AppName:      cfg.Target.AppName,
		Disabled:     cfg.DisableNotifications,
		OnlyOnHotkey: cfg.OnlyNotifyOnHotkey,
		Width:        cfg.ToastWidth,
	}
}

// newArtworkResolver builds the resolver for the configured catalog. The
// Spotify catalog authenticates lazily on the first search.
func newArtworkResolver(ctx context.Context, cfg *config.Config, logger zerolog.Logger) daemon.ArtworkResolver {
	if ctx == nil {
		ctx = context.Background()
	}

	provider := cfg.CatalogProvider()

	var catalog artwork.Catalog
	switch provider {
	case config.ProviderSpotify:
		catalog = artwork.NewSpotifyCatalogFromCredentials(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	case config.ProviderITunes:
		catalog = artwork.NewITunesCatalog()
	default:
		logger.Info().Msg("Artwork lookup disabled")
		return noArtwork{}
	}

	logger.Info().Str("catalog", provider).Msg("Using artwork catalog")
	return artwork.NewResolver(artwork.NewCachedCatalog(catalog))
}

// noArtwork never finds artwork, so every toast uses the default image
type noArtwork struct{}

func (noArtwork) Resolve(context.Context, *player.Song) (string, error) {
	return "", nil
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
