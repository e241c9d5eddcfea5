package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jfmyers9/toastify/internal/window"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	// MinPollInterval keeps the poller from spinning on the window service
	MinPollInterval = 100 * time.Millisecond

	envPrefix = "TOASTIFY"
)

// Catalog providers
const (
	ProviderAuto    = "auto"
	ProviderSpotify = "spotify"
	ProviderITunes  = "itunes"
	ProviderNone    = "none"
)

// Config holds application configuration
type Config struct {
	// How often the daemon samples the target's window title
	PollInterval time.Duration

	Target TargetConfig

	// Minimize the target once it is found at startup
	MinimizeOnStartup bool

	// Route volume actions to the target's mixer session instead of the
	// system volume
	ChangeVolumeOnTargetOnly bool

	// Show no toasts except the ones explicitly asked for
	DisableNotifications bool

	// Show only the toasts raised by a hotkey
	OnlyNotifyOnHotkey bool

	// Template for copy/paste track info; "{0}" is replaced by the song
	// Default: "{0}"
	ClipboardTemplate string

	// Truncate toast text to this many cells (0 = disabled)
	ToastWidth int

	// Script interpreter override for seek and clipboard scripts
	InjectorPath string

	// Seek scripts override the platform defaults
	FastForwardScript string
	RewindScript      string

	Output  OutputConfig
	Catalog CatalogConfig
	Spotify SpotifyConfig
	API     APIConfig
	Discord DiscordConfig
}

// TargetConfig describes the watched application. Empty fields use the
// platform defaults.
type TargetConfig struct {
	ProcessName string
	WindowClass string
	AppName     string
}

// OutputConfig holds formatting for the now command
type OutputConfig struct {
	// Go template over the song
	// Default: "{{.Artist}} - {{.Track}}"
	Format string

	// Fixed output width (0 = disabled)
	Width int

	// Scroll text longer than Width
	Marquee          bool
	MarqueeSpeed     int
	MarqueeSeparator string
}

// CatalogConfig selects the artwork catalog
type CatalogConfig struct {
	// One of auto, spotify, itunes, none. auto uses Spotify when
	// credentials are configured and iTunes otherwise.
	Provider string
}

// SpotifyConfig holds Spotify Web API client credentials
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

// HasCredentials reports whether both client credentials are set
func (s SpotifyConfig) HasCredentials() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// APIConfig holds the local HTTP API settings
type APIConfig struct {
	// Listen address; empty disables the API
	Listen string
}

// DiscordConfig holds Discord Rich Presence settings
type DiscordConfig struct {
	// Discord application ID; empty disables Rich Presence
	AppID string
}

// WindowTarget returns the configured target, filling empty fields from def
func (c *Config) WindowTarget(def window.Target) window.Target {
	t := def
	if c.Target.ProcessName != "" {
		t.ProcessName = c.Target.ProcessName
	}
	if c.Target.WindowClass != "" {
		t.WindowClass = c.Target.WindowClass
	}
	return t
}

// CatalogProvider resolves ProviderAuto against the configured credentials
func (c *Config) CatalogProvider() string {
	if c.Catalog.Provider != ProviderAuto {
		return c.Catalog.Provider
	}
	if c.Spotify.HasCredentials() {
		return ProviderSpotify
	}
	return ProviderITunes
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	return LoadDir(getConfigDir())
}

// LoadDir reads configuration from config.yaml in dir and the environment
func LoadDir(dir string) (*Config, error) {
	v := newViper(dir)

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// Defaults returns the built-in configuration with environment overrides
// applied and no file read
func Defaults() (*Config, error) {
	return decode(newViper(""))
}

// Watch reloads the configuration in dir whenever the file changes and
// hands every valid result to onChange. Invalid files are logged and
// skipped. When dir holds no config file yet, Watch waits for one to be
// created and loads it.
func Watch(dir string, logger zerolog.Logger, onChange func(*Config)) error {
	logger = logger.With().Str("component", "config").Logger()

	v := newViper(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return awaitConfig(dir, v, logger, onChange)
	}

	watchConfig(v, logger, onChange)
	return nil
}

func watchConfig(v *viper.Viper, logger zerolog.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		reload(v, logger, e.Name, onChange)
	})
	v.WatchConfig()
}

func reload(v *viper.Viper, logger zerolog.Logger, file string, onChange func(*Config)) {
	cfg, err := decode(v)
	if err != nil {
		logger.Warn().Err(err).Str("file", file).Msg("Ignoring invalid configuration")
		return
	}
	logger.Info().Str("file", file).Msg("Configuration reloaded")
	onChange(cfg)
}

// awaitConfig watches dir until a config file shows up, loads it and then
// hands over to the regular file watch
func awaitConfig(dir string, v *viper.Viper, logger zerolog.Logger, onChange func(*Config)) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logger.Info().Str("dir", dir).Msg("No config file yet, waiting for one")

	go func() {
		defer watcher.Close()
		for {
			select {
			case e, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
					continue
				}
				if err := v.ReadInConfig(); err != nil {
					logger.Debug().Err(err).Str("file", e.Name).Msg("Config file not loadable yet")
					continue
				}
				watchConfig(v, logger, onChange)
				reload(v, logger, v.ConfigFileUsed(), onChange)
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("Config directory watch error")
			}
		}
	}()

	return nil
}

func newViper(dir string) *viper.Viper {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	setDefaults(v)

	// Read from environment variables, e.g. TOASTIFY_API_LISTEN
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("poll_interval_ms", 1000)
	v.SetDefault("target.process_name", "")
	v.SetDefault("target.window_class", "")
	v.SetDefault("target.app_name", "Spotify")
	v.SetDefault("minimize_on_startup", false)
	v.SetDefault("change_volume_on_target_only", false)
	v.SetDefault("disable_notifications", false)
	v.SetDefault("only_notify_on_hotkey", false)
	v.SetDefault("clipboard_template", "{0}")
	v.SetDefault("toast_width", 0)
	v.SetDefault("injector_path", "")
	v.SetDefault("scripts.fast_forward", "")
	v.SetDefault("scripts.rewind", "")
	v.SetDefault("output.format", "{{.Artist}} - {{.Track}}")
	v.SetDefault("output.width", 0)
	v.SetDefault("output.marquee", false)
	v.SetDefault("output.marquee_speed", 2)
	v.SetDefault("output.marquee_separator", " • ")
	v.SetDefault("catalog.provider", ProviderAuto)
	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("api.listen", "localhost:52846")
	v.SetDefault("discord.app_id", "")
}

// decode maps viper values to a Config and validates it
func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		PollInterval: time.Duration(v.GetInt("poll_interval_ms")) * time.Millisecond,
		Target: TargetConfig{
			ProcessName: v.GetString("target.process_name"),
			WindowClass: v.GetString("target.window_class"),
			AppName:     v.GetString("target.app_name"),
		},
		MinimizeOnStartup:        v.GetBool("minimize_on_startup"),
		ChangeVolumeOnTargetOnly: v.GetBool("change_volume_on_target_only"),
		DisableNotifications:     v.GetBool("disable_notifications"),
		OnlyNotifyOnHotkey:       v.GetBool("only_notify_on_hotkey"),
		ClipboardTemplate:        v.GetString("clipboard_template"),
		ToastWidth:               v.GetInt("toast_width"),
		InjectorPath:             v.GetString("injector_path"),
		FastForwardScript:        v.GetString("scripts.fast_forward"),
		RewindScript:             v.GetString("scripts.rewind"),
		Output: OutputConfig{
			Format:           v.GetString("output.format"),
			Width:            v.GetInt("output.width"),
			Marquee:          v.GetBool("output.marquee"),
			MarqueeSpeed:     v.GetInt("output.marquee_speed"),
			MarqueeSeparator: v.GetString("output.marquee_separator"),
		},
		Catalog: CatalogConfig{
			Provider: strings.ToLower(v.GetString("catalog.provider")),
		},
		Spotify: SpotifyConfig{
			ClientID:     v.GetString("spotify.client_id"),
			ClientSecret: v.GetString("spotify.client_secret"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Discord: DiscordConfig{
			AppID: v.GetString("discord.app_id"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make the daemon misbehave
func (c *Config) Validate() error {
	if c.PollInterval < MinPollInterval {
		return fmt.Errorf("poll_interval_ms must be at least %d", MinPollInterval.Milliseconds())
	}
	if c.ToastWidth < 0 {
		return fmt.Errorf("toast_width must not be negative")
	}
	if c.Target.AppName == "" {
		return fmt.Errorf("target.app_name must not be empty")
	}
	switch c.Catalog.Provider {
	case ProviderAuto, ProviderSpotify, ProviderITunes, ProviderNone:
	default:
		return fmt.Errorf("unknown catalog.provider %q", c.Catalog.Provider)
	}
	if c.Catalog.Provider == ProviderSpotify && !c.Spotify.HasCredentials() {
		return fmt.Errorf("catalog.provider is spotify but spotify.client_id or spotify.client_secret is missing")
	}
	return nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "toastify")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Save writes configuration to config.yaml in dir
func (c *Config) Save(dir string) error {
	configFile := filepath.Join(dir, "config.yaml")

	if err := c.toViper().WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Settings returns the configuration as nested maps keyed like the file
func (c *Config) Settings() map[string]any {
	return c.toViper().AllSettings()
}

func (c *Config) toViper() *viper.Viper {
	v := viper.New()

	v.Set("poll_interval_ms", c.PollInterval.Milliseconds())
	v.Set("target.process_name", c.Target.ProcessName)
	v.Set("target.window_class", c.Target.WindowClass)
	v.Set("target.app_name", c.Target.AppName)
	v.Set("minimize_on_startup", c.MinimizeOnStartup)
	v.Set("change_volume_on_target_only", c.ChangeVolumeOnTargetOnly)
	v.Set("disable_notifications", c.DisableNotifications)
	v.Set("only_notify_on_hotkey", c.OnlyNotifyOnHotkey)
	v.Set("clipboard_template", c.ClipboardTemplate)
	v.Set("toast_width", c.ToastWidth)
	v.Set("injector_path", c.InjectorPath)
	v.Set("scripts.fast_forward", c.FastForwardScript)
	v.Set("scripts.rewind", c.RewindScript)
	v.Set("output.format", c.Output.Format)
	v.Set("output.width", c.Output.Width)
	v.Set("output.marquee", c.Output.Marquee)
	v.Set("output.marquee_speed", c.Output.MarqueeSpeed)
	v.Set("output.marquee_separator", c.Output.MarqueeSeparator)
	v.Set("catalog.provider", c.Catalog.Provider)
	v.Set("spotify.client_id", c.Spotify.ClientID)
	v.Set("spotify.client_secret", c.Spotify.ClientSecret)
	v.Set("api.listen", c.API.Listen)
	v.Set("discord.app_id", c.Discord.AppID)
	return v
}
