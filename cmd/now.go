package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/jfmyers9/toastify/internal/api"
	"github.com/jfmyers9/toastify/internal/config"
	"github.com/jfmyers9/toastify/internal/platform"
	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/window"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// marqueeClock is replaced in tests
var marqueeClock = time.Now

// nowCmd represents the now command
var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Display the song Spotify is playing",
	Long: `Display the song Spotify is currently playing.

The running daemon is asked first so that its resolved artwork is included.
Without a daemon, Spotify's window title is read directly.

The output format can be customized in ~/.config/toastify/config.yaml
using a Go template. Available fields: .Artist, .Track, .Album, .ArtworkURL

Exit codes:
  0 - A song is playing
  1 - Nothing playing, paused, or Spotify not running`,
	RunE: runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)

	// Add format flag to override config
	nowCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	// Add width flag to set fixed output width
	nowCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
	// Add marquee flag to enable scrolling
	nowCmd.Flags().Bool("marquee", false, "Enable marquee scrolling for long text (overrides config)")
	nowCmd.Flags().Bool("local", false, "Read the window title even if the daemon is running")
}

func runNow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Check for format flag override
	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}

	local, _ := cmd.Flags().GetBool("local")

	var song *player.Song
	if !local && cfg.API.Listen != "" {
		song, err = api.NewClient(cfg.API.Listen).Now(ctx)
		if err != nil {
			// Daemon not running, sample the window ourselves
			local = true
		}
	} else {
		local = true
	}
	if local {
		song, err = sampleTitle(cfg)
		if err != nil {
			return fmt.Errorf("failed to read the current song: %w", err)
		}
	}

	// If not playing, exit with code 1
	if !song.IsValid() {
		os.Exit(1)
		return nil
	}

	// Format and print output
	output, err := formatTrack(song, cfg.Output.Format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Apply width padding/marquee if requested
	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = cfg.Output.Width
	}

	marquee, _ := cmd.Flags().GetBool("marquee")
	if !cmd.Flags().Changed("marquee") {
		marquee = cfg.Output.Marquee
	}

	if width > 0 {
		if marquee {
			output = marqueeText(output, width, cfg.Output.MarqueeSpeed, cfg.Output.MarqueeSeparator)
		} else {
			output = padToWidth(output, width)
		}
	}

	fmt.Println(output)
	return nil
}

// sampleTitle locates the target window once and parses its title. It
// returns a nil song when the target is not running or idle.
func sampleTitle(cfg *config.Config) (*player.Song, error) {
	target := cfg.WindowTarget(platform.DefaultTarget)

	plat, err := platform.New(platform.Options{Target: target, InjectorPath: cfg.InjectorPath}, zerolog.Nop())
	if err != nil {
		return nil, err
	}
	defer plat.Close()

	locator := window.NewLocator(plat.Windows, target, zerolog.Nop())
	return player.SongFromWindow(locator.Locate(), plat.Windows, cfg.Target.AppName), nil
}

// formatTrack applies the template to the song
func formatTrack(song *player.Song, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, song); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text // no padding requested
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		// Truncate with "..." suffix
		// We need to manually truncate and add "..." then pad if needed
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			// If width is too small, just return ellipsis truncated to width
			return runewidth.Truncate(ellipsis, width, "")
		}

		// Truncate to (width - ellipsisWidth) and add ellipsis
		truncated := runewidth.Truncate(text, width-ellipsisWidth, "")
		result := truncated + ellipsis

		// Ensure we're exactly at the target width (in case truncate was imprecise)
		resultWidth := runewidth.StringWidth(result)
		if resultWidth < width {
			padding := strings.Repeat(" ", width-resultWidth)
			return result + padding
		} else if resultWidth > width {
			// Shouldn't happen, but handle it just in case
			return runewidth.Truncate(result, width, "")
		}
		return result
	} else if currentWidth < width {
		// Pad with spaces
		padding := strings.Repeat(" ", width-currentWidth)
		return text + padding
	}

	return text // exactly the right width
}

// marqueeText scrolls text that exceeds width. The window position is
// derived from the clock (speed columns per second) so that repeated calls,
// e.g. from a status bar refresh, advance without keeping state. Text that
// fits is padded instead.
func marqueeText(text string, width int, speed int, separator string) string {
	if width <= 0 {
		return text
	}

	textWidth := runewidth.StringWidth(text)

	// If text fits, just pad normally (no scrolling needed)
	if textWidth <= width {
		return padToWidth(text, width)
	}

	// Create extended text: "original + separator + original"
	// This creates a continuous loop
	extended := text + separator + text
	extendedRunes := []rune(extended)

	totalChars := len(extendedRunes)
	position := int(marqueeClock().Unix()*int64(speed)) % totalChars

	// Build the window starting at position
	var result []rune
	resultWidth := 0

	for i := 0; i < totalChars && resultWidth < width; i++ {
		idx := (position + i) % totalChars
		r := extendedRunes[idx]
		rw := runewidth.RuneWidth(r)

		// Don't exceed target width
		if resultWidth+rw <= width {
			result = append(result, r)
			resultWidth += rw
		} else {
			break
		}
	}

	// Pad with spaces if needed to reach exact width
	if resultWidth < width {
		padding := strings.Repeat(" ", width-resultWidth)
		return string(result) + padding
	}

	return string(result)
}
