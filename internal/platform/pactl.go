package platform

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// volumeStep is how much one volume action changes the level
const volumeStep = "5%"

// errNoStream is returned when the application has no audio stream
var errNoStream = errors.New("no audio stream")

// pactl drives PulseAudio or PipeWire through the pactl command
type pactl struct {
	path string
}

func newPactl() pactl {
	return pactl{path: "pactl"}
}

func (p pactl) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), helperTimeout)
	defer cancel()
	// Output is parsed, so keep it in English
	r := scriptRunner{path: p.path, args: args, env: []string{"LC_ALL=C"}}
	return r.output(ctx, "")
}

// VolumeUp implements player.Mixer
func (p pactl) VolumeUp(app string) error {
	return p.eachStream(app, "set-sink-input-volume", "+"+volumeStep)
}

// VolumeDown implements player.Mixer
func (p pactl) VolumeDown(app string) error {
	return p.eachStream(app, "set-sink-input-volume", "-"+volumeStep)
}

// ToggleMute implements player.Mixer
func (p pactl) ToggleMute(app string) error {
	return p.eachStream(app, "set-sink-input-mute", "toggle")
}

func (p pactl) eachStream(app, command, value string) error {
	out, err := p.run("list", "sink-inputs")
	if err != nil {
		return fmt.Errorf("failed to list audio streams: %w", err)
	}

	ids := parseSinkInputs(out, app)
	if len(ids) == 0 {
		return fmt.Errorf("%s: %w", app, errNoStream)
	}

	for _, id := range ids {
		if _, err := p.run(command, strconv.Itoa(id), value); err != nil {
			return fmt.Errorf("failed to %s for stream %d: %w", command, id, err)
		}
	}
	return nil
}

// systemVolume changes the default output device
func (p pactl) systemVolume(delta string) error {
	_, err := p.run("set-sink-volume", "@DEFAULT_SINK@", delta)
	return err
}

func (p pactl) systemMute() error {
	_, err := p.run("set-sink-mute", "@DEFAULT_SINK@", "toggle")
	return err
}

// parseSinkInputs returns the ids of the sink inputs in `pactl list
// sink-inputs` output that belong to app, matched against the stream's
// application name or binary
func parseSinkInputs(out, app string) []int {
	var ids []int
	current := -1
	matched := false

	flush := func() {
		if current >= 0 && matched {
			ids = append(ids, current)
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if rest, ok := strings.CutPrefix(line, "Sink Input #"); ok {
			flush()
			current, matched = -1, false
			if id, err := strconv.Atoi(rest); err == nil {
				current = id
			}
			continue
		}

		key, value, ok := strings.Cut(line, " = ")
		if !ok {
			continue
		}
		switch key {
		case "application.name", "application.process.binary":
			if strings.EqualFold(strings.Trim(value, `"`), app) {
				matched = true
			}
		}
	}
	flush()

	return ids
}
