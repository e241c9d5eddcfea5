package notify

import (
	"sync"

	"github.com/jfmyers9/toastify/internal/daemon"
	"github.com/rs/zerolog"
)

// Output receives toasts. Implementations must not block.
type Output interface {
	Publish(Message)
}

// Settings control which toasts are shown
type Settings struct {
	AppName      string // Shown in "not available" toasts
	Disabled     bool   // Show no toasts except forced ones
	OnlyOnHotkey bool   // Show only toasts the user explicitly asked for
	Width        int    // Truncate text to this many cells; zero disables
}

// Notifier is a daemon.Sink that derives toasts from events and publishes
// them to its outputs
type Notifier struct {
	outputs []Output
	logger  zerolog.Logger

	mu       sync.RWMutex
	settings Settings
}

// NewNotifier creates a new Notifier instance
func NewNotifier(settings Settings, logger zerolog.Logger, outputs ...Output) *Notifier {
	return &Notifier{
		outputs:  outputs,
		settings: settings,
		logger:   logger.With().Str("component", "notifier").Logger(),
	}
}

// UpdateSettings replaces the notifier's settings
func (n *Notifier) UpdateSettings(s Settings) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settings = s
}

// Notify implements daemon.Sink
func (n *Notifier) Notify(e daemon.Event) {
	n.mu.RLock()
	s := n.settings
	n.mu.RUnlock()

	m, ok := Derive(e, s.AppName)
	if !ok {
		return
	}

	if (s.Disabled || s.OnlyOnHotkey) && !m.Forced {
		n.logger.Debug().
			Str("kind", string(m.Kind)).
			Str("title", m.Title).
			Msg("Toast suppressed")
		return
	}

	m = m.Truncate(s.Width)
	for _, o := range n.outputs {
		o.Publish(m)
	}
}

// LogOutput writes toasts to the log
type LogOutput struct {
	logger zerolog.Logger
}

// NewLogOutput creates a new LogOutput instance
func NewLogOutput(logger zerolog.Logger) *LogOutput {
	return &LogOutput{logger: logger.With().Str("component", "toast").Logger()}
}

// Publish implements Output
func (o *LogOutput) Publish(m Message) {
	ev := o.logger.Info()
	if m.Kind == KindFailed || m.Kind == KindUnavailable {
		ev = o.logger.Warn()
	}
	ev.Str("kind", string(m.Kind)).
		Str("body", m.Body).
		Str("artwork", m.Artwork).
		Msg(m.Title)
}
