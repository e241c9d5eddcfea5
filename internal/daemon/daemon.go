package daemon

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/window"
	"github.com/rs/zerolog"
)

const (
	// startupWindowWait bounds how long minimize-on-startup waits for the
	// target's window to appear
	startupWindowWait = 2 * time.Second
	startupWindowPoll = 100 * time.Millisecond
	// startupSettle gives the target time to finish drawing before it is
	// minimized
	startupSettle = 500 * time.Millisecond
)

// Config holds daemon configuration
type Config struct {
	PollInterval      time.Duration // How often to sample the target's title
	Target            window.Target // How to find the target's window
	MinimizeOnStartup bool          // Minimize the target once it is found
	Settings          Settings      // Dispatcher settings
}

// Service runs alongside the poller until ctx is cancelled
type Service func(ctx context.Context) error

type namedService struct {
	name string
	run  Service
}

// Daemon coordinates the poller and the dispatcher around a shared state
type Daemon struct {
	config     Config
	windows    player.WindowService
	locator    *window.Locator
	state      *State
	bus        *Bus
	poller     *Poller
	dispatcher *Dispatcher
	actions    chan player.Action
	services   []namedService
	logger     zerolog.Logger
}

// New creates a new Daemon instance
func New(cfg Config, collab Collaborators, resolver ArtworkResolver, logger zerolog.Logger) *Daemon {
	state := NewState()
	bus := NewBus(logger)
	locator := window.NewLocator(collab.Windows, cfg.Target, logger)

	return &Daemon{
		config:     cfg,
		windows:    collab.Windows,
		locator:    locator,
		state:      state,
		bus:        bus,
		poller:     NewPoller(locator, collab.Windows, resolver, state, bus, cfg.Settings.AppName, cfg.PollInterval, logger),
		dispatcher: NewDispatcher(locator, collab, state, bus, cfg.Settings, logger),
		actions:    make(chan player.Action, 16),
		logger:     logger.With().Str("component", "daemon").Logger(),
	}
}

// Bus returns the event bus so sinks and observers can be registered
// before Run
func (d *Daemon) Bus() *Bus {
	return d.bus
}

// AddService registers a service to run for the daemon's lifetime. It
// must be called before Run.
func (d *Daemon) AddService(name string, s Service) {
	d.services = append(d.services, namedService{name: name, run: s})
}

// Current returns the song currently playing, or nil
func (d *Daemon) Current() *player.Song {
	return d.state.Current()
}

// Submit queues an action for the dispatcher. It reports false when the
// queue is full and the action was dropped.
func (d *Daemon) Submit(action player.Action) bool {
	select {
	case d.actions <- action:
		return true
	default:
		d.logger.Warn().
			Stringer("action", action).
			Msg("Action queue full, dropping action")
		return false
	}
}

// UpdateSettings applies new dispatcher settings and announces them with a
// SettingsSaved action
func (d *Daemon) UpdateSettings(s Settings) {
	d.dispatcher.UpdateSettings(s)
	d.Submit(player.ActionSettingsSaved)
}

// Run starts the daemon and blocks until shutdown signal received
func (d *Daemon) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		<-sigChan
		d.logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Second signal forces exit
		<-sigChan
		d.logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	// Run the daemon
	if err := d.RunContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// RunContext runs the daemon until ctx is cancelled
func (d *Daemon) RunContext(ctx context.Context) error {
	d.logger.Info().
		Str("process", d.config.Target.ProcessName).
		Str("class", d.config.Target.WindowClass).
		Msg("Starting daemon")

	d.bus.Started()
	defer d.bus.Closing()

	var wg sync.WaitGroup

	// Start poller
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error().Err(err).Msg("Poller error")
		}
	}()

	// Handle actions serially
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.handleActions(ctx)
	}()

	for _, s := range d.services {
		wg.Add(1)
		go func(s namedService) {
			defer wg.Done()
			if err := s.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error().Err(err).Str("service", s.name).Msg("Service error")
			}
		}(s)
	}

	if d.config.MinimizeOnStartup {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.minimizeOnStartup(ctx)
		}()
	}

	// Wait for all goroutines to finish
	wg.Wait()

	d.logger.Info().Msg("Daemon stopped")
	return nil
}

// handleActions feeds queued actions to the dispatcher
func (d *Daemon) handleActions(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case action := <-d.actions:
			d.dispatcher.Handle(ctx, action, time.Now())
		}
	}
}

// minimizeOnStartup waits briefly for the target's window and minimizes it
func (d *Daemon) minimizeOnStartup(ctx context.Context) {
	var w *player.Window
	for waited := time.Duration(0); waited < startupWindowWait; waited += startupWindowPoll {
		if w = d.locator.Locate(); w != nil {
			break
		}
		if !sleepContext(ctx, startupWindowPoll) {
			return
		}
	}
	if w == nil {
		d.logger.Debug().Msg("Target window not found, not minimizing")
		return
	}

	if !sleepContext(ctx, startupSettle) {
		return
	}

	if err := d.windows.SetPlacement(*w, player.PlacementMinimized); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to minimize target on startup")
		return
	}
	d.logger.Info().Msg("Minimized target on startup")
}

// sleepContext sleeps for dur and reports false if ctx ended first
func sleepContext(ctx context.Context, dur time.Duration) bool {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
