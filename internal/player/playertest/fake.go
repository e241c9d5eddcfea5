// Package playertest provides in-memory fakes of the player capabilities
// for tests.
package playertest

import (
	"context"
	"sync"

	"github.com/jfmyers9/toastify/internal/player"
)

// WindowService is a scripted player.WindowService that records calls
type WindowService struct {
	mu sync.Mutex

	PIDs       []int
	Windows    []player.Window
	Titles     map[uintptr]string
	Placements map[uintptr]player.Placement
	CommandErr error

	FindCalls    int
	TitleCalls   int
	Commands     []player.Action
	Placed       []player.Placement
	Foregrounded int
}

// NewWindowService returns a fake with a single running target window
func NewWindowService(title string) *WindowService {
	return &WindowService{
		PIDs:       []int{42},
		Windows:    []player.Window{{Handle: 0x100, PID: 42, Class: "Chrome_WidgetWin_0"}},
		Titles:     map[uintptr]string{0x100: title},
		Placements: map[uintptr]player.Placement{},
	}
}

// SetTitle changes the title of every window
func (f *WindowService) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.Windows {
		f.Titles[w.Handle] = title
	}
}

// Stop simulates the target exiting
func (f *WindowService) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PIDs = nil
	f.Windows = nil
}

func (f *WindowService) ProcessIDs(string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.PIDs...)
}

func (f *WindowService) FindProcessWindows(string) []player.Window {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FindCalls++
	return append([]player.Window(nil), f.Windows...)
}

func (f *WindowService) Title(w player.Window) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TitleCalls++
	return f.Titles[w.Handle]
}

func (f *WindowService) Placement(w player.Window) player.Placement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Placements[w.Handle]
}

func (f *WindowService) SetPlacement(w player.Window, p player.Placement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Placed = append(f.Placed, p)
	f.Placements[w.Handle] = p
	return nil
}

func (f *WindowService) BringToForeground(player.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Foregrounded++
	return nil
}

func (f *WindowService) PostAppCommand(_ player.Window, a player.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CommandErr != nil {
		return f.CommandErr
	}
	f.Commands = append(f.Commands, a)
	return nil
}

// Counts returns the number of window scans and title reads so far
func (f *WindowService) Counts() (finds, titles int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.FindCalls, f.TitleCalls
}

// Injector records scripts
type Injector struct {
	mu      sync.Mutex
	Scripts []string
}

func (i *Injector) RunScript(_ context.Context, script string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Scripts = append(i.Scripts, script)
	return nil
}

// Keyboard reports modifiers as held for the first HeldPolls checks
type Keyboard struct {
	mu        sync.Mutex
	HeldPolls int
	Polls     int
	Pastes    int
}

func (k *Keyboard) ModifiersHeld() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.Polls++
	return k.HeldPolls < 0 || k.Polls <= k.HeldPolls
}

func (k *Keyboard) Paste() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.Pastes++
	return nil
}

// Clipboard keeps the last text written
type Clipboard struct {
	mu   sync.Mutex
	Text string
}

func (c *Clipboard) SetText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Text = text
	return nil
}

// Mixer counts volume calls per kind
type Mixer struct {
	mu    sync.Mutex
	Calls []string
}

func (m *Mixer) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
	return nil
}

func (m *Mixer) VolumeUp(app string) error   { return m.record("up:" + app) }
func (m *Mixer) VolumeDown(app string) error { return m.record("down:" + app) }
func (m *Mixer) ToggleMute(app string) error { return m.record("mute:" + app) }
