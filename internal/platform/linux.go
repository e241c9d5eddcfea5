//go:build linux

package platform

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/window"
	"github.com/rs/zerolog"
)

// DefaultTarget is the Spotify desktop client as seen by X11
var DefaultTarget = window.Target{ProcessName: "spotify", WindowClass: "Spotify"}

// SeekScripts returns the key injector scripts for FastForward and Rewind
func SeekScripts(target window.Target) (forward, rewind string) {
	return xdotoolSeekScript(target.WindowClass, "Right"), xdotoolSeekScript(target.WindowClass, "Left")
}

// New connects to the X server and the session bus
func New(opts Options, logger zerolog.Logger) (*Platform, error) {
	log := logger.With().Str("component", "platform").Logger()

	x, err := newX11()
	if err != nil {
		return nil, err
	}

	p := &Platform{closers: []func() error{x.Close}}

	bus, err := newMPRIS(opts.Target.ProcessName)
	if err != nil {
		log.Warn().Err(err).Msg("D-Bus unavailable, media commands disabled")
	} else {
		p.closers = append(p.closers, bus.Close)
	}

	injector := newXdotool(opts.InjectorPath)
	mixer := newPactl()

	p.Windows = &x11Windows{x: x, bus: bus, mixer: mixer, logger: log}
	p.Injector = injector
	p.Keyboard = xdotoolKeyboard{runner: injector, modifiers: x.modifiersHeld}
	p.Clipboard = commandClipboard{name: "xclip", args: []string{"-selection", "clipboard"}}
	p.Mixer = mixer
	return p, nil
}

// x11 wraps an X connection with an atom cache
type x11 struct {
	conn *xgb.Conn
	root xproto.Window

	mu    sync.Mutex
	atoms map[string]xproto.Atom
}

func newX11() (*x11, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	return &x11{conn: conn, root: screen.Root, atoms: make(map[string]xproto.Atom)}, nil
}

func (x *x11) Close() error {
	x.conn.Close()
	return nil
}

// atom gets an atom ID by name
func (x *x11) atom(name string) (xproto.Atom, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if a, ok := x.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(x.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	x.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// property reads a window property as raw bytes
func (x *x11) property(win xproto.Window, name string) ([]byte, error) {
	a, err := x.atom(name)
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(x.conn, false, win, a, xproto.GetPropertyTypeAny, 0, (1<<32)-1).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", name, err)
	}
	return reply.Value, nil
}

// uint32s decodes a 32-bit property
func (x *x11) uint32s(win xproto.Window, name string) []uint32 {
	value, err := x.property(win, name)
	if err != nil {
		return nil
	}
	out := make([]uint32, 0, len(value)/4)
	for i := 0; i+4 <= len(value); i += 4 {
		out = append(out, binary.LittleEndian.Uint32(value[i:]))
	}
	return out
}

// sendClientMessage sends an EWMH request about win to the root window
func (x *x11) sendClientMessage(win xproto.Window, name string, data ...uint32) error {
	a, err := x.atom(name)
	if err != nil {
		return err
	}

	var payload [5]uint32
	copy(payload[:], data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   a,
		Data:   xproto.ClientMessageDataUnionData32New(payload[:]),
	}

	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)
	if err := xproto.SendEventChecked(x.conn, false, x.root, mask, string(ev.Bytes())).Check(); err != nil {
		return fmt.Errorf("failed to send %s: %w", name, err)
	}
	return nil
}

// modifiersHeld reports whether Shift, Control or Alt is down
func (x *x11) modifiersHeld() bool {
	mapping, err := xproto.GetModifierMapping(x.conn).Reply()
	if err != nil {
		return false
	}
	keymap, err := xproto.QueryKeymap(x.conn).Reply()
	if err != nil {
		return false
	}
	return modifierDown(mapping.Keycodes, int(mapping.KeycodesPerModifier), keymap.Keys)
}

// modifierDown checks the Shift (0), Control (2) and Mod1/Alt (3) rows of
// a modifier mapping against a key bitmap
func modifierDown(keycodes []xproto.Keycode, perModifier int, keys []byte) bool {
	for _, row := range []int{0, 2, 3} {
		for i := 0; i < perModifier; i++ {
			idx := row*perModifier + i
			if idx >= len(keycodes) {
				break
			}
			kc := int(keycodes[idx])
			if kc == 0 || kc/8 >= len(keys) {
				continue
			}
			if keys[kc/8]&(1<<(kc%8)) != 0 {
				return true
			}
		}
	}
	return false
}

// x11Windows implements player.WindowService with EWMH hints, sending
// media commands over MPRIS and system volume through pactl
type x11Windows struct {
	x      *x11
	bus    *mpris
	mixer  pactl
	logger zerolog.Logger
}

func (w *x11Windows) ProcessIDs(name string) []int {
	return processIDs(name)
}

func (w *x11Windows) FindProcessWindows(name string) []player.Window {
	pids := pidSet(name)
	if len(pids) == 0 {
		return nil
	}

	var found []player.Window
	for _, id := range w.x.uint32s(w.x.root, "_NET_CLIENT_LIST") {
		win := xproto.Window(id)
		pid := w.x.uint32s(win, "_NET_WM_PID")
		if len(pid) == 0 || !pids[int(pid[0])] {
			continue
		}
		found = append(found, player.Window{
			Handle: uintptr(win),
			PID:    int(pid[0]),
			Class:  w.class(win),
		})
	}
	return found
}

// class returns the class part of WM_CLASS, which holds instance and class
// as two NUL-terminated strings
func (w *x11Windows) class(win xproto.Window) string {
	raw, err := w.x.property(win, "WM_CLASS")
	if err != nil {
		return ""
	}
	return wmClass(raw)
}

func wmClass(raw []byte) string {
	parts := strings.Split(string(raw), "\x00")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}
	return parts[0]
}

func (w *x11Windows) Title(win player.Window) string {
	xw := xproto.Window(win.Handle)
	if title, err := w.x.property(xw, "_NET_WM_NAME"); err == nil && len(title) > 0 {
		return string(title)
	}
	if title, err := w.x.property(xw, "WM_NAME"); err == nil {
		return string(title)
	}
	return ""
}

func (w *x11Windows) Placement(win player.Window) player.Placement {
	hidden, _ := w.x.atom("_NET_WM_STATE_HIDDEN")
	maxVert, _ := w.x.atom("_NET_WM_STATE_MAXIMIZED_VERT")

	placement := player.PlacementNormal
	for _, s := range w.x.uint32s(xproto.Window(win.Handle), "_NET_WM_STATE") {
		switch xproto.Atom(s) {
		case hidden:
			return player.PlacementMinimized
		case maxVert:
			placement = player.PlacementMaximized
		}
	}
	return placement
}

func (w *x11Windows) SetPlacement(win player.Window, p player.Placement) error {
	xw := xproto.Window(win.Handle)
	switch p {
	case player.PlacementMinimized:
		const iconicState = 3
		return w.x.sendClientMessage(xw, "WM_CHANGE_STATE", iconicState)
	default:
		// Mapping an iconified window restores its previous state
		if err := xproto.MapWindowChecked(w.x.conn, xw).Check(); err != nil {
			return fmt.Errorf("failed to map window: %w", err)
		}
		return nil
	}
}

func (w *x11Windows) BringToForeground(win player.Window) error {
	const sourceApplication = 1
	return w.x.sendClientMessage(xproto.Window(win.Handle), "_NET_ACTIVE_WINDOW", sourceApplication, xproto.TimeCurrentTime)
}

func (w *x11Windows) PostAppCommand(win player.Window, a player.Action) error {
	switch a {
	case player.ActionVolumeUp:
		return w.mixer.systemVolume("+" + volumeStep)
	case player.ActionVolumeDown:
		return w.mixer.systemVolume("-" + volumeStep)
	case player.ActionMute:
		return w.mixer.systemMute()
	}

	if w.bus == nil {
		return player.ErrUnsupported
	}
	handled, err := w.bus.command(a)
	if err != nil {
		return err
	}
	if !handled {
		w.logger.Debug().Stringer("action", a).Msg("No MPRIS method for action")
		return player.ErrUnsupported
	}
	return nil
}
