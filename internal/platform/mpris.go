package platform

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/jfmyers9/toastify/internal/player"
)

const (
	mprisPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	mprisRoot      = "org.mpris.MediaPlayer2"
	mprisInterface = "org.mpris.MediaPlayer2.Player"
)

// mprisMethods maps media actions to MPRIS player methods
var mprisMethods = map[player.Action]string{
	player.ActionPlayPause:     "PlayPause",
	player.ActionStop:          "Stop",
	player.ActionNextTrack:     "Next",
	player.ActionPreviousTrack: "Previous",
}

// mpris sends media commands to a player over the D-Bus session bus
type mpris struct {
	conn    *dbus.Conn
	busName string
}

// newMPRIS connects to the session bus. The player itself does not have to
// be running yet.
func newMPRIS(processName string) (*mpris, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &mpris{conn: conn, busName: mprisRoot + "." + processName}, nil
}

// command calls the player method for action. It reports false when the
// action has no MPRIS equivalent.
func (m *mpris) command(action player.Action) (bool, error) {
	method, ok := mprisMethods[action]
	if !ok {
		return false, nil
	}

	obj := m.conn.Object(m.busName, mprisPath)
	if call := obj.Call(mprisInterface+"."+method, 0); call.Err != nil {
		return true, fmt.Errorf("failed to call %s on %s: %w", method, m.busName, call.Err)
	}
	return true, nil
}

// raise asks the player to show its window
func (m *mpris) raise() error {
	obj := m.conn.Object(m.busName, mprisPath)
	if call := obj.Call(mprisRoot+".Raise", 0); call.Err != nil {
		return fmt.Errorf("failed to raise %s: %w", m.busName, call.Err)
	}
	return nil
}

func (m *mpris) Close() error {
	return m.conn.Close()
}
