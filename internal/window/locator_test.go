package window

import (
	"testing"
	"time"

	"github.com/jfmyers9/toastify/internal/player"
	"github.com/jfmyers9/toastify/internal/player/playertest"
	"github.com/rs/zerolog"
)

var testTarget = Target{ProcessName: "spotify", WindowClass: "Chrome_WidgetWin_0"}

func newTestLocator(svc player.WindowService, now *time.Time) *Locator {
	return NewLocator(svc, testTarget, zerolog.Nop(), WithClock(func() time.Time { return *now }))
}

func TestLocator_CachesWithinTTL(t *testing.T) {
	svc := playertest.NewWindowService("Daft Punk - One More Time")
	now := time.Unix(1000, 0)
	l := newTestLocator(svc, &now)

	if w := l.Locate(); w == nil || w.Handle != 0x100 {
		t.Fatalf("Locate() = %+v, want handle 0x100", w)
	}

	now = now.Add(4900 * time.Millisecond)
	if w := l.Locate(); w == nil || w.Handle != 0x100 {
		t.Fatalf("Locate() at 4.9s = %+v, want cached handle", w)
	}
	if finds, _ := svc.Counts(); finds != 1 {
		t.Errorf("expected 1 scan within TTL, got %d", finds)
	}

	now = now.Add(200 * time.Millisecond) // 5.1s after the scan
	l.Locate()
	if finds, _ := svc.Counts(); finds != 2 {
		t.Errorf("expected a new scan after TTL, got %d scans", finds)
	}
}

func TestLocator_RescansWhenProcessGone(t *testing.T) {
	svc := playertest.NewWindowService("A - B")
	now := time.Unix(1000, 0)
	l := newTestLocator(svc, &now)

	l.Locate()

	// Relaunched with a new pid inside the TTL
	svc.PIDs = []int{77}
	svc.Windows = []player.Window{{Handle: 0x200, PID: 77, Class: "Chrome_WidgetWin_0"}}
	svc.Titles[0x200] = "A - B"

	now = now.Add(time.Second)
	w := l.Locate()
	if w == nil || w.Handle != 0x200 {
		t.Fatalf("Locate() = %+v, want new handle 0x200", w)
	}
	if finds, _ := svc.Counts(); finds != 2 {
		t.Errorf("expected rescan for dead pid, got %d scans", finds)
	}
}

func TestLocator_FiltersClassAndBlankTitle(t *testing.T) {
	svc := &playertest.WindowService{
		PIDs: []int{1, 2},
		Windows: []player.Window{
			{Handle: 1, PID: 1, Class: "Chrome_WidgetWin_1"},
			{Handle: 2, PID: 1, Class: "Chrome_WidgetWin_0"},
			{Handle: 3, PID: 2, Class: "Chrome_WidgetWin_0"},
			{Handle: 4, PID: 2, Class: "Chrome_WidgetWin_0"},
		},
		Titles: map[uintptr]string{
			1: "Other Electron App",
			2: "  ",
			3: "Spotify Premium",
			4: "Never read",
		},
	}
	now := time.Unix(1000, 0)
	l := newTestLocator(svc, &now)

	w := l.Locate()
	if w == nil || w.Handle != 3 || w.PID != 2 {
		t.Fatalf("Locate() = %+v, want handle 3 of pid 2", w)
	}

	// Class mismatch is checked before the title, and the scan stops at
	// the first match: only windows 2 and 3 had their titles read.
	if _, titles := svc.Counts(); titles != 2 {
		t.Errorf("expected 2 title reads, got %d", titles)
	}
}

func TestLocator_NotRunning(t *testing.T) {
	svc := playertest.NewWindowService("A - B")
	now := time.Unix(1000, 0)
	l := newTestLocator(svc, &now)

	l.Locate()
	svc.Stop()

	now = now.Add(time.Second)
	if w := l.Locate(); w != nil {
		t.Fatalf("Locate() = %+v, want nil when target exited", w)
	}

	// Cache cleared: every call scans until the target shows up again
	l.Locate()
	if finds, _ := svc.Counts(); finds != 3 {
		t.Errorf("expected 3 scans, got %d", finds)
	}
}

func TestLocator_Invalidate(t *testing.T) {
	svc := playertest.NewWindowService("A - B")
	now := time.Unix(1000, 0)
	l := newTestLocator(svc, &now)

	l.Locate()
	l.Invalidate()
	l.Locate()

	if finds, _ := svc.Counts(); finds != 2 {
		t.Errorf("expected rescan after Invalidate, got %d scans", finds)
	}
}
