//go:build windows

package platform

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
)

// sFalse is returned by CoInitializeEx when COM is already initialized on
// the thread
const sFalse = 0x1

// coreAudioMixer changes the volume of the target's audio sessions on the
// default render device through the Windows Core Audio API
type coreAudioMixer struct {
	processName string
}

// VolumeUp implements player.Mixer
func (m coreAudioMixer) VolumeUp(app string) error {
	return m.eachSession(app, func(v *wca.ISimpleAudioVolume) error {
		return adjustVolume(v, volumeStepFraction)
	})
}

// VolumeDown implements player.Mixer
func (m coreAudioMixer) VolumeDown(app string) error {
	return m.eachSession(app, func(v *wca.ISimpleAudioVolume) error {
		return adjustVolume(v, -volumeStepFraction)
	})
}

// ToggleMute implements player.Mixer. Every session takes the inverse of
// the first session's state so they stay in step.
func (m coreAudioMixer) ToggleMute(app string) error {
	var target *bool
	return m.eachSession(app, func(v *wca.ISimpleAudioVolume) error {
		if target == nil {
			var muted bool
			if err := v.GetMute(&muted); err != nil {
				return fmt.Errorf("failed to read mute state: %w", err)
			}
			unmute := !muted
			target = &unmute
		}
		return v.SetMute(*target, nil)
	})
}

func adjustVolume(v *wca.ISimpleAudioVolume, delta float32) error {
	var level float32
	if err := v.GetMasterVolume(&level); err != nil {
		return fmt.Errorf("failed to read volume: %w", err)
	}
	if err := v.SetMasterVolume(stepVolume(level, delta), nil); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return nil
}

// eachSession calls fn for every audio session owned by the target's
// processes. It returns errNoStream when the target has no session.
func (m coreAudioMixer) eachSession(app string, fn func(*wca.ISimpleAudioVolume) error) error {
	name := m.processName
	if name == "" {
		name = app
	}
	pids := pidSet(name)
	if len(pids) == 0 {
		return errNoStream
	}

	// COM state belongs to the calling thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return fmt.Errorf("failed to initialize COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	var enumerator *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &enumerator); err != nil {
		return fmt.Errorf("failed to create device enumerator: %w", err)
	}
	defer enumerator.Release()

	var device *wca.IMMDevice
	if err := enumerator.GetDefaultAudioEndpoint(wca.ERender, wca.EConsole, &device); err != nil {
		return fmt.Errorf("failed to get default audio endpoint: %w", err)
	}
	defer device.Release()

	var manager *wca.IAudioSessionManager2
	if err := device.Activate(wca.IID_IAudioSessionManager2, wca.CLSCTX_ALL, nil, &manager); err != nil {
		return fmt.Errorf("failed to activate session manager: %w", err)
	}
	defer manager.Release()

	var sessions *wca.IAudioSessionEnumerator
	if err := manager.GetSessionEnumerator(&sessions); err != nil {
		return fmt.Errorf("failed to enumerate audio sessions: %w", err)
	}
	defer sessions.Release()

	var count int
	if err := sessions.GetCount(&count); err != nil {
		return fmt.Errorf("failed to count audio sessions: %w", err)
	}

	found := false
	for i := 0; i < count; i++ {
		matched, err := withSessionVolume(sessions, i, pids, fn)
		if err != nil {
			return err
		}
		found = found || matched
	}
	if !found {
		return errNoStream
	}
	return nil
}

// withSessionVolume calls fn on session i if one of pids owns it
func withSessionVolume(sessions *wca.IAudioSessionEnumerator, i int, pids map[int]bool, fn func(*wca.ISimpleAudioVolume) error) (bool, error) {
	var control *wca.IAudioSessionControl
	if err := sessions.GetSession(i, &control); err != nil {
		return false, nil
	}
	defer control.Release()

	dispatch, err := control.QueryInterface(wca.IID_IAudioSessionControl2)
	if err != nil {
		return false, nil
	}
	control2 := (*wca.IAudioSessionControl2)(unsafe.Pointer(dispatch))
	defer control2.Release()

	// The system sounds session spans processes and fails here
	var pid uint32
	if err := control2.GetProcessId(&pid); err != nil || !pids[int(pid)] {
		return false, nil
	}

	dispatch, err = control2.QueryInterface(wca.IID_ISimpleAudioVolume)
	if err != nil {
		return false, fmt.Errorf("failed to get session volume: %w", err)
	}
	volume := (*wca.ISimpleAudioVolume)(unsafe.Pointer(dispatch))
	defer volume.Release()

	return true, fn(volume)
}
