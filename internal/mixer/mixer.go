// Package mixer maps logical playback volume and mute requests onto the
// hardware controls exposed by a sound device's mixer.
//
// A device rarely has a single control spanning the full useful attenuation
// range. Instead the output path carries several cascaded controls ("Master"
// followed by "PCM" is the common case), each with its own dB range and step
// size. Mixer discovers those controls once, at open time, and SetVolume
// spreads a requested attenuation across them in sequence so the combined
// range exceeds what any single control could deliver.
package mixer

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Channel identifies one channel of a mixer element.
type Channel int

// FrontLeft is the reference channel used to read back the attenuation a
// control actually applied.
const FrontLeft Channel = 0

// Element is one control exposed by a hardware mixer backend.
type Element interface {
	Name() string

	HasPlaybackVolume() bool
	// SetPlaybackDB applies dB to all playback channels, rounded to the
	// closest step the hardware supports at or above the requested value.
	SetPlaybackDB(dB float64) error
	// PlaybackDB reports the attenuation currently applied on ch.
	PlaybackDB(ch Channel) (float64, error)

	HasPlaybackSwitch() bool
	SetPlaybackSwitchAll(on bool) error
}

// Backend is an open connection to a hardware mixer.
type Backend interface {
	// Elements returns the mixer's controls in enumeration order.
	Elements() []Element
	Close() error
}

// Opener opens a connection to a named mixer device.
type Opener interface {
	Open(device string) (Backend, error)
}

// OpenerFunc adapts a plain function to the Opener interface.
type OpenerFunc func(device string) (Backend, error)

// Open calls f.
func (f OpenerFunc) Open(device string) (Backend, error) { return f(device) }

// Control names that adjust the main volume of a device.
var mainVolumeControlNames = []string{"Master", "Digital", "PCM"}

func isMainVolumeControlName(name string) bool {
	for _, n := range mainVolumeControlNames {
		if n == name {
			return true
		}
	}
	return false
}

// Mixer owns one backend connection, the volume controls discovered on it in
// enumeration order, and at most one playback switch carrying mute. The
// discovered set never changes after Open returns.
//
// A Mixer has a single logical owner; concurrent use must be serialized by
// the caller.
type Mixer struct {
	device         string
	backend        Backend
	volumeControls []Element
	playbackSwitch Element
}

// Open connects to the named device and discovers its controls. Elements
// whose name is one of the main volume control names and which expose a
// playback volume become volume controls, kept in enumeration order. The
// first element with a playback switch, name-matched or not, becomes the
// mute switch.
func Open(device string, opener Opener) (*Mixer, error) {
	backend, err := opener.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open mixer for %q: %w", device, err)
	}

	log.Debug("add mixer", "device", device)

	m := &Mixer{device: device, backend: backend}
	for _, elem := range backend.Elements() {
		if isMainVolumeControlName(elem.Name()) && elem.HasPlaybackVolume() {
			log.Debug("add volume control", "name", elem.Name())
			m.volumeControls = append(m.volumeControls, elem)
		}

		// Grab the first playback switch along the output path. One mute
		// point is sufficient; later switches are ignored.
		if m.playbackSwitch == nil && elem.HasPlaybackSwitch() {
			m.playbackSwitch = elem
		}
	}
	return m, nil
}

// Close closes the backend connection. The Mixer must not be used afterward.
func (m *Mixer) Close() error {
	return m.backend.Close()
}

// Device returns the device identifier the mixer was opened with.
func (m *Mixer) Device() string { return m.device }

// VolumeControlNames returns the names of the discovered volume controls in
// enumeration order.
func (m *Mixer) VolumeControlNames() []string {
	names := make([]string, 0, len(m.volumeControls))
	for _, elem := range m.volumeControls {
		names = append(names, elem.Name())
	}
	return names
}

// HasPlaybackSwitch reports whether a mute switch was discovered.
func (m *Mixer) HasPlaybackSwitch() bool { return m.playbackSwitch != nil }

// SetVolume distributes the requested attenuation across the volume
// controls. volumeDB is normally negative; 0 means unattenuated.
//
// Each control in discovery order is set to the value closest but not below
// the residual, then the amount it actually applied is subtracted from the
// residual and carried to the next control. Once nothing is left the
// remaining controls resolve to 0dB. If the chain runs out of range the
// output lands as close to the request as the hardware allows; that is not
// an error.
func (m *Mixer) SetVolume(volumeDB float64) {
	remaining := volumeDB
	for _, elem := range m.volumeControls {
		if err := elem.SetPlaybackDB(remaining); err != nil {
			log.Debug("set playback dB failed", "name", elem.Name(), "err", err)
			continue
		}
		applied, err := elem.PlaybackDB(FrontLeft)
		if err != nil {
			log.Debug("read playback dB failed", "name", elem.Name(), "err", err)
			continue
		}
		remaining -= applied
	}
}

// SetMute flips the playback switch. Without a discovered switch this is a
// no-op.
func (m *Mixer) SetMute(muted bool) {
	if m.playbackSwitch == nil {
		return
	}
	log.Debug("mute switch", "name", m.playbackSwitch.Name(), "muted", muted)
	if err := m.playbackSwitch.SetPlaybackSwitchAll(!muted); err != nil {
		log.Debug("set playback switch failed",
			"name", m.playbackSwitch.Name(), "err", err)
	}
}
