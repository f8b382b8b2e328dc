//go:build !linux

package alsa

import "fmt"

// ListCards returns an error indicating ALSA is unavailable.
func ListCards() ([]Card, error) {
	return nil, fmt.Errorf("alsa mixer is not supported on this platform")
}

// ResolveDevice passes explicit device names through and maps "auto" to
// "default" on platforms without card enumeration.
func ResolveDevice(device string) string {
	if device != "auto" {
		return device
	}
	return "default"
}
