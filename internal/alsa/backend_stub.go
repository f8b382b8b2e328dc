//go:build !linux || !cgo

package alsa

import (
	"fmt"

	"github.com/user/volumed/internal/mixer"
)

// Open reports that ALSA is unavailable on this platform.
func Open(device string) (mixer.Backend, error) {
	return nil, fmt.Errorf("alsa mixer is not supported on this platform")
}
