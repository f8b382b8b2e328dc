//go:build linux && cgo

package alsa

/*
#cgo LDFLAGS: -lasound
#include <stdlib.h>
#include <alsa/asoundlib.h>
*/
import "C"

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/user/volumed/internal/mixer"
)

// backend wraps an open snd_mixer handle. Element pointers stay valid until
// the handle is closed, so the element list is built once at open time.
type backend struct {
	handle *C.snd_mixer_t
	elems  []mixer.Element
}

// Open connects to the mixer of the named ALSA device (e.g. "default" or
// "hw:0") and enumerates its simple elements. Wrap it with mixer.OpenerFunc
// to satisfy mixer.Opener.
func Open(device string) (mixer.Backend, error) {
	var handle *C.snd_mixer_t
	if rc := C.snd_mixer_open(&handle, 0); rc < 0 {
		return nil, alsaErr("snd_mixer_open", rc)
	}

	cdev := C.CString(device)
	defer C.free(unsafe.Pointer(cdev))

	if rc := C.snd_mixer_attach(handle, cdev); rc < 0 {
		C.snd_mixer_close(handle)
		return nil, alsaErr("snd_mixer_attach", rc)
	}
	if rc := C.snd_mixer_selem_register(handle, nil, nil); rc < 0 {
		C.snd_mixer_close(handle)
		return nil, alsaErr("snd_mixer_selem_register", rc)
	}
	if rc := C.snd_mixer_load(handle); rc < 0 {
		C.snd_mixer_close(handle)
		return nil, alsaErr("snd_mixer_load", rc)
	}

	b := &backend{handle: handle}
	for e := C.snd_mixer_first_elem(handle); e != nil; e = C.snd_mixer_elem_next(e) {
		b.elems = append(b.elems, &element{elem: e})
	}
	return b, nil
}

func (b *backend) Elements() []mixer.Element { return b.elems }

func (b *backend) Close() error {
	if rc := C.snd_mixer_close(b.handle); rc < 0 {
		return alsaErr("snd_mixer_close", rc)
	}
	return nil
}

func alsaErr(op string, rc C.int) error {
	return fmt.Errorf("%s: %s", op, C.GoString(C.snd_strerror(rc)))
}

// element adapts one simple mixer element.
type element struct {
	elem *C.snd_mixer_elem_t
}

func (e *element) Name() string {
	return C.GoString(C.snd_mixer_selem_get_name(e.elem))
}

func (e *element) HasPlaybackVolume() bool {
	return C.snd_mixer_selem_has_playback_volume(e.elem) != 0
}

// SetPlaybackDB applies dB to every playback channel. libasound expresses dB
// in hundredths; dir=+1 picks the closest step at or above the request so
// the output is never quieter than asked for.
func (e *element) SetPlaybackDB(dB float64) error {
	value := C.long(math.Round(dB * 100))
	if rc := C.snd_mixer_selem_set_playback_dB_all(e.elem, value, 1); rc < 0 {
		return alsaErr("snd_mixer_selem_set_playback_dB_all", rc)
	}
	return nil
}

func (e *element) PlaybackDB(ch mixer.Channel) (float64, error) {
	var value C.long
	rc := C.snd_mixer_selem_get_playback_dB(e.elem, C.snd_mixer_selem_channel_id_t(ch), &value)
	if rc < 0 {
		return 0, alsaErr("snd_mixer_selem_get_playback_dB", rc)
	}
	return float64(value) / 100, nil
}

func (e *element) HasPlaybackSwitch() bool {
	return C.snd_mixer_selem_has_playback_switch(e.elem) != 0
}

func (e *element) SetPlaybackSwitchAll(on bool) error {
	value := C.int(0)
	if on {
		value = 1
	}
	if rc := C.snd_mixer_selem_set_playback_switch_all(e.elem, value); rc < 0 {
		return alsaErr("snd_mixer_selem_set_playback_switch_all", rc)
	}
	return nil
}
