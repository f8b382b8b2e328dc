package mixer_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/volumed/internal/mixer"
)

// fakeElement models a hardware control with a discrete step grid between
// minDB and maxDB. SetPlaybackDB rounds to the closest representable step at
// or above the request, the way alsa-lib does with dir=+1.
type fakeElement struct {
	name      string
	hasVolume bool
	hasSwitch bool

	minDB  float64
	maxDB  float64
	stepDB float64

	appliedDB float64
	switchOn  bool

	setRequests []float64
	setErr      error
	readErr     error
}

func (e *fakeElement) Name() string            { return e.name }
func (e *fakeElement) HasPlaybackVolume() bool { return e.hasVolume }
func (e *fakeElement) HasPlaybackSwitch() bool { return e.hasSwitch }

func (e *fakeElement) SetPlaybackDB(dB float64) error {
	if e.setErr != nil {
		return e.setErr
	}
	e.setRequests = append(e.setRequests, dB)
	e.appliedDB = e.quantize(dB)
	return nil
}

func (e *fakeElement) PlaybackDB(ch mixer.Channel) (float64, error) {
	if e.readErr != nil {
		return 0, e.readErr
	}
	return e.appliedDB, nil
}

func (e *fakeElement) SetPlaybackSwitchAll(on bool) error {
	e.switchOn = on
	return nil
}

func (e *fakeElement) quantize(dB float64) float64 {
	if dB <= e.minDB {
		return e.minDB
	}
	if dB >= e.maxDB {
		return e.maxDB
	}
	steps := math.Ceil((dB - e.minDB) / e.stepDB)
	return e.minDB + steps*e.stepDB
}

type fakeBackend struct {
	elems  []mixer.Element
	closed bool
}

func (b *fakeBackend) Elements() []mixer.Element { return b.elems }
func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

func openFake(t *testing.T, elems ...*fakeElement) (*mixer.Mixer, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	for _, e := range elems {
		backend.elems = append(backend.elems, e)
	}
	m, err := mixer.Open("hw:0", mixer.OpenerFunc(func(device string) (mixer.Backend, error) {
		return backend, nil
	}))
	require.NoError(t, err)
	return m, backend
}

func volumeControl(name string, minDB, maxDB, stepDB float64) *fakeElement {
	return &fakeElement{name: name, hasVolume: true, minDB: minDB, maxDB: maxDB, stepDB: stepDB}
}

func TestOpenClassifiesVolumeControls(t *testing.T) {
	t.Parallel()

	m, _ := openFake(t,
		volumeControl("Headphone", -40, 0, 1),
		volumeControl("PCM", -30, 0, 1),
		&fakeElement{name: "Digital", hasVolume: false},
		volumeControl("Master", -60, 0, 1),
		volumeControl("Digital", -20, 0, 1),
	)

	// Name-matched elements with playback volume, in enumeration order,
	// not in name-table order.
	require.Equal(t, []string{"PCM", "Master", "Digital"}, m.VolumeControlNames())
}

func TestOpenCapturesFirstPlaybackSwitch(t *testing.T) {
	t.Parallel()

	first := &fakeElement{name: "Headphone", hasSwitch: true, switchOn: true}
	second := &fakeElement{name: "Master", hasVolume: true, hasSwitch: true, switchOn: true,
		minDB: -60, maxDB: 0, stepDB: 1}

	m, _ := openFake(t, first, second)
	require.True(t, m.HasPlaybackSwitch())

	// The first switch wins even though a name-matched one comes later.
	m.SetMute(true)
	require.False(t, first.switchOn)
	require.True(t, second.switchOn)
}

func TestOpenElementMayServeBothRoles(t *testing.T) {
	t.Parallel()

	elem := volumeControl("Master", -60, 0, 1)
	elem.hasSwitch = true
	elem.switchOn = true

	m, _ := openFake(t, elem)
	require.Equal(t, []string{"Master"}, m.VolumeControlNames())
	require.True(t, m.HasPlaybackSwitch())
}

func TestOpenPropagatesBackendError(t *testing.T) {
	t.Parallel()

	backendErr := errors.New("no such device")
	m, err := mixer.Open("hw:9", mixer.OpenerFunc(func(device string) (mixer.Backend, error) {
		return nil, backendErr
	}))
	require.Nil(t, m)
	require.ErrorIs(t, err, backendErr)
}

func TestSetVolumeWithinFirstControlRange(t *testing.T) {
	t.Parallel()

	master := volumeControl("Master", -60, 0, 1)
	pcm := volumeControl("PCM", -30, 0, 1)
	m, _ := openFake(t, master, pcm)

	m.SetVolume(-45)

	// Master covers the whole request, PCM stays at 0dB.
	require.Equal(t, -45.0, master.appliedDB)
	require.Equal(t, 0.0, pcm.appliedDB)
	require.Equal(t, []float64{0}, pcm.setRequests)
}

func TestSetVolumeSpillsResidualToNextControl(t *testing.T) {
	t.Parallel()

	master := volumeControl("Master", -60, 0, 1)
	pcm := volumeControl("PCM", -30, 0, 1)
	m, _ := openFake(t, master, pcm)

	m.SetVolume(-70)

	// Master clamps at its floor, PCM picks up the remaining -10dB.
	require.Equal(t, -60.0, master.appliedDB)
	require.Equal(t, []float64{-10}, pcm.setRequests)
	require.Equal(t, -10.0, pcm.appliedDB)
}

func TestSetVolumeResidualInvariant(t *testing.T) {
	t.Parallel()

	chain := []*fakeElement{
		volumeControl("Master", -20, 0, 3),
		volumeControl("Digital", -25, 0, 2),
		volumeControl("PCM", -10, 0, 2),
	}
	m, _ := openFake(t, chain[0], chain[1], chain[2])

	const request = -50.0
	m.SetVolume(request)

	// Every control was asked for exactly the residual left by its
	// predecessors and answered with its closest step at or above it.
	residual := request
	for _, elem := range chain {
		require.Equal(t, []float64{residual}, elem.setRequests)
		require.Equal(t, elem.quantize(residual), elem.appliedDB)
		require.GreaterOrEqual(t, elem.appliedDB, residual)
		residual -= elem.appliedDB
	}
}

func TestSetVolumeIdempotent(t *testing.T) {
	t.Parallel()

	master := volumeControl("Master", -60, 0, 1)
	pcm := volumeControl("PCM", -30, 0, 1)
	m, _ := openFake(t, master, pcm)

	m.SetVolume(-70)
	first := []float64{master.appliedDB, pcm.appliedDB}
	m.SetVolume(-70)
	require.Equal(t, first, []float64{master.appliedDB, pcm.appliedDB})
}

func TestSetVolumeNoControls(t *testing.T) {
	t.Parallel()

	m, _ := openFake(t, &fakeElement{name: "Capture"})
	require.Empty(t, m.VolumeControlNames())
	m.SetVolume(-20) // must not panic
}

func TestSetVolumeSkipsFailingControl(t *testing.T) {
	t.Parallel()

	broken := volumeControl("Master", -60, 0, 1)
	broken.setErr = errors.New("I/O error")
	pcm := volumeControl("PCM", -30, 0, 1)
	m, _ := openFake(t, broken, pcm)

	m.SetVolume(-25)

	// The failed control contributes nothing; the full request carries on.
	require.Equal(t, []float64{-25}, pcm.setRequests)
	require.Equal(t, -25.0, pcm.appliedDB)
}

func TestSetMuteRoundTrip(t *testing.T) {
	t.Parallel()

	elem := volumeControl("Master", -60, 0, 1)
	elem.hasSwitch = true
	elem.switchOn = true
	m, _ := openFake(t, elem)

	m.SetMute(true)
	require.False(t, elem.switchOn)
	m.SetMute(false)
	require.True(t, elem.switchOn)
}

func TestSetMuteWithoutSwitch(t *testing.T) {
	t.Parallel()

	m, _ := openFake(t, volumeControl("Master", -60, 0, 1))
	require.False(t, m.HasPlaybackSwitch())
	m.SetMute(true) // must not panic
}

func TestCloseClosesBackend(t *testing.T) {
	t.Parallel()

	m, backend := openFake(t, volumeControl("Master", -60, 0, 1))
	require.NoError(t, m.Close())
	require.True(t, backend.closed)
}
