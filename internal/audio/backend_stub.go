//go:build !((linux && cgo) || windows || darwin)

package audio

// AudioAvailable indicates whether audio playback is supported in this build.
// Playback on linux requires cgo for the native audio libraries.
const AudioAvailable = false

// stubBackend is a no-op backend for builds without audio support. The
// board still works, sessions just produce no sound and never end on
// their own.
type stubBackend struct{}

func newBackend() backend {
	return stubBackend{}
}

func (stubBackend) play(string, float64, func(error)) (handle, error) {
	return stubHandle{}, nil
}

type stubHandle struct{}

func (stubHandle) stop()           {}
func (stubHandle) setGain(float64) {}
