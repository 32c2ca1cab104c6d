//go:build (linux && cgo) || windows || darwin

package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

// beepBackend plays audio files through the beep speaker. The speaker is
// initialized once at a fixed rate; streams with other rates are resampled.
type beepBackend struct {
	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
}

func newBackend() backend {
	return &beepBackend{sampleRate: beep.SampleRate(44100)}
}

func (b *beepBackend) ensureSpeaker() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}
	if err := speaker.Init(b.sampleRate, b.sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	b.initialized = true
	return nil
}

func (b *beepBackend) play(path string, gain float64, done func(error)) (handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		_ = f.Close()
		return nil, fmt.Errorf("unsupported audio format: %s", path)
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	if err := b.ensureSpeaker(); err != nil {
		_ = streamer.Close()
		_ = f.Close()
		return nil, err
	}

	resampled := beep.Resample(4, format.SampleRate, b.sampleRate, streamer)
	vol := &effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeFor(gain),
		Silent:   gain == 0,
	}
	ctrl := &beep.Ctrl{Streamer: vol}

	h := &beepHandle{ctrl: ctrl, vol: vol, streamer: streamer, file: f}

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		err := streamer.Err()
		h.release()
		done(err)
	})))

	return h, nil
}

// beepHandle controls one stream queued on the speaker.
type beepHandle struct {
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	streamer beep.StreamSeekCloser
	file     *os.File

	releaseOnce sync.Once
}

// stop detaches the stream from the speaker. The sequence then drains
// immediately, so the end-of-stream callback still fires and releases the
// decoder; from the caller's perspective the stop is effective at once.
func (h *beepHandle) stop() {
	speaker.Lock()
	h.ctrl.Streamer = nil
	speaker.Unlock()
}

func (h *beepHandle) setGain(gain float64) {
	speaker.Lock()
	h.vol.Volume = volumeFor(gain)
	h.vol.Silent = gain == 0
	speaker.Unlock()
}

func (h *beepHandle) release() {
	h.releaseOnce.Do(func() {
		_ = h.streamer.Close()
		_ = h.file.Close()
	})
}

// volumeFor converts a linear 0..1 gain to the exponential volume scale
// beep uses (base 2, 0 means unchanged). Gain 0 is handled via Silent.
func volumeFor(gain float64) float64 {
	return math.Log2(math.Max(gain, 0.001))
}
