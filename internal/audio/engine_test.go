package audio

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records playback requests and lets tests drive stream
// completion by hand.
type fakeBackend struct {
	mu      sync.Mutex
	playErr error
	streams []*fakeStream
}

type fakeStream struct {
	mu      sync.Mutex
	path    string
	gain    float64
	done    func(error)
	stopped bool
}

func (b *fakeBackend) play(path string, gain float64, done func(error)) (handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.playErr != nil {
		return nil, b.playErr
	}
	s := &fakeStream{path: path, gain: gain, done: done}
	b.streams = append(b.streams, s)
	return s, nil
}

func (b *fakeBackend) last() *fakeStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streams[len(b.streams)-1]
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.streams)
}

func (s *fakeStream) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *fakeStream) setGain(gain float64) {
	s.mu.Lock()
	s.gain = gain
	s.mu.Unlock()
}

func (s *fakeStream) currentGain() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}

type transition struct {
	id      string
	playing bool
}

// recorder collects notifications in order. Delivery is asynchronous, so
// tests wait for the expected count before asserting on the sequence.
type recorder struct {
	mu  sync.Mutex
	got []transition
}

func (r *recorder) notify(id string, playing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, transition{id, playing})
}

func (r *recorder) transitions() []transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transition(nil), r.got...)
}

func (r *recorder) wait(t *testing.T, n int) []transition {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(r.transitions()) >= n
	}, time.Second, time.Millisecond, "expected %d transitions, have %v", n, r.transitions())
	return r.transitions()
}

func newTestEngine(t *testing.T) (*Engine, *fakeBackend, *recorder) {
	t.Helper()
	b := &fakeBackend{}
	r := &recorder{}
	e := newEngine(b, r.notify)
	t.Cleanup(e.Close)
	return e, b, r
}

func TestToggle_IsAPureFlip(t *testing.T) {
	e, b, r := newTestEngine(t)

	e.Toggle("a.mp3", "/lib/a.mp3")
	assert.True(t, e.IsPlaying("a.mp3"))

	e.Toggle("a.mp3", "/lib/a.mp3")
	assert.False(t, e.IsPlaying("a.mp3"))
	assert.True(t, b.last().stopped)

	assert.Equal(t, []transition{{"a.mp3", true}, {"a.mp3", false}}, r.wait(t, 2))
}

func TestToggle_RetriggerRestartsFromBeginning(t *testing.T) {
	e, b, _ := newTestEngine(t)

	e.Toggle("a.mp3", "/lib/a.mp3")
	e.Toggle("a.mp3", "/lib/a.mp3") // stop, no new stream
	e.Toggle("a.mp3", "/lib/a.mp3") // fresh stream, not a resume

	assert.Equal(t, 2, b.count())
	assert.True(t, e.IsPlaying("a.mp3"))
}

func TestToggle_IndependentSessions(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.Toggle("a.mp3", "/lib/a.mp3")
	e.Toggle("b.wav", "/lib/b.wav")
	assert.True(t, e.IsPlaying("a.mp3"))
	assert.True(t, e.IsPlaying("b.wav"))

	e.Toggle("a.mp3", "/lib/a.mp3")
	assert.False(t, e.IsPlaying("a.mp3"))
	assert.True(t, e.IsPlaying("b.wav"))
}

func TestNaturalEndOfTrack(t *testing.T) {
	e, b, r := newTestEngine(t)

	e.Toggle("a.mp3", "/lib/a.mp3")
	b.last().done(nil)

	assert.False(t, e.IsPlaying("a.mp3"))
	e.Close()
	assert.Equal(t, []transition{{"a.mp3", true}, {"a.mp3", false}}, r.transitions())
}

// A track short enough to finish while the toggle is still returning must
// still notify start before end, or the board would show the cue stuck
// playing forever.
func TestShortTrack_StartNotifiedBeforeEnd(t *testing.T) {
	e, b, r := newTestEngine(t)

	e.Toggle("blip.wav", "/lib/blip.wav")
	b.last().done(nil)

	assert.False(t, e.IsPlaying("blip.wav"))
	e.Close()
	assert.Equal(t, []transition{{"blip.wav", true}, {"blip.wav", false}}, r.transitions())
}

// The sink may be an event loop that only drains notifications between
// updates. Toggling from such a loop must never block on delivery.
func TestToggle_DoesNotBlockOnSink(t *testing.T) {
	sink := make(chan transition) // unbuffered, nobody receiving yet
	b := &fakeBackend{}
	e := newEngine(b, func(id string, playing bool) {
		sink <- transition{id, playing}
	})
	t.Cleanup(e.Close)

	returned := make(chan struct{})
	go func() {
		e.Toggle("a.mp3", "/lib/a.mp3")
		e.Toggle("a.mp3", "/lib/a.mp3")
		e.StopAll()
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Toggle blocked waiting for the notification sink")
	}

	assert.Equal(t, transition{"a.mp3", true}, <-sink)
	assert.Equal(t, transition{"a.mp3", false}, <-sink)
}

func TestStaleDoneCallbackIgnored(t *testing.T) {
	e, b, r := newTestEngine(t)

	e.Toggle("a.mp3", "/lib/a.mp3")
	first := b.last()
	e.Toggle("a.mp3", "/lib/a.mp3") // user stop
	e.Toggle("a.mp3", "/lib/a.mp3") // restart

	// The first stream's teardown completes late; it must not knock the
	// new session idle.
	first.done(nil)

	assert.True(t, e.IsPlaying("a.mp3"))
	assert.Equal(t, []transition{
		{"a.mp3", true}, {"a.mp3", false}, {"a.mp3", true},
	}, r.wait(t, 3))
}

func TestPlaybackErrorForcesIdle(t *testing.T) {
	e, b, r := newTestEngine(t)

	e.Toggle("a.mp3", "/lib/a.mp3")
	b.last().done(errors.New("decoder blew up"))

	assert.False(t, e.IsPlaying("a.mp3"))
	e.Close()
	assert.Equal(t, []transition{{"a.mp3", true}, {"a.mp3", false}}, r.transitions())
}

func TestStartFailureStaysIdle(t *testing.T) {
	b := &fakeBackend{playErr: errors.New("no such device")}
	r := &recorder{}
	e := newEngine(b, r.notify)

	e.Toggle("a.mp3", "/lib/a.mp3")

	assert.False(t, e.IsPlaying("a.mp3"))
	e.Close()
	assert.Empty(t, r.transitions())
}

func TestStopAll(t *testing.T) {
	e, _, r := newTestEngine(t)

	e.Toggle("a.mp3", "/lib/a.mp3")
	e.Toggle("b.wav", "/lib/b.wav")
	e.StopAll()

	assert.Empty(t, e.Playing())

	e.Close()
	got := r.transitions()
	require.Len(t, got, 4)
	assert.ElementsMatch(t, []transition{{"a.mp3", false}, {"b.wav", false}}, got[2:])
}

func TestSetMasterVolume_ClampsAndApplies(t *testing.T) {
	e, b, _ := newTestEngine(t)

	e.SetMasterVolume(150)
	assert.Equal(t, 100, e.MasterVolume())

	e.SetMasterVolume(-5)
	assert.Equal(t, 0, e.MasterVolume())

	e.Toggle("a.mp3", "/lib/a.mp3")
	// New sessions adopt the current master volume at creation time.
	assert.Equal(t, 0.0, b.last().currentGain())

	// Live sessions re-gain on change.
	e.SetMasterVolume(50)
	assert.Equal(t, 0.5, b.last().currentGain())
}

func TestStopOnIdleIsNoOp(t *testing.T) {
	e, _, r := newTestEngine(t)

	e.Stop("never-played.mp3")
	e.Close()
	assert.Empty(t, r.transitions())
}
