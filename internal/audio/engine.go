// Package audio coordinates playback sessions for the sound board.
//
// Each cue owns at most one session and sessions are independent: any
// number of cues may play at once. A session is Idle or Playing, nothing
// else; re-triggering an idle cue restarts it from the beginning, toggling
// a playing cue stops it.
package audio

import (
	"sync"

	"github.com/zjrosen/cueboard/internal/log"
)

// Notify receives every playing-state transition. Transitions are delivered
// in order from a dedicated goroutine, so a sink that blocks (a UI event
// loop, for instance) never stalls the caller that triggered the
// transition.
type Notify func(id string, playing bool)

// handle controls one live playback stream.
type handle interface {
	stop()
	setGain(gain float64)
}

// backend starts playback streams. done is called exactly once when the
// stream ends on its own, with any playback error.
type backend interface {
	play(path string, gain float64, done func(error)) (handle, error)
}

type session struct {
	h   handle
	gen uint64
}

type notification struct {
	id      string
	playing bool
}

// Engine maps cue ids to playback sessions and applies the master volume.
type Engine struct {
	mu           sync.Mutex
	cond         *sync.Cond
	backend      backend
	notify       Notify
	masterVolume int
	gen          uint64
	sessions     map[string]*session

	// pending holds transitions not yet handed to the sink. Entries are
	// appended under mu at the moment the state changes, which fixes their
	// delivery order; the dispatch goroutine drains them FIFO.
	pending []notification
	closed  bool
	done    chan struct{}
}

// NewEngine creates an Engine on the platform audio backend.
func NewEngine(notify Notify) *Engine {
	return newEngine(newBackend(), notify)
}

func newEngine(b backend, notify Notify) *Engine {
	if notify == nil {
		notify = func(string, bool) {}
	}
	e := &Engine{
		backend:      b,
		notify:       notify,
		masterVolume: 100,
		sessions:     make(map[string]*session),
		done:         make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)
	go e.dispatch()
	return e
}

// emit queues a transition for the sink. Callers must hold e.mu.
func (e *Engine) emit(id string, playing bool) {
	e.pending = append(e.pending, notification{id: id, playing: playing})
	e.cond.Signal()
}

// dispatch delivers queued transitions to the sink, one at a time. It runs
// until Close, draining whatever is still queued first.
func (e *Engine) dispatch() {
	defer close(e.done)
	for {
		e.mu.Lock()
		for len(e.pending) == 0 && !e.closed {
			e.cond.Wait()
		}
		if len(e.pending) == 0 {
			e.mu.Unlock()
			return
		}
		n := e.pending[0]
		e.pending = e.pending[1:]
		e.mu.Unlock()

		e.notify(n.id, n.playing)
	}
}

// Toggle flips the session for id: playing stops, idle starts from the
// beginning of the file at path. Start failures are logged and leave the
// session idle.
func (e *Engine) Toggle(id, path string) {
	e.mu.Lock()
	if s, playing := e.sessions[id]; playing {
		delete(e.sessions, id)
		e.emit(id, false)
		e.mu.Unlock()
		s.h.stop()
		return
	}

	e.gen++
	gen := e.gen
	gain := gainFor(e.masterVolume)
	h, err := e.backend.play(path, gain, func(playErr error) {
		e.onDone(id, gen, playErr)
	})
	if err != nil {
		e.mu.Unlock()
		log.ErrorErr(log.CatAudio, "Could not start playback", err, "id", id, "path", path)
		return
	}
	e.sessions[id] = &session{h: h, gen: gen}
	e.emit(id, true)
	e.mu.Unlock()

	log.Debug(log.CatAudio, "Playback started", "id", id)
}

// onDone handles natural end-of-track (or a backend error mid-stream).
// Sessions stopped by the user were already removed, so their late
// callbacks carry a stale generation and are ignored.
func (e *Engine) onDone(id string, gen uint64, err error) {
	e.mu.Lock()
	s, ok := e.sessions[id]
	if !ok || s.gen != gen {
		e.mu.Unlock()
		return
	}
	delete(e.sessions, id)
	e.emit(id, false)
	e.mu.Unlock()

	if err != nil {
		log.ErrorErr(log.CatAudio, "Playback error", err, "id", id)
	} else {
		log.Debug(log.CatAudio, "Playback finished", "id", id)
	}
}

// Stop forces the session for id to idle. No-op when already idle.
func (e *Engine) Stop(id string) {
	e.mu.Lock()
	s, playing := e.sessions[id]
	if !playing {
		e.mu.Unlock()
		return
	}
	delete(e.sessions, id)
	e.emit(id, false)
	e.mu.Unlock()

	s.h.stop()
}

// StopAll stops every playing session. Called on user request and
// unconditionally on shutdown so no playback outlives the application.
func (e *Engine) StopAll() {
	e.mu.Lock()
	stopped := make(map[string]*session, len(e.sessions))
	for id, s := range e.sessions {
		stopped[id] = s
		e.emit(id, false)
	}
	e.sessions = make(map[string]*session)
	e.mu.Unlock()

	for _, s := range stopped {
		s.h.stop()
	}
}

// SetMasterVolume clamps v to [0,100], applies it to every live session
// and to sessions created afterwards.
func (e *Engine) SetMasterVolume(v int) {
	v = max(0, min(v, 100))

	e.mu.Lock()
	e.masterVolume = v
	handles := make([]handle, 0, len(e.sessions))
	for _, s := range e.sessions {
		handles = append(handles, s.h)
	}
	e.mu.Unlock()

	gain := gainFor(v)
	for _, h := range handles {
		h.setGain(gain)
	}
}

// MasterVolume returns the current master volume in [0,100].
func (e *Engine) MasterVolume() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.masterVolume
}

// IsPlaying reports whether the session for id is playing.
func (e *Engine) IsPlaying(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, playing := e.sessions[id]
	return playing
}

// Playing returns the ids of all playing sessions.
func (e *Engine) Playing() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Close stops all playback, then waits until every queued transition has
// reached the sink.
func (e *Engine) Close() {
	e.StopAll()

	e.mu.Lock()
	e.closed = true
	e.cond.Signal()
	e.mu.Unlock()

	<-e.done
}

// gainFor maps the 0-100 master volume to the backend's 0..1 gain.
func gainFor(v int) float64 {
	return float64(v) / 100
}
