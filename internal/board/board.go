// Package board holds the persistent soundboard state: the ordered cue
// collection, the master volume and the narrative document markup.
package board

import (
	"path"
	"slices"
	"strings"

	"github.com/zjrosen/cueboard/internal/library"
	"github.com/zjrosen/cueboard/internal/log"
)

// DefaultVolume is the master volume applied when no snapshot exists.
const DefaultVolume = 100

// Cue is one sound button on the board.
type Cue struct {
	// ID is the file's path relative to the library root, forward-slash
	// separated. It is the cue's stable identity in the snapshot and in
	// narrative markers.
	ID string

	// DisplayName is the user-editable label. Defaults to the filename
	// without extension.
	DisplayName string

	// AbsPath is where the backing audio file lives right now.
	AbsPath string
}

// State is the board's mutable state. All mutation happens on the UI
// goroutine, so State carries no locking of its own.
type State struct {
	order        []string
	cues         map[string]*Cue
	masterVolume int
	narrative    string
}

// New returns an empty State with the default master volume.
func New() *State {
	return &State{
		cues:         make(map[string]*Cue),
		masterVolume: DefaultVolume,
	}
}

// Load builds the State for a library scan merged with the snapshot at
// statePath. A missing or malformed snapshot is treated as empty state,
// never as an error: persisted cues whose files vanished are dropped, files
// unknown to the snapshot are appended in scan order.
func Load(statePath string, entries []library.Entry) *State {
	s := New()

	snap, ok := readSnapshot(statePath)
	if ok {
		if snap.Volume != nil {
			s.masterVolume = clampVolume(*snap.Volume)
		}
		s.narrative = snap.TextHTML
	}

	avail := make(map[string]string, len(entries))
	for _, e := range entries {
		avail[e.Rel] = e.AbsPath
	}

	for _, sc := range snap.Sounds {
		abs, found := avail[sc.Path]
		if !found {
			// File removed from the library since last save. The cue is
			// forgotten silently, matching on-disk reality.
			log.Debug(log.CatBoard, "Dropping cue with missing file", "id", sc.Path)
			continue
		}
		if _, dup := s.cues[sc.Path]; dup {
			continue
		}
		name := sc.DisplayName
		if name == "" {
			name = defaultName(sc.Path)
		}
		s.append(&Cue{ID: sc.Path, DisplayName: name, AbsPath: abs})
	}

	for _, e := range entries {
		if _, known := s.cues[e.Rel]; !known {
			s.append(&Cue{ID: e.Rel, DisplayName: defaultName(e.Rel), AbsPath: e.AbsPath})
		}
	}

	log.Info(log.CatBoard, "Board loaded", "cues", len(s.order), "volume", s.masterVolume)
	return s
}

// Reconcile applies a fresh scan to a live State: cues whose files are gone
// are dropped, new files are appended, surviving cues keep their display
// names and positions.
func (s *State) Reconcile(entries []library.Entry) {
	avail := make(map[string]string, len(entries))
	for _, e := range entries {
		avail[e.Rel] = e.AbsPath
	}

	kept := s.order[:0]
	for _, id := range s.order {
		abs, found := avail[id]
		if !found {
			log.Debug(log.CatBoard, "Dropping cue with missing file", "id", id)
			delete(s.cues, id)
			continue
		}
		s.cues[id].AbsPath = abs
		kept = append(kept, id)
	}
	s.order = kept

	for _, e := range entries {
		if _, known := s.cues[e.Rel]; !known {
			s.append(&Cue{ID: e.Rel, DisplayName: defaultName(e.Rel), AbsPath: e.AbsPath})
		}
	}
}

func (s *State) append(c *Cue) {
	s.order = append(s.order, c.ID)
	s.cues[c.ID] = c
}

// Order returns a copy of the cue id sequence.
func (s *State) Order() []string {
	return slices.Clone(s.order)
}

// Len returns the number of cues on the board.
func (s *State) Len() int {
	return len(s.order)
}

// Cue returns the cue with the given id.
func (s *State) Cue(id string) (Cue, bool) {
	c, ok := s.cues[id]
	if !ok {
		return Cue{}, false
	}
	return *c, true
}

// Cues returns every cue in board order.
func (s *State) Cues() []Cue {
	out := make([]Cue, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.cues[id])
	}
	return out
}

// IndexOf returns the position of id in the board order, or -1.
func (s *State) IndexOf(id string) int {
	return slices.Index(s.order, id)
}

// Reorder removes id from its current position and re-inserts it so that it
// ends up at target in the resulting order. Out-of-range targets clamp to
// the ends. Returns false for a no-op (unknown id or unchanged position).
func (s *State) Reorder(id string, target int) bool {
	cur := s.IndexOf(id)
	if cur < 0 {
		return false
	}
	target = max(0, min(target, len(s.order)-1))
	if target == cur {
		return false
	}

	s.order = slices.Delete(s.order, cur, cur+1)
	s.order = slices.Insert(s.order, target, id)
	return true
}

// Rename sets the display name of id. Empty names and unknown ids are
// ignored. Display names need not be unique.
func (s *State) Rename(id, name string) bool {
	c, ok := s.cues[id]
	if !ok || name == "" {
		return false
	}
	c.DisplayName = name
	return true
}

// MasterVolume returns the master volume in [0,100].
func (s *State) MasterVolume() int {
	return s.masterVolume
}

// SetMasterVolume stores v clamped to [0,100].
func (s *State) SetMasterVolume(v int) {
	s.masterVolume = clampVolume(v)
}

// Narrative returns the narrative document markup.
func (s *State) Narrative() string {
	return s.narrative
}

// SetNarrative replaces the narrative document markup.
func (s *State) SetNarrative(markup string) {
	s.narrative = markup
}

func clampVolume(v int) int {
	return max(0, min(v, 100))
}

// defaultName derives a display name from a relative id: the base filename
// without its extension.
func defaultName(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}
