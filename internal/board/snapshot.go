package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/cueboard/internal/log"
)

// snapshot is the persisted JSON form of the board state. The sounds array
// order is authoritative for board order.
type snapshot struct {
	Volume   *int          `json:"volume"`
	TextHTML string        `json:"text_html"`
	Sounds   []snapshotCue `json:"sounds"`
}

type snapshotCue struct {
	Path        string `json:"path"`
	DisplayName string `json:"display_name"`
}

// readSnapshot loads the snapshot at path. A missing or malformed file is
// reported as absent, not as an error.
func readSnapshot(path string) (snapshot, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn(log.CatBoard, "Could not read state file", "path", path, "err", err)
		}
		return snapshot{}, false
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn(log.CatBoard, "State file is not valid JSON, starting fresh", "path", path, "err", err)
		return snapshot{}, false
	}
	return snap, true
}

// Save writes the full board state to path. The write goes to a temp file
// in the same directory first and is renamed into place, so a crash
// mid-write never leaves a truncated state file behind.
func (s *State) Save(path string) error {
	vol := s.masterVolume
	snap := snapshot{
		Volume:   &vol,
		TextHTML: s.narrative,
		Sounds:   make([]snapshotCue, 0, len(s.order)),
	}
	for _, id := range s.order {
		snap.Sounds = append(snap.Sounds, snapshotCue{
			Path:        id,
			DisplayName: s.cues[id].DisplayName,
		})
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".cueboard-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing state file: %w", err)
	}

	log.Info(log.CatBoard, "Board saved", "path", path, "cues", len(snap.Sounds))
	return nil
}
