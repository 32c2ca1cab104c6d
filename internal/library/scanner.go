// Package library enumerates and watches the on-disk sound library.
package library

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/cueboard/internal/log"
)

// supportedExtensions are the audio container formats cueboard can play.
// Matching is case-insensitive.
var supportedExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".ogg": true,
}

// Entry is one playable file found in the library.
type Entry struct {
	// AbsPath is the absolute filesystem path of the file.
	AbsPath string

	// Rel is the path relative to the library root with forward-slash
	// separators. It doubles as the cue's stable identifier, so it must
	// not vary across platforms or runs.
	Rel string
}

// Supported reports whether path has a playable audio extension.
func Supported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Scan recursively enumerates supported audio files under root.
//
// The root directory is created if absent; failure to create it is not an
// error, the scan simply yields nothing. Entries come back in lexical walk
// order, which is stable for a given filesystem state.
func Scan(root string) ([]Entry, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(root, 0750); mkErr != nil {
			log.Warn(log.CatLibrary, "Could not create library directory", "root", root, "err", mkErr)
			return nil, nil
		}
	}

	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip it rather than abort the scan.
			log.Warn(log.CatLibrary, "Skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			AbsPath: abs,
			Rel:     filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug(log.CatLibrary, "Scanned library", "root", root, "count", len(entries))
	return entries, nil
}
