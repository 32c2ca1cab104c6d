package library

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/cueboard/internal/log"
)

// Watcher signals library changes, debounced so a burst of filesystem
// events (a copy of a dozen files, say) yields a single refresh.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	onChange func()
	done     chan struct{}
}

// NewWatcher watches root and its subdirectories and calls onChange after
// events settle for the debounce interval. onChange runs on the watcher's
// goroutine; callers that need to touch UI state should forward it as a
// message instead of mutating directly.
func NewWatcher(root string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		root:     root,
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}

	if err := w.addRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

// addRecursive registers root and every subdirectory with fsnotify.
// fsnotify watches are not recursive on their own.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, skip
		}
		if d.IsDir() {
			if addErr := w.fsw.Add(path); addErr != nil {
				log.Warn(log.CatLibrary, "Could not watch directory", "path", path, "err", addErr)
			}
		}
		return nil
	})
}

func (w *Watcher) run() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// New directories must be added to the watch set so files
			// dropped into them are seen too.
			if ev.Op.Has(fsnotify.Create) {
				_ = w.addRecursive(ev.Name)
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			log.Debug(log.CatLibrary, "Library changed, refreshing", "root", w.root)
			w.onChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatLibrary, "Watcher error", err)
		}
	}
}

// relevant filters events down to ones that can alter the scan result.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op.Has(fsnotify.Chmod) {
		return false
	}
	// Directory events matter for renames/removals; otherwise only
	// supported audio files do.
	return Supported(ev.Name) || !ev.Op.Has(fsnotify.Write)
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
