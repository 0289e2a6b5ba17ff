// Package watcher monitors the vault for note changes and notifies the
// TUI to reindex. Every directory under the vault root is watched
// (fsnotify is not recursive), new directories are added as they appear,
// and rapid bursts of events — editors typically write a temp file, sync
// it and rename it over the note — are coalesced via a debounce window.
package watcher

import (
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is sent when the watcher detects relevant vault changes.
type Event struct{}

// Watch monitors root and all directories beneath it, sending Event
// values on the returned channel. Call the returned stop function to
// tear down the watcher.
func Watch(root string, debounce time.Duration) (<-chan Event, func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, skip
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != filepath.Base(root) && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		_ = w.Add(path)
		return nil
	})
	if err != nil {
		_ = w.Close()
		return nil, nil, err
	}

	ch := make(chan Event, 1)
	done := make(chan struct{})

	// Jitter spreads reindex work when several panes watch the same
	// vault, so they do not all re-walk the tree at the same moment.
	jitterRange := debounce / 2
	if jitterRange <= 0 {
		jitterRange = time.Millisecond
	}

	go func() {
		defer close(ch)
		var timer *time.Timer

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if shouldIgnore(ev.Name) {
					continue
				}
				// A new folder must be watched before notes land in it.
				if ev.Op.Has(fsnotify.Create) {
					if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
						_ = w.Add(ev.Name)
					}
				}
				jitter := time.Duration(rand.Int63n(int64(jitterRange)))
				d := debounce + jitter
				if timer == nil {
					timer = time.NewTimer(d)
				} else {
					timer.Reset(d)
				}
			case <-timerChan(timer):
				timer = nil
				select {
				case ch <- Event{}:
				default:
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		_ = w.Close()
	}

	return ch, stop, nil
}

// timerChan returns the timer's channel, or a nil channel if timer is nil.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// shouldIgnore returns true for events that should not trigger a reindex.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)

	// Editor swap/temp/atomic-write leftovers.
	if strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swo") ||
		strings.HasSuffix(base, "~") || strings.HasPrefix(base, ".#") ||
		strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, ".part") {
		return true
	}

	// Hidden files and sync-service metadata directories.
	if strings.HasPrefix(base, ".") {
		return true
	}

	return false
}
