// Package watch rescans SDK trees when images or configurations change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sdkmatch/logger"
	"sdkmatch/utils"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

type Watcher struct {
	roots     []string
	recursive bool
	debounce  time.Duration
	fsw       *fsnotify.Watcher
}

// New registers every directory under roots. Unreadable subdirectories are
// skipped; a root that cannot be watched is an error.
func New(roots []string, recursive bool, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{roots: roots, recursive: recursive, debounce: debounce, fsw: fsw}
	for _, root := range roots {
		if err := w.add(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(root string) error {
	if !w.recursive {
		return w.fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Debugf("Skipping unwatchable path %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			if path == root {
				return err
			}
			logger.Debugf("Failed to watch %s: %v", path, err)
		}
		return nil
	})
}

// Relevant reports whether ev can change a scan result.
func Relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(ev.Name))
	return ext == ".appimage" || ext == ".cfg"
}

// Run calls rescan once per burst of relevant events, after the tree has been
// quiet for the debounce period. rescan runs on Run's goroutine, so it never
// overlaps itself. Run returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, rescan func(context.Context)) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			relevant := Relevant(ev)
			if ev.Has(fsnotify.Create) && w.recursive {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.add(ev.Name); err != nil {
						logger.Debugf("Failed to watch new directory %s: %v", ev.Name, err)
					}
					relevant = true
				}
			}
			if !relevant {
				continue
			}
			if ev.Has(fsnotify.Create) && !utils.IsPathWithin(ev.Name, w.roots) {
				continue
			}
			logger.WithField("event", ev.Op.String()).Debugf("Change detected: %s", ev.Name)
			pending = true
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("Watch error: %v", err)
		case <-timer.C:
			if pending {
				pending = false
				rescan(ctx)
			}
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}
