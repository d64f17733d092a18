package engine

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches bursts of filesystem events (editors often write a
// file several times per save) into a single rebuild.
const debounceWindow = 200 * time.Millisecond

// Watch starts an fsnotify watcher on root and rebuilds the snapshot after
// each settled burst of changes, calling onRebuild (if non-nil) with the new
// snapshot. It blocks until ctx is cancelled.
//
// Directories created at runtime are added to the watch list. Renames and
// deletes need no special handling: every rebuild rescans from disk.
func (e *Engine) Watch(ctx context.Context, root string, onRebuild func(*Snapshot)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	e.logger.Info("watcher: started", slog.String("root", root))

	var rebuildTimer *time.Timer
	var rebuildCh <-chan time.Time

	schedule := func() {
		if rebuildTimer == nil {
			rebuildTimer = time.NewTimer(debounceWindow)
			rebuildCh = rebuildTimer.C
		} else {
			rebuildTimer.Reset(debounceWindow)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			e.logger.Info("watcher: stopped")
			return nil

		case <-rebuildCh:
			snap, err := e.Rebuild(ctx)
			if err != nil {
				e.logger.Error("watcher: rebuild failed", slog.String("error", err.Error()))
				continue
			}
			if onRebuild != nil {
				onRebuild(snap)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						e.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
