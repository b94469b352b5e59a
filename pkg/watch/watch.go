// Package watch follows a project's trees directory and reports changes to
// tree files as they happen, for terminals that keep a live view of the
// session journal.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/opsbrain/dtree/pkg/treefile"
)

// Event describes one observed change to a tree file.
type Event struct {
	// Path is the absolute path of the changed tree file.
	Path string

	// Op is the file operation (create, write, rename, remove).
	Op string
}

// Handler receives events as they arrive.
type Handler func(Event)

// Watcher follows one directory and filters for tree files.
type Watcher struct {
	dir string
	log *slog.Logger
}

// New creates a watcher for the given project trees directory.
func New(dir string, log *slog.Logger) *Watcher {
	return &Watcher{dir: dir, log: log}
}

// Run blocks, delivering tree-file events to fn until ctx is canceled or the
// underlying watcher fails. Events for non-tree files (locks, checkpoints,
// editor temp files) are dropped.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating tree watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.log.Info("watching trees", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !Relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			w.log.Debug("tree file changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			fn(Event{Path: event.Name, Op: event.Op.String()})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("tree watcher: %w", err)
		}
	}
}

// Relevant reports whether a changed path is a tree file worth reporting.
func Relevant(path string) bool {
	return treefile.IsTreeFile(filepath.Base(path))
}
