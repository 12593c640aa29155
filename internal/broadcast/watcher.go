// Package broadcast reconciles session changes made by other scanview
// processes into this process's in-memory store. It is a one-directional
// reader: durable file in, memory out, never the reverse, so two processes
// cannot feed each other write loops.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"scanview/internal/session"
)

// Watcher observes the state directory and adopts the durable session value
// whenever the record changes underneath this process.
type Watcher struct {
	file   *session.File
	store  *session.Store
	logger *slog.Logger
}

// NewWatcher wires the durable record to the given store.
func NewWatcher(file *session.File, store *session.Store, logger *slog.Logger) *Watcher {
	return &Watcher{file: file, store: store, logger: logger}
}

// Run blocks until ctx is cancelled, reconciling on every change to the
// session record. Convergence is best effort: when two processes race, the
// last write observed wins.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory, not the file: removes and atomic renames replace
	// the inode, and a watch pinned to the old inode would go silent.
	if err := fw.Add(filepath.Dir(w.file.Path())); err != nil {
		return fmt.Errorf("watch state directory: %w", err)
	}

	// Catch anything that changed before the watch was registered.
	w.reconcile()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Name != w.file.Path() {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.reconcile()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("session watch error", "error", err)
		}
	}
}

func (w *Watcher) reconcile() {
	latest, err := w.file.Load()
	if err != nil {
		w.logger.Warn("skipping unreadable session record", "path", w.file.Path(), "error", err)
		return
	}
	w.store.Reconcile(latest)
}
