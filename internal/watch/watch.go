// internal/watch/watch.go

// Package watch runs analyses for task files dropped into a spool
// directory. Processed files are renamed with a .done or .failed
// suffix so a restarted watcher never reprocesses them.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleInterval is how long a task file must stay the same size before
// it is treated as fully written. Create events can fire while the
// producer is still writing.
const settleInterval = 100 * time.Millisecond

// settleTimeout caps the settle wait for files that keep growing.
const settleTimeout = 5 * time.Second

// Handler processes one task file.
type Handler func(ctx context.Context, path string) error

// Watcher watches a spool directory for task files.
type Watcher struct {
	dir     string
	handler Handler
	log     *zap.SugaredLogger
}

func New(dir string, handler Handler, log *zap.SugaredLogger) *Watcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Watcher{dir: dir, handler: handler, log: log}
}

// Run processes task files already in the spool directory, then blocks
// handling new ones until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	// Watch before scanning so files arriving during the scan are not
	// lost.
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	existing, err := pending(w.dir)
	if err != nil {
		return err
	}
	for _, path := range existing {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.process(ctx, path)
	}

	w.log.Infow("watching spool directory", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isTaskFile(event.Name) {
				continue
			}
			w.process(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Errorw("watch error", "error", err)
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	w.log.Infow("task file received", "path", path)

	if err := waitSettled(ctx, path); err != nil {
		w.log.Errorw("task file not readable", "path", path, "error", err)
		return
	}

	if err := w.handler(ctx, path); err != nil {
		w.log.Errorw("task failed", "path", path, "error", err)
		w.mark(path, ".failed")
		return
	}

	w.log.Infow("task finished", "path", path)
	w.mark(path, ".done")
}

// waitSettled blocks until the file size stops changing, so a task file
// still being written is not parsed half-finished. Gives up after
// settleTimeout and lets the handler surface whatever is there.
func waitSettled(ctx context.Context, path string) error {
	deadline := time.Now().Add(settleTimeout)
	last := int64(-1)

	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == last || time.Now().After(deadline) {
			return nil
		}
		last = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settleInterval):
		}
	}
}

func (w *Watcher) mark(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		w.log.Errorw("marking task file", "path", path, "error", err)
	}
}

// pending lists unprocessed task files in dir, oldest names first.
func pending(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isTaskFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	sort.Strings(paths)
	return paths, nil
}

func isTaskFile(name string) bool {
	return strings.HasSuffix(name, ".json")
}
