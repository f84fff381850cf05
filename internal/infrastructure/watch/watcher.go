// Package watch observes the .burndown workspace directory and invokes a
// callback when its data files settle after a change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// dataFiles are the workspace files whose changes invalidate a computed
// snapshot. Anything else (editor temp files, the snapshot log itself) is
// ignored so a broadcast cannot re-trigger the watcher.
var dataFiles = map[string]struct{}{
	"series.json":   {},
	"schedule.yaml": {},
	"settings.yaml": {},
}

// WorkspaceWatcher watches a .burndown directory and fires a debounced
// callback when series, schedule, or settings files change.
type WorkspaceWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	settle   time.Duration
	onChange func()
}

// NewWorkspaceWatcher creates a watcher over the given .burndown directory.
// settle is the quiet period required before onChange fires; 0 means 500ms.
func NewWorkspaceWatcher(dir string, settle time.Duration, onChange func()) (*WorkspaceWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if settle == 0 {
		settle = 500 * time.Millisecond
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &WorkspaceWatcher{
		watcher:  w,
		dir:      dir,
		settle:   settle,
		onChange: onChange,
	}, nil
}

// Run blocks processing events until the context is cancelled.
func (w *WorkspaceWatcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	debounce := newDebounce(w.settle, w.onChange)
	defer debounce.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			debounce.trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	_, ok := dataFiles[filepath.Base(event.Name)]
	return ok
}
