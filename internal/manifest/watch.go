package manifest

import (
	"context"
	"os"
	"path/filepath"
	"time"

	fsnotify "github.com/fsnotify/fsnotify"

	"envctl/internal/system"
)

// Watch invokes fn whenever the manifest file changes, until ctx is done.
// The parent directory is watched because editors replace files atomically,
// and events are debounced because most editors emit several per save.
func Watch(ctx context.Context, fn func()) error {
	p, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}

	const debounce = 300 * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != p {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			system.Logger.Warn("manifest watcher error", "err", err)
		case <-timer.C:
			if pending {
				pending = false
				fn()
			}
		}
	}
}
