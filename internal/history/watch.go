package history

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch sends on changes every time the history file at path is written,
// created or replaced, until ctx is cancelled. The parent directory is
// watched because zsh rewrites the file via rename when it trims history.
// Signals are dropped when the receiver is not ready.
func Watch(ctx context.Context, path string, changes chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				select {
				case changes <- struct{}{}:
				default:
				}
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
		}
	}
}
