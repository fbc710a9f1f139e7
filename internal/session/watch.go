package session

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch reports changes made to the storage directory by other processes,
// such as a login from a second terminal. fn receives the changed key and
// runs on the watcher goroutine. Watch returns once the watcher is armed;
// it stops when ctx is canceled.
//
// Watching needs a real directory, so it is only meaningful for stores
// created with NewOS.
func (s *Store) Watch(ctx context.Context, fn func(key string)) error {
	if err := s.fs.MkdirAll(s.dir, storageDirMode); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if key, ok := eventKey(event); ok {
					fn(key)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("session watcher error", "error", err.Error())
			}
		}
	}()

	return nil
}

// eventKey maps a filesystem event to a store key. Temp files written
// during an atomic replace are ignored; the rename onto the key is what
// signals the change.
func eventKey(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, tempFilePrefix) {
		return "", false
	}
	if !slices.Contains(Keys(), name) {
		return "", false
	}
	return name, true
}
